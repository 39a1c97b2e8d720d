package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
)

// RunningBalanceTool folds a history the caller supplies. Nothing is read or stored.
type RunningBalanceTool struct {
	ledgerService LedgerService
}

func NewRunningBalanceTool(ledgerService LedgerService) *RunningBalanceTool {
	return &RunningBalanceTool{
		ledgerService: ledgerService,
	}
}

func (t *RunningBalanceTool) GetName() string {
	return "running-balance"
}

func (t *RunningBalanceTool) GetDescription() string {
	return "Computes the running balance at every position of a chronological transaction history. " +
		"Position 0 is the seed balance and each later position adds the effect of the previous transaction"
}

func (t *RunningBalanceTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"perspective": map[string]interface{}{
				"type":        "string",
				"description": "payable (entity balance) or receivable (customer balance)",
				"enum":        []string{"payable", "receivable", "entity", "customer"},
			},
			"seedBalance": amountSchema,
			"history": map[string]interface{}{
				"type":        "array",
				"description": "Transactions in date order",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date":        map[string]string{"type": "string"},
						"type":        map[string]interface{}{"type": "string", "enum": transactionTypes},
						"totalAmount": amountSchema,
						"paymentCash": amountSchema,
						"paymentUpi":  amountSchema,
					},
					"required": []string{"type"},
				},
			},
		},
		Required: []string{"perspective", "history"},
	}
}

func (t *RunningBalanceTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var args struct {
		Perspective string               `json:"perspective"`
		SeedBalance json.RawMessage      `json:"seedBalance,omitempty"`
		History     []ledger.Transaction `json:"history"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("Error parsing arguments: %v", err), nil
	}

	perspective, err := ledger.ParsePerspective(args.Perspective)
	if err != nil {
		return errorResult("Error parsing arguments: %v", err), nil
	}
	seed, ok := ledger.CoerceAmount(args.SeedBalance)
	if !ok {
		return errorResult("Error parsing arguments: seedBalance must be a number"), nil
	}

	result, err := t.ledgerService.ComputeRunningBalances(ledger.RunningBalanceRequest{
		Perspective: perspective,
		SeedBalance: seed,
		History:     args.History,
	})
	if err != nil {
		return errorResult("Error computing running balance: %v", err), nil
	}

	summary := fmt.Sprintf("Running balance over %d transactions, closing balance %s", len(args.History), result.ClosingBalance.String())
	if len(result.Issues) > 0 {
		summary += fmt.Sprintf(" (%d data issues reported)", len(result.Issues))
	}
	return jsonResult(summary, result), nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
)

type LedgerStatementTool struct {
	ledgerService LedgerService
}

func NewLedgerStatementTool(ledgerService LedgerService) *LedgerStatementTool {
	return &LedgerStatementTool{
		ledgerService: ledgerService,
	}
}

func (t *LedgerStatementTool) GetName() string {
	return "ledger-statement"
}

func (t *LedgerStatementTool) GetDescription() string {
	return "Builds a party's ledger statement with the running balance shown on each row. " +
		"A row's balance is the balance before that row's transaction; closingBalance includes every transaction."
}

func (t *LedgerStatementTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"partyId": map[string]string{
				"type":        "string",
				"description": "The party whose ledger to show",
			},
			"perspective": map[string]interface{}{
				"type":        "string",
				"description": "Balance view. Defaults to receivable for customers and payable for everyone else",
				"enum":        []string{"payable", "receivable"},
			},
			"from": map[string]string{
				"type":        "string",
				"description": "First date shown, YYYY-MM-DD",
				"pattern":     "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},
			"to": map[string]string{
				"type":        "string",
				"description": "Last date shown, YYYY-MM-DD",
				"pattern":     "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},
		},
		Required: []string{"partyId"},
	}
}

func (t *LedgerStatementTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var args struct {
		PartyID     string `json:"partyId"`
		Perspective string `json:"perspective,omitempty"`
		From        string `json:"from,omitempty"`
		To          string `json:"to,omitempty"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("Error parsing arguments: %v", err), nil
	}

	req := ledger.StatementRequest{PartyID: args.PartyID, From: args.From, To: args.To}
	if args.Perspective != "" {
		perspective, err := ledger.ParsePerspective(args.Perspective)
		if err != nil {
			return errorResult("Error parsing arguments: %v", err), nil
		}
		req.Perspective = perspective
	}

	statement, err := t.ledgerService.GetStatement(ctx, req)
	if err != nil {
		return errorResult("Error building statement: %v", err), nil
	}

	summary := fmt.Sprintf("Statement for %s (%s), %d rows, closing balance %s %s",
		statement.PartyName, statement.Perspective, len(statement.Rows), statement.ClosingBalance.StringFixed(2), statement.Currency)
	return jsonResult(summary, statement), nil
}

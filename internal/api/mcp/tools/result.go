package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
)

// LedgerService is the ledger functionality the MCP tools expose
type LedgerService interface {
	RecordTransaction(ctx context.Context, partyID string, tx *ledger.Transaction) (*ledger.Transaction, error)
	GetStatement(ctx context.Context, req ledger.StatementRequest) (*ledger.Statement, error)
	ComputeRunningBalances(req ledger.RunningBalanceRequest) (*ledger.RunningBalanceResult, error)
}

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ToolResultContent{
			{
				Type: "text",
				Text: fmt.Sprintf(format, args...),
			},
		},
		IsError: true,
	}
}

// jsonResult renders v as indented JSON after a one-line summary
func jsonResult(summary string, v interface{}) *mcp.CallToolResult {
	responseData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("%s but the result could not be formatted: %v", summary, err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.ToolResultContent{
			{
				Type: "text",
				Text: fmt.Sprintf("%s:\n%s", summary, string(responseData)),
			},
		},
		IsError: false,
	}
}

var amountSchema = map[string]interface{}{
	"type":        []string{"number", "string", "null"},
	"description": "Amount in the party currency. Blank or null is 0",
}

var transactionTypes = []string{
	string(ledger.Buy),
	string(ledger.Sell),
	string(ledger.Payment),
	string(ledger.ReceivePayment),
	string(ledger.AdvancePayment),
	string(ledger.CreditNote),
	string(ledger.DebitNote),
}

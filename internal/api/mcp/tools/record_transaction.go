package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
)

type RecordTransactionTool struct {
	ledgerService LedgerService
}

func NewRecordTransactionTool(ledgerService LedgerService) *RecordTransactionTool {
	return &RecordTransactionTool{
		ledgerService: ledgerService,
	}
}

func (t *RecordTransactionTool) GetName() string {
	return "record-transaction"
}

func (t *RecordTransactionTool) GetDescription() string {
	return "Records a transaction in a party's ledger. Entries that are not valid, such as a sale settled beyond its total, are refused"
}

func (t *RecordTransactionTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"partyId": map[string]string{
				"type":        "string",
				"description": "The party the transaction belongs to",
			},
			"date": map[string]string{
				"type":        "string",
				"description": "Transaction date in YYYY-MM-DD format",
				"pattern":     "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},
			"type": map[string]interface{}{
				"type":        "string",
				"description": "Transaction type",
				"enum":        transactionTypes,
			},
			"totalAmount": amountSchema,
			"paymentCash": amountSchema,
			"paymentUpi":  amountSchema,
			"notes": map[string]string{
				"type":        "string",
				"description": "Optional notes",
			},
		},
		Required: []string{"partyId", "date", "type", "totalAmount"},
	}
}

func (t *RecordTransactionTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var tx ledger.Transaction
	if err := json.Unmarshal(arguments, &tx); err != nil {
		return errorResult("Error parsing arguments: %v", err), nil
	}

	created, err := t.ledgerService.RecordTransaction(ctx, tx.PartyID, &tx)
	if err != nil {
		return errorResult("Error recording transaction: %v", err), nil
	}

	return jsonResult(fmt.Sprintf("Transaction %s recorded", created.TransactionID), created), nil
}

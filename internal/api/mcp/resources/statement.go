package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
)

// StatementBuilder builds party statements
type StatementBuilder interface {
	GetStatement(ctx context.Context, req ledger.StatementRequest) (*ledger.Statement, error)
}

// StatementResource serves ledger://parties/{partyId}/statement.
// The optional query parameters perspective, from and to narrow the statement.
type StatementResource struct {
	ledgerService StatementBuilder
}

func NewStatementResource(ledgerService StatementBuilder) *StatementResource {
	return &StatementResource{
		ledgerService: ledgerService,
	}
}

func (r *StatementResource) GetURITemplate() string {
	return "ledger://parties/{partyId}/statement"
}

func (r *StatementResource) GetName() string {
	return "Party statement"
}

func (r *StatementResource) GetDescription() string {
	return "A party's ledger with the running balance on each row. Append ?from=YYYY-MM-DD&to=YYYY-MM-DD&perspective=payable|receivable to narrow it"
}

func (r *StatementResource) GetMimeType() string {
	return "application/json"
}

func (r *StatementResource) ReadTemplate(ctx context.Context, uri string, vars map[string]string) (*mcp.ReadResourceResult, error) {
	req := ledger.StatementRequest{PartyID: vars["partyId"]}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid resource uri: %w", err)
	}
	query := parsed.Query()
	req.From = query.Get("from")
	req.To = query.Get("to")
	if raw := query.Get("perspective"); raw != "" {
		perspective, err := ledger.ParsePerspective(raw)
		if err != nil {
			return nil, err
		}
		req.Perspective = perspective
	}

	statement, err := r.ledgerService.GetStatement(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build statement: %w", err)
	}

	data, err := json.MarshalIndent(statement, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statement: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      uri,
				MimeType: r.GetMimeType(),
				Text:     string(data),
			},
		},
	}, nil
}

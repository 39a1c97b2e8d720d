package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/trade-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
)

// PartyLister lists the parties whose ledgers are kept
type PartyLister interface {
	ListParties(ctx context.Context, req *party.ListPartiesRequest) (*party.PartyListResponse, error)
}

type PartiesResource struct {
	partyService PartyLister
}

func NewPartiesResource(partyService PartyLister) *PartiesResource {
	return &PartiesResource{
		partyService: partyService,
	}
}

func (r *PartiesResource) GetURI() string {
	return "ledger://parties"
}

func (r *PartiesResource) GetName() string {
	return "Parties"
}

func (r *PartiesResource) GetDescription() string {
	return "Every customer, driver, company and supplier with a ledger. Use ledger://parties/{partyId}/statement for a statement"
}

func (r *PartiesResource) GetMimeType() string {
	return "application/json"
}

func (r *PartiesResource) Read(ctx context.Context) (*mcp.ReadResourceResult, error) {
	list, err := r.partyService.ListParties(ctx, &party.ListPartiesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parties: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      r.GetURI(),
				MimeType: r.GetMimeType(),
				Text:     string(data),
			},
		},
	}, nil
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/trade-ledger/backend/internal/api/response"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
)

// PartyService is the party management the REST API exposes
type PartyService interface {
	CreateParty(ctx context.Context, req *party.CreatePartyRequest) (*party.Party, error)
	GetParty(ctx context.Context, partyID string) (*party.Party, error)
	ListParties(ctx context.Context, req *party.ListPartiesRequest) (*party.PartyListResponse, error)
	UpdateParty(ctx context.Context, partyID string, req *party.UpdatePartyRequest) (*party.Party, error)
	DeleteParty(ctx context.Context, partyID string) error
}

// PartyHandler serves the /parties routes
type PartyHandler struct {
	service PartyService
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(service PartyService) *PartyHandler {
	return &PartyHandler{service: service}
}

// List handles GET /parties?kind=
func (h *PartyHandler) List(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	req := &party.ListPartiesRequest{Kind: party.Kind(request.QueryStringParameters["kind"])}

	result, err := h.service.ListParties(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return response.SuccessWithPagination(result.Parties, &response.Pagination{Total: result.TotalCount}, http.StatusOK, request.RequestContext.RequestID), nil
}

// Create handles POST /parties
func (h *PartyHandler) Create(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	var req party.CreatePartyRequest
	if err := decodeBody(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	created, err := h.service.CreateParty(ctx, &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(created, request.RequestContext.RequestID), nil
}

// Get handles GET /parties/{partyId}
func (h *PartyHandler) Get(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	found, err := h.service.GetParty(ctx, params["partyId"])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(found, request.RequestContext.RequestID), nil
}

// Update handles PUT /parties/{partyId}
func (h *PartyHandler) Update(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	var req party.UpdatePartyRequest
	if err := decodeBody(request, &req); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	updated, err := h.service.UpdateParty(ctx, params["partyId"], &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(updated, request.RequestContext.RequestID), nil
}

// Delete handles DELETE /parties/{partyId}
func (h *PartyHandler) Delete(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	if err := h.service.DeleteParty(ctx, params["partyId"]); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.NoContent(), nil
}

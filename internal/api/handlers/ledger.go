package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/trade-ledger/backend/internal/api/response"
	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
)

// LedgerService is the ledger functionality the REST API exposes
type LedgerService interface {
	RecordTransaction(ctx context.Context, partyID string, tx *ledger.Transaction) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, partyID string, window ledger.DateRange) ([]ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, partyID string, transactionID string) error
	GetStatement(ctx context.Context, req ledger.StatementRequest) (*ledger.Statement, error)
	ComputeRunningBalances(req ledger.RunningBalanceRequest) (*ledger.RunningBalanceResult, error)
}

// LedgerHandler serves transaction, statement and running-balance routes
type LedgerHandler struct {
	service LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// ListTransactions handles GET /parties/{partyId}/transactions?from=&to=
func (h *LedgerHandler) ListTransactions(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	window := ledger.DateRange{
		From: request.QueryStringParameters["from"],
		To:   request.QueryStringParameters["to"],
	}

	history, err := h.service.ListTransactions(ctx, params["partyId"], window)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if history == nil {
		history = []ledger.Transaction{}
	}

	return response.SuccessWithPagination(history, &response.Pagination{Total: len(history)}, http.StatusOK, request.RequestContext.RequestID), nil
}

// RecordTransaction handles POST /parties/{partyId}/transactions
func (h *LedgerHandler) RecordTransaction(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	var tx ledger.Transaction
	if err := decodeBody(request, &tx); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	created, err := h.service.RecordTransaction(ctx, params["partyId"], &tx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.Created(created, request.RequestContext.RequestID), nil
}

// DeleteTransaction handles DELETE /parties/{partyId}/transactions/{transactionId}
func (h *LedgerHandler) DeleteTransaction(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	if err := h.service.DeleteTransaction(ctx, params["partyId"], params["transactionId"]); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.NoContent(), nil
}

// GetStatement handles GET /parties/{partyId}/statement?perspective=&from=&to=
func (h *LedgerHandler) GetStatement(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	query := request.QueryStringParameters
	req := ledger.StatementRequest{
		PartyID: params["partyId"],
		From:    query["from"],
		To:      query["to"],
	}
	if raw := query["perspective"]; raw != "" {
		perspective, err := ledger.ParsePerspective(raw)
		if err != nil {
			return events.APIGatewayProxyResponse{}, errors.NewValidationError(err.Error())
		}
		req.Perspective = perspective
	}

	statement, err := h.service.GetStatement(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(statement, request.RequestContext.RequestID), nil
}

type runningBalanceBody struct {
	Perspective string               `json:"perspective"`
	SeedBalance json.RawMessage      `json:"seedBalance"`
	History     []ledger.Transaction `json:"history"`
}

// RunningBalance handles POST /ledger/running-balance. Nothing is read or stored.
func (h *LedgerHandler) RunningBalance(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	var body runningBalanceBody
	if err := decodeBody(request, &body); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	perspective, err := ledger.ParsePerspective(body.Perspective)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.NewValidationError(err.Error())
	}
	seed, ok := ledger.CoerceAmount(body.SeedBalance)
	if !ok {
		return events.APIGatewayProxyResponse{}, errors.NewValidationError("seedBalance must be a number")
	}

	result, err := h.service.ComputeRunningBalances(ledger.RunningBalanceRequest{
		Perspective: perspective,
		SeedBalance: seed,
		History:     body.History,
	})
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if len(result.Issues) > 0 {
		logger.Warn("running balance computed over malformed entries", "issues", len(result.Issues))
	}
	return response.OK(result, request.RequestContext.RequestID), nil
}

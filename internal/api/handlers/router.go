package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hirosato/trade-ledger/backend/internal/api/response"
	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
)

// routeHandler handles a matched route. params holds the values of the
// {placeholders} in the route pattern.
type routeHandler func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest, params map[string]string) (events.APIGatewayProxyResponse, error)

type route struct {
	method   string
	segments []string
	handle   routeHandler
}

// Router dispatches API Gateway proxy requests by method and path
type Router struct {
	routes []route
}

// NewRouter creates the REST router for the ledger API
func NewRouter(parties *PartyHandler, ledger *LedgerHandler) *Router {
	r := &Router{}

	r.add(http.MethodGet, "/parties", parties.List)
	r.add(http.MethodPost, "/parties", parties.Create)
	r.add(http.MethodGet, "/parties/{partyId}", parties.Get)
	r.add(http.MethodPut, "/parties/{partyId}", parties.Update)
	r.add(http.MethodDelete, "/parties/{partyId}", parties.Delete)

	r.add(http.MethodGet, "/parties/{partyId}/transactions", ledger.ListTransactions)
	r.add(http.MethodPost, "/parties/{partyId}/transactions", ledger.RecordTransaction)
	r.add(http.MethodDelete, "/parties/{partyId}/transactions/{transactionId}", ledger.DeleteTransaction)
	r.add(http.MethodGet, "/parties/{partyId}/statement", ledger.GetStatement)
	r.add(http.MethodPost, "/ledger/running-balance", ledger.RunningBalance)

	return r
}

func (r *Router) add(method string, pattern string, handle routeHandler) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handle:   handle,
	})
}

// Handle routes a request. Errors returned by route handlers are mapped onto error responses.
func (r *Router) Handle(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID
	if request.HTTPMethod == http.MethodOptions {
		return response.NoContent(), nil
	}

	segments := splitPath(request.Path)
	pathMatched := false
	for _, rt := range r.routes {
		params, ok := match(rt.segments, segments)
		if !ok {
			continue
		}
		pathMatched = true
		if rt.method != request.HTTPMethod {
			continue
		}

		resp, err := rt.handle(ctx, logger, request, params)
		if err != nil {
			var appErr errors.AppError
			if !stderrors.As(err, &appErr) || appErr.StatusCode >= http.StatusInternalServerError {
				logger.Error("request failed", "path", request.Path, "error", err)
			}
			return response.FromError(err, requestID), nil
		}
		return resp, nil
	}

	if pathMatched {
		return response.MethodNotAllowed(request.HTTPMethod, requestID), nil
	}
	return response.NotFound("endpoint not found", requestID), nil
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func match(pattern []string, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			params[p[1:len(p)-1]] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// decodeBody unmarshals the request body into v
func decodeBody(request events.APIGatewayProxyRequest, v interface{}) error {
	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return errors.NewInvalidInputError("request body is not valid base64", err)
		}
		body = decoded
	}
	if len(body) == 0 {
		return errors.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewInvalidInputError("request body is not valid JSON", err)
	}
	return nil
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/hirosato/trade-ledger/backend/internal/api/response"
	"github.com/hirosato/trade-ledger/backend/internal/common/utils"
	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
)

// StaffContextKey is the key for the authenticated staff member in the request context
type StaffContextKey string

// StaffContextKeyValue is the context key for the authenticated staff member
const StaffContextKeyValue StaffContextKey = "staff"

// TokenVerifier checks a bearer token and returns who it was issued to
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Staff, error)
}

// AuthMiddleware authenticates staff from the API Gateway authorizer context,
// or from the bearer token itself when no authorizer ran in front of the API.
type AuthMiddleware struct {
	verifier TokenVerifier
	log      *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware. verifier may be nil when
// every request is expected to carry an authorizer context.
func NewAuthMiddleware(verifier TokenVerifier, log *zap.Logger) AuthMiddleware {
	return AuthMiddleware{
		verifier: verifier,
		log:      log,
	}
}

// Handle handles the auth middleware
func (m AuthMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		requestID := request.RequestContext.RequestID

		staff, ok := staffFromAuthorizer(request.RequestContext.Authorizer)
		if !ok {
			token, err := utils.ExtractBearerToken(header(request.Headers, "Authorization"))
			if err != nil {
				return response.AuthenticationError(err.Error(), requestID), nil
			}
			if m.verifier == nil {
				return response.AuthenticationError("token verification is not available", requestID), nil
			}

			staff, err = m.verifier.Verify(ctx, token)
			if err != nil {
				m.log.Warn("Token validation failed", zap.String("requestId", requestID), zap.Error(err))
				return response.AuthenticationError("invalid or expired token", requestID), nil
			}
		}

		if !staff.Role.CanWrite() && !isReadOnly(request) {
			m.log.Warn("Insufficient permissions",
				zap.String("staffId", staff.ID),
				zap.String("role", string(staff.Role)),
				zap.String("method", request.HTTPMethod),
				zap.String("path", request.Path))
			return response.AuthorizationError("role "+string(staff.Role)+" cannot modify the ledger", requestID), nil
		}

		ctx = context.WithValue(ctx, StaffContextKeyValue, staff)
		return next(ctx, logger.With("staffId", staff.ID), request)
	}
}

// StaffFromContext returns the staff member the request was authenticated as
func StaffFromContext(ctx context.Context) (auth.Staff, bool) {
	staff, ok := ctx.Value(StaffContextKeyValue).(auth.Staff)
	return staff, ok
}

func staffFromAuthorizer(authorizer map[string]interface{}) (auth.Staff, bool) {
	id, _ := authorizer["staffId"].(string)
	role, _ := authorizer["role"].(string)
	if id == "" || !auth.Role(role).IsValid() {
		return auth.Staff{}, false
	}
	name, _ := authorizer["name"].(string)
	return auth.Staff{ID: id, Name: name, Role: auth.Role(role)}, true
}

// isReadOnly reports whether the request leaves stored data untouched
func isReadOnly(request events.APIGatewayProxyRequest) bool {
	switch request.HTTPMethod {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return request.HTTPMethod == http.MethodPost && strings.TrimSuffix(request.Path, "/") == "/ledger/running-balance"
}

// header looks a header up regardless of how the client cased it
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

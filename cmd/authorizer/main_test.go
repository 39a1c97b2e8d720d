package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
)

type stubVerifier map[string]auth.Staff

func (v stubVerifier) Verify(ctx context.Context, token string) (auth.Staff, error) {
	staff, ok := v[token]
	if !ok {
		return auth.Staff{}, auth.ErrInvalidToken
	}
	return staff, nil
}

func newTestAuthorizer() *Authorizer {
	return &Authorizer{
		verifier: stubVerifier{"good": {ID: "s-1", Name: "Asha", Role: auth.Owner}},
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

func authRequest(header string) events.APIGatewayCustomAuthorizerRequestTypeRequest {
	request := events.APIGatewayCustomAuthorizerRequestTypeRequest{
		MethodArn: "arn:aws:execute-api:ap-south-1:123456789012:abc123/prod/GET/parties",
		Headers:   map[string]string{},
	}
	if header != "" {
		request.Headers["authorization"] = header
	}
	request.RequestContext.AccountID = "123456789012"
	request.RequestContext.APIID = "abc123"
	request.RequestContext.Stage = "prod"
	return request
}

func TestAuthorizer_Allow(t *testing.T) {
	resp, err := newTestAuthorizer().Handle(context.Background(), authRequest("Bearer good"))

	require.NoError(t, err)
	assert.Equal(t, "s-1", resp.PrincipalID)
	require.Len(t, resp.PolicyDocument.Statement, 1)
	statement := resp.PolicyDocument.Statement[0]
	assert.Equal(t, "Allow", statement.Effect)
	assert.Equal(t, []string{"arn:aws:execute-api:ap-south-1:123456789012:abc123/prod/*"}, statement.Resource)
	assert.Equal(t, "s-1", resp.Context["staffId"])
	assert.Equal(t, "owner", resp.Context["role"])
	assert.Equal(t, "Asha", resp.Context["name"])
}

func TestAuthorizer_Deny(t *testing.T) {
	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic dXNlcjpwYXNz",
		"rejected":   "Bearer forged",
	} {
		t.Run(name, func(t *testing.T) {
			request := authRequest(header)
			resp, err := newTestAuthorizer().Handle(context.Background(), request)

			require.NoError(t, err)
			require.Len(t, resp.PolicyDocument.Statement, 1)
			assert.Equal(t, "Deny", resp.PolicyDocument.Statement[0].Effect)
			assert.Equal(t, []string{request.MethodArn}, resp.PolicyDocument.Statement[0].Resource)
			assert.Nil(t, resp.Context)
		})
	}
}

func TestRegionFromArn(t *testing.T) {
	assert.Equal(t, "ap-south-1", regionFromArn("arn:aws:execute-api:ap-south-1:1:a/b/GET/"))
	assert.Equal(t, "*", regionFromArn("garbage"))
}

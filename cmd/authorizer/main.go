package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/hirosato/trade-ledger/backend/internal/common/config"
	"github.com/hirosato/trade-ledger/backend/internal/common/utils"
	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
	"github.com/hirosato/trade-ledger/backend/internal/platform/secrets"
)

// tokenVerifier checks staff bearer tokens
type tokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Staff, error)
}

// Authorizer is the API Gateway REST API request authorizer for staff tokens
type Authorizer struct {
	verifier tokenVerifier
	logger   *slog.Logger
	debug    bool
}

// Handle validates the bearer token and returns an Allow policy for the whole stage,
// or a Deny policy for the requested method
func (a *Authorizer) Handle(ctx context.Context, request events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	a.logger.Info("authorizer - Memory Status", "MB", m.Alloc/1024/1024)

	authHeader := request.Headers["Authorization"]
	if authHeader == "" {
		authHeader = request.Headers["authorization"]
	}

	token, err := utils.ExtractBearerToken(authHeader)
	if err != nil {
		a.logger.Warn("Missing or invalid Authorization header", "error", err)
		return generatePolicy("user", "Deny", request.MethodArn, nil), nil
	}
	if a.debug {
		a.logger.Debug("Token Body", "token", token)
	}

	staff, err := a.verifier.Verify(ctx, token)
	if err != nil {
		a.logger.Warn("Token validation failed", "error", err)
		return generatePolicy("user", "Deny", request.MethodArn, nil), nil
	}

	authContext := map[string]interface{}{
		"staffId": staff.ID,
		"name":    staff.Name,
		"role":    string(staff.Role),
	}
	// arn:aws:execute-api:{regionId}:{accountId}:{apiId}/{stage}/{httpVerb}/[{resource}/[{child-resources}]]
	arn := fmt.Sprintf("arn:aws:execute-api:%s:%s:%s/%s/%s",
		regionFromArn(request.MethodArn),
		request.RequestContext.AccountID,
		request.RequestContext.APIID,
		request.RequestContext.Stage,
		"*",
	)

	return generatePolicy(staff.ID, "Allow", arn, authContext), nil
}

// regionFromArn returns the region of a method ARN, or * when it cannot be read
func regionFromArn(methodArn string) string {
	parts := strings.Split(methodArn, ":")
	if len(parts) < 4 || parts[3] == "" {
		return "*"
	}
	return parts[3]
}

// generatePolicy generates an IAM policy for the authorizer response
func generatePolicy(principalID, effect, resource string, context map[string]interface{}) events.APIGatewayCustomAuthorizerResponse {
	authResponse := events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principalID,
	}

	if effect != "" && resource != "" {
		authResponse.PolicyDocument = events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{"execute-api:Invoke"},
					Effect:   effect,
					Resource: []string{resource},
				},
			},
		}
	}

	if context != nil {
		authResponse.Context = context
	}

	return authResponse
}

// main is the entry point for the Lambda function
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	appConfig, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(appConfig.AWSRegion))
	if err != nil {
		logger.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	keys, err := secrets.NewSigningKeyStore(secretsmanager.NewFromConfig(awsCfg), appConfig.SigningKeySecret)
	if err != nil {
		logger.Error("Failed to initialize signing key store", "error", err)
		os.Exit(1)
	}

	authorizer := &Authorizer{
		verifier: auth.NewTokenService(keys, appConfig.TokenTTL),
		logger:   logger,
		debug:    !appConfig.IsProd(),
	}
	lambda.Start(authorizer.Handle)
}

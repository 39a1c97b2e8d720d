package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/hirosato/trade-ledger/backend/internal/api/handlers"
	"github.com/hirosato/trade-ledger/backend/internal/api/middleware"
	envconfig "github.com/hirosato/trade-ledger/backend/internal/common/config"
	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
	dynamoClient "github.com/hirosato/trade-ledger/backend/internal/platform/dynamodb/client"
	dynamodbRepository "github.com/hirosato/trade-ledger/backend/internal/platform/dynamodb/repository"
	"github.com/hirosato/trade-ledger/backend/internal/platform/secrets"
)

func main() {
	level := slog.LevelInfo
	config, err := envconfig.LoadFromEnv()
	if err == nil && !config.IsProd() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if err == nil {
		err = config.RequireTable()
	}
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logger.Error("Failed to initialize zap logger", "error", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	// Initialize DynamoDB client
	ddb, err := dynamoClient.NewDynamoDBClient(ctx, config.AWSRegion, logger)
	if err != nil {
		logger.Error("Failed to initialize DynamoDB client", "error", err)
		os.Exit(1)
	}
	repos := dynamodbRepository.NewFactory(ddb, config.DynamoDBTableName, logger)

	partyService := party.NewService(repos.PartyRepository(), logger, config.DefaultCurrency)
	ledgerService := ledger.NewService(repos.TransactionRepository(), partyService, logger, config.AssertOrder)

	// Staff tokens are normally checked by the authorizer; the middleware verifies them itself when it did not run
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(config.AWSRegion))
	if err != nil {
		logger.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}
	keys, err := secrets.NewSigningKeyStore(secretsmanager.NewFromConfig(awsCfg), config.SigningKeySecret)
	if err != nil {
		logger.Error("Failed to initialize signing key store", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenService(keys, config.TokenTTL)

	router := handlers.NewRouter(
		handlers.NewPartyHandler(partyService),
		handlers.NewLedgerHandler(ledgerService),
	)

	handler := middleware.Chain(router.Handle,
		middleware.NewRecoveryMiddleware().Handle,
		middleware.NewLoggingMiddleware(!config.IsProd()).Handle,
		middleware.NewAuthMiddleware(tokens, zapLogger).Handle,
	)

	lambda.Start(func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return handler(ctx, logger, request)
	})
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/hirosato/trade-ledger/backend/internal/common/config"
	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
	kmspkg "github.com/hirosato/trade-ledger/backend/internal/platform/kms"
	"github.com/hirosato/trade-ledger/backend/internal/platform/secrets"
)

// signingKeySize is the number of random bytes stored as the signing secret
const signingKeySize = 64

const usage = `usage:
  operation rotate-signing-key
  operation issue-token <staffId> <name> [owner|accountant|viewer]`

// Example: AWS_PROFILE=ledger-dev DYNAMODB_TABLE_NAME=ledger-dev go run ./cmd/operation rotate-signing-key
func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	appConfig, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(appConfig.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	store, err := secrets.NewSigningKeyStore(secretsmanager.NewFromConfig(awsCfg), appConfig.SigningKeySecret)
	if err != nil {
		log.Fatalf("Failed to initialize signing key store: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "rotate-signing-key":
		generator := kmspkg.NewKeyGenerator(kms.NewFromConfig(awsCfg))
		rotateSigningKey(ctx, generator, store, appConfig.SigningKeySecret)
	case "issue-token":
		if len(os.Args) < 4 {
			fmt.Println(usage)
			os.Exit(2)
		}
		staff := auth.Staff{ID: os.Args[2], Name: os.Args[3]}
		if len(os.Args) > 4 {
			staff.Role = auth.Role(os.Args[4])
		}
		issueToken(ctx, auth.NewTokenService(store, appConfig.TokenTTL), staff)
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
}

func rotateSigningKey(ctx context.Context, generator *kmspkg.KeyGenerator, store *secrets.SigningKeyStore, secretID string) {
	fmt.Println("Generating signing key...")
	secret, err := generator.GenerateKey(ctx, signingKeySize)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	key, err := store.Rotate(ctx, secret)
	if err != nil {
		log.Fatalf("Failed to store signing key: %v", err)
	}

	fmt.Printf("Stored signing key %s in %s\n", key.ID, secretID)
	fmt.Println("Tokens issued with the previous key are no longer accepted.")
}

func issueToken(ctx context.Context, tokens *auth.TokenService, staff auth.Staff) {
	token, err := tokens.Issue(ctx, staff)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

package secrets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
	"github.com/google/uuid"

	"github.com/hirosato/trade-ledger/backend/internal/domain/auth"
)

// writeAPI is the part of the Secrets Manager client used to rotate the key
type writeAPI interface {
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// signingKeyData is the JSON document stored in the secret
type signingKeyData struct {
	KeyID     string `json:"keyId"`
	Key       string `json:"key"`
	CreatedAt string `json:"createdAt"`
}

// SigningKeyStore keeps the staff token signing key in Secrets Manager.
// Reads go through secretcache so warm Lambdas do not call Secrets Manager per request.
type SigningKeyStore struct {
	secretID string
	read     func(secretID string) (string, error)
	writer   writeAPI
}

// NewSigningKeyStore creates a store backed by client, caching reads
func NewSigningKeyStore(client *secretsmanager.Client, secretID string) (*SigningKeyStore, error) {
	cache, err := secretcache.New(func(c *secretcache.Cache) {
		c.Client = client
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret cache: %w", err)
	}

	return &SigningKeyStore{
		secretID: secretID,
		read:     cache.GetSecretString,
		writer:   client,
	}, nil
}

// CurrentKey returns the signing key currently stored in the secret
func (s *SigningKeyStore) CurrentKey(ctx context.Context) (auth.SigningKey, error) {
	secretString, err := s.read(s.secretID)
	if err != nil {
		return auth.SigningKey{}, fmt.Errorf("failed to get signing key: %w", err)
	}

	var data signingKeyData
	if err := json.Unmarshal([]byte(secretString), &data); err != nil {
		return auth.SigningKey{}, fmt.Errorf("failed to parse signing key data: %w", err)
	}

	secret, err := base64.StdEncoding.DecodeString(data.Key)
	if err != nil {
		return auth.SigningKey{}, fmt.Errorf("failed to decode signing key: %w", err)
	}
	if data.KeyID == "" || len(secret) == 0 {
		return auth.SigningKey{}, errors.New("signing key secret is incomplete")
	}

	return auth.SigningKey{ID: data.KeyID, Secret: secret}, nil
}

// Rotate stores secret as the new signing key, creating the secret on first use
func (s *SigningKeyStore) Rotate(ctx context.Context, secret []byte) (auth.SigningKey, error) {
	key := auth.SigningKey{ID: uuid.New().String(), Secret: secret}

	payload, err := json.Marshal(signingKeyData{
		KeyID:     key.ID,
		Key:       base64.StdEncoding.EncodeToString(secret),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return auth.SigningKey{}, fmt.Errorf("failed to marshal key data: %w", err)
	}

	_, err = s.writer.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(s.secretID),
		SecretString: aws.String(string(payload)),
	})
	if err == nil {
		return key, nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return auth.SigningKey{}, fmt.Errorf("failed to store signing key: %w", err)
	}

	_, err = s.writer.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(s.secretID),
		SecretString: aws.String(string(payload)),
		Description:  aws.String("trade-ledger staff token signing key"),
	})
	if err != nil {
		return auth.SigningKey{}, fmt.Errorf("failed to create signing key secret: %w", err)
	}
	return key, nil
}

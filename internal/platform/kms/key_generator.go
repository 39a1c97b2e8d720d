package kms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// randomAPI is the part of the KMS client the generator needs
type randomAPI interface {
	GenerateRandom(ctx context.Context, params *kms.GenerateRandomInput, optFns ...func(*kms.Options)) (*kms.GenerateRandomOutput, error)
}

// KeyGenerator produces signing key material from the KMS random source
type KeyGenerator struct {
	client randomAPI
}

// NewKeyGenerator creates a new KeyGenerator
func NewKeyGenerator(client randomAPI) *KeyGenerator {
	return &KeyGenerator{client: client}
}

// GenerateKey returns size random bytes
func (g *KeyGenerator) GenerateKey(ctx context.Context, size int) ([]byte, error) {
	if size < 32 || size > 1024 {
		return nil, fmt.Errorf("key size must be between 32 and 1024 bytes, got %d", size)
	}

	result, err := g.client.GenerateRandom(ctx, &kms.GenerateRandomInput{
		NumberOfBytes: aws.Int32(int32(size)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}
	if len(result.Plaintext) != size {
		return nil, fmt.Errorf("kms returned %d bytes, want %d", len(result.Plaintext), size)
	}
	return result.Plaintext, nil
}

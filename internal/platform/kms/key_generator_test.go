package kms

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRandomClient struct {
	requested int32
	short     bool
	err       error
}

func (c *testRandomClient) GenerateRandom(ctx context.Context, params *kms.GenerateRandomInput, optFns ...func(*kms.Options)) (*kms.GenerateRandomOutput, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.requested = *params.NumberOfBytes
	n := int(*params.NumberOfBytes)
	if c.short {
		n--
	}
	return &kms.GenerateRandomOutput{Plaintext: bytes.Repeat([]byte{7}, n)}, nil
}

func TestKeyGenerator_GenerateKey(t *testing.T) {
	client := &testRandomClient{}
	key, err := NewKeyGenerator(client).GenerateKey(context.Background(), 64)

	require.NoError(t, err)
	assert.Len(t, key, 64)
	assert.Equal(t, int32(64), client.requested)
}

func TestKeyGenerator_Errors(t *testing.T) {
	_, err := NewKeyGenerator(&testRandomClient{}).GenerateKey(context.Background(), 16)
	assert.Error(t, err)

	_, err = NewKeyGenerator(&testRandomClient{short: true}).GenerateKey(context.Background(), 32)
	assert.Error(t, err)

	_, err = NewKeyGenerator(&testRandomClient{err: errors.New("AccessDenied")}).GenerateKey(context.Background(), 32)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

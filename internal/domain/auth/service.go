package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const issuer = "trade-ledger"

// KeyProvider supplies the current signing key
type KeyProvider interface {
	CurrentKey(ctx context.Context) (SigningKey, error)
}

// TokenService issues and verifies staff tokens
type TokenService struct {
	keys KeyProvider
	ttl  time.Duration
	now  func() time.Time
}

// NewTokenService creates a new token service. Issued tokens expire after ttl.
func NewTokenService(keys KeyProvider, ttl time.Duration) *TokenService {
	return &TokenService{
		keys: keys,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Issue signs a token for a staff member
func (s *TokenService) Issue(ctx context.Context, staff Staff) (string, error) {
	if staff.ID == "" || staff.Name == "" {
		return "", fmt.Errorf("%w: staff id and name are required", ErrInvalidInput)
	}
	if staff.Role == "" {
		staff.Role = Accountant
	}
	if !staff.Role.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, staff.Role)
	}

	key, err := s.keys.CurrentKey(ctx)
	if err != nil {
		return "", err
	}
	hmacKey, err := deriveHMACKey(key.Secret)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	claims := StaffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: staff.Name,
		Role: staff.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.ID
	return token.SignedString(hmacKey)
}

// Verify checks a token's signature and expiry and returns the staff member it names
func (s *TokenService) Verify(ctx context.Context, tokenString string) (Staff, error) {
	key, err := s.keys.CurrentKey(ctx)
	if err != nil {
		return Staff{}, err
	}

	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if kid, _ := token.Header["kid"].(string); kid != key.ID {
			return nil, ErrUnknownKey
		}
		return deriveHMACKey(key.Secret)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Staff{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return Staff{}, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}

	return Staff{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

// deriveHMACKey expands the stored secret into the HS256 key
func deriveHMACKey(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", ErrInvalidInput)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("trade-ledger staff token v1")), key); err != nil {
		return nil, err
	}
	return key, nil
}

package auth

import (
	"errors"
)

// Standard error definitions for auth domain
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownKey   = errors.New("token was signed with an unknown key")
)

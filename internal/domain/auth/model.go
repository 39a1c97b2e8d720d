package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is what a staff member may do in the back office
type Role string

const (
	// Owner can manage parties and record or delete transactions
	Owner Role = "owner"
	// Accountant can record transactions and read statements
	Accountant Role = "accountant"
	// Viewer can only read statements
	Viewer Role = "viewer"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case Owner, Accountant, Viewer:
		return true
	}
	return false
}

// CanWrite reports whether r may change ledger data
func (r Role) CanWrite() bool {
	return r == Owner || r == Accountant
}

// StaffClaims are the claims carried by a staff token
type StaffClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Staff identifies the authenticated caller of a request
type Staff struct {
	ID   string `json:"staffId"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// SigningKey is the shared secret staff tokens are signed with
type SigningKey struct {
	ID     string
	Secret []byte
}

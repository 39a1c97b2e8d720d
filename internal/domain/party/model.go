package party

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
)

// Kind represents what a party does for the business
type Kind string

const (
	// Customer buys produce on credit
	Customer Kind = "CUSTOMER"
	// Driver transports produce and is paid per trip
	Driver Kind = "DRIVER"
	// Company is a trading house the business buys from or sells to
	Company Kind = "COMPANY"
	// Supplier sells produce to the business
	Supplier Kind = "SUPPLIER"
)

// Kinds lists the supported party kinds
var Kinds = []Kind{Customer, Driver, Company, Supplier}

// IsValid reports whether k is a supported kind
func (k Kind) IsValid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// DefaultPerspective is the balance view a party's statement uses unless the caller overrides it.
// Customers owe the business; everyone else is owed by it.
func (k Kind) DefaultPerspective() ledger.Perspective {
	if k == Customer {
		return ledger.Receivable
	}
	return ledger.Payable
}

// Party is a counterparty whose ledger the back office keeps
type Party struct {
	PartyID        string          `json:"partyId"`
	Kind           Kind            `json:"kind"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	VehicleNumber  string          `json:"vehicleNumber,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Currency       string          `json:"currency"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatePartyRequest represents the request to create a new party
type CreatePartyRequest struct {
	Kind           Kind            `json:"kind"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	VehicleNumber  string          `json:"vehicleNumber,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// UpdatePartyRequest represents the request to update a party. Nil fields are left unchanged.
type UpdatePartyRequest struct {
	Name           *string          `json:"name,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	VehicleNumber  *string          `json:"vehicleNumber,omitempty"`
	OpeningBalance *decimal.Decimal `json:"openingBalance,omitempty"`
}

// ListPartiesRequest filters the party list
type ListPartiesRequest struct {
	Kind Kind `json:"kind,omitempty"`
}

// PartyListResponse represents the response for listing parties
type PartyListResponse struct {
	Parties    []*Party `json:"parties"`
	TotalCount int      `json:"totalCount"`
}

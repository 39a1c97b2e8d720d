package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what a transaction did between the business and a party
type TransactionType string

const (
	Buy            TransactionType = "BUY"
	Sell           TransactionType = "SELL"
	Payment        TransactionType = "PAYMENT"
	ReceivePayment TransactionType = "RECEIVE_PAYMENT"
	AdvancePayment TransactionType = "ADVANCE_PAYMENT"
	CreditNote     TransactionType = "CREDIT_NOTE"
	DebitNote      TransactionType = "DEBIT_NOTE"
)

// TransactionTypes lists every type the business records, in display order
var TransactionTypes = []TransactionType{
	Buy, Sell, Payment, ReceivePayment, AdvancePayment, CreditNote, DebitNote,
}

// IsKnown reports whether t is one of the recorded transaction types
func (t TransactionType) IsKnown() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Transaction is one entry of a party's history.
// Monetary fields are decoded leniently, see CoerceAmount.
type Transaction struct {
	TransactionID string          `json:"transactionId,omitempty"`
	PartyID       string          `json:"partyId,omitempty"`
	Date          string          `json:"date,omitempty"` // YYYY-MM-DD
	Type          TransactionType `json:"type"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentCash   decimal.Decimal `json:"paymentCash"`
	PaymentUpi    decimal.Decimal `json:"paymentUpi"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`

	// coerced holds the JSON names of monetary fields that were unreadable and defaulted to zero
	coerced []string
}

// CoercedFields returns the monetary fields that could not be read when the transaction was decoded
func (t Transaction) CoercedFields() []string {
	return t.coerced
}

// Settlement is the part of a sale paid on the spot
func (t Transaction) Settlement() decimal.Decimal {
	return t.PaymentCash.Add(t.PaymentUpi)
}

// DateRange bounds a query by transaction date. Empty bounds are open.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Contains reports whether date falls inside the range, inclusive on both ends
func (r DateRange) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// IsOpen reports whether the range has no bounds
func (r DateRange) IsOpen() bool {
	return r.From == "" && r.To == ""
}

// Account is what the statement needs to know about a party
type Account struct {
	PartyID        string
	Name           string
	OpeningBalance decimal.Decimal
	Perspective    Perspective
	Currency       string
}

// StatementRow pairs a transaction with the running balance shown on its row
type StatementRow struct {
	Index       int             `json:"index"`
	Transaction Transaction     `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

// StatementSummary aggregates the rows of a statement
type StatementSummary struct {
	Totals           map[TransactionType]decimal.Decimal `json:"totals"`
	CashReceived     decimal.Decimal                     `json:"cashReceived"`
	UpiReceived      decimal.Decimal                     `json:"upiReceived"`
	NetChange        decimal.Decimal                     `json:"netChange"`
	TransactionCount int                                 `json:"transactionCount"`
}

// Statement is a party's ledger with a running balance per row
type Statement struct {
	PartyID        string           `json:"partyId"`
	PartyName      string           `json:"partyName,omitempty"`
	Perspective    Perspective      `json:"perspective"`
	Currency       string           `json:"currency"`
	From           string           `json:"from,omitempty"`
	To             string           `json:"to,omitempty"`
	OpeningBalance decimal.Decimal  `json:"openingBalance"`
	BroughtForward decimal.Decimal  `json:"broughtForward"`
	CarriedForward decimal.Decimal  `json:"carriedForward"`
	ClosingBalance decimal.Decimal  `json:"closingBalance"`
	Rows           []StatementRow   `json:"rows"`
	Summary        StatementSummary `json:"summary"`
	Issues         []Issue          `json:"issues,omitempty"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// StatementRequest selects the party and window of a statement
type StatementRequest struct {
	PartyID     string      `json:"partyId"`
	Perspective Perspective `json:"perspective,omitempty"` // empty uses the party default
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
}

// RunningBalanceRequest folds a caller-supplied history without touching storage
type RunningBalanceRequest struct {
	Perspective Perspective     `json:"perspective"`
	SeedBalance decimal.Decimal `json:"seedBalance"`
	History     []Transaction   `json:"history"`
}

// RunningBalanceResult holds one balance per history position
type RunningBalanceResult struct {
	Perspective    Perspective       `json:"perspective"`
	Balances       []decimal.Decimal `json:"balances"`
	ClosingBalance decimal.Decimal   `json:"closingBalance"`
	Issues         []Issue           `json:"issues,omitempty"`
}

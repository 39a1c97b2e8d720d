package ledger

import (
	"context"
)

// Repository defines the interface for transaction history storage
type Repository interface {
	// Create a transaction for a party. ID and timestamps are assigned by the repository.
	CreateTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)

	// Get a single transaction of a party
	GetTransaction(ctx context.Context, partyID string, transactionID string) (*Transaction, error)

	// List a party's transactions in chronological order, restricted to window
	ListTransactions(ctx context.Context, partyID string, window DateRange) ([]Transaction, error)

	// Delete a transaction
	DeleteTransaction(ctx context.Context, partyID string, date string, transactionID string) error
}

// PartyDirectory resolves the ledger account of a party
type PartyDirectory interface {
	LedgerAccount(ctx context.Context, partyID string) (Account, error)
}

package party

import (
	"context"
)

// Repository defines the interface for party data operations
type Repository interface {
	// Create a new party. The repository assigns the ID.
	CreateParty(ctx context.Context, party *Party) (*Party, error)

	// Get a party by ID
	GetParty(ctx context.Context, partyID string) (*Party, error)

	// List parties ordered by kind and name, optionally restricted to one kind
	ListParties(ctx context.Context, kind Kind) ([]*Party, error)

	// Replace a party's profile
	UpdateParty(ctx context.Context, party *Party) (*Party, error)

	// Delete a party. Fails with a conflict if the party still has transactions.
	DeleteParty(ctx context.Context, partyID string) error
}

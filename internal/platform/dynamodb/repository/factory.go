package repository

import (
	"log/slog"

	"github.com/hirosato/trade-ledger/backend/internal/platform/dynamodb/client"
)

// Factory creates repository instances sharing one client and table
type Factory struct {
	client    client.Client
	tableName string
	logger    *slog.Logger
}

// NewFactory creates a new repository factory
func NewFactory(client client.Client, tableName string, logger *slog.Logger) *Factory {
	return &Factory{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// TransactionRepository returns an implementation of the ledger.Repository interface
func (f *Factory) TransactionRepository() *DynamoDBTransactionRepository {
	return NewDynamoDBTransactionRepository(f.client, f.tableName, f.logger)
}

// PartyRepository returns an implementation of the party.Repository interface
func (f *Factory) PartyRepository() *DynamoDBPartyRepository {
	return NewDynamoDBPartyRepository(f.client, f.tableName, f.logger, f.TransactionRepository())
}

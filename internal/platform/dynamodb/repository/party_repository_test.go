package repository

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/hirosato/trade-ledger/backend/internal/domain/errors"
	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
)

func newTestRepositories() (*TestClient, *DynamoDBPartyRepository, *DynamoDBTransactionRepository) {
	client := NewTestClient()
	factory := NewFactory(client, "test-table", slog.Default())
	return client, factory.PartyRepository(), factory.TransactionRepository()
}

func newParty(kind party.Kind, name string) *party.Party {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &party.Party{
		Kind:           kind,
		Name:           name,
		OpeningBalance: amount("125.50"),
		Currency:       "INR",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestCreateAndGetParty(t *testing.T) {
	client, repo, _ := newTestRepositories()

	created, err := repo.CreateParty(context.Background(), newParty(party.Driver, "Suresh"))
	require.NoError(t, err)
	require.NotEmpty(t, created.PartyID)

	stored := client.items["PARTY#"+created.PartyID+"|PROFILE"]
	require.NotNil(t, stored)
	assert.Equal(t, "PARTIES", stringAttr(stored, "GSI1PK"))
	assert.Equal(t, "DRIVER#Suresh#"+created.PartyID, stringAttr(stored, "GSI1SK"))
	assert.Equal(t, "125.5", stringAttr(stored, "openingBalance"))

	got, err := repo.GetParty(context.Background(), created.PartyID)
	require.NoError(t, err)
	assert.Equal(t, party.Driver, got.Kind)
	assert.Equal(t, "Suresh", got.Name)
	assert.True(t, got.OpeningBalance.Equal(amount("125.5")))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	_, err = repo.CreateParty(context.Background(), created)
	assert.True(t, stderrors.Is(err, commonErrors.ErrConflict))

	_, err = repo.GetParty(context.Background(), "missing")
	assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
}

func TestGetParty_CorruptOpeningBalance(t *testing.T) {
	client, repo, _ := newTestRepositories()
	created, err := repo.CreateParty(context.Background(), newParty(party.Customer, "Fresh Mart"))
	require.NoError(t, err)

	client.items["PARTY#"+created.PartyID+"|PROFILE"]["openingBalance"] = &types.AttributeValueMemberS{Value: "lots"}

	_, err = repo.GetParty(context.Background(), created.PartyID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
}

func TestListParties(t *testing.T) {
	_, repo, _ := newTestRepositories()
	for _, p := range []*party.Party{
		newParty(party.Supplier, "Kolar Farms"),
		newParty(party.Customer, "Fresh Mart"),
		newParty(party.Customer, "Anand Stores"),
		newParty(party.Driver, "Suresh"),
	} {
		_, err := repo.CreateParty(context.Background(), p)
		require.NoError(t, err)
	}

	all, err := repo.ListParties(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Anand Stores", all[0].Name)
	assert.Equal(t, "Fresh Mart", all[1].Name)
	assert.Equal(t, party.Driver, all[2].Kind)
	assert.Equal(t, party.Supplier, all[3].Kind)

	repo.pageSize = 1
	customers, err := repo.ListParties(context.Background(), party.Customer)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Anand Stores", customers[0].Name)

	companies, err := repo.ListParties(context.Background(), party.Company)
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestUpdateParty(t *testing.T) {
	client, repo, _ := newTestRepositories()
	created, err := repo.CreateParty(context.Background(), newParty(party.Customer, "Fresh Mart"))
	require.NoError(t, err)

	created.Name = "Fresh Mart Wholesale"
	created.OpeningBalance = amount("-10")
	_, err = repo.UpdateParty(context.Background(), created)
	require.NoError(t, err)

	stored := client.items["PARTY#"+created.PartyID+"|PROFILE"]
	assert.Equal(t, "CUSTOMER#Fresh Mart Wholesale#"+created.PartyID, stringAttr(stored, "GSI1SK"))
	assert.Equal(t, "-10", stringAttr(stored, "openingBalance"))

	missing := newParty(party.Customer, "Ghost")
	missing.PartyID = "missing"
	_, err = repo.UpdateParty(context.Background(), missing)
	assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
}

func TestDeleteParty(t *testing.T) {
	_, repo, txRepo := newTestRepositories()
	created, err := repo.CreateParty(context.Background(), newParty(party.Driver, "Suresh"))
	require.NoError(t, err)
	entries := seedTransactions(t, txRepo, created.PartyID,
		ledger.Transaction{Date: "2024-01-01", Type: ledger.Payment, TotalAmount: amount("50")})

	err = repo.DeleteParty(context.Background(), created.PartyID)
	assert.True(t, stderrors.Is(err, commonErrors.ErrConflict))

	require.NoError(t, txRepo.DeleteTransaction(context.Background(), created.PartyID, "2024-01-01", entries[0].TransactionID))
	require.NoError(t, repo.DeleteParty(context.Background(), created.PartyID))

	_, err = repo.GetParty(context.Background(), created.PartyID)
	assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))

	err = repo.DeleteParty(context.Background(), created.PartyID)
	assert.True(t, stderrors.Is(err, commonErrors.ErrNotFound))
}

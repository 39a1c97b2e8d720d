package ledger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
)

// Test implementations of the storage interfaces
type testRepository struct {
	entries []Transaction
	seq     int
	// keepOrder stores entries as inserted instead of sorting them by date
	keepOrder bool
}

func (r *testRepository) CreateTransaction(ctx context.Context, tx *Transaction) (*Transaction, error) {
	r.seq++
	if tx.TransactionID == "" {
		tx.TransactionID = fmt.Sprintf("t-%d", r.seq)
	}
	tx.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.entries = append(r.entries, *tx)
	if !r.keepOrder {
		sort.SliceStable(r.entries, func(i, j int) bool { return r.entries[i].Date < r.entries[j].Date })
	}
	return tx, nil
}

func (r *testRepository) GetTransaction(ctx context.Context, partyID string, transactionID string) (*Transaction, error) {
	for _, entry := range r.entries {
		if entry.PartyID == partyID && entry.TransactionID == transactionID {
			found := entry
			return &found, nil
		}
	}
	return nil, errors.NewNotFoundError("transaction not found")
}

func (r *testRepository) ListTransactions(ctx context.Context, partyID string, window DateRange) ([]Transaction, error) {
	var out []Transaction
	for _, entry := range r.entries {
		if entry.PartyID == partyID && window.Contains(entry.Date) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *testRepository) DeleteTransaction(ctx context.Context, partyID string, date string, transactionID string) error {
	for i, entry := range r.entries {
		if entry.PartyID == partyID && entry.TransactionID == transactionID && entry.Date == date {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("transaction not found")
}

type testDirectory map[string]Account

func (d testDirectory) LedgerAccount(ctx context.Context, partyID string) (Account, error) {
	account, ok := d[partyID]
	if !ok {
		return Account{}, errors.NewNotFoundError("party not found")
	}
	return account, nil
}

func newTestService(assertOrder bool) (*Service, *testRepository) {
	repo := &testRepository{}
	parties := testDirectory{
		"driver-1":   {PartyID: "driver-1", Name: "Suresh", Perspective: Payable, Currency: "INR", OpeningBalance: dec("0")},
		"customer-1": {PartyID: "customer-1", Name: "Fresh Mart", Perspective: Receivable, Currency: "INR", OpeningBalance: dec("100")},
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	service := NewService(repo, parties, logger, assertOrder)
	service.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return service, repo
}

func record(t *testing.T, s *Service, partyID string, entry Transaction) *Transaction {
	t.Helper()
	created, err := s.RecordTransaction(context.Background(), partyID, &entry)
	require.NoError(t, err)
	return created
}

func TestService_RecordTransaction(t *testing.T) {
	s, repo := newTestService(true)

	t.Run("normalises type and assigns party", func(t *testing.T) {
		entry := dated("2024-01-01", tx(" buy ", "1000"))
		created, err := s.RecordTransaction(context.Background(), "driver-1", &entry)

		require.NoError(t, err)
		assert.Equal(t, Buy, created.Type)
		assert.Equal(t, "driver-1", created.PartyID)
		assert.NotEmpty(t, created.TransactionID)
		assert.Len(t, repo.entries, 1)
	})

	t.Run("caller supplied id and timestamp are replaced", func(t *testing.T) {
		var entry Transaction
		require.NoError(t, json.Unmarshal([]byte(`{"transactionId":"my-id","createdAt":"2020-01-01T00:00:00Z","date":"2024-01-01","type":"BUY","totalAmount":100}`), &entry))

		created, err := s.RecordTransaction(context.Background(), "driver-1", &entry)

		require.NoError(t, err)
		assert.NotEqual(t, "my-id", created.TransactionID)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), created.CreatedAt)
		require.NoError(t, s.DeleteTransaction(context.Background(), "driver-1", created.TransactionID))
		assert.Len(t, repo.entries, 1)
	})

	t.Run("unknown party", func(t *testing.T) {
		entry := dated("2024-01-01", tx(Buy, "1"))
		_, err := s.RecordTransaction(context.Background(), "nobody", &entry)
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	})

	t.Run("date is required", func(t *testing.T) {
		entry := tx(Buy, "1")
		_, err := s.RecordTransaction(context.Background(), "driver-1", &entry)
		assert.True(t, stderrors.Is(err, errors.ErrValidation))
	})

	t.Run("malformed entries are refused", func(t *testing.T) {
		entry := dated("2024-01-02", sale("100", "90", "20"))
		_, err := s.RecordTransaction(context.Background(), "driver-1", &entry)

		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrMalformedEntry))

		var appErr errors.AppError
		require.True(t, stderrors.As(err, &appErr))
		issues, ok := appErr.Details["issues"].([]Issue)
		require.True(t, ok)
		assert.Equal(t, ReasonOverSettled, issues[0].Reason)
		assert.Len(t, repo.entries, 1)
	})

	t.Run("credit note may be recorded against any party", func(t *testing.T) {
		entry := dated("2024-01-03", tx(CreditNote, "10"))
		_, err := s.RecordTransaction(context.Background(), "driver-1", &entry)
		assert.NoError(t, err)
	})
}

func TestService_GetStatement(t *testing.T) {
	s, _ := newTestService(true)
	record(t, s, "driver-1", dated("2024-01-01", tx(Buy, "1000")))
	record(t, s, "driver-1", dated("2024-01-10", sale("1500", "500", "500")))
	record(t, s, "driver-1", dated("2024-02-01", tx(Payment, "200")))

	t.Run("uses the party perspective", func(t *testing.T) {
		statement, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1"})

		require.NoError(t, err)
		assert.Equal(t, Payable, statement.Perspective)
		require.Len(t, statement.Rows, 3)
		assertDecimal(t, "-500", statement.Rows[2].Balance)
		assertDecimal(t, "-300", statement.ClosingBalance)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), statement.GeneratedAt)
	})

	t.Run("perspective override", func(t *testing.T) {
		statement, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1", Perspective: Receivable})

		require.NoError(t, err)
		assert.Equal(t, Receivable, statement.Perspective)
		assertDecimal(t, "300", statement.ClosingBalance)
	})

	t.Run("window is applied after folding", func(t *testing.T) {
		statement, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1", From: "2024-01-05"})

		require.NoError(t, err)
		require.Len(t, statement.Rows, 2)
		assertDecimal(t, "-1000", statement.BroughtForward)
	})

	t.Run("bad window", func(t *testing.T) {
		_, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1", From: "2024-02-01", To: "2024-01-01"})
		assert.True(t, stderrors.Is(err, errors.ErrValidation))

		_, err = s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1", From: "01-01-2024"})
		assert.True(t, stderrors.Is(err, errors.ErrValidation))
	})

	t.Run("bad perspective", func(t *testing.T) {
		_, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1", Perspective: "both"})
		assert.True(t, stderrors.Is(err, errors.ErrValidation))
	})

	t.Run("unknown party", func(t *testing.T) {
		_, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "nobody"})
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	})

	t.Run("opening balance seeds the fold", func(t *testing.T) {
		record(t, s, "customer-1", dated("2024-01-01", tx(AdvancePayment, "300")))

		statement, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "customer-1"})

		require.NoError(t, err)
		assertDecimal(t, "100", statement.Rows[0].Balance)
		assertDecimal(t, "400", statement.ClosingBalance)
	})
}

func TestService_GetStatement_OrderAssertion(t *testing.T) {
	build := func(assertOrder bool) *Service {
		s, repo := newTestService(assertOrder)
		repo.keepOrder = true
		record(t, s, "driver-1", dated("2024-02-01", tx(Buy, "10")))
		record(t, s, "driver-1", dated("2024-01-01", tx(Payment, "5")))
		return s
	}

	_, err := build(true).GetStatement(context.Background(), StatementRequest{PartyID: "driver-1"})
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	statement, err := build(false).GetStatement(context.Background(), StatementRequest{PartyID: "driver-1"})
	require.NoError(t, err)
	assertDecimal(t, "-5", statement.ClosingBalance)
}

func TestService_ListAndDeleteTransactions(t *testing.T) {
	s, _ := newTestService(true)
	first := record(t, s, "driver-1", dated("2024-01-01", tx(Buy, "1000")))
	record(t, s, "driver-1", dated("2024-01-10", tx(Payment, "200")))

	listed, err := s.ListTransactions(context.Background(), "driver-1", DateRange{From: "2024-01-05"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, Payment, listed[0].Type)

	_, err = s.ListTransactions(context.Background(), "nobody", DateRange{})
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.DeleteTransaction(context.Background(), "driver-1", first.TransactionID))

	statement, err := s.GetStatement(context.Background(), StatementRequest{PartyID: "driver-1"})
	require.NoError(t, err)
	require.Len(t, statement.Rows, 1)
	assertDecimal(t, "200", statement.ClosingBalance)

	err = s.DeleteTransaction(context.Background(), "driver-1", first.TransactionID)
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
}

func TestService_ComputeRunningBalances(t *testing.T) {
	s, _ := newTestService(true)

	result, err := s.ComputeRunningBalances(RunningBalanceRequest{
		Perspective: Payable,
		SeedBalance: dec("0"),
		History: []Transaction{
			dated("2024-01-01", tx(Buy, "1000")),
			dated("2024-01-02", sale("1500", "500", "500")),
			dated("2024-01-03", tx(Payment, "200")),
			dated("2024-01-04", tx(DebitNote, "5")),
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Balances, 4)
	assertDecimal(t, "-300", result.Balances[3])
	assertDecimal(t, "-300", result.ClosingBalance)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, ReasonUnrecognizedType, result.Issues[0].Reason)

	_, err = s.ComputeRunningBalances(RunningBalanceRequest{Perspective: ""})
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	_, err = s.ComputeRunningBalances(RunningBalanceRequest{
		Perspective: Receivable,
		History:     []Transaction{dated("2024-02-01", tx(Buy, "1")), dated("2024-01-01", tx(Buy, "1"))},
	})
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hirosato/trade-ledger/backend/internal/common/utils"
	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
)

// Service provides ledger business logic on top of stored transaction history
type Service struct {
	repo        Repository
	parties     PartyDirectory
	logger      *slog.Logger
	assertOrder bool
	now         func() time.Time
}

// NewService creates a new ledger service.
// With assertOrder set, statements fail when the stored history is out of date order.
func NewService(repo Repository, parties PartyDirectory, logger *slog.Logger, assertOrder bool) *Service {
	return &Service{
		repo:        repo,
		parties:     parties,
		logger:      logger,
		assertOrder: assertOrder,
		now:         time.Now,
	}
}

// RecordTransaction stores a new transaction for a party
func (s *Service) RecordTransaction(ctx context.Context, partyID string, tx *Transaction) (*Transaction, error) {
	if _, err := s.parties.LedgerAccount(ctx, partyID); err != nil {
		return nil, err
	}

	// IDs and timestamps are assigned by storage, never taken from the caller
	tx.TransactionID = ""
	tx.CreatedAt = time.Time{}
	tx.PartyID = partyID
	tx.Type = TransactionType(strings.ToUpper(strings.TrimSpace(string(tx.Type))))
	if err := utils.ValidateRequiredString(tx.Date, "date"); err != nil {
		return nil, err
	}
	if issues := Validate("", []Transaction{*tx}); len(issues) > 0 {
		return nil, errors.NewMalformedEntryError("transaction is not valid").WithDetail("issues", issues)
	}

	created, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		"partyId", partyID,
		"transactionId", created.TransactionID,
		"type", created.Type,
		"totalAmount", created.TotalAmount.String())
	return created, nil
}

// ListTransactions returns a party's transactions in chronological order
func (s *Service) ListTransactions(ctx context.Context, partyID string, window DateRange) ([]Transaction, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	if _, err := s.parties.LedgerAccount(ctx, partyID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, partyID, window)
}

// DeleteTransaction removes a transaction. Statements are recomputed from the remaining history.
func (s *Service) DeleteTransaction(ctx context.Context, partyID string, transactionID string) error {
	tx, err := s.repo.GetTransaction(ctx, partyID, transactionID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, partyID, tx.Date, transactionID); err != nil {
		return err
	}

	s.logger.Info("transaction deleted", "partyId", partyID, "transactionId", transactionID)
	return nil
}

// GetStatement builds the running-balance statement of a party
func (s *Service) GetStatement(ctx context.Context, req StatementRequest) (*Statement, error) {
	window := DateRange{From: req.From, To: req.To}
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	account, err := s.parties.LedgerAccount(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	perspective := account.Perspective
	if req.Perspective != "" {
		perspective = req.Perspective
	}
	if !perspective.IsValid() {
		return nil, errors.NewValidationError("perspective must be payable or receivable")
	}

	// The whole history is needed even for a narrow window; balances depend on every prior entry.
	history, err := s.repo.ListTransactions(ctx, req.PartyID, DateRange{})
	if err != nil {
		return nil, err
	}

	if s.assertOrder {
		if err := CheckChronological(history); err != nil {
			s.logger.Error("history out of order", "partyId", req.PartyID, "error", err)
			return nil, err
		}
	}

	statement := BuildStatement(account, perspective, history, window, s.now())
	if len(statement.Issues) > 0 {
		s.logger.Warn("statement built from malformed entries",
			"partyId", req.PartyID,
			"issues", len(statement.Issues))
	}
	return statement, nil
}

// ComputeRunningBalances folds a caller-supplied history
func (s *Service) ComputeRunningBalances(req RunningBalanceRequest) (*RunningBalanceResult, error) {
	if !req.Perspective.IsValid() {
		return nil, errors.NewValidationError("perspective must be payable or receivable")
	}
	if s.assertOrder {
		if err := CheckChronological(req.History); err != nil {
			return nil, err
		}
	}

	return &RunningBalanceResult{
		Perspective:    req.Perspective,
		Balances:       RunningBalances(req.Perspective, req.SeedBalance, req.History),
		ClosingBalance: ClosingBalance(req.Perspective, req.SeedBalance, req.History),
		Issues:         Validate(req.Perspective, req.History),
	}, nil
}

func validateWindow(window DateRange) error {
	for _, d := range []string{window.From, window.To} {
		if d == "" {
			continue
		}
		if err := utils.ValidateISODate(d); err != nil {
			return err
		}
	}
	if window.From != "" && window.To != "" && window.From > window.To {
		return errors.NewValidationError("from must not be after to")
	}
	return nil
}

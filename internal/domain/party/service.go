package party

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
)

// Service provides party-related business logic
type Service struct {
	repo     Repository
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

// NewService creates a new party service. New parties are kept in currency.
func NewService(repo Repository, logger *slog.Logger, currency string) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		currency: currency,
		now:      time.Now,
	}
}

// CreateParty creates a new party
func (s *Service) CreateParty(ctx context.Context, req *CreatePartyRequest) (*Party, error) {
	kind := Kind(strings.ToUpper(strings.TrimSpace(string(req.Kind))))
	if !kind.IsValid() {
		return nil, errors.NewValidationError("kind must be one of CUSTOMER, DRIVER, COMPANY, SUPPLIER")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("name is required")
	}
	if kind != Driver && req.VehicleNumber != "" {
		return nil, errors.NewValidationError("vehicleNumber only applies to drivers")
	}
	if !ledger.WithinBounds(req.OpeningBalance) {
		return nil, errors.NewValidationError("openingBalance is out of range")
	}

	now := s.now().UTC()
	party := &Party{
		Kind:           kind,
		Name:           name,
		Phone:          strings.TrimSpace(req.Phone),
		VehicleNumber:  strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		OpeningBalance: req.OpeningBalance,
		Currency:       s.currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.CreateParty(ctx, party)
	if err != nil {
		return nil, err
	}

	s.logger.Info("party created", "partyId", created.PartyID, "kind", created.Kind)
	return created, nil
}

// GetParty retrieves a party by ID
func (s *Service) GetParty(ctx context.Context, partyID string) (*Party, error) {
	if partyID == "" {
		return nil, errors.NewValidationError("partyId is required")
	}
	return s.repo.GetParty(ctx, partyID)
}

// ListParties lists parties, optionally of a single kind
func (s *Service) ListParties(ctx context.Context, req *ListPartiesRequest) (*PartyListResponse, error) {
	kind := Kind(strings.ToUpper(strings.TrimSpace(string(req.Kind))))
	if kind != "" && !kind.IsValid() {
		return nil, errors.NewValidationError("unknown party kind")
	}

	parties, err := s.repo.ListParties(ctx, kind)
	if err != nil {
		return nil, err
	}
	if parties == nil {
		parties = []*Party{}
	}

	return &PartyListResponse{
		Parties:    parties,
		TotalCount: len(parties),
	}, nil
}

// UpdateParty applies the set fields of req to a party
func (s *Service) UpdateParty(ctx context.Context, partyID string, req *UpdatePartyRequest) (*Party, error) {
	party, err := s.GetParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.NewValidationError("name must not be empty")
		}
		party.Name = name
	}
	if req.Phone != nil {
		party.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.VehicleNumber != nil {
		if party.Kind != Driver && *req.VehicleNumber != "" {
			return nil, errors.NewValidationError("vehicleNumber only applies to drivers")
		}
		party.VehicleNumber = strings.ToUpper(strings.TrimSpace(*req.VehicleNumber))
	}
	if req.OpeningBalance != nil {
		if !ledger.WithinBounds(*req.OpeningBalance) {
			return nil, errors.NewValidationError("openingBalance is out of range")
		}
		party.OpeningBalance = *req.OpeningBalance
	}
	party.UpdatedAt = s.now().UTC()

	updated, err := s.repo.UpdateParty(ctx, party)
	if err != nil {
		return nil, err
	}

	s.logger.Info("party updated", "partyId", partyID)
	return updated, nil
}

// DeleteParty deletes a party that has no transactions
func (s *Service) DeleteParty(ctx context.Context, partyID string) error {
	if partyID == "" {
		return errors.NewValidationError("partyId is required")
	}
	if err := s.repo.DeleteParty(ctx, partyID); err != nil {
		return err
	}

	s.logger.Info("party deleted", "partyId", partyID)
	return nil
}

// LedgerAccount resolves the ledger account of a party for statements
func (s *Service) LedgerAccount(ctx context.Context, partyID string) (ledger.Account, error) {
	party, err := s.GetParty(ctx, partyID)
	if err != nil {
		return ledger.Account{}, err
	}

	return ledger.Account{
		PartyID:        party.PartyID,
		Name:           party.Name,
		OpeningBalance: party.OpeningBalance,
		Perspective:    party.Kind.DefaultPerspective(),
		Currency:       party.Currency,
	}, nil
}

var _ ledger.PartyDirectory = (*Service)(nil)

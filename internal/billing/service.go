package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service manages bill records. Read paths degrade to empty results on store
// failure; write paths return the error.
type Service struct {
	repo      Repository
	numbering *Numbering
	logger    *slog.Logger
	newID     func() string
}

// NewService constructs the bill record manager.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		numbering: NewNumbering(repo, logger),
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Numbering exposes the bill numbering service sharing this repository.
func (s *Service) Numbering() *Numbering {
	return s.numbering
}

// NextBillNumber issues the next bill number for owner.
func (s *Service) NextBillNumber(ctx context.Context, owner string) (string, error) {
	return s.numbering.Next(ctx, owner)
}

// ListBills returns every bill with items, newest first. On store failure it
// logs and returns an empty slice.
func (s *Service) ListBills(ctx context.Context, owner string) []Bill {
	bills, err := s.repo.ListBills(ctx, owner)
	if err != nil {
		s.logger.Error("list bills failed", slog.String("owner", owner), slog.Any("error", err))
		return []Bill{}
	}
	return bills
}

// GetBill returns a single bill with its items.
func (s *Service) GetBill(ctx context.Context, owner, id string) (*Bill, error) {
	bill, err := s.repo.GetBill(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	return bill, nil
}

// SaveBill upserts the header, then replaces the item set. The phases are
// separate statements: if the item replace fails the header stays written.
// Totals are recomputed and blank ids assigned before anything is written.
func (s *Service) SaveBill(ctx context.Context, owner string, bill Bill) (*Bill, error) {
	if bill.ID == "" {
		bill.ID = s.newID()
	}
	items := make([]BillItem, len(bill.Items))
	copy(items, bill.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
	}
	bill.Items = items
	bill.Recalculate()

	if err := s.repo.UpsertBill(ctx, owner, bill); err != nil {
		return nil, fmt.Errorf("save bill %s: header: %w", bill.ID, err)
	}
	if err := s.repo.DeleteItems(ctx, owner, bill.ID); err != nil {
		s.logger.Warn("bill header saved but items not replaced", slog.String("bill_id", bill.ID), slog.Any("error", err))
		return nil, fmt.Errorf("save bill %s: delete items: %w", bill.ID, err)
	}
	if err := s.repo.InsertItems(ctx, bill.ID, bill.Items); err != nil {
		s.logger.Warn("bill header saved with items removed", slog.String("bill_id", bill.ID), slog.Any("error", err))
		return nil, fmt.Errorf("save bill %s: insert items: %w", bill.ID, err)
	}

	s.logger.Info("bill saved",
		slog.String("bill_id", bill.ID),
		slog.String("bill_number", bill.BillNumber),
		slog.Int("items", len(bill.Items)))
	return &bill, nil
}

// DeleteBill removes a bill; its items cascade in the store.
func (s *Service) DeleteBill(ctx context.Context, owner, id string) error {
	if err := s.repo.DeleteBill(ctx, owner, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.logger.Info("bill deleted", slog.String("bill_id", id))
	return nil
}

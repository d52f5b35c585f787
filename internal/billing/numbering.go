package billing

import (
	"context"
	"fmt"
	"log/slog"
)

// CounterFloor is the counter value a new account starts from, so the first
// issued number is VS1001.
const CounterFloor int64 = 1000

// Numbering issues sequential bill numbers per owning account. Atomicity is
// delegated to the store's next_bill_number function.
type Numbering struct {
	repo   Repository
	logger *slog.Logger
}

// NewNumbering constructs the numbering service.
func NewNumbering(repo Repository, logger *slog.Logger) *Numbering {
	if logger == nil {
		logger = slog.Default()
	}
	return &Numbering{repo: repo, logger: logger}
}

// Next returns the next bill number for owner. Store errors are returned as is;
// a bill must never be created without a confirmed number.
func (n *Numbering) Next(ctx context.Context, owner string) (string, error) {
	number, err := n.repo.NextBillNumber(ctx, owner)
	if err != nil {
		return "", err
	}
	if _, ok := ParseBillNumber(number); !ok {
		return "", fmt.Errorf("next bill number: store returned malformed value %q", number)
	}
	return number, nil
}

// Reconcile raises owner's counter to at least the highest stored bill number.
func (n *Numbering) Reconcile(ctx context.Context, owner string) error {
	updated, err := n.repo.ReconcileCounter(ctx, owner)
	if err != nil {
		return err
	}
	if updated > 0 {
		n.logger.Info("bill counter reconciled", slog.String("owner", owner))
	}
	return nil
}

// ReconcileAll reconciles every owner's counter and reports how many moved.
func (n *Numbering) ReconcileAll(ctx context.Context) (int64, error) {
	return n.repo.ReconcileAllCounters(ctx)
}

package billing

import (
	"context"
	"sync"

	"github.com/vsbilling/vsbilling/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type storedBill struct {
	owner string
	bill  Bill
}

type mockRepository struct {
	mu       sync.Mutex
	bills    map[string]storedBill
	items    map[string][]BillItem
	order    []string
	counters map[string]int64

	// Error injection
	listError        error
	upsertError      error
	deleteItemsError error
	insertItemsError error
	nextNumberError  error
	nextNumberValue  string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		bills:    make(map[string]storedBill),
		items:    make(map[string][]BillItem),
		counters: make(map[string]int64),
	}
}

func (m *mockRepository) snapshot(owner string, filter func(Bill) bool, withItems bool) []Bill {
	out := []Bill{}
	for _, id := range m.order {
		sb, ok := m.bills[id]
		if !ok || sb.owner != owner || !filter(sb.bill) {
			continue
		}
		b := sb.bill
		b.Items = []BillItem{}
		if withItems {
			b.Items = append(b.Items, m.items[id]...)
		}
		out = append(out, b)
	}
	SortNewestFirst(out)
	return out
}

func (m *mockRepository) ListBills(ctx context.Context, owner string) ([]Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.snapshot(owner, func(Bill) bool { return true }, true), nil
}

func (m *mockRepository) ListBillsBetween(ctx context.Context, owner, start, end string) ([]Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.snapshot(owner, func(b Bill) bool { return b.BillDate >= start && b.BillDate <= end }, true), nil
}

func (m *mockRepository) ListBillsByType(ctx context.Context, owner string, billType BillType) ([]Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.snapshot(owner, func(b Bill) bool { return b.BillType == billType }, false), nil
}

func (m *mockRepository) GetBill(ctx context.Context, owner, id string) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sb, ok := m.bills[id]
	if !ok || sb.owner != owner {
		return nil, shared.ErrNotFound
	}
	b := sb.bill
	b.Items = append([]BillItem{}, m.items[id]...)
	return &b, nil
}

func (m *mockRepository) UpsertBill(ctx context.Context, owner string, bill Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertError != nil {
		return m.upsertError
	}
	if existing, ok := m.bills[bill.ID]; ok && existing.owner != owner {
		return shared.ErrNotFound
	}
	if _, ok := m.bills[bill.ID]; !ok {
		m.order = append(m.order, bill.ID)
	}
	header := bill
	header.Items = nil
	m.bills[bill.ID] = storedBill{owner: owner, bill: header}
	return nil
}

func (m *mockRepository) DeleteItems(ctx context.Context, owner, billID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteItemsError != nil {
		return m.deleteItemsError
	}
	delete(m.items, billID)
	return nil
}

func (m *mockRepository) InsertItems(ctx context.Context, billID string, items []BillItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertItemsError != nil {
		return m.insertItemsError
	}
	m.items[billID] = append([]BillItem{}, items...)
	return nil
}

func (m *mockRepository) DeleteBill(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sb, ok := m.bills[id]
	if !ok || sb.owner != owner {
		return shared.ErrNotFound
	}
	delete(m.bills, id)
	delete(m.items, id)
	return nil
}

func (m *mockRepository) NextBillNumber(ctx context.Context, owner string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nextNumberError != nil {
		return "", m.nextNumberError
	}
	if m.nextNumberValue != "" {
		return m.nextNumberValue, nil
	}
	if _, ok := m.counters[owner]; !ok {
		m.counters[owner] = CounterFloor
	}
	m.counters[owner]++
	return FormatBillNumber(m.counters[owner]), nil
}

func (m *mockRepository) ReconcileCounter(ctx context.Context, owner string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconcileLocked(owner), nil
}

func (m *mockRepository) ReconcileAllCounters(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owners := map[string]struct{}{}
	for _, sb := range m.bills {
		owners[sb.owner] = struct{}{}
	}
	var moved int64
	for owner := range owners {
		moved += m.reconcileLocked(owner)
	}
	return moved, nil
}

func (m *mockRepository) reconcileLocked(owner string) int64 {
	highest := CounterFloor
	found := false
	for _, sb := range m.bills {
		if sb.owner != owner {
			continue
		}
		if n, ok := ParseBillNumber(sb.bill.BillNumber); ok {
			found = true
			if n > highest {
				highest = n
			}
		}
	}
	if !found {
		return 0
	}
	current, ok := m.counters[owner]
	if ok && current >= highest {
		return 0
	}
	m.counters[owner] = highest
	return 1
}

var _ Repository = (*mockRepository)(nil)

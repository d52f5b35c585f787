package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vsbilling/vsbilling/internal/shared"
)

// Repository is the persistence contract for bills, items and the bill counter.
type Repository interface {
	ListBills(ctx context.Context, owner string) ([]Bill, error)
	ListBillsBetween(ctx context.Context, owner, start, end string) ([]Bill, error)
	ListBillsByType(ctx context.Context, owner string, billType BillType) ([]Bill, error)
	GetBill(ctx context.Context, owner, id string) (*Bill, error)
	UpsertBill(ctx context.Context, owner string, bill Bill) error
	DeleteItems(ctx context.Context, owner, billID string) error
	InsertItems(ctx context.Context, billID string, items []BillItem) error
	DeleteBill(ctx context.Context, owner, id string) error
	NextBillNumber(ctx context.Context, owner string) (string, error)
	ReconcileCounter(ctx context.Context, owner string) (int64, error)
	ReconcileAllCounters(ctx context.Context) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

type repository struct {
	db dbtx
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const billColumns = `id, bill_number, to_char(bill_date, 'YYYY-MM-DD'), bill_type, name, mobile,
	village_city, subtotal::text, discount::text, final_total::text`

func (r *repository) ListBills(ctx context.Context, owner string) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE owner_id = $1
		ORDER BY bill_date DESC, created_at DESC`
	return r.queryBills(ctx, true, query, owner)
}

func (r *repository) ListBillsBetween(ctx context.Context, owner, start, end string) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE owner_id = $1 AND bill_date >= $2::date AND bill_date <= $3::date
		ORDER BY bill_date DESC, created_at DESC`
	return r.queryBills(ctx, true, query, owner, start, end)
}

// ListBillsByType returns headers only; aggregation never needs line items.
func (r *repository) ListBillsByType(ctx context.Context, owner string, billType BillType) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE owner_id = $1 AND bill_type = $2
		ORDER BY bill_date DESC, created_at DESC`
	return r.queryBills(ctx, false, query, owner, string(billType))
}

func (r *repository) GetBill(ctx context.Context, owner, id string) (*Bill, error) {
	bills, err := r.queryBills(ctx, true, `SELECT `+billColumns+` FROM bills WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, shared.ErrNotFound
	}
	return &bills[0], nil
}

func (r *repository) queryBills(ctx context.Context, withItems bool, query string, args ...interface{}) ([]Bill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	bills := []Bill{}
	for rows.Next() {
		var (
			b                            Bill
			billType                     string
			subtotal, discount, finalStr string
		)
		if err := rows.Scan(&b.ID, &b.BillNumber, &b.BillDate, &billType, &b.Name, &b.Mobile,
			&b.VillageCity, &subtotal, &discount, &finalStr); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.BillType = BillType(billType)
		if b.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("bill %s subtotal: %w", b.ID, err)
		}
		if b.Discount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("bill %s discount: %w", b.ID, err)
		}
		if b.FinalTotal, err = decimal.NewFromString(finalStr); err != nil {
			return nil, fmt.Errorf("bill %s final total: %w", b.ID, err)
		}
		b.Items = []BillItem{}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	if !withItems || len(bills) == 0 {
		return bills, nil
	}
	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repository) attachItems(ctx context.Context, bills []Bill) error {
	ids := make([]string, len(bills))
	index := make(map[string]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, bill_id, item_name, quantity::text, price_per_item::text, total_price::text
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY bill_id, position, id`, ids)
	if err != nil {
		return fmt.Errorf("query bill items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                 BillItem
			billID               string
			qty, price, totalStr string
		)
		if err := rows.Scan(&item.ID, &billID, &item.ItemName, &qty, &price, &totalStr); err != nil {
			return fmt.Errorf("scan bill item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(qty); err != nil {
			return fmt.Errorf("item %s quantity: %w", item.ID, err)
		}
		if item.PricePerItem, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("item %s price: %w", item.ID, err)
		}
		if item.TotalPrice, err = decimal.NewFromString(totalStr); err != nil {
			return fmt.Errorf("item %s total: %w", item.ID, err)
		}
		if i, ok := index[billID]; ok {
			bills[i].Items = append(bills[i].Items, item)
		}
	}
	return rows.Err()
}

// UpsertBill writes the header. An id owned by another account is reported as not found.
func (r *repository) UpsertBill(ctx context.Context, owner string, b Bill) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO bills (id, owner_id, bill_number, bill_date, bill_type, name, mobile,
			village_city, subtotal, discount, final_total)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9::numeric, $10::numeric, $11::numeric)
		ON CONFLICT (id) DO UPDATE SET
			bill_number = EXCLUDED.bill_number,
			bill_date = EXCLUDED.bill_date,
			bill_type = EXCLUDED.bill_type,
			name = EXCLUDED.name,
			mobile = EXCLUDED.mobile,
			village_city = EXCLUDED.village_city,
			subtotal = EXCLUDED.subtotal,
			discount = EXCLUDED.discount,
			final_total = EXCLUDED.final_total,
			updated_at = NOW()
		WHERE bills.owner_id = EXCLUDED.owner_id`,
		b.ID, owner, b.BillNumber, b.BillDate, string(b.BillType), b.Name, b.Mobile,
		b.VillageCity, b.Subtotal.String(), b.Discount.String(), b.FinalTotal.String())
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, owner, billID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM bill_items
		WHERE bill_id = $1 AND bill_id IN (SELECT id FROM bills WHERE owner_id = $2)`, billID, owner)
	if err != nil {
		return fmt.Errorf("delete bill items: %w", err)
	}
	return nil
}

func (r *repository) InsertItems(ctx context.Context, billID string, items []BillItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for pos, item := range items {
		batch.Queue(`
			INSERT INTO bill_items (id, bill_id, position, item_name, quantity, price_per_item, total_price)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric)`,
			item.ID, billID, pos, item.ItemName,
			item.Quantity.String(), item.PricePerItem.String(), item.TotalPrice.String())
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func (r *repository) DeleteBill(ctx context.Context, owner, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bills WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) NextBillNumber(ctx context.Context, owner string) (string, error) {
	var number string
	if err := r.db.QueryRow(ctx, `SELECT next_bill_number($1)`, owner).Scan(&number); err != nil {
		return "", fmt.Errorf("next bill number: %w", err)
	}
	return number, nil
}

const reconcileSQL = `
	INSERT INTO bill_counters AS c (owner_id, counter, updated_at)
	SELECT owner_id, GREATEST(MAX(substring(bill_number FROM 3)::bigint), $1), NOW()
	FROM bills
	WHERE bill_number ~ '^VS[0-9]{1,18}$' %s
	GROUP BY owner_id
	ON CONFLICT (owner_id) DO UPDATE
		SET counter = EXCLUDED.counter, updated_at = NOW()
		WHERE c.counter < EXCLUDED.counter`

// ReconcileCounter raises the owner's counter to the highest stored bill number.
func (r *repository) ReconcileCounter(ctx context.Context, owner string) (int64, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(reconcileSQL, "AND owner_id = $2"), CounterFloor, owner)
	if err != nil {
		return 0, fmt.Errorf("reconcile counter: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ReconcileAllCounters applies ReconcileCounter to every owner with bills.
func (r *repository) ReconcileAllCounters(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(reconcileSQL, ""), CounterFloor)
	if err != nil {
		return 0, fmt.Errorf("reconcile counters: %w", err)
	}
	return tag.RowsAffected(), nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		detail := strings.TrimSpace(pgErr.ConstraintName)
		return fmt.Errorf("%w: %s", shared.ErrConflict, detail)
	}
	return fmt.Errorf("write bill: %w", err)
}

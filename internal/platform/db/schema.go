package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for bills, bill items, counters and the numbering function.
func Schema() string {
	return schemaSQL
}

// ApplySchema runs the idempotent DDL in a single transaction.
func ApplySchema(ctx context.Context, conn TxBeginner) error {
	return WithTx(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("platform/db: apply schema: %w", err)
		}
		return nil
	})
}

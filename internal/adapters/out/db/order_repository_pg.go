// internal/adapters/out/db/order_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dbcommon "talentagency/internal/adapters/out/db/common"
	orderdom "talentagency/internal/domain/order"
)

// OrderSchema creates the orders table used by OrderRepositoryPG.
const OrderSchema = `
CREATE TABLE IF NOT EXISTS orders (
  id                TEXT PRIMARY KEY,
  user_id           TEXT NOT NULL,
  items             JSONB NOT NULL,
  delivery          JSONB NOT NULL,
  subtotal          INTEGER NOT NULL,
  tax               INTEGER NOT NULL,
  total             INTEGER NOT NULL,
  currency          TEXT NOT NULL,
  status            TEXT NOT NULL,
  payment_reference TEXT NOT NULL UNIQUE,
  status_history    JSONB NOT NULL DEFAULT '[]',
  created_at        TIMESTAMPTZ NOT NULL,
  updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC);`

// PostgreSQL implementation of order.Repository
type OrderRepositoryPG struct {
	DB *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

// Migrate applies OrderSchema.
func (r *OrderRepositoryPG) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, OrderSchema)
	return err
}

const orderColumns = `
  id, user_id, items, delivery, subtotal, tax, total, currency, status,
  payment_reference, status_history, created_at, updated_at`

// ========================
// RepositoryPort impl
// ========================

func (r *OrderRepositoryPG) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)

	if strings.TrimSpace(o.ID) == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	args, err := orderArgs(o)
	if err != nil {
		return orderdom.Order{}, err
	}

	const q = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	if _, err := run.ExecContext(ctx, q, args...); err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return orderdom.Order{}, orderdom.ErrDuplicatePaymentRef
		}
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryPG) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOne(run.QueryRowContext(ctx, q, strings.TrimSpace(id)))
}

func (r *OrderRepositoryPG) GetByPaymentReference(ctx context.Context, ref string) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := `SELECT` + orderColumns + ` FROM orders WHERE payment_reference = $1`
	return scanOne(run.QueryRowContext(ctx, q, strings.TrimSpace(ref)))
}

func (r *OrderRepositoryPG) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	q := `SELECT` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, strings.TrimSpace(userID))
}

func (r *OrderRepositoryPG) ListAll(ctx context.Context) ([]orderdom.Order, error) {
	q := `SELECT` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q)
}

// Update locks the row (SELECT ... FOR UPDATE), applies fn and writes back.
func (r *OrderRepositoryPG) Update(ctx context.Context, id string, fn func(o *orderdom.Order) error) (orderdom.Order, error) {
	var out orderdom.Order
	err := dbcommon.WithTx(ctx, r.DB, func(ctx context.Context) error {
		run := dbcommon.GetRunner(ctx, r.DB)

		q := `SELECT` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
		o, err := scanOne(run.QueryRowContext(ctx, q, strings.TrimSpace(id)))
		if err != nil {
			return err
		}
		if err := fn(&o); err != nil {
			return err
		}

		hist, err := json.Marshal(o.StatusHistory)
		if err != nil {
			return err
		}
		const uq = `
UPDATE orders
SET status = $2, status_history = $3, updated_at = $4
WHERE id = $1`
		if _, err := run.ExecContext(ctx, uq, o.ID, string(o.Status), hist, o.UpdatedAt.UTC()); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return out, nil
}

// ========================
// helpers
// ========================

func (r *OrderRepositoryPG) query(ctx context.Context, q string, args ...any) ([]orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	rows, err := run.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orderdom.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOne(row dbcommon.RowScanner) (orderdom.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return o, nil
}

func scanOrder(s dbcommon.RowScanner) (orderdom.Order, error) {
	var (
		o                     orderdom.Order
		status                string
		itemsRaw, deliveryRaw []byte
		historyRaw            []byte
		createdAt, updatedAt  time.Time
	)
	if err := s.Scan(
		&o.ID, &o.UserID, &itemsRaw, &deliveryRaw,
		&o.Subtotal, &o.Tax, &o.Total, &o.Currency, &status,
		&o.PaymentReference, &historyRaw, &createdAt, &updatedAt,
	); err != nil {
		return orderdom.Order{}, err
	}
	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return orderdom.Order{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(deliveryRaw, &o.Delivery); err != nil {
		return orderdom.Order{}, fmt.Errorf("decode delivery: %w", err)
	}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &o.StatusHistory); err != nil {
			return orderdom.Order{}, fmt.Errorf("decode status_history: %w", err)
		}
	}
	o.Status = orderdom.Status(status)
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()
	return o, nil
}

func orderArgs(o orderdom.Order) ([]any, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	delivery, err := json.Marshal(o.Delivery)
	if err != nil {
		return nil, err
	}
	hist := o.StatusHistory
	if hist == nil {
		hist = []orderdom.StatusChange{}
	}
	history, err := json.Marshal(hist)
	if err != nil {
		return nil, err
	}
	return []any{
		o.ID, o.UserID, items, delivery,
		o.Subtotal, o.Tax, o.Total, o.Currency, string(o.Status),
		o.PaymentReference, history, o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	}, nil
}

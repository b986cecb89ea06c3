package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/furuknap/marketmaster/internal/domain"
)

// SaleRepository is the durable sale history ledger: append-only, read back
// most recent first. Existing records are never updated.
type SaleRepository struct {
	pool *pgxpool.Pool
}

func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

func (r *SaleRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// AppendSale writes the record and its line items in one transaction.
func (r *SaleRepository) AppendSale(ctx context.Context, record domain.SaleRecord) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const saleStmt = `
INSERT INTO sales (id, created_at, payment_method, subtotal, discount, total, event_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		var eventID *string
		if record.EventID != "" {
			eventID = &record.EventID
		}

		_, err := r.exec(txCtx, saleStmt,
			record.ID, record.Timestamp, record.PaymentMethod,
			record.Subtotal, record.Discount, record.Total, eventID)
		if err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("append sale: %w", err)
		}

		const itemStmt = `
INSERT INTO sale_items (sale_id, position, product_id, name, unit_price, quantity, discount_applied)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		for i, item := range record.Items {
			_, err := r.exec(txCtx, itemStmt,
				record.ID, i, item.ProductID, item.Name,
				item.UnitPrice, item.Quantity, item.DiscountApplied)
			if err != nil {
				return fmt.Errorf("append sale item: %w", err)
			}
		}
		return nil
	})
}

// ListSales returns the whole history, most recent first.
func (r *SaleRepository) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	return r.list(ctx, `
SELECT id, created_at, payment_method, subtotal, discount, total, event_id
FROM sales ORDER BY created_at DESC, id DESC`)
}

// ListSalesBetween returns sales with from <= created_at < to, most recent
// first.
func (r *SaleRepository) ListSalesBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error) {
	return r.list(ctx, `
SELECT id, created_at, payment_method, subtotal, discount, total, event_id
FROM sales WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC, id DESC`, from, to)
}

func (r *SaleRepository) list(ctx context.Context, query string, args ...any) ([]domain.SaleRecord, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []domain.SaleRecord
	index := make(map[string]int)
	for rows.Next() {
		var (
			record  domain.SaleRecord
			eventID *string
		)
		if err := rows.Scan(
			&record.ID, &record.Timestamp, &record.PaymentMethod,
			&record.Subtotal, &record.Discount, &record.Total, &eventID,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if eventID != nil {
			record.EventID = *eventID
		}
		index[record.ID] = len(out)
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.attachItems(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SaleRepository) attachItems(ctx context.Context, records []domain.SaleRecord, index map[string]int) error {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	const query = `
SELECT sale_id, product_id, name, unit_price, quantity, discount_applied
FROM sale_items WHERE sale_id = ANY($1)
ORDER BY sale_id, position`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			saleID string
			item   domain.LineItem
		)
		if err := rows.Scan(
			&saleID, &item.ProductID, &item.Name,
			&item.UnitPrice, &item.Quantity, &item.DiscountApplied,
		); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if i, ok := index[saleID]; ok {
			records[i].Items = append(records[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *SaleRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SaleRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/furuknap/marketmaster/internal/domain"
)

// EventRepository stores market events. At most one row is active at a time,
// enforced by a partial unique index.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// SetActiveEvent deactivates any current event and inserts the new one as
// active, in one transaction.
func (r *EventRepository) SetActiveEvent(ctx context.Context, event domain.MarketEvent) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		if _, err := r.exec(txCtx, `UPDATE market_events SET active = FALSE WHERE active`); err != nil {
			return fmt.Errorf("deactivate events: %w", err)
		}

		const stmt = `
INSERT INTO market_events (id, name, start_date, end_date, location, cost, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)`

		_, err := r.exec(txCtx, stmt,
			event.ID, event.Name, event.StartDate, event.EndDate,
			event.Location, event.Cost, event.CreatedAt)
		if err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	})
}

// ActiveEvent returns the active event, or nil when none is set.
func (r *EventRepository) ActiveEvent(ctx context.Context) (*domain.MarketEvent, error) {
	const query = `
SELECT id, name, start_date, end_date, location, cost, created_at
FROM market_events WHERE active`

	var e domain.MarketEvent
	err := r.queryRow(ctx, query).
		Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate, &e.Location, &e.Cost, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active event: %w", err)
	}
	return &e, nil
}

func (r *EventRepository) ClearActiveEvent(ctx context.Context) error {
	if _, err := r.exec(ctx, `UPDATE market_events SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("clear active event: %w", err)
	}
	return nil
}

func (r *EventRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *EventRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

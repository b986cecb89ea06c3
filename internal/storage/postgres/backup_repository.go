package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/furuknap/marketmaster/internal/domain"
)

// BackupRepository replaces the whole stored state from a snapshot restore.
type BackupRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
	sales   *SaleRepository
	events  *EventRepository
}

func NewBackupRepository(pool *pgxpool.Pool) *BackupRepository {
	return &BackupRepository{
		pool:    pool,
		catalog: NewCatalogRepository(pool),
		sales:   NewSaleRepository(pool),
		events:  NewEventRepository(pool),
	}
}

// ReplaceState wipes all tables and loads the given state in a single
// transaction, so a failed restore leaves the previous state intact.
func (r *BackupRepository) ReplaceState(ctx context.Context, products []domain.Product, rules []domain.DiscountRule, sales []domain.SaleRecord, event *domain.MarketEvent) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		tx := txFromContext(txCtx)
		if _, err := tx.Exec(txCtx,
			`TRUNCATE sale_items, sales, discount_rules, products, market_events`); err != nil {
			return fmt.Errorf("truncate state: %w", err)
		}

		for _, p := range products {
			if err := r.catalog.CreateProduct(txCtx, p); err != nil {
				return err
			}
		}
		for _, rule := range rules {
			if err := r.catalog.CreateDiscountRule(txCtx, rule); err != nil {
				return err
			}
		}
		for _, sale := range sales {
			if err := r.sales.AppendSale(txCtx, sale); err != nil {
				return err
			}
		}
		if event != nil {
			if err := r.events.SetActiveEvent(txCtx, *event); err != nil {
				return err
			}
		}
		return nil
	})
}

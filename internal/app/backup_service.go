package app

import (
	"context"

	"github.com/furuknap/marketmaster/internal/domain"
	"github.com/furuknap/marketmaster/internal/storage/snapshot"
)

// StateReplacer swaps the entire stored state in one transaction. Used by
// restore only.
type StateReplacer interface {
	ReplaceState(ctx context.Context, products []domain.Product, rules []domain.DiscountRule, sales []domain.SaleRecord, event *domain.MarketEvent) error
}

// BackupService exports and restores the durable state as a single JSON
// snapshot: {products, discounts, salesHistory, eventContext}.
type BackupService struct {
	catalog  CatalogRepository
	sales    SaleHistory
	events   EventRepository
	replacer StateReplacer
}

func NewBackupService(catalog CatalogRepository, sales SaleHistory, events EventRepository, replacer StateReplacer) *BackupService {
	return &BackupService{
		catalog:  catalog,
		sales:    sales,
		events:   events,
		replacer: replacer,
	}
}

func (s *BackupService) Export(ctx context.Context) (snapshot.Snapshot, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	rules, err := s.catalog.ListDiscountRules(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	sales, err := s.sales.ListSales(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	event, err := s.events.ActiveEvent(ctx)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.FromState(products, rules, sales, event), nil
}

// Import replaces all stored state with the snapshot's contents. The
// snapshot codec already defaulted missing or malformed keys to empty, so a
// partial snapshot simply restores less.
func (s *BackupService) Import(ctx context.Context, snap snapshot.Snapshot) error {
	products, rules, sales, event := snap.State()
	return s.replacer.ReplaceState(ctx, products, rules, sales, event)
}

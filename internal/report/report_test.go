package report

import (
	"math"
	"testing"
	"time"

	"github.com/furuknap/marketmaster/internal/domain"
)

type fakeCosts map[string]domain.Product

func (f fakeCosts) Product(id string) (domain.Product, bool) {
	p, ok := f[id]
	return p, ok
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotalRevenue(t *testing.T) {
	t.Parallel()

	records := []domain.SaleRecord{
		{Total: 21.50},
		{Total: 12.00},
		{Total: -1.00},
	}
	if got := TotalRevenue(records); !approx(got, 32.50) {
		t.Fatalf("expected 32.50, got %.4f", got)
	}
	if got := TotalRevenue(nil); got != 0 {
		t.Fatalf("expected 0 for empty history, got %.4f", got)
	}
}

func TestOnDate(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	records := []domain.SaleRecord{
		{ID: "s1", Timestamp: time.Date(2025, 6, 14, 0, 0, 1, 0, time.UTC)},
		{ID: "s2", Timestamp: time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC)},
		{ID: "s3", Timestamp: time.Date(2025, 6, 13, 23, 59, 59, 0, time.UTC)},
		{ID: "s4", Timestamp: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	got := OnDate(records, day)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("expected s1 and s2, got %s and %s", got[0].ID, got[1].ID)
	}
}

func TestSaleProfit(t *testing.T) {
	t.Parallel()

	costs := fakeCosts{
		"p1": {ID: "p1", Cost: 1.20},
		"p2": {ID: "p2", Cost: 1.80},
	}
	record := domain.SaleRecord{
		Items: []domain.LineItem{
			{ProductID: "p1", UnitPrice: 3.50, Quantity: 3},
			{ProductID: "p2", UnitPrice: 5.00, Quantity: 1},
			{ProductID: "deleted", UnitPrice: 9.99, Quantity: 5},
		},
	}

	// (3.50-1.20)*3 + (5.00-1.80)*1, the deleted product contributes nothing.
	if got := SaleProfit(record, costs); !approx(got, 10.10) {
		t.Fatalf("expected profit 10.10, got %.4f", got)
	}
}

func TestHourlyBuckets(t *testing.T) {
	t.Parallel()

	costs := fakeCosts{"p1": {ID: "p1", Cost: 1.00}}
	records := []domain.SaleRecord{
		{
			Timestamp: time.Date(2025, 6, 14, 9, 15, 0, 0, time.UTC),
			Total:     10.00,
			Items:     []domain.LineItem{{ProductID: "p1", UnitPrice: 5.00, Quantity: 2}},
		},
		{
			Timestamp: time.Date(2025, 6, 14, 9, 45, 0, 0, time.UTC),
			Total:     5.00,
			Items:     []domain.LineItem{{ProductID: "p1", UnitPrice: 5.00, Quantity: 1}},
		},
		{
			Timestamp: time.Date(2025, 6, 14, 17, 0, 0, 0, time.UTC),
			Total:     3.00,
			Items:     []domain.LineItem{{ProductID: "p1", UnitPrice: 5.00, Quantity: 1}},
		},
	}

	buckets := HourlyBuckets(records, costs)
	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	if !approx(buckets[9].Sales, 15.00) {
		t.Fatalf("expected 15.00 sales at hour 9, got %.4f", buckets[9].Sales)
	}
	if !approx(buckets[9].Profit, 12.00) {
		t.Fatalf("expected 12.00 profit at hour 9, got %.4f", buckets[9].Profit)
	}
	if !approx(buckets[17].Sales, 3.00) {
		t.Fatalf("expected 3.00 sales at hour 17, got %.4f", buckets[17].Sales)
	}
	for h, b := range buckets {
		if b.Hour != h {
			t.Fatalf("expected bucket %d labeled %d, got %d", h, h, b.Hour)
		}
		if h != 9 && h != 17 && (b.Sales != 0 || b.Profit != 0) {
			t.Fatalf("expected empty bucket at hour %d, got %+v", h, b)
		}
	}
}

func TestEventProfit(t *testing.T) {
	t.Parallel()

	costs := fakeCosts{
		"p1": {ID: "p1", Cost: 1.20},
		"p2": {ID: "p2", Cost: 3.50},
	}
	items := []domain.LineItem{
		{ProductID: "p1", UnitPrice: 3.50, Quantity: 2},
		{ProductID: "p2", UnitPrice: 8.00, Quantity: 1},
	}

	t.Run("with active event", func(t *testing.T) {
		event := &domain.MarketEvent{Cost: 50.00}
		// 15.00 - (1.20*2 + 3.50) - 50.00
		if got := EventProfit(15.00, items, costs, event); !approx(got, -40.90) {
			t.Fatalf("expected -40.90, got %.4f", got)
		}
	})

	t.Run("without event skips the overhead", func(t *testing.T) {
		if got := EventProfit(15.00, items, costs, nil); !approx(got, 9.10) {
			t.Fatalf("expected 9.10, got %.4f", got)
		}
	})
}

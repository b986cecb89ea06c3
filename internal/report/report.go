// Package report holds the pure aggregation math over finalized sales.
// Services feed it records and a cost source; nothing here touches storage.
package report

import (
	"time"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
)

// CostSource resolves a product for profit math. Profit uses the current
// catalog cost, not a cost captured at sale time; a product deleted since
// the sale contributes zero profit for its line.
type CostSource interface {
	Product(id string) (domain.Product, bool)
}

// HourlyBucket aggregates one hour-of-day slot.
type HourlyBucket struct {
	Hour   int
	Sales  float64
	Profit float64
}

// TotalRevenue sums total over all records.
func TotalRevenue(records []domain.SaleRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Total
	}
	return total
}

// OnDate filters records whose timestamp falls on day's calendar day.
func OnDate(records []domain.SaleRecord, day time.Time) []domain.SaleRecord {
	var out []domain.SaleRecord
	for _, r := range records {
		if clock.SameDay(day, r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}

// SaleProfit is the margin of one record: (snapshot unit price - current
// product cost) * quantity, summed over its lines.
func SaleProfit(record domain.SaleRecord, costs CostSource) float64 {
	var profit float64
	for _, item := range record.Items {
		product, ok := costs.Product(item.ProductID)
		if !ok {
			continue
		}
		profit += (item.UnitPrice - product.Cost) * float64(item.Quantity)
	}
	return profit
}

// HourlyBuckets groups records into the 24 fixed hour-of-day buckets,
// summing sales and profit per bucket. Hours without sales stay zero rather
// than being omitted, so charts always get a full series.
func HourlyBuckets(records []domain.SaleRecord, costs CostSource) [24]HourlyBucket {
	var buckets [24]HourlyBucket
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, r := range records {
		h := r.Timestamp.Hour()
		buckets[h].Sales += r.Total
		buckets[h].Profit += SaleProfit(r, costs)
	}
	return buckets
}

// EventProfit is the event-adjusted profit of a single sale: revenue minus
// cost of goods minus the event's fixed cost. event may be nil.
func EventProfit(total float64, items []domain.LineItem, costs CostSource, event *domain.MarketEvent) float64 {
	var goods float64
	for _, item := range items {
		if product, ok := costs.Product(item.ProductID); ok {
			goods += product.Cost * float64(item.Quantity)
		}
	}
	profit := total - goods
	if event != nil {
		profit -= event.Cost
	}
	return profit
}

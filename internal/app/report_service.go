package app

import (
	"context"
	"time"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
	"github.com/furuknap/marketmaster/internal/report"
)

type SaleHistory interface {
	ListSales(ctx context.Context) ([]domain.SaleRecord, error)
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error)
}

type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ReportService derives aggregate figures from the sale history. Profit is
// computed against current catalog costs, not costs captured at sale time.
type ReportService struct {
	sales    SaleHistory
	products ProductSource
	events   ActiveEventSource
	clock    clock.Clock
}

func NewReportService(sales SaleHistory, products ProductSource, events ActiveEventSource, clk clock.Clock) *ReportService {
	return &ReportService{
		sales:    sales,
		products: products,
		events:   events,
		clock:    clk,
	}
}

// DailyReport is the today-view: totals, transaction count and the fixed
// 24-slot hourly series for charting.
type DailyReport struct {
	Date             time.Time
	TotalSales       float64
	TotalProfit      float64
	TransactionCount int
	Hourly           [24]report.HourlyBucket
	Event            *domain.MarketEvent
}

// TodayReport aggregates the current calendar day's sales.
func (s *ReportService) TodayReport(ctx context.Context) (DailyReport, error) {
	now := s.clock.Now()
	from, to := clock.DayBounds(now)

	records, err := s.sales.ListSalesBetween(ctx, from, to)
	if err != nil {
		return DailyReport{}, err
	}
	// The range query is a coarse filter; the calendar-day match decides.
	records = report.OnDate(records, now)

	costs, err := s.costSource(ctx)
	if err != nil {
		return DailyReport{}, err
	}

	out := DailyReport{
		Date:             from,
		TotalSales:       report.TotalRevenue(records),
		TransactionCount: len(records),
		Hourly:           report.HourlyBuckets(records, costs),
	}
	for _, r := range records {
		out.TotalProfit += report.SaleProfit(r, costs)
	}

	if s.events != nil {
		event, err := s.events.ActiveEvent(ctx)
		if err != nil {
			return DailyReport{}, err
		}
		out.Event = event
	}
	return out, nil
}

// History returns all finalized sales, most recent first.
func (s *ReportService) History(ctx context.Context) ([]domain.SaleRecord, error) {
	return s.sales.ListSales(ctx)
}

// TotalRevenue sums total over the whole sale history.
func (s *ReportService) TotalRevenue(ctx context.Context) (float64, error) {
	records, err := s.sales.ListSales(ctx)
	if err != nil {
		return 0, err
	}
	return report.TotalRevenue(records), nil
}

// EventProfit computes the event-adjusted profit of a single sale against
// the currently active event (nil event means no overhead to subtract).
func (s *ReportService) EventProfit(ctx context.Context, record domain.SaleRecord) (float64, error) {
	costs, err := s.costSource(ctx)
	if err != nil {
		return 0, err
	}

	var event *domain.MarketEvent
	if s.events != nil {
		event, err = s.events.ActiveEvent(ctx)
		if err != nil {
			return 0, err
		}
	}
	return report.EventProfit(record.Total, record.Items, costs, event), nil
}

func (s *ReportService) costSource(ctx context.Context) (report.CostSource, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	m := make(productMap, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m, nil
}

type productMap map[string]domain.Product

func (m productMap) Product(id string) (domain.Product, bool) {
	p, ok := m[id]
	return p, ok
}

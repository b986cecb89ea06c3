package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/domain"
	"github.com/furuknap/marketmaster/internal/report"
)

type stubReportService struct {
	report  app.DailyReport
	records []domain.SaleRecord
	revenue float64
	err     error
}

func (s *stubReportService) TodayReport(context.Context) (app.DailyReport, error) {
	return s.report, s.err
}

func (s *stubReportService) History(context.Context) ([]domain.SaleRecord, error) {
	return s.records, s.err
}

func (s *stubReportService) TotalRevenue(context.Context) (float64, error) {
	return s.revenue, s.err
}

func TestHandleTodayReport(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		var hourly [24]report.HourlyBucket
		for i := range hourly {
			hourly[i].Hour = i
		}
		hourly[10] = report.HourlyBucket{Hour: 10, Sales: 20.00, Profit: 12.00}

		svc := &stubReportService{report: app.DailyReport{
			Date:             time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			TotalSales:       20.00,
			TotalProfit:      12.00,
			TransactionCount: 1,
			Hourly:           hourly,
			Event:            &domain.MarketEvent{ID: "event-1", Name: "Spring Fair"},
		}}

		req := httptest.NewRequest(http.MethodGet, "/reports/today", nil)
		rec := httptest.NewRecorder()

		HandleTodayReport(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"date":"2025-06-14"`) {
			t.Fatalf("expected date in body, got %q", body)
		}
		if !strings.Contains(body, `"transaction_count":1`) {
			t.Fatalf("expected transaction count, got %q", body)
		}
		if !strings.Contains(body, `"hour":10,"sales":20,"profit":12`) {
			t.Fatalf("expected hourly bucket, got %q", body)
		}
		if !strings.Contains(body, `"event":{"id":"event-1"`) {
			t.Fatalf("expected event in body, got %q", body)
		}
	})

	t.Run("service error", func(t *testing.T) {
		svc := &stubReportService{err: errors.New("boom")}
		req := httptest.NewRequest(http.MethodGet, "/reports/today", nil)
		rec := httptest.NewRecorder()

		HandleTodayReport(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reports/today", nil)
		rec := httptest.NewRecorder()

		HandleTodayReport(&stubReportService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleSales(t *testing.T) {
	t.Parallel()

	svc := &stubReportService{records: []domain.SaleRecord{
		{
			ID:            "sale-1",
			Timestamp:     time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC),
			Items:         []domain.LineItem{{ProductID: "p1", Name: "Soap", UnitPrice: 4.00, Quantity: 2}},
			PaymentMethod: domain.PaymentCard,
			Subtotal:      8.00,
			Total:         8.00,
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rec := httptest.NewRecorder()

	HandleSales(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"id":"sale-1"`) {
		t.Fatalf("expected sale in body, got %q", body)
	}
	if !strings.Contains(body, `"payment_method":"card"`) {
		t.Fatalf("expected payment method in body, got %q", body)
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/domain"
)

// ReportService is the read side consumed by the reporting endpoints.
type ReportService interface {
	TodayReport(ctx context.Context) (app.DailyReport, error)
	History(ctx context.Context) ([]domain.SaleRecord, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

// HandleTodayReport serves GET /reports/today.
func HandleTodayReport(svc ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		rep, err := svc.TodayReport(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toDailyReportResponse(rep))
	}
}

// HandleSales serves GET /sales: the full history, most recent first.
func HandleSales(svc ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		records, err := svc.History(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		out := make([]saleRecordResponse, 0, len(records))
		for _, rec := range records {
			out = append(out, toSaleRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type hourlyBucketResponse struct {
	Hour   int     `json:"hour"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
}

type dailyReportResponse struct {
	Date             string                 `json:"date"`
	TotalSales       float64                `json:"total_sales"`
	TotalProfit      float64                `json:"total_profit"`
	TransactionCount int                    `json:"transaction_count"`
	Hourly           []hourlyBucketResponse `json:"hourly"`
	Event            *eventResponse         `json:"event,omitempty"`
}

type saleRecordResponse struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Items         []lineItemResponse `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      float64            `json:"subtotal"`
	Discount      float64            `json:"discount"`
	Total         float64            `json:"total"`
	EventID       string             `json:"event_id,omitempty"`
}

func toDailyReportResponse(rep app.DailyReport) dailyReportResponse {
	out := dailyReportResponse{
		Date:             rep.Date.Format("2006-01-02"),
		TotalSales:       rep.TotalSales,
		TotalProfit:      rep.TotalProfit,
		TransactionCount: rep.TransactionCount,
		Hourly:           make([]hourlyBucketResponse, 0, len(rep.Hourly)),
	}
	for _, b := range rep.Hourly {
		out.Hourly = append(out.Hourly, hourlyBucketResponse{
			Hour:   b.Hour,
			Sales:  b.Sales,
			Profit: b.Profit,
		})
	}
	if rep.Event != nil {
		resp := toEventResponse(*rep.Event)
		out.Event = &resp
	}
	return out
}

func toSaleRecordResponse(rec domain.SaleRecord) saleRecordResponse {
	return saleRecordResponse{
		ID:            rec.ID,
		Timestamp:     rec.Timestamp,
		Items:         toItemResponses(rec.Items),
		PaymentMethod: string(rec.PaymentMethod),
		Subtotal:      rec.Subtotal,
		Discount:      rec.Discount,
		Total:         rec.Total,
		EventID:       rec.EventID,
	}
}

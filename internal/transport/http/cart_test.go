package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/furuknap/marketmaster/internal/domain"
)

type stubCartService struct {
	sale   domain.Sale
	record domain.SaleRecord
	err    error

	addedProduct    string
	adjustedProduct string
	adjustedDelta   int
	method          domain.PaymentMethod
	cleared         bool
}

func (s *stubCartService) Current(context.Context) (domain.Sale, error) {
	return s.sale, s.err
}

func (s *stubCartService) AddItem(_ context.Context, productID string) (domain.Sale, error) {
	s.addedProduct = productID
	return s.sale, s.err
}

func (s *stubCartService) AdjustQuantity(_ context.Context, productID string, delta int) (domain.Sale, error) {
	s.adjustedProduct = productID
	s.adjustedDelta = delta
	return s.sale, s.err
}

func (s *stubCartService) SetPaymentMethod(method domain.PaymentMethod) error {
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	s.method = method
	return nil
}

func (s *stubCartService) Clear() domain.Sale {
	s.cleared = true
	return domain.Sale{PaymentMethod: domain.PaymentCash}
}

func (s *stubCartService) Finalize(context.Context) (domain.SaleRecord, error) {
	return s.record, s.err
}

type stubCheckoutReporter struct {
	profit float64
	err    error
}

func (s *stubCheckoutReporter) EventProfit(context.Context, domain.SaleRecord) (float64, error) {
	return s.profit, s.err
}

func TestHandleCart(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{sale: domain.Sale{
		Items:         []domain.LineItem{{ProductID: "p1", Name: "Soap", UnitPrice: 4.00, Quantity: 2}},
		PaymentMethod: domain.PaymentCash,
		Subtotal:      8.00,
		Total:         8.00,
	}}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	HandleCart(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"payment_method":"cash"`) {
		t.Fatalf("expected payment method in body, got %q", body)
	}
	if !strings.Contains(body, `"quantity":2`) {
		t.Fatalf("expected line quantity in body, got %q", body)
	}

	rec = httptest.NewRecorder()
	HandleCart(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestHandleCartOps_AddItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"success", `{"product_id":"p1"}`, http.StatusOK},
		{"invalid json", `{"product_id":`, http.StatusBadRequest},
		{"missing product id", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCartService{}
			req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleCartOps(svc, nil).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedStatus == http.StatusOK && svc.addedProduct != "p1" {
				t.Fatalf("expected product p1 added, got %q", svc.addedProduct)
			}
		})
	}
}

func TestHandleCartOps_AdjustQuantity(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	req := httptest.NewRequest(http.MethodPatch, "/cart/items/p1", bytes.NewBufferString(`{"delta":-1}`))
	rec := httptest.NewRecorder()

	HandleCartOps(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.adjustedProduct != "p1" || svc.adjustedDelta != -1 {
		t.Fatalf("expected adjust p1 by -1, got %q %d", svc.adjustedProduct, svc.adjustedDelta)
	}
}

func TestHandleCartOps_PaymentMethod(t *testing.T) {
	t.Parallel()

	t.Run("valid method", func(t *testing.T) {
		svc := &stubCartService{}
		req := httptest.NewRequest(http.MethodPost, "/cart/payment-method", bytes.NewBufferString(`{"method":"venmo"}`))
		rec := httptest.NewRecorder()

		HandleCartOps(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if svc.method != domain.PaymentVenmo {
			t.Fatalf("expected venmo, got %q", svc.method)
		}
	})

	t.Run("invalid method", func(t *testing.T) {
		svc := &stubCartService{}
		req := httptest.NewRequest(http.MethodPost, "/cart/payment-method", bytes.NewBufferString(`{"method":"cheque"}`))
		rec := httptest.NewRecorder()

		HandleCartOps(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid_payment_method") {
			t.Fatalf("expected error code in body, got %q", rec.Body.String())
		}
	})
}

func TestHandleCartOps_Clear(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{}
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	rec := httptest.NewRecorder()

	HandleCartOps(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !svc.cleared {
		t.Fatalf("expected Clear to be called")
	}
}

func TestHandleCartOps_Checkout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC)
	record := domain.SaleRecord{
		ID:            "sale-1",
		Timestamp:     now,
		Items:         []domain.LineItem{{ProductID: "p1", Name: "Soap", UnitPrice: 4.00, Quantity: 2}},
		PaymentMethod: domain.PaymentCard,
		Subtotal:      8.00,
		Total:         8.00,
		EventID:       "event-1",
	}

	t.Run("success with event profit", func(t *testing.T) {
		svc := &stubCartService{record: record}
		reporter := &stubCheckoutReporter{profit: 3.00}
		req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
		rec := httptest.NewRecorder()

		HandleCartOps(svc, reporter).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"id":"sale-1"`) {
			t.Fatalf("expected record id in body, got %q", body)
		}
		if !strings.Contains(body, `"event_profit":3`) {
			t.Fatalf("expected event profit in body, got %q", body)
		}
	})

	t.Run("reporter failure omits profit", func(t *testing.T) {
		svc := &stubCartService{record: record}
		reporter := &stubCheckoutReporter{err: errors.New("boom")}
		req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
		rec := httptest.NewRecorder()

		HandleCartOps(svc, reporter).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "event_profit") {
			t.Fatalf("expected no event profit in body, got %q", rec.Body.String())
		}
	})

	t.Run("empty cart conflicts", func(t *testing.T) {
		svc := &stubCartService{err: domain.ErrEmptyCart}
		req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
		rec := httptest.NewRecorder()

		HandleCartOps(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "empty_cart") {
			t.Fatalf("expected error code in body, got %q", rec.Body.String())
		}
	})
}

func TestHandleCartOps_UnknownPath(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/cart/mystery", nil)
	rec := httptest.NewRecorder()

	HandleCartOps(&stubCartService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/furuknap/marketmaster/internal/domain"
)

// CartService is the minimal interface needed by the cart endpoints.
type CartService interface {
	Current(ctx context.Context) (domain.Sale, error)
	AddItem(ctx context.Context, productID string) (domain.Sale, error)
	AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Sale, error)
	SetPaymentMethod(method domain.PaymentMethod) error
	Clear() domain.Sale
	Finalize(ctx context.Context) (domain.SaleRecord, error)
}

// CheckoutReporter supplies the event-adjusted profit shown on the sale
// confirmation.
type CheckoutReporter interface {
	EventProfit(ctx context.Context, record domain.SaleRecord) (float64, error)
}

// HandleCart serves GET on /cart: the priced snapshot of the current sale.
func HandleCart(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		sale, err := svc.Current(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toSaleResponse(sale))
	}
}

// HandleCartOps dispatches the mutating cart endpoints under /cart/.
func HandleCartOps(cart CartService, reports CheckoutReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cart/items":
			handleAddItem(cart, w, r)
		case hasSuffixID(r.URL.Path, "/cart/items/"):
			handleAdjustQuantity(cart, w, r)
		case r.URL.Path == "/cart/payment-method":
			handleSetPaymentMethod(cart, w, r)
		case r.URL.Path == "/cart/clear":
			handleClear(cart, w, r)
		case r.URL.Path == "/cart/checkout":
			handleCheckout(cart, reports, w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleAddItem(cart CartService, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req addItemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return
	}

	// Unknown products are a soft no-op by design: the cart comes back
	// unchanged rather than erroring mid-sale.
	sale, err := cart.AddItem(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

func handleAdjustQuantity(cart CartService, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	productID, _ := pathSuffix(r.URL.Path, "/cart/items/")

	var req adjustQuantityRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	sale, err := cart.AdjustQuantity(r.Context(), productID, req.Delta)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

func handleSetPaymentMethod(cart CartService, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req paymentMethodRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	if err := cart.SetPaymentMethod(domain.PaymentMethod(req.Method)); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPaymentMethod, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleClear(cart CartService, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(cart.Clear()))
}

func handleCheckout(cart CartService, reports CheckoutReporter, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	record, err := cart.Finalize(r.Context())
	if err != nil {
		if err == domain.ErrEmptyCart {
			writeError(w, http.StatusConflict, codeEmptyCart, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	resp := checkoutResponse{
		ID:            record.ID,
		Timestamp:     record.Timestamp,
		Items:         toItemResponses(record.Items),
		PaymentMethod: string(record.PaymentMethod),
		Subtotal:      record.Subtotal,
		Discount:      record.Discount,
		Total:         record.Total,
		EventID:       record.EventID,
	}
	if reports != nil {
		profit, err := reports.EventProfit(r.Context(), record)
		if err == nil {
			resp.EventProfit = &profit
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func hasSuffixID(path, prefix string) bool {
	_, ok := pathSuffix(path, prefix)
	return ok
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type adjustQuantityRequest struct {
	Delta int `json:"delta"`
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

type lineItemResponse struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	DiscountApplied float64 `json:"discount_applied"`
}

type saleResponse struct {
	Items         []lineItemResponse `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      float64            `json:"subtotal"`
	Discount      float64            `json:"discount"`
	Total         float64            `json:"total"`
}

type checkoutResponse struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Items         []lineItemResponse `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      float64            `json:"subtotal"`
	Discount      float64            `json:"discount"`
	Total         float64            `json:"total"`
	EventID       string             `json:"event_id,omitempty"`
	EventProfit   *float64           `json:"event_profit,omitempty"`
}

func toItemResponses(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemResponse{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			DiscountApplied: item.DiscountApplied,
		})
	}
	return out
}

func toSaleResponse(sale domain.Sale) saleResponse {
	return saleResponse{
		Items:         toItemResponses(sale.Items),
		PaymentMethod: string(sale.PaymentMethod),
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.Total,
	}
}

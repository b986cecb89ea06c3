package domain

import "time"

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentVenmo PaymentMethod = "venmo"
)

// ParsePaymentMethod maps the wire value to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentVenmo:
		return PaymentMethod(s), nil
	}
	return "", ErrInvalidPaymentMethod
}

// LineItem is one cart row. UnitPrice and Name are snapshots taken when the
// product was first added, so finalized sales keep their figures even if the
// catalog changes afterwards. DiscountApplied is recomputed from scratch on
// every pricing pass.
type LineItem struct {
	ProductID       string
	Name            string
	UnitPrice       float64
	Quantity        int
	DiscountApplied float64
}

// Sale is the in-progress cart. There is exactly one, owned by the cart
// service, and it is replaced wholesale on finalize or clear.
type Sale struct {
	Items         []LineItem
	PaymentMethod PaymentMethod
	Subtotal      float64
	Discount      float64
	Total         float64
}

// SaleRecord is an immutable history entry created when a sale is finalized.
type SaleRecord struct {
	ID            string
	Timestamp     time.Time
	Items         []LineItem
	PaymentMethod PaymentMethod
	Subtotal      float64
	Discount      float64
	Total         float64
	EventID       string
}

// CopyItems returns a deep copy of items so cart state and history never
// share backing arrays.
func CopyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

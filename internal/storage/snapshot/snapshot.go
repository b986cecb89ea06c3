// Package snapshot reads and writes the portable JSON image of the till's
// state: products, discounts, sales history and the active event context.
// It is the interchange format for backup and restore; loads degrade to
// empty defaults instead of failing.
package snapshot

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/furuknap/marketmaster/internal/domain"
)

type Snapshot struct {
	Products     []Product      `json:"products"`
	Discounts    []DiscountRule `json:"discounts"`
	SalesHistory []SaleRecord   `json:"salesHistory"`
	EventContext *MarketEvent   `json:"eventContext"`
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type DiscountRule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`

	Quantity           *int     `json:"quantity,omitempty"`
	BundlePrice        *float64 `json:"bundlePrice,omitempty"`
	Percentage         *int     `json:"percentage,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	CompanionProductID string   `json:"companionProductId,omitempty"`
}

type LineItem struct {
	ProductID       string  `json:"productId"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unitPrice"`
	Quantity        int     `json:"quantity"`
	DiscountApplied float64 `json:"discountApplied"`
}

type SaleRecord struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Items         []LineItem `json:"items"`
	PaymentMethod string     `json:"paymentMethod"`
	Subtotal      float64    `json:"subtotal"`
	Discount      float64    `json:"discount"`
	Total         float64    `json:"total"`
	EventID       string     `json:"eventId,omitempty"`
}

type MarketEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Location  string    `json:"location"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"createdAt"`
}

// Decode reads a snapshot. Each top-level key is decoded independently, so
// an absent or malformed key degrades to its empty default instead of
// rejecting the whole snapshot. Only input that is not a JSON object at all
// is an error.
func Decode(r io.Reader) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if data, ok := raw["products"]; ok {
		_ = json.Unmarshal(data, &snap.Products)
	}
	if data, ok := raw["discounts"]; ok {
		_ = json.Unmarshal(data, &snap.Discounts)
	}
	if data, ok := raw["salesHistory"]; ok {
		_ = json.Unmarshal(data, &snap.SalesHistory)
	}
	if data, ok := raw["eventContext"]; ok {
		_ = json.Unmarshal(data, &snap.EventContext)
	}
	return snap, nil
}

func Encode(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Load reads a snapshot file. A missing file is an empty snapshot.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Save writes the snapshot atomically via a temp file rename.
func Save(path string, snap Snapshot) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// FromState builds the wire snapshot from domain state.
func FromState(products []domain.Product, rules []domain.DiscountRule, sales []domain.SaleRecord, event *domain.MarketEvent) Snapshot {
	snap := Snapshot{
		Products:     make([]Product, 0, len(products)),
		Discounts:    make([]DiscountRule, 0, len(rules)),
		SalesHistory: make([]SaleRecord, 0, len(sales)),
	}
	for _, p := range products {
		snap.Products = append(snap.Products, Product{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Cost:      p.Cost,
			Category:  p.Category,
			CreatedAt: p.CreatedAt,
		})
	}
	for _, r := range rules {
		snap.Discounts = append(snap.Discounts, fromDomainRule(r))
	}
	for _, s := range sales {
		snap.SalesHistory = append(snap.SalesHistory, fromDomainSale(s))
	}
	if event != nil {
		snap.EventContext = &MarketEvent{
			ID:        event.ID,
			Name:      event.Name,
			StartDate: event.StartDate,
			EndDate:   event.EndDate,
			Location:  event.Location,
			Cost:      event.Cost,
			CreatedAt: event.CreatedAt,
		}
	}
	return snap
}

// State converts the wire snapshot back to domain values. Rules whose type
// is unknown or whose params do not validate are dropped rather than
// poisoning the restore.
func (snap Snapshot) State() ([]domain.Product, []domain.DiscountRule, []domain.SaleRecord, *domain.MarketEvent) {
	products := make([]domain.Product, 0, len(snap.Products))
	for _, p := range snap.Products {
		products = append(products, domain.Product{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Cost:      p.Cost,
			Category:  p.Category,
			CreatedAt: p.CreatedAt,
		})
	}

	rules := make([]domain.DiscountRule, 0, len(snap.Discounts))
	for _, r := range snap.Discounts {
		rule, ok := r.toDomain()
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}

	sales := make([]domain.SaleRecord, 0, len(snap.SalesHistory))
	for _, s := range snap.SalesHistory {
		sales = append(sales, s.toDomain())
	}

	var event *domain.MarketEvent
	if snap.EventContext != nil {
		event = &domain.MarketEvent{
			ID:        snap.EventContext.ID,
			Name:      snap.EventContext.Name,
			StartDate: snap.EventContext.StartDate,
			EndDate:   snap.EventContext.EndDate,
			Location:  snap.EventContext.Location,
			Cost:      snap.EventContext.Cost,
			CreatedAt: snap.EventContext.CreatedAt,
		}
	}
	return products, rules, sales, event
}

func fromDomainRule(r domain.DiscountRule) DiscountRule {
	out := DiscountRule{
		ID:        r.ID,
		Name:      r.Name,
		Type:      string(r.Type),
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
	}
	switch r.Type {
	case domain.DiscountBundle:
		if r.Bundle != nil {
			out.Quantity = &r.Bundle.Quantity
			out.BundlePrice = &r.Bundle.BundlePrice
		}
	case domain.DiscountPercentage:
		if r.Percentage != nil {
			out.Percentage = &r.Percentage.Percentage
		}
	case domain.DiscountFixedAmount:
		if r.FixedAmount != nil {
			out.Amount = &r.FixedAmount.Amount
			out.CompanionProductID = r.FixedAmount.CompanionProductID
		}
	}
	return out
}

func (r DiscountRule) toDomain() (domain.DiscountRule, bool) {
	rule := domain.DiscountRule{
		ID:        r.ID,
		Name:      r.Name,
		Type:      domain.DiscountType(r.Type),
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
	}
	switch rule.Type {
	case domain.DiscountBundle:
		if r.Quantity == nil || r.BundlePrice == nil {
			return domain.DiscountRule{}, false
		}
		rule.Bundle = &domain.BundleParams{Quantity: *r.Quantity, BundlePrice: *r.BundlePrice}
	case domain.DiscountPercentage:
		if r.Percentage == nil {
			return domain.DiscountRule{}, false
		}
		rule.Percentage = &domain.PercentageParams{Percentage: *r.Percentage}
	case domain.DiscountFixedAmount:
		if r.Amount == nil {
			return domain.DiscountRule{}, false
		}
		rule.FixedAmount = &domain.FixedAmountParams{
			Amount:             *r.Amount,
			CompanionProductID: r.CompanionProductID,
		}
	default:
		return domain.DiscountRule{}, false
	}
	return rule, true
}

func fromDomainSale(s domain.SaleRecord) SaleRecord {
	items := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, LineItem{
			ProductID:       it.ProductID,
			Name:            it.Name,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			DiscountApplied: it.DiscountApplied,
		})
	}
	return SaleRecord{
		ID:            s.ID,
		Timestamp:     s.Timestamp,
		Items:         items,
		PaymentMethod: string(s.PaymentMethod),
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		EventID:       s.EventID,
	}
}

func (s SaleRecord) toDomain() domain.SaleRecord {
	items := make([]domain.LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, domain.LineItem{
			ProductID:       it.ProductID,
			Name:            it.Name,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			DiscountApplied: it.DiscountApplied,
		})
	}
	method := domain.PaymentMethod(s.PaymentMethod)
	if _, err := domain.ParsePaymentMethod(s.PaymentMethod); err != nil {
		method = domain.PaymentCash
	}
	return domain.SaleRecord{
		ID:            s.ID,
		Timestamp:     s.Timestamp,
		Items:         items,
		PaymentMethod: method,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		EventID:       s.EventID,
	}
}

package app

import (
	"context"
	"errors"
	"sync"

	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/domain"
	"github.com/furuknap/marketmaster/internal/pricing"
)

// CatalogReader is the read-only catalog view the cart needs.
type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListDiscountRulesFor(ctx context.Context, productID string) ([]domain.DiscountRule, error)
}

// SaleAppender receives finalized sales. Appended records are never mutated.
type SaleAppender interface {
	AppendSale(ctx context.Context, record domain.SaleRecord) error
}

// ActiveEventSource resolves the currently active market event, nil when
// there is none.
type ActiveEventSource interface {
	ActiveEvent(ctx context.Context) (*domain.MarketEvent, error)
}

// CartService owns the single in-progress sale. Every mutation re-runs the
// pricing engine from scratch and returns the priced snapshot. The till is
// logically single-writer; the mutex only serializes overlapping HTTP
// requests.
type CartService struct {
	catalog CatalogReader
	sales   SaleAppender
	events  ActiveEventSource
	clock   clock.Clock

	mu            sync.Mutex
	items         []domain.LineItem
	paymentMethod domain.PaymentMethod
}

func NewCartService(catalog CatalogReader, sales SaleAppender, events ActiveEventSource, clk clock.Clock) *CartService {
	return &CartService{
		catalog:       catalog,
		sales:         sales,
		events:        events,
		clock:         clk,
		paymentMethod: domain.PaymentCash,
	}
}

// Current reprices and returns the in-progress sale.
func (s *CartService) Current(ctx context.Context) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price(ctx)
}

// AddItem puts one unit of the product in the cart, incrementing the
// existing line if there is one. An unknown product id is a soft no-op: the
// cart is returned unchanged and no error surfaces.
func (s *CartService) AddItem(ctx context.Context, productID string) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return s.price(ctx)
		}
		return domain.Sale{}, err
	}

	found := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		})
	}

	return s.price(ctx)
}

// AdjustQuantity applies delta to the matching line. A resulting quantity at
// or below zero removes the line entirely. Unknown lines are a no-op.
func (s *CartService) AdjustQuantity(ctx context.Context, productID string, delta int) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		s.items[i].Quantity += delta
		if s.items[i].Quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		break
	}

	return s.price(ctx)
}

// SetPaymentMethod records how the customer will pay. No re-pricing needed.
func (s *CartService) SetPaymentMethod(method domain.PaymentMethod) error {
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethod = method
	return nil
}

// Clear discards the in-progress sale and resets payment method to cash.
func (s *CartService) Clear() domain.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return domain.Sale{Items: []domain.LineItem{}, PaymentMethod: s.paymentMethod}
}

// Finalize turns the cart into an immutable SaleRecord, appends it to the
// sale history and resets the cart. Finalizing an empty cart fails with
// ErrEmptyCart and leaves both cart and history untouched.
func (s *CartService) Finalize(ctx context.Context) (domain.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return domain.SaleRecord{}, domain.ErrEmptyCart
	}

	sale, err := s.price(ctx)
	if err != nil {
		return domain.SaleRecord{}, err
	}

	eventID := ""
	if s.events != nil {
		event, err := s.events.ActiveEvent(ctx)
		if err != nil {
			return domain.SaleRecord{}, err
		}
		if event != nil {
			eventID = event.ID
		}
	}

	record := domain.SaleRecord{
		ID:            newID(),
		Timestamp:     s.clock.Now(),
		Items:         domain.CopyItems(sale.Items),
		PaymentMethod: sale.PaymentMethod,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.Total,
		EventID:       eventID,
	}

	if err := s.sales.AppendSale(ctx, record); err != nil {
		return domain.SaleRecord{}, err
	}

	s.reset()
	return record, nil
}

func (s *CartService) reset() {
	s.items = nil
	s.paymentMethod = domain.PaymentCash
}

// price runs the pricing engine over the current items. Callers hold the
// mutex.
func (s *CartService) price(ctx context.Context) (domain.Sale, error) {
	view, err := s.loadCatalogView(ctx)
	if err != nil {
		return domain.Sale{}, err
	}

	breakdown := pricing.Price(s.items, view)
	s.items = breakdown.Items

	return domain.Sale{
		Items:         domain.CopyItems(breakdown.Items),
		PaymentMethod: s.paymentMethod,
		Subtotal:      breakdown.Subtotal,
		Discount:      breakdown.Discount,
		Total:         breakdown.Total,
	}, nil
}

// loadCatalogView fetches the products and rules referenced by the cart into
// an immutable view for one pricing pass. Missing products are simply left
// out; the engine treats them as dangling references.
func (s *CartService) loadCatalogView(ctx context.Context) (*catalogView, error) {
	view := &catalogView{
		products: make(map[string]domain.Product, len(s.items)),
		rules:    make(map[string][]domain.DiscountRule, len(s.items)),
	}
	for _, item := range s.items {
		if _, ok := view.products[item.ProductID]; ok {
			continue
		}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		view.products[item.ProductID] = product

		rules, err := s.catalog.ListDiscountRulesFor(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		view.rules[item.ProductID] = rules
	}
	return view, nil
}

type catalogView struct {
	products map[string]domain.Product
	rules    map[string][]domain.DiscountRule
}

func (v *catalogView) Product(id string) (domain.Product, bool) {
	p, ok := v.products[id]
	return p, ok
}

func (v *catalogView) RulesFor(productID string) []domain.DiscountRule {
	return v.rules[productID]
}

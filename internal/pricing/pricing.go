// Package pricing computes the payable total for a cart. Price is a pure
// function: it is re-run from scratch after every cart mutation and keeps no
// state between calls.
package pricing

import (
	"math"

	"github.com/furuknap/marketmaster/internal/domain"
)

// Catalog is the read-only view the engine needs. RulesFor must return rules
// in catalog order; their discounts are evaluated in that order and summed.
type Catalog interface {
	Product(id string) (domain.Product, bool)
	RulesFor(productID string) []domain.DiscountRule
}

// Breakdown is the priced snapshot of a cart. Items carries the input lines
// with DiscountApplied filled in; the input slice is not modified.
type Breakdown struct {
	Subtotal float64
	Discount float64
	Total    float64
	Items    []domain.LineItem
}

// Price evaluates every discount rule against the cart and returns the
// priced breakdown.
//
// A line whose product no longer exists in the catalog contributes nothing
// to subtotal or discount and is otherwise left alone; a deleted product
// must never break an in-progress sale. Discounts are not clamped: a bundle
// priced above its nominal price raises the total, and a total below zero is
// returned as-is.
func Price(items []domain.LineItem, catalog Catalog) Breakdown {
	out := Breakdown{Items: domain.CopyItems(items)}

	for i := range out.Items {
		item := &out.Items[i]
		item.DiscountApplied = 0

		if _, ok := catalog.Product(item.ProductID); !ok {
			continue
		}

		lineSubtotal := item.UnitPrice * float64(item.Quantity)
		out.Subtotal += lineSubtotal

		for _, rule := range catalog.RulesFor(item.ProductID) {
			amount, ok := evaluate(rule, *item, lineSubtotal, items)
			if !ok {
				continue
			}
			item.DiscountApplied += amount
			out.Discount += amount
		}
	}

	out.Total = out.Subtotal - out.Discount
	return out
}

// evaluate computes a single rule's candidate discount for a line and
// whether it applies. The two-phase shape keeps the conditional fixed-amount
// rule a plain gate instead of an add-then-revert correction.
func evaluate(rule domain.DiscountRule, item domain.LineItem, lineSubtotal float64, cart []domain.LineItem) (float64, bool) {
	switch rule.Type {
	case domain.DiscountBundle:
		if rule.Bundle == nil {
			return 0, false
		}
		bundleCount := int(math.Floor(float64(item.Quantity) / float64(rule.Bundle.Quantity)))
		if bundleCount <= 0 {
			return 0, false
		}
		perBundle := item.UnitPrice*float64(rule.Bundle.Quantity) - rule.Bundle.BundlePrice
		return perBundle * float64(bundleCount), true

	case domain.DiscountPercentage:
		if rule.Percentage == nil || item.Quantity < 1 {
			return 0, false
		}
		return lineSubtotal * (float64(rule.Percentage.Percentage) / 100), true

	case domain.DiscountFixedAmount:
		if rule.FixedAmount == nil || item.Quantity < 1 {
			return 0, false
		}
		if id := rule.FixedAmount.CompanionProductID; id != "" && !inCart(cart, id) {
			return 0, false
		}
		return rule.FixedAmount.Amount * float64(item.Quantity), true
	}
	return 0, false
}

func inCart(items []domain.LineItem, productID string) bool {
	for _, it := range items {
		if it.ProductID == productID && it.Quantity >= 1 {
			return true
		}
	}
	return false
}

package domain

import "time"

type DiscountType string

const (
	DiscountBundle      DiscountType = "bundle"
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed"
)

// DiscountRule targets a single product. Exactly one of the params fields is
// set, matching Type. Several rules may target the same product; their
// discounts accumulate additively.
type DiscountRule struct {
	ID        string
	Name      string
	Type      DiscountType
	ProductID string
	CreatedAt time.Time

	Bundle      *BundleParams
	Percentage  *PercentageParams
	FixedAmount *FixedAmountParams
}

// BundleParams prices every Quantity units of the target product at
// BundlePrice instead of Quantity times the unit price.
type BundleParams struct {
	Quantity    int
	BundlePrice float64
}

type PercentageParams struct {
	Percentage int
}

// FixedAmountParams takes Amount off per unit. When CompanionProductID is
// set the discount only applies while at least one unit of that product is
// also in the cart.
type FixedAmountParams struct {
	Amount             float64
	CompanionProductID string
}

// Validate checks rule shape only. It deliberately does not guard against
// economically nonsensical values such as a bundle price above the nominal
// bundle price; those are evaluated as written by the pricing engine.
func (r DiscountRule) Validate() error {
	if r.Name == "" {
		return ErrRuleNameRequired
	}
	if r.ProductID == "" {
		return ErrInvalidID
	}
	switch r.Type {
	case DiscountBundle:
		if r.Bundle == nil || r.Bundle.Quantity < 2 {
			return ErrInvalidBundleQuantity
		}
		if r.Bundle.BundlePrice < 0 {
			return ErrInvalidPrice
		}
	case DiscountPercentage:
		if r.Percentage == nil || r.Percentage.Percentage < 1 || r.Percentage.Percentage > 100 {
			return ErrInvalidPercentage
		}
	case DiscountFixedAmount:
		if r.FixedAmount == nil || r.FixedAmount.Amount < 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrInvalidDiscountType
	}
	return nil
}

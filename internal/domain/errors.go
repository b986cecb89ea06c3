package domain

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrDiscountRuleNotFound  = errors.New("discount rule not found")
	ErrEmptyCart             = errors.New("cannot finalize an empty sale")
	ErrProductNameRequired   = errors.New("product name required")
	ErrEventNameRequired     = errors.New("event name required")
	ErrRuleNameRequired      = errors.New("discount rule name required")
	ErrInvalidPrice          = errors.New("price must not be negative")
	ErrInvalidCost           = errors.New("cost must not be negative")
	ErrInvalidBundleQuantity = errors.New("bundle quantity must be at least 2")
	ErrInvalidPercentage     = errors.New("percentage must be between 1 and 100")
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrInvalidDiscountType   = errors.New("unknown discount type")
	ErrInvalidPaymentMethod  = errors.New("unknown payment method")
	ErrNoActiveEvent         = errors.New("no active market event")
	ErrInvalidID             = errors.New("invalid id")
)

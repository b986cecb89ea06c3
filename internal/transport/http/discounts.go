package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/domain"
)

// DiscountService is the minimal interface needed by the discount endpoints.
type DiscountService interface {
	CreateDiscountRule(ctx context.Context, in app.DiscountRuleInput) (domain.DiscountRule, error)
	DeleteDiscountRule(ctx context.Context, id string) error
	ListDiscountRules(ctx context.Context) ([]domain.DiscountRule, error)
}

// HandleDiscounts serves GET (list) and POST (create) on /discounts.
func HandleDiscounts(svc DiscountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rules, err := svc.ListDiscountRules(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]discountResponse, 0, len(rules))
			for _, rule := range rules {
				resp = append(resp, toDiscountResponse(rule))
			}
			writeJSON(w, http.StatusOK, resp)
			return
		case http.MethodPost:
			var req discountRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			rule, err := svc.CreateDiscountRule(r.Context(), req.toInput())
			if err != nil {
				writeDiscountError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toDiscountResponse(rule))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleDiscountByID serves DELETE on /discounts/{id}.
func HandleDiscountByID(svc DiscountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathSuffix(r.URL.Path, "/discounts/")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		if err := svc.DeleteDiscountRule(r.Context(), id); err != nil {
			writeDiscountError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeDiscountError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrRuleNameRequired:
		writeError(w, http.StatusBadRequest, codeRuleNameRequired, err.Error())
	case domain.ErrInvalidBundleQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidBundleQuantity, err.Error())
	case domain.ErrInvalidPercentage:
		writeError(w, http.StatusBadRequest, codeInvalidPercentage, err.Error())
	case domain.ErrInvalidAmount:
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrInvalidDiscountType:
		writeError(w, http.StatusBadRequest, codeInvalidDiscountType, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrDiscountRuleNotFound:
		writeError(w, http.StatusNotFound, codeRuleNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type discountRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	ProductID string `json:"product_id"`

	Quantity           *int     `json:"quantity,omitempty"`
	BundlePrice        *float64 `json:"bundle_price,omitempty"`
	Percentage         *int     `json:"percentage,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	CompanionProductID string   `json:"companion_product_id,omitempty"`
}

func (r discountRequest) toInput() app.DiscountRuleInput {
	in := app.DiscountRuleInput{
		Name:      r.Name,
		Type:      domain.DiscountType(r.Type),
		ProductID: r.ProductID,
	}
	switch in.Type {
	case domain.DiscountBundle:
		if r.Quantity != nil && r.BundlePrice != nil {
			in.Bundle = &domain.BundleParams{Quantity: *r.Quantity, BundlePrice: *r.BundlePrice}
		}
	case domain.DiscountPercentage:
		if r.Percentage != nil {
			in.Percentage = &domain.PercentageParams{Percentage: *r.Percentage}
		}
	case domain.DiscountFixedAmount:
		if r.Amount != nil {
			in.FixedAmount = &domain.FixedAmountParams{
				Amount:             *r.Amount,
				CompanionProductID: r.CompanionProductID,
			}
		}
	}
	return in
}

type discountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ProductID string `json:"product_id"`

	Quantity           *int     `json:"quantity,omitempty"`
	BundlePrice        *float64 `json:"bundle_price,omitempty"`
	Percentage         *int     `json:"percentage,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	CompanionProductID string   `json:"companion_product_id,omitempty"`
}

func toDiscountResponse(rule domain.DiscountRule) discountResponse {
	resp := discountResponse{
		ID:        rule.ID,
		Name:      rule.Name,
		Type:      string(rule.Type),
		ProductID: rule.ProductID,
	}
	switch rule.Type {
	case domain.DiscountBundle:
		if rule.Bundle != nil {
			resp.Quantity = &rule.Bundle.Quantity
			resp.BundlePrice = &rule.Bundle.BundlePrice
		}
	case domain.DiscountPercentage:
		if rule.Percentage != nil {
			resp.Percentage = &rule.Percentage.Percentage
		}
	case domain.DiscountFixedAmount:
		if rule.FixedAmount != nil {
			resp.Amount = &rule.FixedAmount.Amount
			resp.CompanionProductID = rule.FixedAmount.CompanionProductID
		}
	}
	return resp
}

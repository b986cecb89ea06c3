package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeProductNameRequired   = "product_name_required"
	codeRuleNameRequired      = "discount_rule_name_required"
	codeEventNameRequired     = "event_name_required"
	codeInvalidPrice          = "invalid_price"
	codeInvalidCost           = "invalid_cost"
	codeInvalidBundleQuantity = "invalid_bundle_quantity"
	codeInvalidPercentage     = "invalid_percentage"
	codeInvalidAmount         = "invalid_amount"
	codeInvalidDiscountType   = "invalid_discount_type"
	codeInvalidPaymentMethod  = "invalid_payment_method"
	codeInvalidDate           = "invalid_date"
	codeProductNotFound       = "product_not_found"
	codeRuleNotFound          = "discount_rule_not_found"
	codeEmptyCart             = "empty_cart"
	codeNoActiveEvent         = "no_active_event"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

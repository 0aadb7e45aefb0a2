package api

import "maps"

// Metadata carries structured fields attached to log entries and tracked
// telemetry events
type Metadata map[string]any

const (
	MetaTransition   = "transition_name"
	MetaErrorCode    = "error_code"
	MetaErrorDesc    = "error_desc"
	MetaContextType  = "context_type"
	MetaContextID    = "context_id"
	MetaToken        = "token"
	MetaFundingType  = "selected_payment_method"
	MetaButtonSessID = "button_session_uid"
	MetaPaymentFlow  = "payment_flow"
	MetaPaymentID    = "payment_id"
	MetaOrderID      = "order_id"
	MetaOutcome      = "outcome"
	MetaIssue        = "integration_issue"
	MetaWhitelist    = "integration_whitelist"
)

const (
	TransitionClickChooseFunding = "process_click_pay_with_different_payment_method"
	TransitionClickChooseAccount = "process_click_pay_with_different_account"
	TransitionOrderValidate      = "process_order_validate"
)

const ContextTypeOrderID = "EC-Token"

// Apply will merge the keys/values of the other metadata set into this one
func (m Metadata) Apply(other Metadata) Metadata {
	res := make(Metadata, len(m)+len(other))
	maps.Copy(res, m)
	maps.Copy(res, other)
	return res
}

// GetMetaString returns a non-empty string value stored under key
func GetMetaString[T ~string](meta Metadata, key string) (T, bool) {
	var zero T
	val, ok := meta[key]
	if !ok {
		return zero, false
	}

	switch v := val.(type) {
	case T:
		if v == "" {
			return zero, false
		}
		return v, true
	case string:
		if v == "" {
			return zero, false
		}
		return T(v), true
	default:
		return zero, false
	}
}

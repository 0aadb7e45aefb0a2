package flow

import (
	"fmt"

	"github.com/kode4food/paybutton/pkg/api"
)

// Eligible returns every registered flow that admits the payment, in
// priority order. Predicates that panic are treated as rejecting
func (r *Registry) Eligible(
	props *api.ButtonProps, sd *api.ServiceData, p api.Payment,
) []*Registration {
	var res []*Registration
	for _, reg := range r.Flows() {
		if !r.isEligible(reg, props, sd) {
			continue
		}
		if !r.isPaymentEligible(reg, sd, p) {
			continue
		}
		res = append(res, reg)
	}
	r.logger.Flush()
	return res
}

// Select returns the highest-priority flow admitting the payment
func (r *Registry) Select(
	props *api.ButtonProps, sd *api.ServiceData, p api.Payment,
) (*Registration, bool) {
	for _, reg := range r.Flows() {
		if !r.isEligible(reg, props, sd) {
			continue
		}
		if r.isPaymentEligible(reg, sd, p) {
			r.logger.Flush()
			return reg, true
		}
	}
	r.logger.Flush()
	return nil, false
}

// Resolve selects a flow for the payment, falling back to the default flow
// when nothing else admits it
func (r *Registry) Resolve(
	props *api.ButtonProps, sd *api.ServiceData, p api.Payment,
) (*Registration, error) {
	if reg, ok := r.Select(props, sd, p); ok {
		return reg, nil
	}
	if def, ok := r.Default(); ok {
		return def, nil
	}
	return nil, api.ConfigurationError("no_eligible_payment_flow",
		fmt.Errorf("%w: %s", ErrNoEligibleFlow, p.FundingSource))
}

func (r *Registry) isEligible(
	reg *Registration, props *api.ButtonProps, sd *api.ServiceData,
) (ok bool) {
	defer r.recoverPredicate(reg, "is_eligible", &ok)
	return reg.IsEligible(props, sd)
}

func (r *Registry) isPaymentEligible(
	reg *Registration, sd *api.ServiceData, p api.Payment,
) (ok bool) {
	defer r.recoverPredicate(reg, "is_payment_eligible", &ok)
	return reg.IsPaymentEligible(sd, p)
}

func (r *Registry) recoverPredicate(
	reg *Registration, predicate string, ok *bool,
) {
	if rec := recover(); rec != nil {
		*ok = false
		r.logger.Error("payment_flow_eligibility_error", api.Metadata{
			api.MetaPaymentFlow: reg.Name(),
			"predicate":         predicate,
			"err":               fmt.Sprint(rec),
		})
	}
}

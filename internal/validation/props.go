package validation

import (
	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/util"
)

type (
	// Validator reports integration mistakes to the telemetry logger
	Validator struct {
		services  client.Services
		logger    telemetry.Logger
		whitelist map[bool]util.Set[api.ClientID]
	}

	// Whitelist lists the client ids whose order validation failures are
	// reported but never fail the payment
	Whitelist struct {
		Production []api.ClientID
		Sandbox    []api.ClientID
	}
)

// New creates a Validator fetching orders through services
func New(
	services client.Services, logger telemetry.Logger, wl Whitelist,
) *Validator {
	return &Validator{
		services: services,
		logger:   logger,
		whitelist: map[bool]util.Set[api.ClientID]{
			false: util.SetOf(wl.Production...),
			true:  util.SetOf(wl.Sandbox...),
		},
	}
}

// ValidateProps warns when a billing agreement or subscription factory is
// supplied with an intent that can not use it
func (v *Validator) ValidateProps(props *api.ButtonProps) {
	if props.CreateBillingAgreement != nil &&
		props.Intent != api.IntentTokenize {
		v.logger.Warn(
			"smart_button_validation_error_expected_intent_tokenize",
			api.Metadata{"intent": string(props.Intent)},
		)
	}
	if props.CreateSubscription != nil &&
		props.Intent != api.IntentSubscription {
		v.logger.Warn(
			"smart_button_validation_error_expected_intent_subscription",
			api.Metadata{"intent": string(props.Intent)},
		)
	}
	v.logger.Flush()
}

func (v *Validator) isWhitelisted(sandbox bool, id api.ClientID) bool {
	return id != "" && v.whitelist[sandbox].Contains(id)
}

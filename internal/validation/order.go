package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kode4food/paybutton/pkg/api"
)

const (
	CodeOrderValidation = "order_validation_error"

	defaultCurrency = "USD"
	intentSale      = "sale"
)

var (
	ErrInvalidOrderID    = errors.New("invalid order id")
	ErrIncorrectIntent   = errors.New("unexpected order intent")
	ErrIncorrectCurrency = errors.New("unexpected order currency")
	ErrNoMerchantID      = errors.New("could not determine correct merchant id")
	ErrPayeeMismatch     = errors.New("payees do not match expected merchant id")
)

var emailAddress = regexp.MustCompile(`^.+@.+\..+$`)

// ValidateOrder checks the remote order against the render. Failures are
// logged and tracked; they fail the payment unless the client id is
// whitelisted for the environment
func (v *Validator) ValidateOrder(
	ctx context.Context, orderID api.OrderID, props *api.ButtonProps,
	sd *api.ServiceData,
) error {
	err := v.checkOrder(ctx, orderID, props, sd)
	if err == nil {
		v.logger.Flush()
		return nil
	}

	sandbox := props.Env == api.EnvSandbox
	whitelisted := v.isWhitelisted(sandbox, props.ClientID)
	code := CodeOrderValidation
	if sandbox {
		code = "sandbox_" + code
	}
	if whitelisted {
		code += "_whitelist"
	}
	clientID := string(props.ClientID)
	if clientID == "" {
		clientID = "unknown"
	}

	data := api.Metadata{"err": err.Error()}
	v.logger.
		Warn(code, data).
		Warn(code+"_"+clientID, data).
		Track(api.Metadata{
			api.MetaTransition:  api.TransitionOrderValidate,
			api.MetaContextType: api.ContextTypeOrderID,
			api.MetaToken:       string(orderID),
			api.MetaContextID:   string(orderID),
			api.MetaIssue:       err.Error(),
			api.MetaWhitelist:   strconv.FormatBool(whitelisted),
		}).
		Flush()

	if whitelisted {
		return nil
	}
	var e *api.Error
	if errors.As(err, &e) {
		return err
	}
	return api.ConfigurationError(code, err)
}

func (v *Validator) checkOrder(
	ctx context.Context, orderID api.OrderID, props *api.ButtonProps,
	sd *api.ServiceData,
) error {
	if !orderID.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidOrderID, orderID)
	}
	info, err := v.services.GetSupplementalOrderInfo(ctx, orderID)
	if err != nil {
		return err
	}

	cart := info.CheckoutSession.Cart
	intent := api.Intent(strings.ToLower(cart.Intent))
	if intent == intentSale {
		intent = api.IntentCapture
	}
	expectedIntent := props.Intent
	if expectedIntent == "" {
		expectedIntent = api.IntentCapture
	}
	if intent != expectedIntent {
		v.logger.Warn("smart_button_validation_error_incorrect_intent",
			api.Metadata{
				"intent":         string(intent),
				"expectedIntent": string(expectedIntent),
			},
		)
		return fmt.Errorf("%w: expected %s, got %s",
			ErrIncorrectIntent, expectedIntent, intent,
		)
	}

	var currency, amount string
	if cart.Amounts != nil {
		currency = cart.Amounts.Total.CurrencyCode
		amount = cart.Amounts.Total.CurrencyValue
	}
	expectedCurrency := props.Currency
	if expectedCurrency == "" {
		expectedCurrency = defaultCurrency
	}
	if currency != "" && currency != expectedCurrency {
		v.logger.Warn("smart_button_validation_error_incorrect_currency",
			api.Metadata{
				"currency":         currency,
				"expectedCurrency": expectedCurrency,
			},
		)
		return fmt.Errorf("%w: expected %s, got %s",
			ErrIncorrectCurrency, expectedCurrency, currency,
		)
	}

	if sd == nil || len(sd.MerchantID) == 0 {
		v.logger.Warn("smart_button_validation_error_no_merchant_id", nil)
		return ErrNoMerchantID
	}

	v.checkVault(props, cart, amount)
	return v.checkPayees(props, sd, info.CheckoutSession.Payees)
}

func (v *Validator) checkVault(
	props *api.ButtonProps, cart api.Cart, amount string,
) {
	if cart.BillingType != "" && !props.Vault {
		purchase := "without"
		if amount != "" {
			purchase = "with"
		}
		v.logger.Warn(fmt.Sprintf(
			"smart_button_validation_error_billing_%s_purchase_no_vault",
			purchase,
		), nil)
	}
	if props.Vault && cart.BillingType == "" &&
		props.CreateBillingAgreement == nil &&
		props.CreateSubscription == nil &&
		props.ClientAccessToken == "" && props.UserIDToken == "" {
		v.logger.Warn(
			"smart_button_validation_error_vault_passed_not_needed", nil,
		)
	}
}

func (v *Validator) checkPayees(
	props *api.ButtonProps, sd *api.ServiceData, payees []api.Payee,
) error {
	if payees == nil {
		v.logger.Warn(
			"smart_button_validation_error_supplemental_order_missing_payees",
			nil,
		)
		return nil
	}
	if len(payees) == 0 {
		v.logger.Warn(
			"smart_button_validation_error_supplemental_order_no_payees",
			nil,
		)
		return nil
	}

	unique, ok := uniquePayees(payees)
	if !ok {
		v.logger.Warn(
			"smart_button_validation_error_supplemental_order_missing_values",
			api.Metadata{"payees": marshal(payees)},
		)
		return nil
	}
	names := make([]string, 0, len(unique))
	for _, p := range unique {
		if p.MerchantID != "" {
			names = append(names, p.MerchantID)
			continue
		}
		names = append(names, p.EmailValue())
	}
	payeesStr := strings.Join(names, ",")
	data := api.Metadata{
		"payees":     marshal(unique),
		"merchantID": marshal(sd.MerchantID),
	}

	if len(props.MerchantID) > 0 {
		if !isValidMerchantIDs(props.MerchantID, unique) {
			v.logger.Warn(
				"smart_button_validation_error_explicit_payee_transaction_mismatch",
				data,
			)
			return fmt.Errorf("%w: %s", ErrPayeeMismatch, payeesStr)
		}
		return nil
	}

	if isValidMerchantIDs(sd.MerchantID, unique) {
		return nil
	}
	v.logger.Warn(
		"smart_button_validation_error_derived_payee_transaction_mismatch",
		data,
	)
	if len(unique) > 1 {
		return fmt.Errorf("%w: %s", ErrPayeeMismatch, payeesStr)
	}
	if props.Env == api.EnvSandbox {
		v.logger.Warn(
			"smart_button_validation_error_derived_payee_transaction_mismatch_sandbox",
			data,
		)
	}
	return nil
}

// isValidMerchantIDs reports whether every merchant id or email matches a
// payee and every payee matches a merchant id or email. Emails compare
// case-insensitively
func isValidMerchantIDs(merchantIDs []string, payees []api.Payee) bool {
	if len(merchantIDs) != len(payees) {
		return false
	}

	var emails, ids []string
	for _, id := range merchantIDs {
		if emailAddress.MatchString(id) {
			emails = append(emails, strings.ToLower(id))
		} else {
			ids = append(ids, id)
		}
	}

	for _, email := range emails {
		if !slices.ContainsFunc(payees, func(p api.Payee) bool {
			return email == strings.ToLower(p.EmailValue())
		}) {
			return false
		}
	}
	for _, id := range ids {
		if !slices.ContainsFunc(payees, func(p api.Payee) bool {
			return id == p.MerchantID
		}) {
			return false
		}
	}

	for _, p := range payees {
		email := strings.ToLower(p.EmailValue())
		if !slices.Contains(ids, p.MerchantID) &&
			(email == "" || !slices.Contains(emails, email)) {
			return false
		}
	}
	return true
}

func uniquePayees(payees []api.Payee) ([]api.Payee, bool) {
	seen := map[string]bool{}
	var res []api.Payee
	for _, p := range payees {
		key := p.MerchantID
		if key == "" {
			key = p.EmailValue()
		}
		if key == "" {
			return nil, false
		}
		if !seen[key] {
			seen[key] = true
			res = append(res, p)
		}
	}
	return res, true
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

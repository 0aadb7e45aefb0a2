package api

type (
	// FundingSource identifies the way a buyer pays (PayPal balance, credit,
	// card, local payment methods)
	FundingSource string

	// InstrumentType identifies the kind of a stored wallet instrument
	InstrumentType string

	// BuyerIntent describes what the buyer asked for when an attempt began
	BuyerIntent string

	// FundingEligibility reports which funding sources may be rendered for
	// the current merchant and buyer
	FundingEligibility map[FundingSource]*FundingEligible

	// FundingEligible describes eligibility for a single funding source
	FundingEligible struct {
		Eligible bool `json:"eligible"`
		Branded  bool `json:"branded,omitempty"`
	}
)

const (
	FundingPayPal     FundingSource = "paypal"
	FundingCredit     FundingSource = "credit"
	FundingCard       FundingSource = "card"
	FundingVenmo      FundingSource = "venmo"
	FundingPayLater   FundingSource = "paylater"
	FundingBancontact FundingSource = "bancontact"
	FundingIdeal      FundingSource = "ideal"
	FundingSepa       FundingSource = "sepa"
)

const (
	InstrumentCard    InstrumentType = "card"
	InstrumentBank    InstrumentType = "bank"
	InstrumentBalance InstrumentType = "balance"
	InstrumentCredit  InstrumentType = "credit"
)

const (
	BuyerIntentPay                 BuyerIntent = "pay"
	BuyerIntentPayDifferentFunding BuyerIntent = "pay_with_different_funding_shipping"
	BuyerIntentPayDifferentAccount BuyerIntent = "pay_with_different_account"
)

// IsCredit returns whether the instrument type is a credit-style instrument
func (t InstrumentType) IsCredit() bool {
	return t == InstrumentCredit
}

// IsEligible returns whether the funding source is present and eligible
func (e FundingEligibility) IsEligible(fs FundingSource) bool {
	if e == nil {
		return false
	}
	fe, ok := e[fs]
	return ok && fe != nil && fe.Eligible
}

// MenuFundingSource returns the funding source an alternate-flow attempt
// should present, given the selected instrument. Credit-style instruments
// always present the credit funding source
func MenuFundingSource(fs FundingSource, it InstrumentType) FundingSource {
	if it.IsCredit() {
		return FundingCredit
	}
	return fs
}

// FundingEligibilityRequest identifies the render whose funding
// eligibility is queried
type FundingEligibilityRequest struct {
	ClientID     ClientID `json:"clientID"`
	MerchantID   []string `json:"merchantID,omitempty"`
	BuyerCountry string   `json:"buyerCountry,omitempty"`
	Currency     string   `json:"currency"`
	Intent       Intent   `json:"intent"`
}

package api

import "context"

type (
	// Payment is the context of one attempted transaction. It is created per
	// interaction and treated as a value: overrides produce copies
	Payment struct {
		Win               Window            `json:"-"`
		Button            Element           `json:"-"`
		MenuToggle        Element           `json:"-"`
		CreateAccessToken AccessTokenSource `json:"-"`
		Card              *Card             `json:"card,omitempty"`
		ID                PaymentID         `json:"id"`
		FundingSource     FundingSource     `json:"funding_source"`
		InstrumentID      string            `json:"instrument_id,omitempty"`
		InstrumentType    InstrumentType    `json:"instrument_type,omitempty"`
		PaymentMethodID   string            `json:"payment_method_id,omitempty"`
		BuyerIntent       BuyerIntent       `json:"buyer_intent"`
		IsClick           bool              `json:"is_click"`
	}

	// Card holds the card brand selected on a card button, if any
	Card struct {
		Brand string `json:"brand"`
	}

	// SelectedFunding is what a rendered button element advertises through
	// its data attributes
	SelectedFunding struct {
		Card            *Card
		FundingSource   FundingSource
		InstrumentID    string
		InstrumentType  InstrumentType
		PaymentMethodID string
	}

	// AccessTokenSource lazily produces a buyer access token
	AccessTokenSource func(context.Context) (string, error)
)

// NewPayment creates a click-initiated payment for the funding selected on
// a rendered button
func NewPayment(button Element, sel SelectedFunding) Payment {
	return Payment{
		ID:              NewPaymentID(),
		Button:          button,
		FundingSource:   sel.FundingSource,
		Card:            sel.Card,
		InstrumentID:    sel.InstrumentID,
		InstrumentType:  sel.InstrumentType,
		PaymentMethodID: sel.PaymentMethodID,
		BuyerIntent:     BuyerIntentPay,
		IsClick:         true,
	}
}

// WithFallback returns a copy of the payment re-targeted at the full web
// checkout: not gesture-initiated, with the given intent and funding source
func (p Payment) WithFallback(
	fs FundingSource, intent BuyerIntent, token AccessTokenSource,
) Payment {
	res := p
	res.ID = NewPaymentID()
	res.FundingSource = fs
	res.BuyerIntent = intent
	res.CreateAccessToken = token
	res.IsClick = false
	return res
}

// WithWindow returns a copy of the payment bound to an already-open popup
// window, with the given intent and funding source
func (p Payment) WithWindow(
	win Window, fs FundingSource, intent BuyerIntent,
) Payment {
	res := p
	res.ID = NewPaymentID()
	res.Win = win
	res.FundingSource = fs
	res.BuyerIntent = intent
	return res
}

// CloseWindow closes the pre-opened popup window, if there is one
func (p Payment) CloseWindow() error {
	if p.Win == nil {
		return nil
	}
	return p.Win.Close()
}

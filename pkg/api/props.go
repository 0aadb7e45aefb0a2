package api

import "context"

type (
	// Intent is the merchant's declared transaction intent
	Intent string

	// Env is the environment the buttons are rendered in
	Env string

	// ButtonProps are the merchant-supplied properties and callbacks of a
	// button render
	ButtonProps struct {
		CreateOrder            CreateOrder
		OnApprove              OnApprove
		OnCancel               OnCancel
		OnError                OnError
		OnClick                OnClick
		OnShippingChange       OnShippingChange
		CreateBillingAgreement TokenFactory
		CreateSubscription     TokenFactory
		ClientID               ClientID
		Env                    Env
		Intent                 Intent
		SessionID              string
		ButtonSessionID        ButtonSessionID
		ClientMetadataID       string
		Currency               string
		Amount                 string
		UserAccessToken        string
		ClientAccessToken      string
		UserIDToken            string
		Locale                 string
		MerchantID             []string
		Vault                  bool
		Commit                 bool
		EnablePWB              bool
	}

	// Config is the static configuration of a button render
	Config struct {
		CSPNonce string
		Version  string
	}

	// ApproveData is passed to the merchant's OnApprove callback
	ApproveData struct {
		OrderID          OrderID `json:"orderID"`
		PayerID          string  `json:"payerID,omitempty"`
		PaymentID        string  `json:"paymentID,omitempty"`
		BillingToken     string  `json:"billingToken,omitempty"`
		SubscriptionID   string  `json:"subscriptionID,omitempty"`
		BuyerAccessToken string  `json:"buyerAccessToken,omitempty"`
		AuthCode         string  `json:"authCode,omitempty"`
	}

	// ApproveActions are the actions offered to the merchant's OnApprove
	ApproveActions struct {
		Restart func(context.Context) error
	}

	// ClickData is passed to the merchant's OnClick callback
	ClickData struct {
		FundingSource FundingSource `json:"fundingSource"`
	}

	// CreateOrder produces the merchant order identifier
	CreateOrder func(context.Context) (OrderID, error)

	// OnApprove is called once the buyer approved the payment
	OnApprove func(context.Context, ApproveData, ApproveActions) error

	// OnCancel is called when the buyer abandoned the payment
	OnCancel func(context.Context) error

	// OnError receives payment failures
	OnError func(error)

	// OnClick is called synchronously when a payment attempt begins
	OnClick func(ClickData)

	// OnShippingChange is called when the buyer changes their shipping
	// details; its presence alters which flows are eligible
	OnShippingChange func(context.Context, map[string]any) error

	// TokenFactory produces a billing agreement or subscription token
	TokenFactory func(context.Context) (string, error)
)

const (
	IntentCapture      Intent = "capture"
	IntentAuthorize    Intent = "authorize"
	IntentOrder        Intent = "order"
	IntentTokenize     Intent = "tokenize"
	IntentSubscription Intent = "subscription"
)

const (
	EnvProduction Env = "production"
	EnvSandbox    Env = "sandbox"
	EnvStage      Env = "stage"
	EnvLocal      Env = "local"
	EnvTest       Env = "test"
)

// EffectiveClientMetadataID returns the client metadata id, falling back to
// the session id
func (p *ButtonProps) EffectiveClientMetadataID() string {
	if p.ClientMetadataID != "" {
		return p.ClientMetadataID
	}
	return p.SessionID
}

// ReportError forwards an error to the merchant's OnError callback, if any
func (p *ButtonProps) ReportError(err error) {
	if p.OnError != nil && err != nil {
		p.OnError(err)
	}
}

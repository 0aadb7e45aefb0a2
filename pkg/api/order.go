package api

type (
	// OrderInfo is the supplemental order information held remotely
	OrderInfo struct {
		CheckoutSession OrderSession `json:"checkoutSession"`
	}

	// OrderSession describes the remote checkout session of an order
	OrderSession struct {
		Cart   Cart         `json:"cart"`
		Payees []Payee      `json:"payees"`
		Flags  SessionFlags `json:"flags"`
	}

	// Cart is the order's cart as seen by the remote services
	Cart struct {
		Amounts     *CartAmounts `json:"amounts,omitempty"`
		Intent      string       `json:"intent"`
		BillingType string       `json:"billingType,omitempty"`
	}

	// CartAmounts holds the cart totals
	CartAmounts struct {
		Total Money `json:"total"`
	}

	// Money is a currency amount
	Money struct {
		CurrencyCode  string `json:"currencyCode"`
		CurrencyValue string `json:"currencyValue"`
	}

	// Payee is a merchant receiving funds from the order
	Payee struct {
		Email      *PayeeEmail `json:"email,omitempty"`
		MerchantID string      `json:"merchantId,omitempty"`
	}

	// PayeeEmail is a payee identified by email address
	PayeeEmail struct {
		StringValue string `json:"stringValue"`
	}

	// SessionFlags are behavior flags of the checkout session
	SessionFlags struct {
		IsChangeShippingAddressAllowed bool `json:"isChangeShippingAddressAllowed"`
	}

	// ClientConfig is pushed to the remote side before a checkout starts
	ClientConfig struct {
		FundingSource FundingSource `json:"fundingSource"`
		OrderID       OrderID       `json:"orderID"`
		Inline        bool          `json:"inline"`
	}

	// SmartWalletRequest identifies the buyer wallet to fetch
	SmartWalletRequest struct {
		ClientID         ClientID `json:"clientID"`
		MerchantID       []string `json:"merchantID"`
		Currency         string   `json:"currency"`
		Amount           string   `json:"amount"`
		ClientMetadataID string   `json:"clientMetadataID"`
		UserAccessToken  string   `json:"-"`
	}

	// FraudnetRequest configures fraud-net loading before a wallet fetch
	FraudnetRequest struct {
		Env              Env    `json:"env"`
		ClientMetadataID string `json:"clientMetadataID"`
		CSPNonce         string `json:"cspNonce,omitempty"`
	}
)

// EmailValue returns the payee email, or the empty string
func (p Payee) EmailValue() string {
	if p.Email == nil {
		return ""
	}
	return p.Email.StringValue
}

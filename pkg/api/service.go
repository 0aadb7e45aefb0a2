package api

type (
	// ServiceData is server-resolved context for a whole button render. It
	// is read-only to payment flows
	ServiceData struct {
		Wallet                 Wallet             `json:"wallet,omitempty"`
		FundingEligibility     FundingEligibility `json:"fundingEligibility"`
		Eligibility            Eligibility        `json:"eligibility"`
		Content                Content            `json:"content"`
		MerchantID             []string           `json:"merchantID"`
		BuyerAccessToken       string             `json:"buyerAccessToken,omitempty"`
		FacilitatorAccessToken string             `json:"facilitatorAccessToken"`
		BuyerCountry           string             `json:"buyerCountry,omitempty"`
		SDKMeta                string             `json:"sdkMeta,omitempty"`
		Cookies                string             `json:"cookies,omitempty"`
	}

	// Eligibility carries feature-level eligibility flags
	Eligibility struct {
		NativeCheckout map[FundingSource]bool `json:"nativeCheckout,omitempty"`
		CardFields     bool                   `json:"cardFields"`
	}

	// Content holds the localized strings the engine needs
	Content struct {
		PayWithDifferentMethod  string `json:"payWithDifferentMethod"`
		PayWithDifferentAccount string `json:"payWithDifferentAccount"`
	}
)

// HasWallet returns whether a wallet snapshot was resolved for this render
func (sd *ServiceData) HasWallet() bool {
	return sd != nil && len(sd.Wallet) > 0
}

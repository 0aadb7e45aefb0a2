package helpers

import "github.com/kode4food/paybutton/pkg/api"

// CreditWallet creates a PayPal wallet holding credit instruments
func CreditWallet(ids ...string) api.Wallet {
	return walletOf(api.InstrumentCredit, ids...)
}

// BankWallet creates a PayPal wallet holding bank instruments
func BankWallet(ids ...string) api.Wallet {
	return walletOf(api.InstrumentBank, ids...)
}

// NewServiceData creates service data for a render holding the wallet
func NewServiceData(w api.Wallet) *api.ServiceData {
	return &api.ServiceData{
		Wallet: w,
		FundingEligibility: api.FundingEligibility{
			api.FundingPayPal: {Eligible: true},
			api.FundingCredit: {Eligible: true},
		},
		Content: api.Content{
			PayWithDifferentMethod:  "Pay with a different method",
			PayWithDifferentAccount: "Pay with a different account",
		},
		MerchantID:             []string{"MERCHANT-1"},
		BuyerAccessToken:       "buyer-token",
		FacilitatorAccessToken: "facilitator-token",
	}
}

// WalletPayment creates a click payment for a wallet instrument
func WalletPayment(
	button api.Element, id string, it api.InstrumentType,
) api.Payment {
	return api.NewPayment(button, api.SelectedFunding{
		FundingSource:  api.FundingPayPal,
		InstrumentID:   id,
		InstrumentType: it,
	})
}

func walletOf(it api.InstrumentType, ids ...string) api.Wallet {
	funding := &api.WalletFunding{}
	for _, id := range ids {
		funding.Instruments = append(funding.Instruments, &api.Instrument{
			InstrumentID: id,
			Type:         it,
			Label:        "••" + id,
			AccessToken:  "token-" + id,
			OneClick:     true,
		})
	}
	return api.Wallet{api.FundingPayPal: funding}
}

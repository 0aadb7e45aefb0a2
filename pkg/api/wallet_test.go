package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/pkg/api"
)

func testWallet() api.Wallet {
	return api.Wallet{
		api.FundingPayPal: {
			Instruments: []*api.Instrument{
				{
					InstrumentID: "CC-123",
					Type:         api.InstrumentCredit,
					AccessToken:  "token-123",
				},
				{
					InstrumentID: "BA-456",
					Type:         api.InstrumentBank,
				},
			},
		},
	}
}

func TestWalletInstrument(t *testing.T) {
	w := testWallet()

	inst, err := w.Instrument(api.FundingPayPal, "CC-123")
	assert.NoError(t, err)
	assert.Equal(t, api.InstrumentCredit, inst.Type)

	_, err = w.Instrument(api.FundingCard, "CC-123")
	assert.ErrorIs(t, err, api.ErrWalletNoFunding)

	_, err = w.Instrument(api.FundingPayPal, "CC-999")
	assert.ErrorIs(t, err, api.ErrInstrumentNotFound)

	assert.True(t, w.HasInstrument(api.FundingPayPal, "BA-456"))
	assert.False(t, w.HasInstrument(api.FundingPayPal, ""))
}

func TestWalletAccessToken(t *testing.T) {
	w := testWallet()

	tok, err := w.AccessTokenFor(api.FundingPayPal, "CC-123")
	assert.NoError(t, err)
	assert.Equal(t, "token-123", tok)

	_, err = w.AccessTokenFor(api.FundingPayPal, "BA-456")
	assert.ErrorIs(t, err, api.ErrNoAccessToken)
}

func TestMenuFundingSource(t *testing.T) {
	assert.Equal(t, api.FundingCredit,
		api.MenuFundingSource(api.FundingPayPal, api.InstrumentCredit),
	)
	assert.Equal(t, api.FundingPayPal,
		api.MenuFundingSource(api.FundingPayPal, api.InstrumentBank),
	)
}

func TestFundingEligibility(t *testing.T) {
	fe := api.FundingEligibility{
		api.FundingPayPal: {Eligible: true},
		api.FundingVenmo:  {Eligible: false},
		api.FundingCard:   nil,
	}
	assert.True(t, fe.IsEligible(api.FundingPayPal))
	assert.False(t, fe.IsEligible(api.FundingVenmo))
	assert.False(t, fe.IsEligible(api.FundingCard))
	assert.False(t, fe.IsEligible(api.FundingCredit))

	var empty api.FundingEligibility
	assert.False(t, empty.IsEligible(api.FundingPayPal))
}

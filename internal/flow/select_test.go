package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/assert/helpers"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/pkg/api"
)

func newRegistry(
	t *testing.T, logger *helpers.RecordingLogger, flows ...*helpers.StubFlow,
) *flow.Registry {
	t.Helper()
	reg := flow.NewRegistry(logger)
	for _, f := range flows {
		_, err := reg.Register(f)
		require.NoError(t, err)
	}
	return reg
}

func TestSelectPriority(t *testing.T) {
	wallet := helpers.NewStubFlow("wallet")
	checkout := helpers.NewStubFlow("checkout")
	reg := newRegistry(t, helpers.NewRecordingLogger(), wallet, checkout)

	r, ok := reg.Select(&api.ButtonProps{}, &api.ServiceData{}, api.Payment{})
	require.True(t, ok)
	assert.Equal(t, "wallet", r.Name())

	wallet.PaymentEligible = false
	r, ok = reg.Select(&api.ButtonProps{}, &api.ServiceData{}, api.Payment{})
	require.True(t, ok)
	assert.Equal(t, "checkout", r.Name())

	wallet.PaymentEligible = true
	wallet.Eligible = false
	r, ok = reg.Select(&api.ButtonProps{}, &api.ServiceData{}, api.Payment{})
	require.True(t, ok)
	assert.Equal(t, "checkout", r.Name())
}

func TestSelectNeverReturnsIneligible(t *testing.T) {
	combos := []struct{ eligible, payment bool }{
		{true, true}, {true, false}, {false, true}, {false, false},
	}

	for _, a := range combos {
		for _, b := range combos {
			fa := helpers.NewStubFlow("a")
			fa.Eligible, fa.PaymentEligible = a.eligible, a.payment
			fb := helpers.NewStubFlow("b")
			fb.Eligible, fb.PaymentEligible = b.eligible, b.payment

			reg := newRegistry(t, helpers.NewRecordingLogger(), fa, fb)
			p := api.Payment{FundingSource: api.FundingPayPal}
			r, ok := reg.Select(&api.ButtonProps{}, &api.ServiceData{}, p)
			if !ok {
				assert.False(t, a.eligible && a.payment)
				assert.False(t, b.eligible && b.payment)
				continue
			}
			assert.True(t, r.IsEligible(&api.ButtonProps{}, &api.ServiceData{}))
			assert.True(t, r.IsPaymentEligible(&api.ServiceData{}, p))

			for _, e := range reg.Eligible(
				&api.ButtonProps{}, &api.ServiceData{}, p,
			) {
				assert.True(t, e.IsPaymentEligible(&api.ServiceData{}, p))
			}
		}
	}
}

func TestSelectRecoversPanics(t *testing.T) {
	logger := helpers.NewRecordingLogger()
	exploding := helpers.NewStubFlow("exploding")
	exploding.PanicOnPayment = true
	checkout := helpers.NewStubFlow("checkout")
	reg := newRegistry(t, logger, exploding, checkout)

	r, ok := reg.Select(&api.ButtonProps{}, &api.ServiceData{}, api.Payment{})
	require.True(t, ok)
	assert.Equal(t, "checkout", r.Name())

	entry, found := logger.Entry("payment_flow_eligibility_error")
	require.True(t, found)
	assert.Equal(t, "exploding", entry.Data[api.MetaPaymentFlow])
	assert.Equal(t, "is_payment_eligible", entry.Data["predicate"])
}

func TestEligible(t *testing.T) {
	a := helpers.NewStubFlow("a")
	b := helpers.NewStubFlow("b")
	b.PaymentEligible = false
	c := helpers.NewStubFlow("c")
	reg := newRegistry(t, helpers.NewRecordingLogger(), a, b, c)

	res := reg.Eligible(&api.ButtonProps{}, &api.ServiceData{}, api.Payment{})
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Name())
	assert.Equal(t, "c", res[1].Name())
}

func TestResolve(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		reg := flow.NewRegistry(helpers.NewRecordingLogger())
		wallet := helpers.NewStubFlow("wallet")
		wallet.PaymentEligible = false
		checkout := helpers.NewStubFlow("checkout")
		checkout.Eligible = false

		_, err := reg.Register(wallet)
		require.NoError(t, err)
		_, err = reg.RegisterDefault(checkout)
		require.NoError(t, err)

		r, err := reg.Resolve(
			&api.ButtonProps{}, &api.ServiceData{}, api.Payment{},
		)
		require.NoError(t, err)
		assert.Equal(t, "checkout", r.Name())
	})

	t.Run("no default is a configuration error", func(t *testing.T) {
		wallet := helpers.NewStubFlow("wallet")
		wallet.PaymentEligible = false
		reg := newRegistry(t, helpers.NewRecordingLogger(), wallet)

		_, err := reg.Resolve(
			&api.ButtonProps{}, &api.ServiceData{}, api.Payment{},
		)
		assert.ErrorIs(t, err, flow.ErrNoEligibleFlow)
		assert.True(t, api.IsConfigurationError(err))
	})
}

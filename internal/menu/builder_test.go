package menu_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/assert/helpers"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/menu"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

type initiations struct {
	payments []api.Payment
	mu       sync.Mutex
}

func TestUnsupportedFunding(t *testing.T) {
	b := menu.NewBuilder(helpers.NewMockServices(),
		helpers.NewRecordingLogger(),
	)
	for _, fs := range []api.FundingSource{
		api.FundingBancontact, api.FundingCard, api.FundingVenmo,
		api.FundingIdeal,
	} {
		opts, _ := menuOptions(helpers.BankWallet("BA-1"), "BA-1")
		opts.Payment.FundingSource = fs

		choices, err := b.Build(opts)
		assert.Nil(t, choices)
		assert.True(t, api.IsConfigurationError(err), fs)
		assert.ErrorIs(t, err, menu.ErrUnsupportedFunding)
		assert.Equal(t, menu.CodeUnsupportedFunding, api.CodeOf(err, ""))
	}
}

func TestMissingWallet(t *testing.T) {
	b := menu.NewBuilder(helpers.NewMockServices(),
		helpers.NewRecordingLogger(),
	)

	opts, _ := menuOptions(nil, "BA-1")
	_, err := b.Build(opts)
	assert.ErrorIs(t, err, menu.ErrMissingWallet)

	opts, _ = menuOptions(helpers.BankWallet("BA-1"), "")
	_, err = b.Build(opts)
	assert.ErrorIs(t, err, menu.ErrMissingInstrument)

	opts, _ = menuOptions(helpers.BankWallet("BA-1"), "BA-2")
	_, err = b.Build(opts)
	assert.True(t, api.IsConfigurationError(err))
	assert.ErrorIs(t, err, api.ErrInstrumentNotFound)
}

func TestChoices(t *testing.T) {
	b := menu.NewBuilder(helpers.NewMockServices(),
		helpers.NewRecordingLogger(),
	)
	opts, _ := menuOptions(helpers.BankWallet("BA-1"), "BA-1")

	choices, err := b.Build(opts)
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "Pay with a different method", choices[0].Label)
	assert.Equal(t, "Pay with a different account", choices[1].Label)
	for _, c := range choices {
		assert.Equal(t, api.CheckoutPopup, c.Popup)
		assert.NotNil(t, c.OnSelect)
	}
}

func TestChooseFunding(t *testing.T) {
	services := helpers.NewMockServices()
	logger := helpers.NewRecordingLogger()
	b := menu.NewBuilder(services, logger)
	opts, rec := menuOptions(helpers.BankWallet("BA-1"), "BA-1")
	merchant := helpers.NewMerchant("ORDER-1")
	opts.Props = merchant.Props()

	choices, err := b.Build(opts)
	require.NoError(t, err)

	win := helpers.NewWindow()
	err = choices[0].OnSelect(context.Background(),
		api.MenuSelection{Win: win},
	)
	require.NoError(t, err)

	configs := services.ClientConfigs()
	require.Len(t, configs, 1)
	assert.Equal(t, &api.ClientConfig{
		FundingSource: api.FundingPayPal,
		OrderID:       "ORDER-1",
		Inline:        false,
	}, configs[0])

	payments := rec.Payments()
	require.Len(t, payments, 1)
	p := payments[0]
	assert.Equal(t, api.BuyerIntentPayDifferentFunding, p.BuyerIntent)
	assert.Equal(t, api.FundingPayPal, p.FundingSource)
	assert.Same(t, win, p.Win)
	assert.NotEqual(t, opts.Payment.ID, p.ID)

	assert.True(t, logger.HasCode("click_choose_funding"))
	tracked := logger.Tracked()
	require.NotEmpty(t, tracked)
	assert.Equal(t, api.TransitionClickChooseFunding,
		tracked[0][api.MetaTransition],
	)

	id, err := opts.Order.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.OrderID("ORDER-1"), id)
	assert.Equal(t, 1, merchant.Orders())
}

func TestChooseFundingOrderFailure(t *testing.T) {
	services := helpers.NewMockServices()
	b := menu.NewBuilder(services, helpers.NewRecordingLogger())
	opts, rec := menuOptions(helpers.BankWallet("BA-1"), "BA-1")
	merchant := helpers.NewMerchant("ORDER-1")
	merchant.FailOrders(errors.New("order rejected"))
	opts.Props = merchant.Props()

	choices, err := b.Build(opts)
	require.NoError(t, err)

	err = choices[0].OnSelect(context.Background(), api.MenuSelection{})
	assert.Error(t, err)
	assert.Empty(t, services.ClientConfigs())
	assert.Empty(t, rec.Payments())
}

func TestChooseFundingWithoutCreateOrder(t *testing.T) {
	b := menu.NewBuilder(helpers.NewMockServices(),
		helpers.NewRecordingLogger(),
	)
	opts, _ := menuOptions(helpers.BankWallet("BA-1"), "BA-1")

	choices, err := b.Build(opts)
	require.NoError(t, err)

	err = choices[0].OnSelect(context.Background(), api.MenuSelection{})
	assert.True(t, api.IsConfigurationError(err))
	assert.ErrorIs(t, err, menu.ErrMissingCreateOrder)
}

func TestChooseAccount(t *testing.T) {
	services := helpers.NewMockServices()
	logger := helpers.NewRecordingLogger()
	b := menu.NewBuilder(services, logger)
	opts, rec := menuOptions(helpers.BankWallet("BA-1"), "BA-1")
	merchant := helpers.NewMerchant("ORDER-1")
	opts.Props = merchant.Props()

	choices, err := b.Build(opts)
	require.NoError(t, err)

	err = choices[1].OnSelect(context.Background(), api.MenuSelection{})
	require.NoError(t, err)

	assert.Equal(t, 0,
		services.Count(helpers.CallUpdateButtonClientConfig),
	)
	assert.Equal(t, 0, merchant.Orders())

	payments := rec.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t,
		api.BuyerIntentPayDifferentAccount, payments[0].BuyerIntent,
	)
	assert.True(t, logger.HasCode("click_choose_account"))
}

func TestCreditInstrumentOverridesFunding(t *testing.T) {
	b := menu.NewBuilder(helpers.NewMockServices(),
		helpers.NewRecordingLogger(),
	)
	opts, rec := menuOptions(helpers.CreditWallet("CC-123"), "CC-123")
	opts.Props = helpers.NewMerchant("ORDER-1").Props()

	choices, err := b.Build(opts)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, choices[0].OnSelect(ctx, api.MenuSelection{}))
	require.NoError(t, choices[1].OnSelect(ctx, api.MenuSelection{}))

	payments := rec.Payments()
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, api.FundingCredit, p.FundingSource)
	}
}

func menuOptions(
	w api.Wallet, instrumentID string,
) (*flow.MenuOptions, *initiations) {
	rec := &initiations{}
	btn := helpers.NewElement("paypal", 100)
	return &flow.MenuOptions{
		Props:       &api.ButtonProps{ClientID: "client-1"},
		ServiceData: helpers.NewServiceData(w),
		Order:       order.NewPromise(),
		Initiate:    rec.Initiate,
		Payment: helpers.WalletPayment(
			btn, instrumentID, api.InstrumentBank,
		),
	}, rec
}

func (i *initiations) Initiate(_ context.Context, p api.Payment) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.payments = append(i.payments, p)
	return nil
}

func (i *initiations) Payments() []api.Payment {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]api.Payment(nil), i.payments...)
}

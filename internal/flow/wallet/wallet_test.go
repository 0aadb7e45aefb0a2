package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/assert/helpers"
	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/flow/wallet"
	"github.com/kode4food/paybutton/internal/menu"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

type testEnv struct {
	flow     *wallet.Flow
	services *helpers.MockServices
	ui       *helpers.UIRecorder
	fallback *helpers.StubFlow
	logger   *helpers.RecordingLogger
	merchant *helpers.Merchant
	sd       *api.ServiceData
}

var walletTarget = api.RenderTarget{
	Parent:   "#buttons",
	Selector: display.WalletSelector,
}

func TestSetupFetchesSmartWallet(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))

	assert.Equal(t, []helpers.ServiceCall{
		helpers.CallLoadFraudnet, helpers.CallGetSmartWallet,
	}, env.services.Calls())
}

func TestSetupUsesServiceWallet(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	props := env.merchant.Props()
	props.UserAccessToken = ""

	err := env.flow.Setup(context.Background(), &flow.SetupOptions{
		Props:       props,
		ServiceData: env.sd,
	})
	require.NoError(t, err)
	assert.Empty(t, env.services.Calls())

	p := helpers.WalletPayment(nil, "BA-1", api.InstrumentBank)
	assert.True(t, env.flow.IsPaymentEligible(env.sd, p))
}

func TestSetupFailure(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	env.services.SetError(helpers.CallGetSmartWallet, errors.New("down"))

	err := env.flow.Setup(context.Background(), &flow.SetupOptions{
		Props:       env.merchant.Props(),
		ServiceData: env.sd,
	})
	assert.Error(t, err)
	assert.True(t, env.logger.HasCode("load_smart_inline_wallet_error"))
}

func TestIsEligible(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	props := env.merchant.Props()
	assert.True(t, env.flow.IsEligible(props, env.sd))

	assert.False(t, env.flow.IsEligible(props, helpers.NewServiceData(nil)))

	disabled := env.merchant.Props()
	disabled.EnablePWB = false
	assert.False(t, env.flow.IsEligible(disabled, env.sd))

	shipping := env.merchant.Props()
	shipping.OnShippingChange = func(context.Context, map[string]any) error {
		return nil
	}
	assert.False(t, env.flow.IsEligible(shipping, env.sd))
}

func TestIsPaymentEligible(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	good := helpers.WalletPayment(nil, "BA-1", api.InstrumentBank)
	assert.False(t, env.flow.IsPaymentEligible(env.sd, good))

	env.setup(t)
	assert.True(t, env.flow.IsPaymentEligible(env.sd, good))

	withWin := good
	withWin.Win = helpers.NewWindow()
	assert.False(t, env.flow.IsPaymentEligible(env.sd, withWin))

	menuIntent := good
	menuIntent.BuyerIntent = api.BuyerIntentPayDifferentAccount
	assert.False(t, env.flow.IsPaymentEligible(env.sd, menuIntent))

	noID := helpers.WalletPayment(nil, "", api.InstrumentBank)
	assert.False(t, env.flow.IsPaymentEligible(env.sd, noID))

	unknown := helpers.WalletPayment(nil, "BA-9", api.InstrumentBank)
	assert.False(t, env.flow.IsPaymentEligible(env.sd, unknown))

	assert.False(t,
		env.flow.IsPaymentEligible(helpers.NewServiceData(nil), good),
	)
}

func TestInitRequiresSmartWallet(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	opts := env.initOptions("BA-1", api.InstrumentBank)

	_, err := env.flow.Init(opts)
	assert.ErrorIs(t, err, wallet.ErrNoSmartWallet)

	env.setup(t)
	opts.Payment.InstrumentID = ""
	_, err = env.flow.Init(opts)
	assert.ErrorIs(t, err, wallet.ErrMissingInstrument)
}

func TestStartDisplaysWallet(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	opts := env.initOptions("BA-1", api.InstrumentBank)

	inst, err := env.flow.Init(opts)
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	id, err := opts.Order.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.OrderID("ORDER-1"), id)
	assert.Equal(t, 1, env.merchant.Orders())

	comp := env.ui.Last()
	require.NotNil(t, comp)
	assert.Equal(t, 1, comp.Count(helpers.UIShow))
	props, ok := comp.LastProps()
	require.True(t, ok)
	assert.Equal(t, "buyer-token", props.BuyerAccessToken)
	assert.Equal(t, 100.0, props.VerticalOffset)

	orderID, err := props.OrderID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.OrderID("ORDER-1"), orderID)

	assert.Equal(t, 0, env.fallback.Inits())
	assert.Equal(t, api.OutcomeStarted, flow.OutcomeOf(inst, nil))
}

func TestApproveFromWallet(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	props, ok := env.ui.Last().LastProps()
	require.True(t, ok)
	ctx := context.Background()
	require.NoError(t, props.OnApprove(ctx, api.ApproveData{
		PayerID: "PAYER-1",
	}))
	require.NoError(t, props.OnApprove(ctx, api.ApproveData{
		PayerID: "PAYER-2",
	}))

	approvals := env.merchant.Approvals()
	require.Len(t, approvals, 1)
	assert.Equal(t, api.OrderID("ORDER-1"), approvals[0].OrderID)
	assert.Equal(t, "PAYER-1", approvals[0].PayerID)
	assert.Equal(t, "buyer-token", approvals[0].BuyerAccessToken)
	assert.Equal(t, api.OutcomeApproved, flow.OutcomeOf(inst, nil))

	require.NoError(t, env.merchant.Restart(0)(ctx))
	assert.Equal(t, 1, env.fallback.Starts())

	require.NoError(t, inst.Close(ctx))
	require.NoError(t, props.OnApprove(ctx, api.ApproveData{}))
	assert.Len(t, env.merchant.Approvals(), 1)
	assert.Equal(t, 1, env.fallback.Closes())
}

func TestCloseSuppressesApproval(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	props, ok := env.ui.Last().LastProps()
	require.True(t, ok)

	ctx := context.Background()
	require.NoError(t, inst.Close(ctx))
	require.NoError(t, inst.Close(ctx))
	require.NoError(t, props.OnApprove(ctx, api.ApproveData{}))
	require.NoError(t, props.OnCancel(ctx))

	assert.Empty(t, env.merchant.Approvals())
	assert.Equal(t, 0, env.merchant.Cancels())
	assert.Equal(t, api.OutcomeAborted, flow.OutcomeOf(inst, nil))
	assert.GreaterOrEqual(t, env.ui.Last().Count(helpers.UIHide), 2)
}

func TestCancelFromWallet(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	props, ok := env.ui.Last().LastProps()
	require.True(t, ok)
	require.NoError(t, props.OnCancel(context.Background()))

	assert.Equal(t, 1, env.merchant.Cancels())
	assert.Equal(t, api.OutcomeCancelled, flow.OutcomeOf(inst, nil))
}

func TestCreditFallbackOnOrderFailure(t *testing.T) {
	env := newTestEnv(t, helpers.CreditWallet("CC-123"))
	env.merchant.FailOrders(errors.New("order rejected"))

	opts := env.initOptions("CC-123", api.InstrumentCredit)
	inst, err := env.flow.Init(opts)
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	require.Equal(t, 1, env.fallback.Inits())
	require.Equal(t, 1, env.fallback.Starts())
	p := env.fallback.Payments()[0]
	assert.Equal(t, api.FundingCredit, p.FundingSource)
	assert.Equal(t, api.BuyerIntentPayDifferentFunding, p.BuyerIntent)
	assert.False(t, p.IsClick)
	assert.NotEqual(t, opts.Payment.ID, p.ID)

	token, err := p.CreateAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-CC-123", token)

	assert.True(t, env.logger.HasCode("wallet_pwb_start_error"))
	assert.Equal(t, 1, env.logger.CountCode("web_checkout_fallback"))
	assert.Equal(t, api.OutcomeFallback, flow.OutcomeOf(inst, nil))
}

func TestBankFallbackKeepsFunding(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	env.merchant.FailOrders(errors.New("order rejected"))

	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	require.Equal(t, 1, env.fallback.Starts())
	p := env.fallback.Payments()[0]
	assert.Equal(t, api.FundingPayPal, p.FundingSource)
	assert.Equal(t, api.BuyerIntentPayDifferentFunding, p.BuyerIntent)
}

func TestFallbackOnDisplayFailure(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	env.ui.SetError(helpers.UIRenderTo, errors.New("frame blocked"))
	env.setup(t)

	opts := env.initOptions("BA-1", api.InstrumentBank)
	inst, err := env.flow.Init(opts)
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	assert.Equal(t, 1, env.fallback.Starts())
}

func TestDisplayConfigurationErrorIsFatal(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	env.flow = wallet.New(wallet.Dependencies{
		Services: env.services,
		Display: display.New("wallet", nil, walletTarget,
			env.logger,
		),
		Fallback: env.fallback,
		Logger:   env.logger,
	})
	env.setup(t)

	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	err = inst.Start(context.Background())
	assert.True(t, api.IsConfigurationError(err))
	assert.ErrorIs(t, err, display.ErrMissingComponent)
	assert.Equal(t, 0, env.fallback.Inits())
}

func TestFallbackTokenFailure(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	env.services.SetWallet(helpers.BankWallet("BA-2"))
	env.setup(t)
	env.merchant.FailOrders(errors.New("order rejected"))

	inst, err := env.flow.Init(env.initOptions("BA-1", api.InstrumentBank))
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	p := env.fallback.Payments()[0]
	_, err = p.CreateAccessToken(context.Background())
	assert.ErrorIs(t, err, api.ErrInstrumentNotFound)
}

func TestUpdateClientConfig(t *testing.T) {
	env := newBareEnv(helpers.BankWallet("BA-1"))
	err := env.flow.UpdateClientConfig(context.Background(),
		&flow.ClientConfigOptions{
			OrderID: "ORDER-1",
			Payment: helpers.WalletPayment(nil, "BA-1", api.InstrumentBank),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []*api.ClientConfig{{
		FundingSource: api.FundingPayPal,
		OrderID:       "ORDER-1",
		Inline:        true,
	}}, env.services.ClientConfigs())
}

func TestSetupMenu(t *testing.T) {
	env := newTestEnv(t, helpers.BankWallet("BA-1"))
	choices, err := env.flow.SetupMenu(&flow.MenuOptions{
		Props:       env.merchant.Props(),
		ServiceData: env.sd,
		Order:       order.NewPromise(),
		Payment:     helpers.WalletPayment(nil, "BA-1", api.InstrumentBank),
	})
	require.NoError(t, err)
	assert.Len(t, choices, 2)
}

func newBareEnv(w api.Wallet) *testEnv {
	services := helpers.NewMockServices()
	services.SetWallet(w)
	logger := helpers.NewRecordingLogger()
	ui := helpers.NewUIRecorder()
	fallback := helpers.NewStubFlow("checkout")
	return &testEnv{
		flow: wallet.New(wallet.Dependencies{
			Services: services,
			Display:  display.New("wallet", ui.Factory(), walletTarget, logger),
			Menu:     menu.NewBuilder(services, logger),
			Fallback: fallback,
			Logger:   logger,
		}),
		services: services,
		ui:       ui,
		fallback: fallback,
		logger:   logger,
		merchant: helpers.NewMerchant("ORDER-1"),
		sd:       helpers.NewServiceData(w),
	}
}

func newTestEnv(t *testing.T, w api.Wallet) *testEnv {
	t.Helper()
	env := newBareEnv(w)
	env.setup(t)
	return env
}

func (e *testEnv) setup(t *testing.T) {
	t.Helper()
	err := e.flow.Setup(context.Background(), &flow.SetupOptions{
		Props:       e.merchant.Props(),
		ServiceData: e.sd,
	})
	require.NoError(t, err)
}

func (e *testEnv) initOptions(
	id string, it api.InstrumentType,
) *flow.InitOptions {
	btn := helpers.NewElement("paypal", 100)
	return &flow.InitOptions{
		Props:       e.merchant.Props(),
		ServiceData: e.sd,
		Order:       order.NewPromise(),
		Payment:     helpers.WalletPayment(btn, id, it),
	}
}

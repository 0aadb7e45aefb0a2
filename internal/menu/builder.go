package menu

import (
	"context"
	"errors"

	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

// Builder constructs menu choices for wallet-backed payments
type Builder struct {
	services client.Services
	logger   telemetry.Logger
}

const (
	CodeUnsupportedFunding = "menu_unsupported_funding"
	CodeMissingWallet      = "menu_missing_wallet"
	CodeMissingCreateOrder = "menu_missing_create_order"
)

var (
	ErrUnsupportedFunding = errors.New("can not render menu for funding")
	ErrMissingWallet      = errors.New("can not render menu without wallet")
	ErrMissingInstrument  = errors.New("can not render menu without instrument")
	ErrMissingCreateOrder = errors.New("can not update client config without createOrder")
)

// NewBuilder creates a Builder pushing client configuration to services
func NewBuilder(services client.Services, logger telemetry.Logger) *Builder {
	return &Builder{
		services: services,
		logger:   logger,
	}
}

// Build returns the "different funding" and "different account" choices
// for the payment. Only PayPal and credit payments support a menu
func (b *Builder) Build(opts *flow.MenuOptions) ([]api.MenuChoice, error) {
	p := opts.Payment
	switch p.FundingSource {
	case api.FundingPayPal, api.FundingCredit:
	default:
		return nil, api.ConfigurationErrorf(CodeUnsupportedFunding,
			"%w: %s", ErrUnsupportedFunding, p.FundingSource,
		)
	}

	if !opts.ServiceData.HasWallet() {
		return nil, api.ConfigurationError(CodeMissingWallet, ErrMissingWallet)
	}
	if p.InstrumentID == "" {
		return nil, api.ConfigurationError(
			CodeMissingWallet, ErrMissingInstrument,
		)
	}
	inst, err := opts.ServiceData.Wallet.Instrument(
		p.FundingSource, p.InstrumentID,
	)
	if err != nil {
		return nil, api.ConfigurationError(CodeMissingWallet, err)
	}

	fs := api.MenuFundingSource(p.FundingSource, inst.Type)
	content := opts.ServiceData.Content
	return []api.MenuChoice{
		{
			Label:    content.PayWithDifferentMethod,
			Popup:    api.CheckoutPopup,
			OnSelect: b.chooseFunding(opts, fs),
		},
		{
			Label:    content.PayWithDifferentAccount,
			Popup:    api.CheckoutPopup,
			OnSelect: b.chooseAccount(opts, fs),
		},
	}, nil
}

func (b *Builder) chooseFunding(
	opts *flow.MenuOptions, fs api.FundingSource,
) func(context.Context, api.MenuSelection) error {
	return func(ctx context.Context, sel api.MenuSelection) error {
		b.logger.Info("click_choose_funding", nil).Track(api.Metadata{
			api.MetaTransition: api.TransitionClickChooseFunding,
		}).Flush()

		if err := b.updateClientConfig(ctx, opts); err != nil {
			return err
		}
		return opts.Initiate(ctx, opts.Payment.WithWindow(
			sel.Win, fs, api.BuyerIntentPayDifferentFunding,
		))
	}
}

func (b *Builder) chooseAccount(
	opts *flow.MenuOptions, fs api.FundingSource,
) func(context.Context, api.MenuSelection) error {
	return func(ctx context.Context, sel api.MenuSelection) error {
		b.logger.Info("click_choose_account", nil).Track(api.Metadata{
			api.MetaTransition: api.TransitionClickChooseAccount,
		}).Flush()

		return opts.Initiate(ctx, opts.Payment.WithWindow(
			sel.Win, fs, api.BuyerIntentPayDifferentAccount,
		))
	}
}

func (b *Builder) updateClientConfig(
	ctx context.Context, opts *flow.MenuOptions,
) error {
	if opts.Props.CreateOrder == nil {
		return api.ConfigurationError(
			CodeMissingCreateOrder, ErrMissingCreateOrder,
		)
	}
	orderID, err := opts.Order.Produce(ctx, opts.Props.CreateOrder)
	if err != nil {
		return err
	}
	return b.services.UpdateButtonClientConfig(ctx, &api.ClientConfig{
		FundingSource: opts.Payment.FundingSource,
		OrderID:       orderID,
		Inline:        false,
	})
}

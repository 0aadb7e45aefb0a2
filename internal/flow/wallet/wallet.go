package wallet

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/menu"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Flow is the inline wallet flow descriptor. The smart wallet fetched
	// by Setup is scoped to the button render that owns the Flow
	Flow struct {
		services client.Services
		display  *display.Coordinator
		menu     *menu.Builder
		fallback flow.Flow
		logger   telemetry.Logger
		handler  slog.Handler
		smart    atomic.Pointer[smartWallet]
	}

	// Dependencies are the collaborators of the wallet flow
	Dependencies struct {
		Services client.Services
		Display  *display.Coordinator
		Menu     *menu.Builder
		Fallback flow.Flow
		Logger   telemetry.Logger
		Handler  slog.Handler
	}
)

const (
	Name = "wallet_pwb"

	CodeInitError          = "wallet_init_error"
	CodeMissingCreateOrder = "wallet_missing_create_order"
)

var (
	ErrNoSmartWallet      = errors.New("no smart wallet found")
	ErrMissingInstrument  = errors.New("instrument id required for wallet capture")
	ErrMissingCreateOrder = errors.New("can not start wallet without createOrder")
)

var (
	_ flow.Flow                = (*Flow)(nil)
	_ flow.MenuProvider        = (*Flow)(nil)
	_ flow.ClientConfigUpdater = (*Flow)(nil)
)

// New creates the inline wallet flow
func New(deps Dependencies) *Flow {
	return &Flow{
		services: deps.Services,
		display:  deps.Display,
		menu:     deps.Menu,
		fallback: deps.Fallback,
		logger:   deps.Logger,
		handler:  deps.Handler,
	}
}

func (f *Flow) Name() string {
	return Name
}

// Setup loads fraud-net and fetches the buyer's smart wallet when the
// merchant enabled inline wallets and the buyer is logged in. Otherwise
// the wallet resolved with the service data is used as is
func (f *Flow) Setup(ctx context.Context, opts *flow.SetupOptions) error {
	props := opts.Props
	if props.ClientID == "" || !props.EnablePWB ||
		props.UserAccessToken == "" {
		if opts.ServiceData.HasWallet() {
			f.smart.Store(resolvedSmartWallet(opts.ServiceData.Wallet))
		}
		return nil
	}

	sw := newSmartWallet()
	f.smart.Store(sw)
	w, err := f.fetchSmartWallet(ctx, opts)
	if err != nil {
		f.logger.Warn("load_smart_inline_wallet_error", api.Metadata{
			"err": err.Error(),
		}).Flush()
	}
	sw.settle(w, err)
	return err
}

func (f *Flow) IsEligible(props *api.ButtonProps, sd *api.ServiceData) bool {
	return props.EnablePWB && sd.HasWallet() && props.OnShippingChange == nil
}

// IsPaymentEligible admits gesture payments for an instrument held in the
// render's wallet. Payments bound to a popup window or carrying a menu
// intent belong to the web checkout
func (f *Flow) IsPaymentEligible(sd *api.ServiceData, p api.Payment) bool {
	switch {
	case p.Win != nil:
		return false
	case p.BuyerIntent != "" && p.BuyerIntent != api.BuyerIntentPay:
		return false
	case !sd.HasWallet() || p.InstrumentID == "":
		return false
	case !sd.Wallet.HasInstrument(p.FundingSource, p.InstrumentID):
		return false
	default:
		return f.smart.Load() != nil
	}
}

// Init creates an inline wallet instance for the payment
func (f *Flow) Init(opts *flow.InitOptions) (flow.Instance, error) {
	sw := f.smart.Load()
	if !opts.ServiceData.HasWallet() || sw == nil {
		return nil, api.RemoteError(CodeInitError, ErrNoSmartWallet)
	}
	p := opts.Payment
	if p.InstrumentID == "" {
		return nil, api.RemoteError(CodeInitError, ErrMissingInstrument)
	}

	life, err := flow.NewLifecycle(f.handler, Name)
	if err != nil {
		return nil, err
	}
	inst, _ := opts.ServiceData.Wallet.Instrument(
		p.FundingSource, p.InstrumentID,
	)
	return &instance{
		flow:       f,
		opts:       *opts,
		life:       life,
		instrument: inst,
		smart:      sw,
	}, nil
}

func (f *Flow) SetupMenu(opts *flow.MenuOptions) ([]api.MenuChoice, error) {
	return f.menu.Build(opts)
}

// UpdateClientConfig tells the remote side the order is paid inline
func (f *Flow) UpdateClientConfig(
	ctx context.Context, opts *flow.ClientConfigOptions,
) error {
	return f.services.UpdateButtonClientConfig(ctx, &api.ClientConfig{
		FundingSource: opts.Payment.FundingSource,
		OrderID:       opts.OrderID,
		Inline:        true,
	})
}

func (f *Flow) Inline() bool {
	return true
}

func (f *Flow) Spinner() bool {
	return true
}

func (f *Flow) fetchSmartWallet(
	ctx context.Context, opts *flow.SetupOptions,
) (api.Wallet, error) {
	props := opts.Props
	cmid := props.EffectiveClientMetadataID()
	err := f.services.LoadFraudnet(ctx, &api.FraudnetRequest{
		Env:              props.Env,
		ClientMetadataID: cmid,
		CSPNonce:         opts.Config.CSPNonce,
	})
	if err != nil {
		return nil, err
	}
	return f.services.GetSmartWallet(ctx, &api.SmartWalletRequest{
		ClientID:         props.ClientID,
		MerchantID:       opts.ServiceData.MerchantID,
		Currency:         props.Currency,
		Amount:           props.Amount,
		ClientMetadataID: cmid,
		UserAccessToken:  props.UserAccessToken,
	})
}

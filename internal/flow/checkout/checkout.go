// Package checkout implements the full web checkout popup flow. It admits
// every payment and is registered as the default flow
package checkout

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Flow is the web checkout flow descriptor
	Flow struct {
		logger  telemetry.Logger
		handler slog.Handler
	}

	instance struct {
		flow    *Flow
		opts    flow.InitOptions
		life    *flow.Lifecycle
		session api.CheckoutSession
	}
)

const (
	Name = "checkout"

	CodeMissingComponent = "missing_checkout_component"
	CodeSessionError     = "checkout_session_error"
)

var ErrMissingComponent = errors.New("can not start checkout without component")

var (
	_ flow.Flow       = (*Flow)(nil)
	_ flow.Observable = (*instance)(nil)
)

// New creates the web checkout flow. h receives lifecycle transition logs
// and may be nil
func New(logger telemetry.Logger, h slog.Handler) *Flow {
	return &Flow{
		logger:  logger,
		handler: h,
	}
}

func (f *Flow) Name() string {
	return Name
}

func (f *Flow) Setup(context.Context, *flow.SetupOptions) error {
	return nil
}

func (f *Flow) IsEligible(*api.ButtonProps, *api.ServiceData) bool {
	return true
}

func (f *Flow) IsPaymentEligible(*api.ServiceData, api.Payment) bool {
	return true
}

func (f *Flow) Inline() bool {
	return false
}

func (f *Flow) Spinner() bool {
	return false
}

// Init opens a checkout session for the payment. The session's createOrder
// reads through the attempt's order promise
func (f *Flow) Init(opts *flow.InitOptions) (flow.Instance, error) {
	if opts.Components.Checkout == nil {
		return nil, api.ConfigurationError(
			CodeMissingComponent, ErrMissingComponent,
		)
	}
	life, err := flow.NewLifecycle(f.handler, Name)
	if err != nil {
		return nil, err
	}

	o := *opts
	if o.Order == nil {
		o.Order = order.NewPromise()
	}

	props := o.Props
	p := o.Payment
	var create api.CreateOrder
	if props.CreateOrder != nil {
		create = o.Order.Producer(props.CreateOrder)
	}

	session := o.Components.Checkout(api.CheckoutProps{
		Win:               p.Win,
		Card:              p.Card,
		CreateOrder:       create,
		CreateAccessToken: p.CreateAccessToken,
		ClientID:          props.ClientID,
		FundingSource:     p.FundingSource,
		BuyerIntent:       p.BuyerIntent,
		SessionID:         props.SessionID,
		ButtonSessionID:   props.ButtonSessionID,
		Locale:            props.Locale,
		CSPNonce:          o.Config.CSPNonce,
		Commit:            props.Commit,
	})

	return &instance{
		flow:    f,
		opts:    o,
		life:    life,
		session: session,
	}, nil
}

// Start runs the popup to completion and reports the outcome to the
// merchant. Nothing is reported once the instance has been closed
func (i *instance) Start(ctx context.Context) error {
	if err := i.life.Transition(flow.StateStarted); err != nil {
		return err
	}

	res, err := i.session.Start(ctx)
	if err != nil {
		if !i.life.Settle(flow.StateFailed) {
			return nil
		}
		return classify(err)
	}

	props := i.opts.Props
	if !res.Approved {
		if !i.life.Settle(flow.StateCancelled) {
			return nil
		}
		i.flow.logger.Info("checkout_cancel", i.meta()).Flush()
		if props.OnCancel == nil {
			return nil
		}
		return props.OnCancel(ctx)
	}

	if !i.life.Settle(flow.StateApproved) {
		return nil
	}
	approval := res.Approval
	if approval.BuyerAccessToken == "" && i.opts.ServiceData != nil {
		approval.BuyerAccessToken = i.opts.ServiceData.BuyerAccessToken
	}
	code := "spb_onapprove_access_token_not_present"
	if approval.BuyerAccessToken != "" {
		code = "spb_onapprove_access_token_present"
	}
	i.flow.logger.Info(code, i.meta().Apply(api.Metadata{
		api.MetaOrderID: string(approval.OrderID),
	})).Flush()

	if props.OnApprove == nil {
		return nil
	}
	return props.OnApprove(ctx, approval, api.ApproveActions{
		Restart: i.restart,
	})
}

// Close force-closes the popup. Outcomes that arrive afterward are dropped
func (i *instance) Close(ctx context.Context) error {
	if !i.life.Close() {
		return nil
	}
	return i.session.Close(ctx)
}

func (i *instance) Lifecycle() *flow.Lifecycle {
	return i.life
}

func (i *instance) restart(ctx context.Context) error {
	opts := i.opts
	p := opts.Payment
	p.ID = api.NewPaymentID()
	p.Win = nil
	p.IsClick = false
	opts.Payment = p

	inst, err := i.flow.Init(&opts)
	if err != nil {
		return err
	}
	return inst.Start(ctx)
}

func (i *instance) meta() api.Metadata {
	p := i.opts.Payment
	return api.Metadata{
		api.MetaPaymentFlow: Name,
		api.MetaPaymentID:   string(p.ID),
		api.MetaFundingType: string(p.FundingSource),
	}
}

func classify(err error) error {
	var e *api.Error
	if errors.As(err, &e) {
		return err
	}
	return api.RemoteError(CodeSessionError, err)
}

package wallet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

type instance struct {
	flow       *Flow
	opts       flow.InitOptions
	life       *flow.Lifecycle
	instrument *api.Instrument
	smart      *smartWallet
	fallback   flow.Instance
	approved   atomic.Bool
	mu         sync.Mutex
}

var _ flow.Observable = (*instance)(nil)

// Start displays the wallet and creates the order concurrently. Display
// configuration errors are fatal; every other failure falls back to the
// web checkout exactly once
func (i *instance) Start(ctx context.Context) error {
	props := i.opts.Props
	if props.CreateOrder == nil {
		return api.ConfigurationError(
			CodeMissingCreateOrder, ErrMissingCreateOrder,
		)
	}
	if err := i.life.Transition(flow.StateStarted); err != nil {
		return err
	}

	var displayErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		displayErr = i.flow.display.Display(gctx, props.ClientID,
			display.Options{
				Anchor:           i.opts.Payment.Button,
				OrderID:          i.opts.Order.Source(),
				OnApprove:        i.onApprove,
				OnCancel:         i.onCancel,
				BuyerAccessToken: i.opts.ServiceData.BuyerAccessToken,
			},
		)
		return displayErr
	})
	g.Go(func() error {
		_, err := i.opts.Order.Produce(gctx, props.CreateOrder)
		return err
	})

	err := g.Wait()
	if err == nil {
		return nil
	}
	if api.IsConfigurationError(displayErr) {
		i.life.Settle(flow.StateFailed)
		return displayErr
	}

	i.flow.logger.Warn("wallet_pwb_start_error", i.meta().Apply(api.Metadata{
		"err": err.Error(),
	})).Flush()
	return i.fallbackToWebCheckout(ctx)
}

// Close force-closes the instance: the wallet frame is hidden, a running
// fallback popup is closed, and late approvals are dropped
func (i *instance) Close(ctx context.Context) error {
	if !i.life.Close() {
		return nil
	}
	i.mu.Lock()
	fb := i.fallback
	i.mu.Unlock()

	err := i.flow.display.Hide(ctx, i.opts.Props.ClientID)
	if fb != nil {
		return errors.Join(err, fb.Close(ctx))
	}
	return err
}

func (i *instance) Lifecycle() *flow.Lifecycle {
	return i.life
}

func (i *instance) fallbackToWebCheckout(ctx context.Context) error {
	if !i.life.Settle(flow.StateFallback) {
		return nil
	}
	return i.startWebCheckout(ctx)
}

func (i *instance) startWebCheckout(ctx context.Context) error {
	i.flow.logger.Info("web_checkout_fallback", i.meta()).Flush()
	_ = i.flow.display.Hide(ctx, i.opts.Props.ClientID)

	p := i.opts.Payment
	fs := p.FundingSource
	if i.instrument != nil {
		fs = api.MenuFundingSource(fs, i.instrument.Type)
	}

	opts := i.opts
	opts.Payment = p.WithFallback(
		fs, api.BuyerIntentPayDifferentFunding, i.accessToken,
	)
	if id, err := opts.Order.Wait(ctx); err != nil || id == "" {
		opts.Order = order.NewPromise()
	}

	fb, err := i.flow.fallback.Init(&opts)
	if err != nil {
		return err
	}

	i.mu.Lock()
	if i.life.IsClosed() {
		i.mu.Unlock()
		return fb.Close(ctx)
	}
	i.fallback = fb
	i.mu.Unlock()

	return fb.Start(ctx)
}

func (i *instance) accessToken(ctx context.Context) (string, error) {
	w, err := i.smart.Wait(ctx)
	if err != nil {
		return "", err
	}
	p := i.opts.Payment
	return w.AccessTokenFor(p.FundingSource, p.InstrumentID)
}

func (i *instance) onApprove(ctx context.Context, data api.ApproveData) error {
	if !i.approved.CompareAndSwap(false, true) {
		return nil
	}
	if !i.life.Settle(flow.StateApproved) {
		return nil
	}
	_ = i.flow.display.Hide(ctx, i.opts.Props.ClientID)

	if data.OrderID == "" {
		id, err := i.opts.Order.Wait(ctx)
		if err != nil {
			return err
		}
		data.OrderID = id
	}
	if data.BuyerAccessToken == "" {
		data.BuyerAccessToken = i.opts.ServiceData.BuyerAccessToken
	}
	i.flow.logger.Info("wallet_pwb_approve", i.meta().Apply(api.Metadata{
		api.MetaOrderID: string(data.OrderID),
	})).Flush()

	props := i.opts.Props
	if props.OnApprove == nil {
		return nil
	}
	return props.OnApprove(ctx, data, api.ApproveActions{
		Restart: i.startWebCheckout,
	})
}

func (i *instance) onCancel(ctx context.Context) error {
	if !i.life.Settle(flow.StateCancelled) {
		return nil
	}
	_ = i.flow.display.Hide(ctx, i.opts.Props.ClientID)
	if i.opts.Props.OnCancel == nil {
		return nil
	}
	return i.opts.Props.OnCancel(ctx)
}

func (i *instance) meta() api.Metadata {
	p := i.opts.Payment
	return api.Metadata{
		api.MetaPaymentFlow: Name,
		api.MetaPaymentID:   string(p.ID),
		api.MetaFundingType: string(p.FundingSource),
	}
}

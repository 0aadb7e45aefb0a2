package button

import (
	"context"

	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

// PrerenderDetails describe a payment started by a prerendered popup
// before the buyer clicked any button
type PrerenderDetails struct {
	Win           api.Window
	Card          *api.Card
	FundingSource api.FundingSource
}

// Setup binds every rendered button and menu toggle, prerenders the inline
// wallet and menu frames, and runs the setup of every eligible flow. Flow
// setup failures are logged and never fail the render
func (o *Orchestrator) Setup(ctx context.Context) error {
	if o.wallet != nil {
		o.wallet.Clear()
	}
	if o.menu != nil {
		o.menu.Clear()
	}

	for _, btn := range o.doc.Buttons() {
		o.bindButton(ctx, btn)
	}

	o.registry.Setup(ctx, &flow.SetupOptions{
		Props:       o.props,
		ServiceData: o.sd,
		Config:      o.config,
	})

	if o.validator != nil {
		o.validator.ValidateProps(o.props)
	}
	return nil
}

// Prerender starts a payment for a popup that was opened before the
// buttons finished rendering
func (o *Orchestrator) Prerender(
	ctx context.Context, details PrerenderDetails,
) error {
	btn, ok := o.doc.ButtonByFunding(details.FundingSource)
	if !ok {
		return api.ConfigurationErrorf(CodeMissingButton, "%w: %s",
			ErrButtonNotFound, details.FundingSource,
		)
	}
	p := api.Payment{
		ID:            api.NewPaymentID(),
		Win:           details.Win,
		Button:        btn,
		FundingSource: details.FundingSource,
		Card:          details.Card,
		BuyerIntent:   api.BuyerIntentPay,
	}
	if err := o.Initiate(ctx, p); err != nil {
		o.logger.Error(CodePrerenderError, api.Metadata{
			"err": err.Error(),
		}).Flush()
		o.props.ReportError(err)
		return err
	}
	return nil
}

func (o *Orchestrator) bindButton(ctx context.Context, btn api.Element) {
	base := api.NewPayment(btn, o.doc.SelectedFunding(btn))
	toggle, hasMenu := o.doc.MenuToggle(btn)
	if hasMenu {
		base.MenuToggle = toggle
	}
	isWallet := o.doc.IsWalletButton(btn)

	o.doc.PreventClickFocus(btn)
	if isWallet && o.wallet != nil {
		o.resetOrder(btn)
		o.wallet.Prerender(ctx, o.props.ClientID)
	}

	o.doc.OnClick(btn, func(ctx context.Context) {
		p := base
		p.ID = api.NewPaymentID()
		var ord *order.Promise
		if isWallet {
			ord = o.orderFor(btn)
		}
		err := o.initiate(ctx, p, ord)
		if isWallet {
			o.releaseOrder(btn, ord)
		}
		if err != nil {
			o.logger.Error(CodeClickReject, api.Metadata{
				"err": err.Error(),
			}).Flush()
			o.props.ReportError(err)
		}
	})

	if !hasMenu {
		return
	}
	if o.menu != nil {
		o.menu.Prerender(ctx, o.props.ClientID)
	}
	o.doc.PreventClickFocus(toggle)
	o.doc.OnClick(toggle, func(ctx context.Context) {
		p := base
		p.ID = api.NewPaymentID()
		if err := o.InitiateMenu(ctx, p); err != nil {
			o.props.ReportError(err)
		}
	})
}

func (o *Orchestrator) orderFor(btn api.Element) *order.Promise {
	o.mu.Lock()
	defer o.mu.Unlock()
	ord, ok := o.orders[btn]
	if !ok {
		ord = order.NewPromise()
		o.orders[btn] = ord
	}
	return ord
}

// releaseOrder replaces the button's order promise once an attempt has
// settled it, so the next attempt creates a new order
func (o *Orchestrator) releaseOrder(btn api.Element, ord *order.Promise) {
	if !ord.IsSettled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.orders[btn] == ord {
		o.orders[btn] = order.NewPromise()
	}
}

func (o *Orchestrator) resetOrder(btn api.Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders[btn] = order.NewPromise()
}

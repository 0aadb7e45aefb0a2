package headless

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// Decision is what the simulated buyer does once a payment UI shows
	Decision string

	// Buyer answers every wallet frame and checkout popup with the same
	// decision
	Buyer struct {
		decision Decision
		payerID  string
		wg       sync.WaitGroup
	}

	frame struct {
		buyer *Buyer
		name  string
		props api.UIProps
		mu    sync.Mutex
	}

	popup struct {
		buyer *Buyer
		props api.CheckoutProps
	}
)

const (
	Approve Decision = "approve"
	Cancel  Decision = "cancel"

	DefaultPayerID = "HEADLESSBUYER"
)

// NewBuyer creates a simulated buyer
func NewBuyer(decision Decision, payerID string) *Buyer {
	if payerID == "" {
		payerID = DefaultPayerID
	}
	return &Buyer{
		decision: decision,
		payerID:  payerID,
	}
}

// Components returns remote component factories driven by the buyer
func (b *Buyer) Components() api.Components {
	return api.Components{
		Checkout: b.checkout,
		Wallet:   b.ui("wallet"),
		Menu:     b.ui("menu"),
	}
}

// Wait blocks until every decision the buyer started has been delivered
func (b *Buyer) Wait() {
	b.wg.Wait()
}

func (b *Buyer) ui(name string) api.UIFactory {
	return func(p api.UIProps) api.UIComponent {
		return &frame{buyer: b, name: name, props: p}
	}
}

func (b *Buyer) checkout(p api.CheckoutProps) api.CheckoutSession {
	return &popup{buyer: b, props: p}
}

func (f *frame) RenderTo(_ context.Context, t api.RenderTarget) error {
	slog.Debug("Frame rendered",
		slog.String("frame", f.name),
		slog.String("parent", t.Parent),
		slog.String("selector", t.Selector))
	return nil
}

func (f *frame) UpdateProps(_ context.Context, p api.UIProps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props = p
	return nil
}

// Show delivers the buyer's decision. A menu is answered by selecting its
// first choice; a wallet frame once the order is known
func (f *frame) Show(ctx context.Context) error {
	f.mu.Lock()
	props := f.props
	f.mu.Unlock()

	slog.Debug("Frame shown",
		slog.String("frame", f.name),
		log.ClientID(props.ClientID),
		slog.Int("choices", len(props.Choices)))

	ctx = context.WithoutCancel(ctx)
	decide := f.buyer.decide
	switch {
	case len(props.Choices) > 0:
		decide = f.buyer.choose
	case props.OrderID == nil:
		return nil
	}

	f.buyer.wg.Go(func() {
		if err := decide(ctx, props); err != nil {
			slog.Warn("Buyer decision failed",
				slog.String("frame", f.name),
				log.Error(err))
		}
	})
	return nil
}

func (f *frame) Hide(context.Context) error {
	return nil
}

func (b *Buyer) decide(ctx context.Context, props api.UIProps) error {
	id, err := props.OrderID(ctx)
	if err != nil {
		return err
	}
	if b.decision == Cancel {
		if props.OnCancel == nil {
			return nil
		}
		return props.OnCancel(ctx)
	}
	if props.OnApprove == nil {
		return nil
	}
	return props.OnApprove(ctx, api.ApproveData{
		OrderID:          id,
		PayerID:          b.payerID,
		BuyerAccessToken: props.BuyerAccessToken,
	})
}

func (b *Buyer) choose(ctx context.Context, props api.UIProps) error {
	choice := props.Choices[0]
	slog.Debug("Menu choice selected",
		slog.String("label", choice.Label))
	if choice.OnSelect == nil {
		return nil
	}
	return choice.OnSelect(ctx, api.MenuSelection{Win: NewWindow()})
}

// Start creates the order through the popup and reports the buyer's
// decision
func (p *popup) Start(ctx context.Context) (*api.CheckoutResult, error) {
	if p.props.CreateOrder == nil {
		return &api.CheckoutResult{}, nil
	}
	id, err := p.props.CreateOrder(ctx)
	if err != nil {
		return nil, err
	}
	if p.buyer.decision == Cancel {
		return &api.CheckoutResult{}, nil
	}
	return &api.CheckoutResult{
		Approved: true,
		Approval: api.ApproveData{
			OrderID: id,
			PayerID: p.buyer.payerID,
		},
	}, nil
}

func (p *popup) Close(context.Context) error {
	if p.props.Win != nil {
		return p.props.Win.Close()
	}
	return nil
}

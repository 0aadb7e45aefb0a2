package display

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Coordinator lazily creates and drives the UI handle of each client id
	Coordinator struct {
		factory      api.UIFactory
		logger       telemetry.Logger
		newTimer     TimerConstructor
		handles      map[api.ClientID]*Handle
		name         string
		target       api.RenderTarget
		spinnerDelay time.Duration
		mu           sync.Mutex
	}

	// Options configure what a display shows and where it anchors
	Options struct {
		Anchor           api.Element
		OrderID          api.OrderSource
		OnApprove        func(context.Context, api.ApproveData) error
		OnCancel         func(context.Context) error
		BuyerAccessToken string
		Choices          []api.MenuChoice
	}

	// Option configures a Coordinator
	Option func(*Coordinator)
)

const (
	// DefaultSpinnerDelay keeps fast displays from flashing the spinner
	DefaultSpinnerDelay = 50 * time.Millisecond

	WalletSelector = "#smart-wallet"
	MenuSelector   = "#smart-menu"
)

var (
	ErrMissingClientID  = errors.New("can not render without client id")
	ErrMissingComponent = errors.New("can not render without component")
	ErrMissingAnchor    = errors.New("can not render without anchor element")
)

// New creates a coordinator rendering components built by factory into
// target. name identifies the UI in error codes ("wallet", "menu")
func New(
	name string, factory api.UIFactory, target api.RenderTarget,
	logger telemetry.Logger, opts ...Option,
) *Coordinator {
	c := &Coordinator{
		factory:      factory,
		logger:       logger,
		newTimer:     NewTimer,
		handles:      map[api.ClientID]*Handle{},
		name:         name,
		target:       target,
		spinnerDelay: DefaultSpinnerDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimer replaces the spinner timer constructor
func WithTimer(t TimerConstructor) Option {
	return func(c *Coordinator) {
		c.newTimer = t
	}
}

// WithSpinnerDelay replaces the spinner debounce delay
func WithSpinnerDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		c.spinnerDelay = d
	}
}

// Prerender creates and renders the handle ahead of any interaction. It
// silently does nothing when the client id or component is missing
func (c *Coordinator) Prerender(ctx context.Context, clientID api.ClientID) {
	if clientID == "" || c.factory == nil {
		return
	}
	h, err := c.handle(ctx, clientID)
	if err == nil {
		err = h.Render(ctx)
	}
	if err != nil {
		c.logger.Warn("prerender_"+c.name+"_error", api.Metadata{
			"err": err.Error(),
		}).Flush()
	}
}

// Display shows the UI of clientID next to opts.Anchor. A spinner is shown
// on the anchor if the display takes longer than the spinner delay, and is
// always cleared before Display returns
func (c *Coordinator) Display(
	ctx context.Context, clientID api.ClientID, opts Options,
) error {
	if clientID == "" {
		return api.ConfigurationError(
			"render_"+c.name+"_error", ErrMissingClientID,
		)
	}
	if c.factory == nil {
		return api.ConfigurationError(
			"render_"+c.name+"_error", ErrMissingComponent,
		)
	}
	if opts.Anchor == nil {
		return api.ConfigurationError(
			"render_"+c.name+"_error", ErrMissingAnchor,
		)
	}

	h, err := c.handle(ctx, clientID)
	if err != nil {
		return err
	}

	offset := opts.Anchor.BoundingRect().Bottom
	stop := c.startSpinner(opts.Anchor)
	defer stop()

	return h.Display(ctx, api.UIProps{
		OrderID:          opts.OrderID,
		OnApprove:        opts.OnApprove,
		OnCancel:         opts.OnCancel,
		BuyerAccessToken: opts.BuyerAccessToken,
		Choices:          opts.Choices,
		VerticalOffset:   offset,
	})
}

// Hide hides the UI of clientID, if one was created
func (c *Coordinator) Hide(ctx context.Context, clientID api.ClientID) error {
	c.mu.Lock()
	h, ok := c.handles[clientID]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return h.Hide(ctx)
}

// HideAll hides every created UI
func (c *Coordinator) HideAll(ctx context.Context) error {
	var errs []error
	for _, h := range c.Handles() {
		if err := h.Hide(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handles returns the created handles
func (c *Coordinator) Handles() []*Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*Handle, 0, len(c.handles))
	for _, h := range c.handles {
		res = append(res, h)
	}
	return res
}

// Clear forgets every handle so the next display creates a fresh one
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = map[api.ClientID]*Handle{}
}

func (c *Coordinator) handle(
	ctx context.Context, clientID api.ClientID,
) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[clientID]; ok {
		return h, nil
	}

	ui := c.factory(api.UIProps{ClientID: clientID})
	h, err := newHandle(ctx, ui, clientID, c.target)
	if err != nil {
		return nil, err
	}
	c.handles[clientID] = h
	return h, nil
}

func (c *Coordinator) startSpinner(anchor api.Element) func() {
	timer := c.newTimer(c.spinnerDelay)
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Go(func() {
		select {
		case <-timer.Channel():
			anchor.EnableSpinner()
		case <-done:
		}
	})

	return func() {
		timer.Stop()
		close(done)
		wg.Wait()
		anchor.DisableSpinner()
	}
}

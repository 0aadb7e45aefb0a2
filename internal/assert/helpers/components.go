package helpers

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// FakeUI is a remote UI component that records the commands it receives
	FakeUI struct {
		initial api.UIProps
		errs    map[string]error
		gate    chan struct{}
		calls   []string
		props   []api.UIProps
		targets []api.RenderTarget
		mu      sync.Mutex
	}

	// UIRecorder builds FakeUI components and keeps every instance
	UIRecorder struct {
		errs      map[string]error
		gate      chan struct{}
		instances []*FakeUI
		mu        sync.Mutex
	}

	// FakeCheckout builds web checkout sessions with a scripted outcome
	FakeCheckout struct {
		result   *api.CheckoutResult
		err      error
		gate     chan struct{}
		props    []api.CheckoutProps
		sessions []*FakeCheckoutSession
		mu       sync.Mutex
	}

	// FakeCheckoutSession is one web checkout popup
	FakeCheckoutSession struct {
		owner  *FakeCheckout
		props  api.CheckoutProps
		done   chan struct{}
		once   sync.Once
		starts int
		closes int
		mu     sync.Mutex
	}
)

const (
	UIRenderTo    = "renderTo"
	UIUpdateProps = "updateProps"
	UIShow        = "show"
	UIHide        = "hide"
)

var (
	_ api.UIComponent     = (*FakeUI)(nil)
	_ api.CheckoutSession = (*FakeCheckoutSession)(nil)
)

func (u *FakeUI) RenderTo(ctx context.Context, t api.RenderTarget) error {
	u.mu.Lock()
	gate := u.gate
	u.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	u.mu.Lock()
	u.targets = append(u.targets, t)
	u.mu.Unlock()
	return u.record(UIRenderTo)
}

func (u *FakeUI) UpdateProps(_ context.Context, p api.UIProps) error {
	u.mu.Lock()
	u.props = append(u.props, p)
	u.mu.Unlock()
	return u.record(UIUpdateProps)
}

func (u *FakeUI) Show(context.Context) error {
	return u.record(UIShow)
}

func (u *FakeUI) Hide(context.Context) error {
	return u.record(UIHide)
}

// Initial returns the props the component was constructed with
func (u *FakeUI) Initial() api.UIProps {
	return u.initial
}

// Calls returns the commands received in order
func (u *FakeUI) Calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.calls)
}

// Count returns how many times a command was received
func (u *FakeUI) Count(call string) int {
	n := 0
	for _, c := range u.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// LastProps returns the most recently pushed props
func (u *FakeUI) LastProps() (api.UIProps, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.props) == 0 {
		return api.UIProps{}, false
	}
	return u.props[len(u.props)-1], true
}

// Targets returns every render target the component was rendered into
func (u *FakeUI) Targets() []api.RenderTarget {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.targets)
}

func (u *FakeUI) record(call string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, call)
	return u.errs[call]
}

// NewUIRecorder creates a recorder producing healthy components
func NewUIRecorder() *UIRecorder {
	return &UIRecorder{
		errs: map[string]error{},
	}
}

// Factory returns the component factory backed by this recorder
func (r *UIRecorder) Factory() api.UIFactory {
	return func(p api.UIProps) api.UIComponent {
		r.mu.Lock()
		defer r.mu.Unlock()
		ui := &FakeUI{
			initial: p,
			errs:    maps.Clone(r.errs),
			gate:    r.gate,
		}
		r.instances = append(r.instances, ui)
		return ui
	}
}

// SetError makes components created afterward fail the command
func (r *UIRecorder) SetError(call string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[call] = err
}

// SetGate makes components created afterward block RenderTo until the
// channel is closed
func (r *UIRecorder) SetGate(gate chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = gate
}

// Instances returns every component created
func (r *UIRecorder) Instances() []*FakeUI {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.instances)
}

// Last returns the most recently created component
func (r *UIRecorder) Last() *FakeUI {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.instances) == 0 {
		return nil
	}
	return r.instances[len(r.instances)-1]
}

// NewFakeCheckout creates a checkout whose sessions approve with payer
// "PAYER-1" after creating the order
func NewFakeCheckout() *FakeCheckout {
	return &FakeCheckout{
		result: &api.CheckoutResult{
			Approved: true,
			Approval: api.ApproveData{PayerID: "PAYER-1"},
		},
	}
}

// Factory returns the checkout factory backed by this fake
func (c *FakeCheckout) Factory() api.CheckoutFactory {
	return func(p api.CheckoutProps) api.CheckoutSession {
		c.mu.Lock()
		defer c.mu.Unlock()
		s := &FakeCheckoutSession{
			owner: c,
			props: p,
			done:  make(chan struct{}),
		}
		c.props = append(c.props, p)
		c.sessions = append(c.sessions, s)
		return s
	}
}

// Cancel makes sessions report that the buyer closed the popup
func (c *FakeCheckout) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = &api.CheckoutResult{}
	c.err = nil
}

// Fail makes sessions fail with err
func (c *FakeCheckout) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// SetGate makes sessions block after order creation until the channel is
// closed or the session is closed
func (c *FakeCheckout) SetGate(gate chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = gate
}

// Props returns the props of every session created
func (c *FakeCheckout) Props() []api.CheckoutProps {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.props)
}

// Sessions returns every session created
func (c *FakeCheckout) Sessions() []*FakeCheckoutSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sessions)
}

// Count returns how many sessions were created
func (c *FakeCheckout) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Starts returns how many sessions were started
func (c *FakeCheckout) Starts() int {
	n := 0
	for _, s := range c.Sessions() {
		n += s.Starts()
	}
	return n
}

func (s *FakeCheckoutSession) Start(
	ctx context.Context,
) (*api.CheckoutResult, error) {
	s.mu.Lock()
	s.starts++
	s.mu.Unlock()

	var orderID api.OrderID
	if s.props.CreateOrder != nil {
		id, err := s.props.CreateOrder(ctx)
		if err != nil {
			return nil, err
		}
		orderID = id
	}

	s.owner.mu.Lock()
	gate, res, err := s.owner.gate, s.owner.result, s.owner.err
	s.owner.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-s.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	out := *res
	if out.Approved {
		out.Approval.OrderID = orderID
	}
	return &out, nil
}

func (s *FakeCheckoutSession) Close(context.Context) error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	s.once.Do(func() { close(s.done) })
	return nil
}

// Props returns the props the session was created with
func (s *FakeCheckoutSession) Props() api.CheckoutProps {
	return s.props
}

// Starts returns how many times the session was started
func (s *FakeCheckoutSession) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Closes returns how many times the session was closed
func (s *FakeCheckoutSession) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

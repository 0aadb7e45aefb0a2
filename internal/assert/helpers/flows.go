package helpers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// StubFlow is a configurable payment flow that counts its lifecycle
	// calls
	StubFlow struct {
		StartFn         func(context.Context, *flow.InitOptions) error
		SetupErr        error
		InitErr         error
		FlowName        string
		Eligible        bool
		PaymentEligible bool
		PanicOnPayment  bool
		IsInline        bool
		setups          atomic.Int32
		inits           atomic.Int32
		starts          atomic.Int32
		closes          atomic.Int32
		mu              sync.Mutex
		payments        []api.Payment
	}

	// MenuStubFlow is a StubFlow offering fixed menu choices
	MenuStubFlow struct {
		*StubFlow
		Choices []api.MenuChoice
		MenuErr error
		menus   atomic.Int32
	}

	stubInstance struct {
		flow *StubFlow
		opts *flow.InitOptions
	}
)

var (
	_ flow.Flow         = (*StubFlow)(nil)
	_ flow.MenuProvider = (*MenuStubFlow)(nil)
)

// NewStubFlow creates an eligible flow that completes immediately
func NewStubFlow(name string) *StubFlow {
	return &StubFlow{
		FlowName:        name,
		Eligible:        true,
		PaymentEligible: true,
	}
}

func (f *StubFlow) Name() string {
	return f.FlowName
}

func (f *StubFlow) Setup(context.Context, *flow.SetupOptions) error {
	f.setups.Add(1)
	return f.SetupErr
}

func (f *StubFlow) IsEligible(*api.ButtonProps, *api.ServiceData) bool {
	return f.Eligible
}

func (f *StubFlow) IsPaymentEligible(_ *api.ServiceData, _ api.Payment) bool {
	if f.PanicOnPayment {
		panic("payment eligibility exploded")
	}
	return f.PaymentEligible
}

func (f *StubFlow) Init(opts *flow.InitOptions) (flow.Instance, error) {
	f.inits.Add(1)
	if f.InitErr != nil {
		return nil, f.InitErr
	}
	f.mu.Lock()
	f.payments = append(f.payments, opts.Payment)
	f.mu.Unlock()
	return &stubInstance{flow: f, opts: opts}, nil
}

func (f *StubFlow) Inline() bool {
	return f.IsInline
}

func (f *StubFlow) Spinner() bool {
	return f.IsInline
}

// Setups returns how many times Setup was called
func (f *StubFlow) Setups() int {
	return int(f.setups.Load())
}

// Inits returns how many times Init was called
func (f *StubFlow) Inits() int {
	return int(f.inits.Load())
}

// Starts returns how many instances were started
func (f *StubFlow) Starts() int {
	return int(f.starts.Load())
}

// Closes returns how many instances were closed
func (f *StubFlow) Closes() int {
	return int(f.closes.Load())
}

// Payments returns the payments instances were created for
func (f *StubFlow) Payments() []api.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]api.Payment, len(f.payments))
	copy(res, f.payments)
	return res
}

// NewMenuStubFlow creates a flow offering the given choices
func NewMenuStubFlow(name string, choices ...api.MenuChoice) *MenuStubFlow {
	return &MenuStubFlow{
		StubFlow: NewStubFlow(name),
		Choices:  choices,
	}
}

func (f *MenuStubFlow) SetupMenu(*flow.MenuOptions) ([]api.MenuChoice, error) {
	f.menus.Add(1)
	if f.MenuErr != nil {
		return nil, f.MenuErr
	}
	return f.Choices, nil
}

// Menus returns how many times SetupMenu was called
func (f *MenuStubFlow) Menus() int {
	return int(f.menus.Load())
}

func (i *stubInstance) Start(ctx context.Context) error {
	i.flow.starts.Add(1)
	if i.flow.StartFn != nil {
		return i.flow.StartFn(ctx, i.opts)
	}
	return nil
}

func (i *stubInstance) Close(context.Context) error {
	i.flow.closes.Add(1)
	return nil
}

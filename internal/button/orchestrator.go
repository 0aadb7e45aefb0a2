package button

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/internal/validation"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Orchestrator admits at most one payment attempt at a time for the
	// buttons of a single render
	Orchestrator struct {
		registry   *flow.Registry
		doc        api.Document
		props      *api.ButtonProps
		sd         *api.ServiceData
		config     api.Config
		components api.Components
		wallet     *display.Coordinator
		menu       *display.Coordinator
		validator  *validation.Validator
		journal    Journal
		publisher  Publisher
		logger     telemetry.Logger
		tracer     trace.Tracer
		isEnabled  func() bool
		now        func() time.Time
		active     flow.Instance
		orders     map[api.Element]*order.Promise
		processing atomic.Bool
		mu         sync.Mutex
	}

	// Options are the collaborators of an Orchestrator. Registry,
	// Document, Props and Logger are required
	Options struct {
		Registry    *flow.Registry
		Document    api.Document
		Props       *api.ButtonProps
		ServiceData *api.ServiceData
		Config      api.Config
		Components  api.Components
		Wallet      *display.Coordinator
		Menu        *display.Coordinator
		Validator   *validation.Validator
		Journal     Journal
		Publisher   Publisher
		Logger      telemetry.Logger
		Tracer      trace.Tracer
		IsEnabled   func() bool
	}

	// Journal stores finished attempt records
	Journal interface {
		Record(context.Context, *api.AttemptRecord) error
	}

	// Publisher emits attempt events to telemetry observers
	Publisher interface {
		Publish(api.EventType, api.Metadata)
	}
)

const (
	CodePaymentError   = "smart_buttons_payment_error"
	CodeClickReject    = "click_initiate_payment_reject"
	CodePrerenderError = "prerender_initiate_payment_reject"
	CodeMissingButton  = "prerender_missing_button"
	CodeMissingMenu    = "menu_unsupported"
)

var (
	ErrMissingRegistry = errors.New("payment flow registry required")
	ErrMissingProps    = errors.New("button props required")
	ErrMissingDocument = errors.New("button document required")
	ErrMissingLogger   = errors.New("telemetry logger required")
	ErrButtonNotFound  = errors.New("no button rendered for funding source")
	ErrNoMenuDisplay   = errors.New("no menu display configured")
)

// New creates an orchestrator for one button render
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, ErrMissingRegistry
	}
	if opts.Props == nil {
		return nil, ErrMissingProps
	}
	if opts.Document == nil {
		return nil, ErrMissingDocument
	}
	if opts.Logger == nil {
		return nil, ErrMissingLogger
	}
	sd := opts.ServiceData
	if sd == nil {
		sd = &api.ServiceData{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	isEnabled := opts.IsEnabled
	if isEnabled == nil {
		isEnabled = func() bool { return true }
	}
	return &Orchestrator{
		registry:   opts.Registry,
		doc:        opts.Document,
		props:      opts.Props,
		sd:         sd,
		config:     opts.Config,
		components: opts.Components,
		wallet:     opts.Wallet,
		menu:       opts.Menu,
		validator:  opts.Validator,
		journal:    opts.Journal,
		publisher:  opts.Publisher,
		logger:     opts.Logger,
		tracer:     tracer,
		isEnabled:  isEnabled,
		now:        time.Now,
		orders:     map[api.Element]*order.Promise{},
	}, nil
}

// Processing returns whether an attempt is currently in flight
func (o *Orchestrator) Processing() bool {
	return o.processing.Load()
}

// Initiate runs one payment attempt. While another attempt is in flight
// the call returns nil without any side effect
func (o *Orchestrator) Initiate(ctx context.Context, p api.Payment) error {
	return o.initiate(ctx, p, nil)
}

// InitiateMenu builds and displays the dropdown menu of the flow selected
// for the payment. It does nothing while an attempt is in flight
func (o *Orchestrator) InitiateMenu(ctx context.Context, p api.Payment) error {
	if o.processing.Load() || !o.isEnabled() {
		return nil
	}
	if err := o.showMenu(ctx, p); err != nil {
		o.reportPaymentError(err)
		return err
	}
	return nil
}

// Cancel force-closes the active flow instance, if any
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	inst := o.active
	o.mu.Unlock()
	if inst == nil {
		return nil
	}
	return inst.Close(ctx)
}

// Close cancels the active attempt and hides every displayed frame
func (o *Orchestrator) Close(ctx context.Context) error {
	errs := []error{o.Cancel(ctx)}
	if o.wallet != nil {
		errs = append(errs, o.wallet.HideAll(ctx))
	}
	if o.menu != nil {
		errs = append(errs, o.menu.HideAll(ctx))
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) initiate(
	ctx context.Context, p api.Payment, ord *order.Promise,
) error {
	if !o.processing.CompareAndSwap(false, true) {
		return nil
	}
	defer o.processing.Store(false)

	if err := o.attempt(ctx, p, ord); err != nil {
		o.reportPaymentError(err)
		return err
	}
	return nil
}

func (o *Orchestrator) attempt(
	ctx context.Context, p api.Payment, ord *order.Promise,
) error {
	if sf, ok := o.doc.SmartFields(p.FundingSource); ok && !sf.IsValid() {
		return p.CloseWindow()
	}
	if o.props.OnClick != nil {
		o.props.OnClick(api.ClickData{FundingSource: p.FundingSource})
	}
	if !o.isEnabled() {
		return p.CloseWindow()
	}

	reg, err := o.registry.Resolve(o.props, o.sd, p)
	if err != nil {
		return abort(p, err)
	}
	if ord == nil {
		ord = order.NewPromise()
	}

	ctx, span := o.startSpan(ctx, reg, p)
	defer span.End()

	rec := o.begin(reg, p)
	inst, err := reg.Init(&flow.InitOptions{
		Props:       o.flowProps(reg, p),
		ServiceData: o.sd,
		Order:       ord,
		Components:  o.components,
		Payment:     p,
		Config:      o.config,
	})
	if err != nil {
		o.finish(ctx, rec, nil, ord, err)
		endSpan(span, err)
		return abort(p, err)
	}

	o.setActive(inst)
	defer o.clearActive(inst)

	err = inst.Start(ctx)
	o.finish(ctx, rec, inst, ord, err)
	endSpan(span, err)
	return err
}

// abort closes the popup window of a payment that failed before its flow
// instance started
func abort(p api.Payment, err error) error {
	if cerr := p.CloseWindow(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func (o *Orchestrator) showMenu(ctx context.Context, p api.Payment) error {
	reg, err := o.registry.Resolve(o.props, o.sd, p)
	if err != nil {
		return err
	}
	if !reg.SupportsMenu() {
		return api.ConfigurationErrorf(CodeMissingMenu, "%w: %s",
			flow.ErrMenuUnsupported, reg.Name(),
		)
	}
	if o.menu == nil {
		return api.ConfigurationError(CodeMissingMenu, ErrNoMenuDisplay)
	}

	ord := order.NewPromise()
	choices, err := reg.Menu.SetupMenu(&flow.MenuOptions{
		Props:       o.props,
		ServiceData: o.sd,
		Order:       ord,
		Initiate: func(ctx context.Context, np api.Payment) error {
			return o.initiate(ctx, np, ord)
		},
		Components: o.components,
		Payment:    p,
		Config:     o.config,
	})
	if err != nil {
		return err
	}

	anchor := p.MenuToggle
	if anchor == nil {
		anchor = p.Button
	}
	return o.menu.Display(ctx, o.props.ClientID, display.Options{
		Anchor:  anchor,
		Choices: choices,
	})
}

// flowProps wraps the merchant's createOrder so that every order produced
// for the attempt is validated and, when the flow asks for it, its client
// configuration is pushed before the flow sees the order id
func (o *Orchestrator) flowProps(
	reg *flow.Registration, p api.Payment,
) *api.ButtonProps {
	props := *o.props
	create := o.props.CreateOrder
	if create == nil {
		return &props
	}
	props.CreateOrder = func(ctx context.Context) (api.OrderID, error) {
		id, err := create(ctx)
		if err != nil {
			return "", err
		}
		if o.validator != nil {
			err := o.validator.ValidateOrder(ctx, id, o.props, o.sd)
			if err != nil {
				return "", err
			}
		}
		if reg.SupportsClientConfigUpdate() {
			err := reg.ClientConfig.UpdateClientConfig(ctx,
				&flow.ClientConfigOptions{OrderID: id, Payment: p},
			)
			if err != nil {
				return "", err
			}
		}
		return id, nil
	}
	return &props
}

func (o *Orchestrator) setActive(inst flow.Instance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = inst
}

func (o *Orchestrator) clearActive(inst flow.Instance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == inst {
		o.active = nil
	}
}

func (o *Orchestrator) reportPaymentError(err error) {
	o.logger.Info(CodePaymentError, api.Metadata{
		"err": err.Error(),
	}).Track(api.Metadata{
		api.MetaErrorCode: CodePaymentError,
		api.MetaErrorDesc: err.Error(),
	}).Flush()
}

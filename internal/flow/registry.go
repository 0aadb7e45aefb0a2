package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Registration is a flow whose optional capabilities were resolved when
	// it was registered
	Registration struct {
		Flow
		Menu         MenuProvider
		ClientConfig ClientConfigUpdater
	}

	// Registry holds the flows of a button render in priority order
	Registry struct {
		byName map[string]*Registration
		def    *Registration
		logger telemetry.Logger
		flows  []*Registration
		mu     sync.RWMutex
	}
)

var (
	ErrFlowExists      = errors.New("payment flow already registered")
	ErrFlowNotFound    = errors.New("payment flow not found")
	ErrNoEligibleFlow  = errors.New("no eligible payment flow")
	ErrMenuUnsupported = errors.New("payment flow does not support a menu")
)

// NewRegistry creates an empty registry reporting to logger
func NewRegistry(logger telemetry.Logger) *Registry {
	return &Registry{
		byName: map[string]*Registration{},
		logger: logger,
	}
}

// Register appends a flow. Registration order encodes selection priority
func (r *Registry) Register(f Flow) (*Registration, error) {
	reg := &Registration{Flow: f}
	if m, ok := f.(MenuProvider); ok {
		reg.Menu = m
	}
	if u, ok := f.(ClientConfigUpdater); ok {
		reg.ClientConfig = u
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[f.Name()]; ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowExists, f.Name())
	}
	r.byName[f.Name()] = reg
	r.flows = append(r.flows, reg)
	return reg, nil
}

// RegisterDefault appends a flow and marks it as the unconditional default
// used when no registered flow admits a payment
func (r *Registry) RegisterDefault(f Flow) (*Registration, error) {
	reg, err := r.Register(f)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.def = reg
	r.mu.Unlock()
	return reg, nil
}

// Get returns the registration with the given flow name
func (r *Registry) Get(name string) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg, ok := r.byName[name]; ok {
		return reg, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, name)
}

// Default returns the default registration, if one was registered
func (r *Registry) Default() (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def, r.def != nil
}

// Flows returns the registrations in priority order
func (r *Registry) Flows() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*Registration, len(r.flows))
	copy(res, r.flows)
	return res
}

// Setup runs the setup of every flow eligible for the render. Setup
// failures are logged and never abort the render; the flow's own payment
// eligibility accounts for data it failed to load
func (r *Registry) Setup(ctx context.Context, opts *SetupOptions) {
	var wg sync.WaitGroup
	for _, reg := range r.Flows() {
		if !r.isEligible(reg, opts.Props, opts.ServiceData) {
			continue
		}
		wg.Go(func() {
			if err := reg.Setup(ctx, opts); err != nil {
				r.logger.Warn("setup_payment_flow_error", api.Metadata{
					api.MetaPaymentFlow: reg.Name(),
					"err":               err.Error(),
				})
			}
		})
	}
	wg.Wait()
	r.logger.Flush()
}

// SupportsMenu returns whether the flow offers menu choices
func (r *Registration) SupportsMenu() bool {
	return r.Menu != nil
}

// SupportsClientConfigUpdate returns whether the flow pushes its client
// configuration to the remote side
func (r *Registration) SupportsClientConfigUpdate() bool {
	return r.ClientConfig != nil
}

package flow

import (
	"context"

	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Flow is the descriptor of one payment flow. Implementations are
	// stateless apart from caches scoped to a single button render
	Flow interface {
		Name() string
		Setup(context.Context, *SetupOptions) error
		IsEligible(*api.ButtonProps, *api.ServiceData) bool
		IsPaymentEligible(*api.ServiceData, api.Payment) bool
		Init(*InitOptions) (Instance, error)
		Inline() bool
		Spinner() bool
	}

	// MenuProvider is implemented by flows that offer alternate-flow choices
	// in the button dropdown
	MenuProvider interface {
		SetupMenu(*MenuOptions) ([]api.MenuChoice, error)
	}

	// ClientConfigUpdater is implemented by flows that push their client
	// configuration to the remote side once an order exists
	ClientConfigUpdater interface {
		UpdateClientConfig(context.Context, *ClientConfigOptions) error
	}

	// Instance is one running flow for one payment
	Instance interface {
		Start(context.Context) error
		Close(context.Context) error
	}

	// Initiator starts a new orchestrated attempt for a payment
	Initiator func(context.Context, api.Payment) error

	// SetupOptions are handed to every flow once per button render
	SetupOptions struct {
		Props       *api.ButtonProps
		ServiceData *api.ServiceData
		Config      api.Config
	}

	// InitOptions carry everything a flow needs to create an instance
	InitOptions struct {
		Props       *api.ButtonProps
		ServiceData *api.ServiceData
		Order       *order.Promise
		Components  api.Components
		Payment     api.Payment
		Config      api.Config
	}

	// MenuOptions carry everything a flow needs to build its menu
	MenuOptions struct {
		Props       *api.ButtonProps
		ServiceData *api.ServiceData
		Order       *order.Promise
		Initiate    Initiator
		Components  api.Components
		Payment     api.Payment
		Config      api.Config
	}

	// ClientConfigOptions identify the order and payment being configured
	ClientConfigOptions struct {
		OrderID api.OrderID
		Payment api.Payment
	}
)

// Observable is implemented by instances that expose their lifecycle
type Observable interface {
	Lifecycle() *Lifecycle
}

package button

import (
	"log/slog"

	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/internal/flow/checkout"
	"github.com/kode4food/paybutton/internal/flow/wallet"
	"github.com/kode4food/paybutton/internal/menu"
	"github.com/kode4food/paybutton/internal/telemetry"
)

// FlowDependencies are the collaborators of the built-in payment flows
type FlowDependencies struct {
	Services client.Services
	Wallet   *display.Coordinator
	Logger   telemetry.Logger
	Handler  slog.Handler
}

// NewRegistry registers the built-in flows in priority order: the inline
// wallet first, then the web checkout as the default
func NewRegistry(deps FlowDependencies) (*flow.Registry, error) {
	reg := flow.NewRegistry(deps.Logger)
	co := checkout.New(deps.Logger, deps.Handler)
	w := wallet.New(wallet.Dependencies{
		Services: deps.Services,
		Display:  deps.Wallet,
		Menu:     menu.NewBuilder(deps.Services, deps.Logger),
		Fallback: co,
		Logger:   deps.Logger,
		Handler:  deps.Handler,
	})
	if _, err := reg.Register(w); err != nil {
		return nil, err
	}
	if _, err := reg.RegisterDefault(co); err != nil {
		return nil, err
	}
	return reg, nil
}

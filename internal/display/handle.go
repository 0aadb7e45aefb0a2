package display

import (
	"context"
	"sync"

	"github.com/kode4food/paybutton/pkg/api"
)

// Handle is the single UI component created for one client id
type Handle struct {
	ui        api.UIComponent
	target    api.RenderTarget
	clientID  api.ClientID
	renderErr error
	render    sync.Once
}

func newHandle(
	ctx context.Context, ui api.UIComponent, clientID api.ClientID,
	target api.RenderTarget,
) (*Handle, error) {
	h := &Handle{
		ui:       ui,
		target:   target,
		clientID: clientID,
	}
	if err := ui.Hide(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// ClientID returns the client id the handle was created for
func (h *Handle) ClientID() api.ClientID {
	return h.clientID
}

// Render renders the remote frame. Only the first call reaches the
// component; later calls report the first outcome
func (h *Handle) Render(ctx context.Context) error {
	h.render.Do(func() {
		h.renderErr = h.ui.RenderTo(ctx, h.target)
	})
	return h.renderErr
}

// Display renders the frame if needed, pushes props, and shows it
func (h *Handle) Display(ctx context.Context, props api.UIProps) error {
	if err := h.Render(ctx); err != nil {
		return err
	}
	props.ClientID = h.clientID
	if err := h.ui.UpdateProps(ctx, props); err != nil {
		return err
	}
	return h.ui.Show(ctx)
}

// Hide hides the frame
func (h *Handle) Hide(ctx context.Context) error {
	return h.ui.Hide(ctx)
}

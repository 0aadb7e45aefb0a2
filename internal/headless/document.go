package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// Element is a rendered button or menu toggle
	Element struct {
		id       string
		rect     api.Rect
		spinning atomic.Bool
	}

	// Window is a popup that exists only as an open/closed flag
	Window struct {
		closed atomic.Bool
	}

	// Document lays out buttons vertically in render order
	Document struct {
		buttons  []*Element
		selected map[*Element]api.SelectedFunding
		wallet   map[*Element]bool
		menus    map[*Element]*Element
		handlers map[*Element]api.ClickHandler
		mu       sync.Mutex
	}
)

const buttonHeight = 45

var ErrNoButton = errors.New("no button rendered for funding source")

var (
	_ api.Window   = (*Window)(nil)
	_ api.Element  = (*Element)(nil)
	_ api.Document = (*Document)(nil)
)

// NewWindow opens a popup
func NewWindow() *Window {
	return &Window{}
}

func (w *Window) Close() error {
	w.closed.Store(true)
	return nil
}

func (w *Window) IsClosed() bool {
	return w.closed.Load()
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{
		selected: map[*Element]api.SelectedFunding{},
		wallet:   map[*Element]bool{},
		menus:    map[*Element]*Element{},
		handlers: map[*Element]api.ClickHandler{},
	}
}

// AddButton renders a button for the selected funding. Wallet buttons are
// paid inline and get a menu toggle
func (d *Document) AddButton(sel api.SelectedFunding, wallet bool) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	top := float64(len(d.buttons) * buttonHeight)
	el := &Element{
		id:   "button-" + string(sel.FundingSource),
		rect: api.Rect{Top: top, Bottom: top + buttonHeight, Right: 750},
	}
	d.buttons = append(d.buttons, el)
	d.selected[el] = sel
	if wallet {
		d.wallet[el] = true
		d.menus[el] = &Element{id: el.id + "-menu", rect: el.rect}
	}
	return el
}

// Click fires the handler bound to the button of the funding source
func (d *Document) Click(ctx context.Context, fs api.FundingSource) error {
	el, ok := d.ButtonByFunding(fs)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoButton, fs)
	}
	return d.fire(ctx, el.(*Element))
}

// ClickMenu fires the handler bound to the menu toggle of a wallet button
func (d *Document) ClickMenu(ctx context.Context, fs api.FundingSource) error {
	el, ok := d.ButtonByFunding(fs)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoButton, fs)
	}
	toggle, ok := d.MenuToggle(el)
	if !ok {
		return fmt.Errorf("%w: %s menu", ErrNoButton, fs)
	}
	return d.fire(ctx, toggle.(*Element))
}

func (d *Document) Buttons() []api.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]api.Element, len(d.buttons))
	for i, b := range d.buttons {
		res[i] = b
	}
	return res
}

func (d *Document) ButtonByFunding(fs api.FundingSource) (api.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.buttons {
		if d.selected[b].FundingSource == fs {
			return b, true
		}
	}
	return nil, false
}

func (d *Document) MenuToggle(el api.Element) (api.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := el.(*Element)
	if !ok {
		return nil, false
	}
	m, ok := d.menus[e]
	return m, ok
}

func (d *Document) IsWalletButton(el api.Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := el.(*Element)
	return ok && d.wallet[e]
}

func (d *Document) SelectedFunding(el api.Element) api.SelectedFunding {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := el.(*Element); ok {
		return d.selected[e]
	}
	return api.SelectedFunding{}
}

// SmartFields reports no inline card fields
func (d *Document) SmartFields(api.FundingSource) (api.SmartFields, bool) {
	return nil, false
}

// PreventClickFocus does nothing: there is no focus without a browser
func (d *Document) PreventClickFocus(api.Element) {}

func (d *Document) OnClick(el api.Element, h api.ClickHandler) {
	e, ok := el.(*Element)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[e] = h
}

func (d *Document) fire(ctx context.Context, el *Element) error {
	d.mu.Lock()
	h, ok := d.handlers[el]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s not bound", ErrNoButton, el.id)
	}
	h(ctx)
	return nil
}

func (e *Element) ID() string {
	return e.id
}

func (e *Element) BoundingRect() api.Rect {
	return e.rect
}

func (e *Element) EnableSpinner() {
	e.spinning.Store(true)
}

func (e *Element) DisableSpinner() {
	e.spinning.Store(false)
}

// Spinning returns whether the element currently shows a spinner
func (e *Element) Spinning() bool {
	return e.spinning.Load()
}

package helpers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// FakeWindow is a popup window handle that records closes
	FakeWindow struct {
		closes atomic.Int32
	}

	// FakeElement is a rendered element with a fixed layout position
	FakeElement struct {
		id         string
		rect       api.Rect
		spinnerOn  atomic.Int32
		spinnerOff atomic.Int32
		spinning   atomic.Bool
	}

	// FakeSmartFields are inline card fields with a fixed validity
	FakeSmartFields struct {
		valid atomic.Bool
	}

	// FakeDocument is an in-memory DOM collaborator
	FakeDocument struct {
		buttons     []*FakeElement
		selected    map[*FakeElement]api.SelectedFunding
		wallet      map[*FakeElement]bool
		menus       map[*FakeElement]*FakeElement
		smartFields map[api.FundingSource]*FakeSmartFields
		handlers    map[api.Element]api.ClickHandler
		noFocus     map[api.Element]bool
		mu          sync.Mutex
	}
)

var (
	_ api.Window      = (*FakeWindow)(nil)
	_ api.Element     = (*FakeElement)(nil)
	_ api.SmartFields = (*FakeSmartFields)(nil)
	_ api.Document    = (*FakeDocument)(nil)
)

// NewWindow creates an open popup window
func NewWindow() *FakeWindow {
	return &FakeWindow{}
}

func (w *FakeWindow) Close() error {
	w.closes.Add(1)
	return nil
}

func (w *FakeWindow) IsClosed() bool {
	return w.closes.Load() > 0
}

// Closes returns how many times Close was called
func (w *FakeWindow) Closes() int {
	return int(w.closes.Load())
}

// NewElement creates an element whose bounding rectangle ends at bottom
func NewElement(id string, bottom float64) *FakeElement {
	return &FakeElement{
		id:   id,
		rect: api.Rect{Top: bottom - 40, Bottom: bottom, Right: 300},
	}
}

func (e *FakeElement) ID() string {
	return e.id
}

func (e *FakeElement) BoundingRect() api.Rect {
	return e.rect
}

func (e *FakeElement) EnableSpinner() {
	e.spinnerOn.Add(1)
	e.spinning.Store(true)
}

func (e *FakeElement) DisableSpinner() {
	e.spinnerOff.Add(1)
	e.spinning.Store(false)
}

// Spinning returns whether the spinner is currently shown
func (e *FakeElement) Spinning() bool {
	return e.spinning.Load()
}

// SpinnerEnabled returns how many times the spinner was enabled
func (e *FakeElement) SpinnerEnabled() int {
	return int(e.spinnerOn.Load())
}

// SpinnerDisabled returns how many times the spinner was disabled
func (e *FakeElement) SpinnerDisabled() int {
	return int(e.spinnerOff.Load())
}

// NewSmartFields creates smart fields with the given validity
func NewSmartFields(valid bool) *FakeSmartFields {
	sf := &FakeSmartFields{}
	sf.valid.Store(valid)
	return sf
}

func (f *FakeSmartFields) IsValid() bool {
	return f.valid.Load()
}

// SetValid changes the validity of the fields
func (f *FakeSmartFields) SetValid(valid bool) {
	f.valid.Store(valid)
}

// NewDocument creates an empty document
func NewDocument() *FakeDocument {
	return &FakeDocument{
		selected:    map[*FakeElement]api.SelectedFunding{},
		wallet:      map[*FakeElement]bool{},
		menus:       map[*FakeElement]*FakeElement{},
		smartFields: map[api.FundingSource]*FakeSmartFields{},
		handlers:    map[api.Element]api.ClickHandler{},
		noFocus:     map[api.Element]bool{},
	}
}

// AddButton renders a button advertising the selected funding
func (d *FakeDocument) AddButton(sel api.SelectedFunding) *FakeElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := NewElement(
		"button-"+string(sel.FundingSource), float64(50*(len(d.buttons)+1)),
	)
	d.buttons = append(d.buttons, el)
	d.selected[el] = sel
	return el
}

// AddWalletButton renders an inline wallet button for an instrument
func (d *FakeDocument) AddWalletButton(sel api.SelectedFunding) *FakeElement {
	el := d.AddButton(sel)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wallet[el] = true
	return el
}

// AddMenuToggle attaches a menu toggle to a button
func (d *FakeDocument) AddMenuToggle(button *FakeElement) *FakeElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := NewElement(button.id+"-menu", button.rect.Bottom)
	d.menus[button] = el
	return el
}

// SetSmartFields attaches smart fields to a funding source
func (d *FakeDocument) SetSmartFields(
	fs api.FundingSource, sf *FakeSmartFields,
) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.smartFields[fs] = sf
}

func (d *FakeDocument) Buttons() []api.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]api.Element, len(d.buttons))
	for i, b := range d.buttons {
		res[i] = b
	}
	return res
}

func (d *FakeDocument) ButtonByFunding(
	fs api.FundingSource,
) (api.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.buttons {
		if d.selected[b].FundingSource == fs {
			return b, true
		}
	}
	return nil, false
}

func (d *FakeDocument) MenuToggle(el api.Element) (api.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fe, ok := el.(*FakeElement)
	if !ok {
		return nil, false
	}
	m, ok := d.menus[fe]
	return m, ok
}

func (d *FakeDocument) IsWalletButton(el api.Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	fe, ok := el.(*FakeElement)
	return ok && d.wallet[fe]
}

func (d *FakeDocument) SelectedFunding(el api.Element) api.SelectedFunding {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fe, ok := el.(*FakeElement); ok {
		return d.selected[fe]
	}
	return api.SelectedFunding{}
}

func (d *FakeDocument) SmartFields(
	fs api.FundingSource,
) (api.SmartFields, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sf, ok := d.smartFields[fs]
	if !ok {
		return nil, false
	}
	return sf, true
}

func (d *FakeDocument) PreventClickFocus(el api.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.noFocus[el] = true
}

func (d *FakeDocument) OnClick(el api.Element, h api.ClickHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[el] = h
}

// FocusPrevented returns whether click focus was suppressed on el
func (d *FakeDocument) FocusPrevented(el api.Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.noFocus[el]
}

// HasClickHandler returns whether a click handler is bound to el
func (d *FakeDocument) HasClickHandler(el api.Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.handlers[el]
	return ok
}

// Click invokes the click handler bound to el, synchronously
func (d *FakeDocument) Click(ctx context.Context, el api.Element) bool {
	d.mu.Lock()
	h, ok := d.handlers[el]
	d.mu.Unlock()
	if !ok {
		return false
	}
	h(ctx)
	return true
}

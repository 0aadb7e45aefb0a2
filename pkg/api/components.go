package api

import "context"

type (
	// Window is a handle to an open popup window
	Window interface {
		Close() error
		IsClosed() bool
	}

	// Rect is an element's bounding rectangle in page coordinates
	Rect struct {
		Top    float64
		Bottom float64
		Left   float64
		Right  float64
	}

	// Element is a rendered button, menu toggle, or other page element
	Element interface {
		ID() string
		BoundingRect() Rect
		EnableSpinner()
		DisableSpinner()
	}

	// ClickHandler is invoked when a bound element is clicked
	ClickHandler func(context.Context)

	// SmartFields are inline card fields attached to a funding source
	SmartFields interface {
		IsValid() bool
	}

	// Document is the DOM collaborator the engine reads buttons from and
	// binds interactions to
	Document interface {
		Buttons() []Element
		ButtonByFunding(FundingSource) (Element, bool)
		MenuToggle(Element) (Element, bool)
		IsWalletButton(Element) bool
		SelectedFunding(Element) SelectedFunding
		SmartFields(FundingSource) (SmartFields, bool)
		PreventClickFocus(Element)
		OnClick(Element, ClickHandler)
	}

	// RenderTarget locates the container a remote UI frame renders into
	RenderTarget struct {
		Parent   string
		Selector string
	}

	// UIProps are the properties pushed into a remote UI frame
	UIProps struct {
		OrderID          OrderSource
		OnApprove        func(context.Context, ApproveData) error
		OnCancel         func(context.Context) error
		OnFocus          func()
		OnFocusFail      func()
		ClientID         ClientID
		BuyerAccessToken string
		Choices          []MenuChoice
		VerticalOffset   float64
	}

	// OrderSource suspends until the order identifier of the current
	// attempt is known
	OrderSource func(context.Context) (OrderID, error)

	// UIComponent is a remote iframe-hosted UI (wallet or menu)
	UIComponent interface {
		RenderTo(context.Context, RenderTarget) error
		UpdateProps(context.Context, UIProps) error
		Show(context.Context) error
		Hide(context.Context) error
	}

	// UIFactory constructs a remote UI component
	UIFactory func(UIProps) UIComponent

	// CheckoutProps configure a full web checkout session
	CheckoutProps struct {
		Win               Window
		Card              *Card
		CreateOrder       CreateOrder
		CreateAccessToken AccessTokenSource
		ClientID          ClientID
		FundingSource     FundingSource
		BuyerIntent       BuyerIntent
		SessionID         string
		ButtonSessionID   ButtonSessionID
		Locale            string
		CSPNonce          string
		Commit            bool
	}

	// CheckoutResult reports how the buyer left the checkout popup
	CheckoutResult struct {
		Approval ApproveData
		Approved bool
	}

	// CheckoutSession is a running web checkout popup. Start suspends until
	// the buyer approves, cancels, or closes the popup
	CheckoutSession interface {
		Start(context.Context) (*CheckoutResult, error)
		Close(context.Context) error
	}

	// CheckoutFactory constructs a web checkout session
	CheckoutFactory func(CheckoutProps) CheckoutSession

	// Components groups the remote component factories of a button render
	Components struct {
		Checkout CheckoutFactory
		Wallet   UIFactory
		Menu     UIFactory
	}
)

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

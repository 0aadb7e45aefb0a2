package api

import "context"

type (
	// MenuChoice is one selectable alternate flow in the button dropdown
	MenuChoice struct {
		OnSelect func(context.Context, MenuSelection) error `json:"-"`
		Label    string                                      `json:"label"`
		Popup    PopupDimensions                             `json:"popup"`
	}

	// MenuSelection is the context handed to a choice when it is selected
	MenuSelection struct {
		Win Window
	}

	// PopupDimensions is a size hint for the window-opening collaborator
	PopupDimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
)

// CheckoutPopup is the size of the full web checkout popup window
var CheckoutPopup = PopupDimensions{Width: 500, Height: 590}

package api

import (
	"regexp"

	"github.com/google/uuid"
)

type (
	// PaymentID uniquely identifies one payment attempt
	PaymentID string

	// ButtonSessionID identifies one rendering of a set of buttons
	ButtonSessionID string

	// OrderID is the merchant order identifier returned by createOrder
	OrderID string

	// ClientID is the merchant's API client identifier
	ClientID string
)

// ValidOrderID matches order identifiers accepted by the remote services
var ValidOrderID = regexp.MustCompile(`^[A-Z0-9\-]{3,64}$`)

// NewPaymentID generates a fresh payment attempt identifier
func NewPaymentID() PaymentID {
	return PaymentID(uuid.New().String())
}

// NewButtonSessionID generates a fresh button session identifier
func NewButtonSessionID() ButtonSessionID {
	return ButtonSessionID(uuid.New().String())
}

// IsValid returns whether the order identifier has an acceptable shape
func (id OrderID) IsValid() bool {
	return ValidOrderID.MatchString(string(id))
}

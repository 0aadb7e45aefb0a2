package api_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/pkg/api"
)

func TestNewPaymentID(t *testing.T) {
	a := api.NewPaymentID()
	b := api.NewPaymentID()

	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(string(a))
	assert.NoError(t, err)
}

func TestNewButtonSessionID(t *testing.T) {
	id := api.NewButtonSessionID()
	_, err := uuid.Parse(string(id))
	assert.NoError(t, err)
}

func TestOrderIDIsValid(t *testing.T) {
	assert.True(t, api.OrderID("5O190127TN364715T").IsValid())
	assert.True(t, api.OrderID("EC-123").IsValid())
	assert.False(t, api.OrderID("").IsValid())
	assert.False(t, api.OrderID("ab").IsValid())
	assert.False(t, api.OrderID("lower-case").IsValid())
}

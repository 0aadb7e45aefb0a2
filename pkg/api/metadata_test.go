package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/pkg/api"
)

func TestGetMetaString(t *testing.T) {
	t.Run("returns value when key exists", func(t *testing.T) {
		meta := api.Metadata{api.MetaPaymentID: "pay-1"}
		val, ok := api.GetMetaString[api.PaymentID](meta, api.MetaPaymentID)
		assert.True(t, ok)
		assert.Equal(t, api.PaymentID("pay-1"), val)
	})

	t.Run("accepts typed values", func(t *testing.T) {
		meta := api.Metadata{api.MetaOrderID: api.OrderID("ORDER-1")}
		val, ok := api.GetMetaString[api.OrderID](meta, api.MetaOrderID)
		assert.True(t, ok)
		assert.Equal(t, api.OrderID("ORDER-1"), val)
	})

	t.Run("returns false when key missing", func(t *testing.T) {
		meta := api.Metadata{}
		_, ok := api.GetMetaString[api.PaymentID](meta, api.MetaPaymentID)
		assert.False(t, ok)
	})

	t.Run("returns false for empty and non-string values", func(t *testing.T) {
		meta := api.Metadata{"a": "", "b": 42}
		_, ok := api.GetMetaString[api.PaymentID](meta, "a")
		assert.False(t, ok)
		_, ok = api.GetMetaString[api.PaymentID](meta, "b")
		assert.False(t, ok)
	})
}

func TestMetadataApply(t *testing.T) {
	base := api.Metadata{"a": 1, "b": 2}
	res := base.Apply(api.Metadata{"b": 3, "c": 4})

	assert.Equal(t, api.Metadata{"a": 1, "b": 3, "c": 4}, res)
	assert.Equal(t, api.Metadata{"a": 1, "b": 2}, base)
}

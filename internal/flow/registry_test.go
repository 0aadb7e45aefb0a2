package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/assert/helpers"
	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/pkg/api"
)

func TestRegister(t *testing.T) {
	reg := flow.NewRegistry(helpers.NewRecordingLogger())

	wallet := helpers.NewMenuStubFlow("wallet")
	checkout := helpers.NewStubFlow("checkout")

	w, err := reg.Register(wallet)
	require.NoError(t, err)
	assert.True(t, w.SupportsMenu())
	assert.False(t, w.SupportsClientConfigUpdate())

	c, err := reg.RegisterDefault(checkout)
	require.NoError(t, err)
	assert.False(t, c.SupportsMenu())

	def, ok := reg.Default()
	assert.True(t, ok)
	assert.Equal(t, "checkout", def.Name())

	flows := reg.Flows()
	require.Len(t, flows, 2)
	assert.Equal(t, "wallet", flows[0].Name())
	assert.Equal(t, "checkout", flows[1].Name())
}

func TestRegisterDuplicate(t *testing.T) {
	reg := flow.NewRegistry(helpers.NewRecordingLogger())
	_, err := reg.Register(helpers.NewStubFlow("checkout"))
	require.NoError(t, err)

	_, err = reg.Register(helpers.NewStubFlow("checkout"))
	assert.ErrorIs(t, err, flow.ErrFlowExists)

	_, err = reg.RegisterDefault(helpers.NewStubFlow("checkout"))
	assert.ErrorIs(t, err, flow.ErrFlowExists)
	_, ok := reg.Default()
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	reg := flow.NewRegistry(helpers.NewRecordingLogger())
	_, err := reg.Register(helpers.NewStubFlow("checkout"))
	require.NoError(t, err)

	r, err := reg.Get("checkout")
	require.NoError(t, err)
	assert.Equal(t, "checkout", r.Name())

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, flow.ErrFlowNotFound)
}

func TestSetup(t *testing.T) {
	logger := helpers.NewRecordingLogger()
	reg := flow.NewRegistry(logger)

	ok := helpers.NewStubFlow("ok")
	failing := helpers.NewStubFlow("failing")
	failing.SetupErr = errors.New("wallet fetch failed")
	ineligible := helpers.NewStubFlow("ineligible")
	ineligible.Eligible = false

	for _, f := range []flow.Flow{ok, failing, ineligible} {
		_, err := reg.Register(f)
		require.NoError(t, err)
	}

	reg.Setup(context.Background(), &flow.SetupOptions{
		Props:       &api.ButtonProps{},
		ServiceData: &api.ServiceData{},
	})

	assert.Equal(t, 1, ok.Setups())
	assert.Equal(t, 1, failing.Setups())
	assert.Equal(t, 0, ineligible.Setups())

	entry, found := logger.Entry("setup_payment_flow_error")
	require.True(t, found)
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "failing", entry.Data[api.MetaPaymentFlow])
	assert.Positive(t, logger.Flushes())
}

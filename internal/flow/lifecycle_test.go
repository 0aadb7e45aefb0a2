package flow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/flow"
	"github.com/kode4food/paybutton/pkg/api"
)

type observed struct {
	life *flow.Lifecycle
}

func TestLifecycleHappyPath(t *testing.T) {
	l, err := flow.NewLifecycle(nil, "checkout")
	require.NoError(t, err)
	assert.Equal(t, "checkout", l.Flow())
	assert.Equal(t, flow.StateCreated, l.State())

	require.NoError(t, l.Transition(flow.StateStarted))
	assert.True(t, l.Settle(flow.StateApproved))
	assert.Equal(t, flow.StateApproved, l.State())

	assert.True(t, l.Close())
	assert.Equal(t, flow.StateClosed, l.State())
	assert.True(t, l.IsTerminal())
}

func TestLifecycleInvalidTransition(t *testing.T) {
	l, err := flow.NewLifecycle(nil, "checkout")
	require.NoError(t, err)

	err = l.Transition(flow.StateApproved)
	assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	assert.Equal(t, flow.StateCreated, l.State())

	require.NoError(t, l.Transition(flow.StateStarted))
	require.NoError(t, l.Transition(flow.StateFallback))
	assert.ErrorIs(t, l.Transition(flow.StateApproved),
		flow.ErrInvalidTransition,
	)
}

func TestLifecycleForceClose(t *testing.T) {
	l, err := flow.NewLifecycle(nil, "wallet")
	require.NoError(t, err)
	require.NoError(t, l.Transition(flow.StateStarted))

	assert.True(t, l.Close())
	assert.True(t, l.IsClosed())
	assert.False(t, l.Close())

	assert.False(t, l.Settle(flow.StateApproved))
	assert.Equal(t, flow.StateClosed, l.State())
}

func TestLifecycleConcurrentClose(t *testing.T) {
	l, err := flow.NewLifecycle(nil, "wallet")
	require.NoError(t, err)
	require.NoError(t, l.Transition(flow.StateStarted))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 10 {
		wg.Go(func() {
			if l.Close() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, api.OutcomeFailed,
		flow.OutcomeOf(nil, errors.New("boom")),
	)
	assert.Equal(t, api.OutcomeStarted, flow.OutcomeOf(nil, nil))

	for _, tc := range []struct {
		path []flow.State
		want api.Outcome
	}{
		{nil, api.OutcomeStarted},
		{[]flow.State{flow.StateApproved}, api.OutcomeApproved},
		{[]flow.State{flow.StateCancelled}, api.OutcomeCancelled},
		{[]flow.State{flow.StateFallback}, api.OutcomeFallback},
		{[]flow.State{flow.StateFailed}, api.OutcomeFailed},
		{[]flow.State{flow.StateClosed}, api.OutcomeAborted},
	} {
		l, err := flow.NewLifecycle(nil, "checkout")
		require.NoError(t, err)
		require.NoError(t, l.Transition(flow.StateStarted))
		for _, s := range tc.path {
			require.NoError(t, l.Transition(s))
		}
		assert.Equal(t, tc.want, flow.OutcomeOf(&observed{life: l}, nil))
	}
}

func (o *observed) Start(context.Context) error {
	return nil
}

func (o *observed) Close(context.Context) error {
	return nil
}

func (o *observed) Lifecycle() *flow.Lifecycle {
	return o.life
}

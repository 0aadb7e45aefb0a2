package order_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/internal/order"
	"github.com/kode4food/paybutton/pkg/api"
)

func TestResolveOnce(t *testing.T) {
	p := order.NewPromise()
	assert.False(t, p.IsSettled())

	assert.True(t, p.Resolve("ORDER-1"))
	assert.False(t, p.Resolve("ORDER-2"))
	assert.False(t, p.Reject(errors.New("late")))

	id, err := p.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, api.OrderID("ORDER-1"), id)
	assert.True(t, p.IsSettled())
}

func TestRejectDefaultsError(t *testing.T) {
	p := order.NewPromise()
	assert.True(t, p.Reject(nil))

	_, err := p.Wait(context.Background())
	assert.ErrorIs(t, err, order.ErrNotProduced)
}

func TestWaitSuspendsUntilResolved(t *testing.T) {
	p := order.NewPromise()
	got := make(chan api.OrderID, 1)

	go func() {
		id, _ := p.Wait(context.Background())
		got <- id
	}()

	select {
	case <-got:
		t.Fatal("wait returned before resolution")
	case <-time.After(20 * time.Millisecond):
	}

	p.Resolve("ORDER-9")
	assert.Equal(t, api.OrderID("ORDER-9"), <-got)
}

func TestWaitHonorsContext(t *testing.T) {
	p := order.NewPromise()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, p.IsSettled())
}

func TestProduceCreatesOnce(t *testing.T) {
	p := order.NewPromise()
	var calls atomic.Int32
	release := make(chan struct{})

	create := func(context.Context) (api.OrderID, error) {
		calls.Add(1)
		<-release
		return "ORDER-42", nil
	}

	var wg sync.WaitGroup
	results := make([]api.OrderID, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = p.Produce(context.Background(), create)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, id := range results {
		assert.Equal(t, api.OrderID("ORDER-42"), id)
	}
}

func TestProduceSkipsWhenSettled(t *testing.T) {
	p := order.NewPromise()
	p.Resolve("ORDER-1")

	id, err := p.Produce(context.Background(),
		func(context.Context) (api.OrderID, error) {
			t.Fatal("createOrder must not run")
			return "", nil
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, api.OrderID("ORDER-1"), id)
}

func TestProduceEmptyOrderID(t *testing.T) {
	p := order.NewPromise()
	create := p.Producer(func(context.Context) (api.OrderID, error) {
		return "", nil
	})

	_, err := create(context.Background())
	assert.ErrorIs(t, err, order.ErrEmptyOrderID)

	_, err = p.Source()(context.Background())
	assert.ErrorIs(t, err, order.ErrEmptyOrderID)
}

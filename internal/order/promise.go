package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kode4food/paybutton/pkg/api"
)

// Promise is a single-resolution future carrying the order identifier of a
// payment attempt. Readers that arrive before resolution suspend until it
// is settled; later resolutions are ignored
type Promise struct {
	done     chan struct{}
	err      error
	id       api.OrderID
	once     sync.Once
	producer atomic.Bool
}

var (
	ErrEmptyOrderID = errors.New("createOrder returned an empty order id")
	ErrNotProduced  = errors.New("order was never created")
)

// NewPromise creates an unresolved order promise
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolve settles the promise with an order identifier. It returns false
// if the promise was already settled
func (p *Promise) Resolve(id api.OrderID) bool {
	return p.settle(id, nil)
}

// Reject settles the promise with an error. It returns false if the
// promise was already settled
func (p *Promise) Reject(err error) bool {
	if err == nil {
		err = ErrNotProduced
	}
	return p.settle("", err)
}

// Wait suspends until the promise is settled or the context ends
func (p *Promise) Wait(ctx context.Context) (api.OrderID, error) {
	select {
	case <-p.done:
		return p.id, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Done is closed once the promise is settled
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// IsSettled returns whether the promise has been resolved or rejected
func (p *Promise) IsSettled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Produce invokes create at most once across all callers and publishes its
// result. Callers other than the first suspend until the result is known
func (p *Promise) Produce(
	ctx context.Context, create api.CreateOrder,
) (api.OrderID, error) {
	if p.IsSettled() || !p.producer.CompareAndSwap(false, true) {
		return p.Wait(ctx)
	}

	id, err := create(ctx)
	if err == nil && id == "" {
		err = ErrEmptyOrderID
	}
	if err != nil {
		p.Reject(err)
	} else {
		p.Resolve(id)
	}
	return p.Wait(ctx)
}

// Source adapts the promise into an OrderSource for remote UI frames
func (p *Promise) Source() api.OrderSource {
	return p.Wait
}

// Producer adapts the promise into a CreateOrder that never re-triggers
// the underlying order creation
func (p *Promise) Producer(create api.CreateOrder) api.CreateOrder {
	return func(ctx context.Context) (api.OrderID, error) {
		return p.Produce(ctx, create)
	}
}

func (p *Promise) settle(id api.OrderID, err error) bool {
	settled := false
	p.once.Do(func() {
		p.id = id
		p.err = err
		settled = true
		close(p.done)
	})
	return settled
}

package helpers

import (
	"context"
	"slices"
	"sync"

	"github.com/kode4food/paybutton/pkg/api"
)

// Merchant records the merchant callbacks invoked during a button render
type Merchant struct {
	orderID   api.OrderID
	orderErr  error
	orderGate chan struct{}
	approvals []api.ApproveData
	restarts  []func(context.Context) error
	errors    []error
	clicks    []api.ClickData
	orders    int
	cancels   int
	mu        sync.Mutex
}

// NewMerchant creates a merchant whose createOrder returns orderID
func NewMerchant(orderID api.OrderID) *Merchant {
	return &Merchant{orderID: orderID}
}

// FailOrders makes createOrder fail with err
func (m *Merchant) FailOrders(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderErr = err
}

// SetOrderGate makes createOrder block until the channel is closed
func (m *Merchant) SetOrderGate(gate chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderGate = gate
}

// Props returns button props wired to this merchant
func (m *Merchant) Props() *api.ButtonProps {
	return &api.ButtonProps{
		CreateOrder:     m.CreateOrder,
		OnApprove:       m.OnApprove,
		OnCancel:        m.OnCancel,
		OnError:         m.OnError,
		OnClick:         m.OnClick,
		ClientID:        "client-1",
		Env:             api.EnvSandbox,
		Intent:          api.IntentCapture,
		SessionID:       "session-1",
		ButtonSessionID: "button-session-1",
		Currency:        "USD",
		Amount:          "10.00",
		UserAccessToken: "user-token",
		MerchantID:      []string{"MERCHANT-1"},
		EnablePWB:       true,
	}
}

func (m *Merchant) CreateOrder(ctx context.Context) (api.OrderID, error) {
	m.mu.Lock()
	m.orders++
	gate, id, err := m.orderGate, m.orderID, m.orderErr
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (m *Merchant) OnApprove(
	_ context.Context, data api.ApproveData, actions api.ApproveActions,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals = append(m.approvals, data)
	m.restarts = append(m.restarts, actions.Restart)
	return nil
}

func (m *Merchant) OnCancel(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
	return nil
}

func (m *Merchant) OnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *Merchant) OnClick(data api.ClickData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, data)
}

// Orders returns how many times createOrder was called
func (m *Merchant) Orders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders
}

// Approvals returns every approval received
func (m *Merchant) Approvals() []api.ApproveData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.approvals)
}

// Restart returns the restart action of the nth approval
func (m *Merchant) Restart(n int) func(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarts[n]
}

// Cancels returns how many times onCancel was called
func (m *Merchant) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// Errors returns every error reported to onError
func (m *Merchant) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.errors)
}

// Clicks returns every onClick invocation
func (m *Merchant) Clicks() []api.ClickData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.clicks)
}

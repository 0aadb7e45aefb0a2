package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// ServiceCall names a remote service operation
	ServiceCall string

	// MockServices is a recording implementation of client.Services
	MockServices struct {
		wallet      api.Wallet
		orderInfo   *api.OrderInfo
		eligibility api.FundingEligibility
		errors      map[ServiceCall]error
		invoked     []ServiceCall
		configs     []*api.ClientConfig
		invokedCh   map[ServiceCall]chan struct{}
		mu          sync.Mutex
	}
)

const (
	CallGetFundingEligibility    ServiceCall = "GetFundingEligibility"
	CallGetSupplementalOrderInfo ServiceCall = "GetSupplementalOrderInfo"
	CallGetSmartWallet           ServiceCall = "GetSmartWallet"
	CallUpdateButtonClientConfig ServiceCall = "UpdateButtonClientConfig"
	CallLoadFraudnet             ServiceCall = "LoadFraudnet"
)

var _ client.Services = (*MockServices)(nil)

// NewMockServices creates mock remote services with empty responses
func NewMockServices() *MockServices {
	return &MockServices{
		errors:    map[ServiceCall]error{},
		invokedCh: map[ServiceCall]chan struct{}{},
		eligibility: api.FundingEligibility{
			api.FundingPayPal: {Eligible: true},
		},
	}
}

func (s *MockServices) GetFundingEligibility(
	context.Context, *api.FundingEligibilityRequest,
) (api.FundingEligibility, error) {
	if err := s.record(CallGetFundingEligibility); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eligibility, nil
}

func (s *MockServices) GetSupplementalOrderInfo(
	context.Context, api.OrderID,
) (*api.OrderInfo, error) {
	if err := s.record(CallGetSupplementalOrderInfo); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderInfo == nil {
		return &api.OrderInfo{}, nil
	}
	return s.orderInfo, nil
}

func (s *MockServices) GetSmartWallet(
	context.Context, *api.SmartWalletRequest,
) (api.Wallet, error) {
	if err := s.record(CallGetSmartWallet); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet, nil
}

func (s *MockServices) UpdateButtonClientConfig(
	_ context.Context, cfg *api.ClientConfig,
) error {
	s.mu.Lock()
	s.configs = append(s.configs, cfg)
	s.mu.Unlock()
	return s.record(CallUpdateButtonClientConfig)
}

func (s *MockServices) LoadFraudnet(
	context.Context, *api.FraudnetRequest,
) error {
	return s.record(CallLoadFraudnet)
}

// SetWallet configures the smart wallet response
func (s *MockServices) SetWallet(w api.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = w
}

// SetOrderInfo configures the supplemental order response
func (s *MockServices) SetOrderInfo(info *api.OrderInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderInfo = info
}

// SetEligibility configures the funding eligibility response
func (s *MockServices) SetEligibility(fe api.FundingEligibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibility = fe
}

// SetError configures the mock to fail a call
func (s *MockServices) SetError(call ServiceCall, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[call] = err
}

// ClearError removes any configured error for a call
func (s *MockServices) ClearError(call ServiceCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, call)
}

// Calls returns the invoked calls in order
func (s *MockServices) Calls() []ServiceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]ServiceCall, len(s.invoked))
	copy(res, s.invoked)
	return res
}

// Count returns how many times a call was invoked
func (s *MockServices) Count(call ServiceCall) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(call)
}

// ClientConfigs returns every client configuration pushed
func (s *MockServices) ClientConfigs() []*api.ClientConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]*api.ClientConfig, len(s.configs))
	copy(res, s.configs)
	return res
}

// WaitForInvocation blocks until a call is invoked or the timeout expires
func (s *MockServices) WaitForInvocation(
	call ServiceCall, timeout time.Duration,
) bool {
	s.mu.Lock()
	if s.countLocked(call) > 0 {
		s.mu.Unlock()
		return true
	}
	ch, ok := s.invokedCh[call]
	if !ok {
		ch = make(chan struct{}, 1)
		s.invokedCh[call] = ch
	}
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return s.Count(call) > 0
	}
}

func (s *MockServices) record(call ServiceCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoked = append(s.invoked, call)
	if ch, ok := s.invokedCh[call]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return s.errors[call]
}

func (s *MockServices) countLocked(call ServiceCall) int {
	n := 0
	for _, c := range s.invoked {
		if c == call {
			n++
		}
	}
	return n
}

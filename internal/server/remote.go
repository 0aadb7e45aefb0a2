package server

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kode4food/paybutton/pkg/api"
)

// Remote holds the fixtures served by the mock remote services
type Remote struct {
	eligibility api.FundingEligibility
	wallet      api.Wallet
	sessions    map[api.OrderID]*api.OrderSession
	configs     []*api.ClientConfig
	fraudnet    []*api.FraudnetRequest
	merchantID  string
	mu          sync.RWMutex
}

const (
	DefaultMerchantID  = "XYZMERCHANT"
	DefaultCardID      = "CC-GU5R8W6GMA7LQ"
	DefaultBankID      = "BA-9PH2DQJ7F5WLC"
	DefaultAccessToken = "A21AAFakeWalletAccessToken"
	DefaultCurrency    = "USD"
	DefaultOrderAmount = "10.00"
	DefaultOrderIntent = "capture"
)

var (
	ErrUnknownOperation = errors.New("unknown graphql operation")
	ErrMissingVariable  = errors.New("missing graphql variable")
)

// NewRemote creates mock remote services with a default merchant, funding
// eligibility, and smart wallet
func NewRemote() *Remote {
	return &Remote{
		eligibility: api.FundingEligibility{
			api.FundingPayPal: {Eligible: true, Branded: true},
			api.FundingCredit: {Eligible: true},
			api.FundingCard:   {Eligible: true},
			api.FundingVenmo:  {Eligible: false},
		},
		wallet: api.Wallet{
			api.FundingCard: {
				Instruments: []*api.Instrument{{
					InstrumentID: DefaultCardID,
					Type:         api.InstrumentCard,
					Label:        "VISA ••1111",
					Vendor:       "VISA",
					AccessToken:  DefaultAccessToken,
					OneClick:     true,
				}},
			},
			api.FundingPayPal: {
				Instruments: []*api.Instrument{{
					InstrumentID: DefaultBankID,
					Type:         api.InstrumentBank,
					Label:        "Bank ••5678",
					Vendor:       "CHASE",
					AccessToken:  DefaultAccessToken,
				}},
			},
		},
		sessions:   map[api.OrderID]*api.OrderSession{},
		merchantID: DefaultMerchantID,
	}
}

// SetEligibility replaces the funding eligibility fixture
func (r *Remote) SetEligibility(e api.FundingEligibility) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eligibility = e
}

// SetWallet replaces the smart wallet fixture
func (r *Remote) SetWallet(w api.Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallet = w
}

// SetSession registers the checkout session returned for an order
func (r *Remote) SetSession(id api.OrderID, sess *api.OrderSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = sess
}

// Configs returns the client configs pushed so far
func (r *Remote) Configs() []*api.ClientConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.configs)
}

// FraudnetLoads returns the fraud-net requests received so far
func (r *Remote) FraudnetLoads() []*api.FraudnetRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.fraudnet)
}

// MerchantID returns the merchant that receives funds from default
// checkout sessions
func (r *Remote) MerchantID() string {
	return r.merchantID
}

func (r *Remote) fundingEligibility() api.FundingEligibility {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.eligibility)
}

func (r *Remote) smartWallet() api.Wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.wallet)
}

func (r *Remote) checkoutSession(id api.OrderID) *api.OrderSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sess, ok := r.sessions[id]; ok {
		return sess
	}
	return &api.OrderSession{
		Cart: api.Cart{
			Intent: DefaultOrderIntent,
			Amounts: &api.CartAmounts{
				Total: api.Money{
					CurrencyCode:  DefaultCurrency,
					CurrencyValue: DefaultOrderAmount,
				},
			},
		},
		Payees: []api.Payee{{MerchantID: r.merchantID}},
	}
}

func (r *Remote) updateClientConfig(cfg *api.ClientConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
}

func (r *Remote) loadFraudnet(req *api.FraudnetRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fraudnet = append(r.fraudnet, req)
}

func missingVariable(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingVariable, name)
}

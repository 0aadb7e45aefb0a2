package wallet

import (
	"context"

	"github.com/kode4food/paybutton/pkg/api"
)

// smartWallet is the buyer wallet fetched during setup. Readers suspend
// until the fetch settles
type smartWallet struct {
	done   chan struct{}
	wallet api.Wallet
	err    error
}

func newSmartWallet() *smartWallet {
	return &smartWallet{done: make(chan struct{})}
}

func resolvedSmartWallet(w api.Wallet) *smartWallet {
	res := newSmartWallet()
	res.settle(w, nil)
	return res
}

func (s *smartWallet) settle(w api.Wallet, err error) {
	s.wallet = w
	s.err = err
	close(s.done)
}

func (s *smartWallet) Wait(ctx context.Context) (api.Wallet, error) {
	select {
	case <-s.done:
		return s.wallet, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

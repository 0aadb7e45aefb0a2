package api

import (
	"errors"
	"fmt"
)

type (
	// Wallet is the buyer's stored funding, keyed by funding source
	Wallet map[FundingSource]*WalletFunding

	// WalletFunding lists the instruments stored for one funding source
	WalletFunding struct {
		Instruments []*Instrument `json:"instruments"`
	}

	// Instrument is a single stored wallet instrument
	Instrument struct {
		InstrumentID string         `json:"instrumentID"`
		Type         InstrumentType `json:"type"`
		Label        string         `json:"label,omitempty"`
		Vendor       string         `json:"vendor,omitempty"`
		LogoURL      string         `json:"logoUrl,omitempty"`
		AccessToken  string         `json:"accessToken,omitempty"`
		OneClick     bool           `json:"oneClick"`
	}
)

var (
	ErrWalletNoFunding    = errors.New("wallet has no funding source")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrNoAccessToken      = errors.New("instrument access token not found")
)

// Instrument finds the instrument with the given identifier under the given
// funding source
func (w Wallet) Instrument(fs FundingSource, id string) (*Instrument, error) {
	funding, ok := w[fs]
	if !ok || funding == nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletNoFunding, fs)
	}

	var found *Instrument
	for _, inst := range funding.Instruments {
		if inst != nil && inst.InstrumentID == id {
			found = inst
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, id)
	}
	return found, nil
}

// HasInstrument reports whether the wallet holds the given instrument
func (w Wallet) HasInstrument(fs FundingSource, id string) bool {
	_, err := w.Instrument(fs, id)
	return err == nil
}

// AccessTokenFor returns the access token stored with an instrument
func (w Wallet) AccessTokenFor(fs FundingSource, id string) (string, error) {
	inst, err := w.Instrument(fs, id)
	if err != nil {
		return "", err
	}
	if inst.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", ErrNoAccessToken, id)
	}
	return inst.AccessToken, nil
}

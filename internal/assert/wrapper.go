package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/paybutton/internal/config"
	"github.com/kode4food/paybutton/pkg/api"
)

// Wrapper wraps testify assertions with payment-engine helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// ConfigurationError asserts that err is a fatal configuration error with
// the given code
func (w *Wrapper) ConfigurationError(err error, code string) {
	w.Helper()
	w.Error(err)
	w.Equal(api.KindConfiguration, api.KindOf(err))
	if code != "" {
		w.Equal(code, api.CodeOf(err, ""))
	}
}

// PaymentTargets asserts the funding source and intent of a payment
func (w *Wrapper) PaymentTargets(
	p api.Payment, fs api.FundingSource, intent api.BuyerIntent,
) {
	w.Helper()
	w.Equal(fs, p.FundingSource)
	w.Equal(intent, p.BuyerIntent)
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

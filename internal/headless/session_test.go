package headless_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/paybutton/internal/archive"
	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/flow/checkout"
	"github.com/kode4food/paybutton/internal/flow/wallet"
	"github.com/kode4food/paybutton/internal/headless"
	"github.com/kode4food/paybutton/internal/server"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type sessionEnv struct {
	remote  *server.Remote
	journal *archive.Journal
	opts    headless.SessionOptions
}

func TestSimulateCheckoutApproved(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.OrderID = "ORDER-100"

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.NoError(t, res.Err)
	assert.Equal(t, api.OrderID("ORDER-100"), res.Approval.OrderID)
	assert.Equal(t, headless.DefaultPayerID, res.Approval.PayerID)

	recs := env.attempts(t, res.ButtonSessionID)
	require.Len(t, recs, 1)
	assert.Equal(t, checkout.Name, recs[0].Flow)
	assert.Equal(t, api.OutcomeApproved, recs[0].Outcome)
	assert.Equal(t, api.OrderID("ORDER-100"), recs[0].OrderID)
	assert.Empty(t, env.remote.Configs())
}

func TestSimulateCheckoutCancelled(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.Decision = headless.Cancel

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Nil(t, res.Approval)

	recs := env.attempts(t, res.ButtonSessionID)
	require.Len(t, recs, 1)
	assert.Equal(t, api.OutcomeCancelled, recs[0].Outcome)
}

func TestSimulateGeneratesOrderID(t *testing.T) {
	env := newSessionEnv(t)

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.True(t, res.Approval.OrderID.IsValid())
	assert.Contains(t, string(res.Approval.OrderID), "SIM-")
}

func TestSimulateWalletApproved(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.Wallet = true
	env.opts.FundingSource = api.FundingCard
	env.opts.UserAccessToken = "buyer-token"
	env.opts.OrderID = "ORDER-200"

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.Equal(t, api.OrderID("ORDER-200"), res.Approval.OrderID)
	assert.Equal(t, "buyer-token", res.Approval.BuyerAccessToken)

	assert.Len(t, env.remote.FraudnetLoads(), 1)
	assert.Equal(t, []*api.ClientConfig{{
		OrderID:       "ORDER-200",
		FundingSource: api.FundingCard,
		Inline:        true,
	}}, env.remote.Configs())

	recs := env.attempts(t, res.ButtonSessionID)
	require.Len(t, recs, 1)
	assert.Equal(t, wallet.Name, recs[0].Flow)
	assert.False(t, recs[0].Fallback)
}

func TestSimulateWalletMenuChoice(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.Wallet = true
	env.opts.Menu = true
	env.opts.FundingSource = api.FundingPayPal
	env.opts.OrderID = "ORDER-300"

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.Equal(t, api.OrderID("ORDER-300"), res.Approval.OrderID)

	configs := env.remote.Configs()
	require.NotEmpty(t, configs)
	assert.False(t, configs[0].Inline)

	recs := env.attempts(t, res.ButtonSessionID)
	require.Len(t, recs, 1)
	assert.Equal(t, checkout.Name, recs[0].Flow)
	assert.Equal(t,
		api.BuyerIntentPayDifferentFunding, recs[0].BuyerIntent,
	)
}

func TestSimulateValidationFailure(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.OrderID = "ORDER-400"
	env.remote.SetSession("ORDER-400", &api.OrderSession{
		Cart:   api.Cart{Intent: "authorize"},
		Payees: []api.Payee{{MerchantID: server.DefaultMerchantID}},
	})

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	assert.Nil(t, res.Approval)
	assert.True(t, api.IsConfigurationError(res.Err))
}

func TestSimulateWhitelistedValidationFailure(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.OrderID = "ORDER-401"
	env.opts.Whitelist.Sandbox = []api.ClientID{env.opts.ClientID}
	env.remote.SetSession("ORDER-401", &api.OrderSession{
		Cart:   api.Cart{Intent: "authorize"},
		Payees: []api.Payee{{MerchantID: server.DefaultMerchantID}},
	})

	res, err := headless.Simulate(context.Background(), env.opts)
	require.NoError(t, err)
	assert.NotNil(t, res.Approval)
}

func TestSimulateWalletWithoutInstrument(t *testing.T) {
	env := newSessionEnv(t)
	env.opts.Wallet = true
	env.opts.FundingSource = api.FundingVenmo

	_, err := headless.Simulate(context.Background(), env.opts)
	assert.True(t, errors.Is(err, headless.ErrNoInstrument))
}

func TestSimulateRemoteFailure(t *testing.T) {
	opts := headless.SessionOptions{
		Services: client.NewHTTPClient("http://127.0.0.1:1", time.Second),
		ClientID: "test-client",
	}

	_, err := headless.Simulate(context.Background(), opts)
	assert.Error(t, err)
}

func TestSimulateRequiresServices(t *testing.T) {
	_, err := headless.Simulate(
		context.Background(), headless.SessionOptions{},
	)
	assert.ErrorIs(t, err, headless.ErrMissingServices)
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()

	srv := server.NewServer(server.NewRemote(), nil, nil)
	httpServer := httptest.NewServer(srv.SetupRoutes())

	journal, err := archive.NewJournal(
		context.Background(), "mem://", "attempts/",
	)
	require.NoError(t, err)
	hub := telemetry.NewHub()

	t.Cleanup(func() {
		hub.Close()
		_ = journal.Close()
		httpServer.Close()
	})

	return &sessionEnv{
		remote:  srv.Remote(),
		journal: journal,
		opts: headless.SessionOptions{
			Services: client.NewHTTPClient(httpServer.URL, 5*time.Second),
			Journal:  journal,
			Hub:      hub,
			Logger:   slog.New(slog.DiscardHandler),
			ClientID: "test-client",
			MerchantID: []string{
				server.DefaultMerchantID,
			},
			Intent:   api.IntentCapture,
			Currency: "USD",
			Amount:   "10.00",
		},
	}
}

func (e *sessionEnv) attempts(
	t *testing.T, sess api.ButtonSessionID,
) []*api.AttemptRecord {
	t.Helper()
	recs, err := e.journal.List(context.Background(), sess)
	require.NoError(t, err)
	return recs
}

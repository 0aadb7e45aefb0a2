package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kode4food/paybutton"
	"github.com/kode4food/paybutton/internal/archive"
	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/headless"
	"github.com/kode4food/paybutton/internal/server"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/internal/validation"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	simulateFlags struct {
		clientID    string
		merchantID  []string
		funding     string
		orderID     string
		accessToken string
		currency    string
		amount      string
		intent      string
		timeout     time.Duration
		wallet      bool
		menu        bool
		cancel      bool
	}

	simulateOutput struct {
		ButtonSessionID api.ButtonSessionID  `json:"button_session_id"`
		Outcome         string               `json:"outcome"`
		OrderID         api.OrderID          `json:"order_id,omitempty"`
		PayerID         string               `json:"payer_id,omitempty"`
		Error           string               `json:"error,omitempty"`
		Attempts        []*api.AttemptRecord `json:"attempts"`
	}
)

const (
	outcomeApproved  = "approved"
	outcomeCancelled = "cancelled"
	outcomeError     = "error"

	defaultSimulateTimeout = 30 * time.Second
)

func (a *app) simulateCmd() *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Render a headless button, click it, and report the attempt",
		Long: `Render a single headless button against the remote services at
SERVICES_URL, click it as a simulated buyer, and print the outcome and the
journaled attempts as JSON.

Examples:
  paybutton simulate --funding paypal
  paybutton simulate --wallet --funding card --access-token A21...
  paybutton simulate --wallet --menu --funding paypal --cancel`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.simulate(cmd.Context(), f)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.clientID, "client-id", "sim-client", "merchant client id")
	fl.StringSliceVar(&f.merchantID, "merchant-id",
		[]string{server.DefaultMerchantID}, "merchant ids receiving funds",
	)
	fl.StringVar(&f.funding, "funding", string(api.FundingPayPal),
		"funding source of the rendered button",
	)
	fl.StringVar(&f.orderID, "order-id", "", "order id returned by createOrder")
	fl.StringVar(&f.accessToken, "access-token", "", "buyer access token")
	fl.StringVar(&f.currency, "currency", server.DefaultCurrency, "currency")
	fl.StringVar(&f.amount, "amount", server.DefaultOrderAmount, "amount")
	fl.StringVar(&f.intent, "intent", string(api.IntentCapture), "intent")
	fl.DurationVar(&f.timeout, "timeout", defaultSimulateTimeout,
		"how long to wait for the buyer",
	)
	fl.BoolVar(&f.wallet, "wallet", false, "render an inline wallet button")
	fl.BoolVar(&f.menu, "menu", false, "open the wallet menu instead")
	fl.BoolVar(&f.cancel, "cancel", false, "have the buyer cancel")
	return cmd
}

func (a *app) simulate(
	ctx context.Context, f *simulateFlags,
) (*simulateOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	shutdownTP, err := telemetry.InitTracer(ctx,
		paybutton.Name, paybutton.Version, a.cfg.OTLPEndpoint,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = shutdownTP(context.WithoutCancel(ctx)) }()

	journal, err := archive.NewJournal(
		ctx, a.cfg.ArchiveBucketURL, a.cfg.ArchivePrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenJournal, err)
	}
	defer func() { _ = journal.Close() }()

	services, closeServices := a.services()
	defer closeServices()

	decision := headless.Approve
	if f.cancel {
		decision = headless.Cancel
	}

	res, err := headless.Simulate(ctx, headless.SessionOptions{
		Services: services,
		Journal:  journal,
		Whitelist: validation.Whitelist{
			Production: a.cfg.Whitelist,
			Sandbox:    a.cfg.SandboxWhitelist,
		},
		ClientID:        api.ClientID(f.clientID),
		MerchantID:      f.merchantID,
		FundingSource:   api.FundingSource(f.funding),
		OrderID:         api.OrderID(f.orderID),
		Intent:          api.Intent(f.intent),
		Currency:        f.currency,
		Amount:          f.amount,
		UserAccessToken: f.accessToken,
		WalletSelector:  a.cfg.WalletSelector,
		MenuSelector:    a.cfg.MenuSelector,
		Decision:        decision,
		SpinnerDelay:    a.cfg.SpinnerDelay,
		Wallet:          f.wallet,
		Menu:            f.menu,
	})
	if err != nil {
		return nil, err
	}

	attempts, err := journal.List(ctx, res.ButtonSessionID)
	if err != nil {
		return nil, err
	}
	return newSimulateOutput(res, attempts), nil
}

func (a *app) services() (client.Services, func()) {
	remote := client.NewHTTPClient(a.cfg.ServicesURL, a.cfg.ServicesTimeout)
	cache := a.cfg.WalletCache
	if cache.Addr == "" {
		return remote, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cache.Addr,
		Password: cache.Password,
		DB:       cache.DB,
	})
	cached := client.NewCachedServices(remote, rdb, client.CacheConfig{
		Prefix:    cache.Prefix,
		WalletTTL: cache.TTL,
	})
	return cached, func() { _ = rdb.Close() }
}

func newSimulateOutput(
	res *headless.Result, attempts []*api.AttemptRecord,
) *simulateOutput {
	out := &simulateOutput{
		ButtonSessionID: res.ButtonSessionID,
		Attempts:        attempts,
	}
	switch {
	case res.Approval != nil:
		out.Outcome = outcomeApproved
		out.OrderID = res.Approval.OrderID
		out.PayerID = res.Approval.PayerID
	case res.Cancelled:
		out.Outcome = outcomeCancelled
	default:
		out.Outcome = outcomeError
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}
	if out.Attempts == nil {
		out.Attempts = []*api.AttemptRecord{}
	}
	return out
}

package headless

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/paybutton/internal/button"
	"github.com/kode4food/paybutton/internal/client"
	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/internal/validation"
	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// SessionOptions describe one simulated button render and click
	SessionOptions struct {
		Services        client.Services
		Journal         button.Journal
		Hub             *telemetry.Hub
		Logger          *slog.Logger
		Whitelist       validation.Whitelist
		ClientID        api.ClientID
		MerchantID      []string
		FundingSource   api.FundingSource
		OrderID         api.OrderID
		Intent          api.Intent
		Currency        string
		Amount          string
		UserAccessToken string
		WalletSelector  string
		MenuSelector    string
		Decision        Decision
		SpinnerDelay    time.Duration
		Wallet          bool
		Menu            bool
	}

	// Result is how the merchant callbacks saw the simulated attempt
	Result struct {
		Approval        *api.ApproveData
		Err             error
		ButtonSessionID api.ButtonSessionID
		Cancelled       bool
	}

	session struct {
		opts   SessionOptions
		logger *telemetry.BufferedLogger
		buyer  *Buyer
		doc    *Document
		res    Result
		done   chan struct{}
		once   sync.Once
	}
)

const buttonsParent = "#buttons"

var (
	ErrMissingServices = errors.New("remote services required")
	ErrNoInstrument    = errors.New("wallet holds no instrument")
	ErrNoOutcome       = errors.New("session ended without an outcome")
)

// Simulate renders a single button, clicks it (or its menu toggle), and
// waits for the merchant callbacks to report an outcome
func Simulate(ctx context.Context, opts SessionOptions) (*Result, error) {
	if opts.Services == nil {
		return nil, ErrMissingServices
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FundingSource == "" {
		opts.FundingSource = api.FundingPayPal
	}
	if opts.Decision == "" {
		opts.Decision = Approve
	}
	if opts.WalletSelector == "" {
		opts.WalletSelector = display.WalletSelector
	}
	if opts.MenuSelector == "" {
		opts.MenuSelector = display.MenuSelector
	}

	s := &session{
		opts:   opts,
		logger: telemetry.NewLogger(opts.Logger, opts.Hub),
		buyer:  NewBuyer(opts.Decision, ""),
		doc:    NewDocument(),
		res: Result{
			ButtonSessionID: api.NewButtonSessionID(),
		},
		done: make(chan struct{}),
	}
	return s.run(ctx)
}

func (s *session) run(ctx context.Context) (*Result, error) {
	sd, sel, err := s.serviceData(ctx)
	if err != nil {
		return nil, err
	}
	s.doc.AddButton(sel, s.opts.Wallet)

	orch, err := s.orchestrator(sd)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := orch.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Session teardown failed", log.Error(err))
		}
		s.logger.Flush()
	}()

	if err := orch.Setup(ctx); err != nil {
		return nil, err
	}

	if s.opts.Menu {
		err = s.doc.ClickMenu(ctx, s.opts.FundingSource)
	} else {
		err = s.doc.Click(ctx, s.opts.FundingSource)
	}
	if err != nil {
		return nil, err
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNoOutcome, ctx.Err())
	}
	s.buyer.Wait()
	return &s.res, nil
}

func (s *session) serviceData(
	ctx context.Context,
) (*api.ServiceData, api.SelectedFunding, error) {
	o := s.opts
	sel := api.SelectedFunding{FundingSource: o.FundingSource}

	elig, err := o.Services.GetFundingEligibility(ctx,
		&api.FundingEligibilityRequest{
			ClientID:   o.ClientID,
			MerchantID: o.MerchantID,
			Currency:   o.Currency,
			Intent:     o.Intent,
		},
	)
	if err != nil {
		return nil, sel, err
	}
	sd := &api.ServiceData{
		FundingEligibility: elig,
		MerchantID:         o.MerchantID,
		BuyerAccessToken:   o.UserAccessToken,
		Content: api.Content{
			PayWithDifferentMethod:  "Pay with a different method",
			PayWithDifferentAccount: "Pay with a different account",
		},
	}
	if !o.Wallet {
		return sd, sel, nil
	}

	w, err := o.Services.GetSmartWallet(ctx, &api.SmartWalletRequest{
		ClientID:         o.ClientID,
		MerchantID:       o.MerchantID,
		Currency:         o.Currency,
		Amount:           o.Amount,
		ClientMetadataID: string(s.res.ButtonSessionID),
		UserAccessToken:  o.UserAccessToken,
	})
	if err != nil {
		return nil, sel, err
	}
	funding, ok := w[o.FundingSource]
	if !ok || funding == nil || len(funding.Instruments) == 0 {
		return nil, sel, fmt.Errorf("%w: %s", ErrNoInstrument, o.FundingSource)
	}
	inst := funding.Instruments[0]
	sel.InstrumentID = inst.InstrumentID
	sel.InstrumentType = inst.Type
	sd.Wallet = w
	return sd, sel, nil
}

func (s *session) orchestrator(
	sd *api.ServiceData,
) (*button.Orchestrator, error) {
	o := s.opts
	comps := s.buyer.Components()
	wallet := display.New("wallet", comps.Wallet,
		api.RenderTarget{Parent: buttonsParent, Selector: o.WalletSelector},
		s.logger, display.WithSpinnerDelay(o.SpinnerDelay),
	)
	menu := display.New("menu", comps.Menu,
		api.RenderTarget{Parent: buttonsParent, Selector: o.MenuSelector},
		s.logger, display.WithSpinnerDelay(o.SpinnerDelay),
	)

	reg, err := button.NewRegistry(button.FlowDependencies{
		Services: o.Services,
		Wallet:   wallet,
		Logger:   s.logger,
		Handler:  o.Logger.Handler(),
	})
	if err != nil {
		return nil, err
	}

	return button.New(button.Options{
		Registry:    reg,
		Document:    s.doc,
		Props:       s.props(),
		ServiceData: sd,
		Config:      api.Config{Version: "headless"},
		Components:  comps,
		Wallet:      wallet,
		Menu:        menu,
		Validator:   validation.New(o.Services, s.logger, o.Whitelist),
		Journal:     o.Journal,
		Publisher:   s.logger,
		Logger:      s.logger,
	})
}

func (s *session) props() *api.ButtonProps {
	o := s.opts
	orderID := o.OrderID
	if orderID == "" {
		orderID = api.OrderID(strings.ToUpper("SIM-" + uuid.NewString()[:8]))
	}
	return &api.ButtonProps{
		CreateOrder: func(context.Context) (api.OrderID, error) {
			return orderID, nil
		},
		OnApprove: func(
			_ context.Context, data api.ApproveData, _ api.ApproveActions,
		) error {
			s.finish(func(r *Result) { r.Approval = &data })
			return nil
		},
		OnCancel: func(context.Context) error {
			s.finish(func(r *Result) { r.Cancelled = true })
			return nil
		},
		OnError: func(err error) {
			s.finish(func(r *Result) { r.Err = err })
		},
		ClientID:        o.ClientID,
		Env:             api.EnvSandbox,
		Intent:          o.Intent,
		SessionID:       uuid.NewString(),
		ButtonSessionID: s.res.ButtonSessionID,
		Currency:        o.Currency,
		Amount:          o.Amount,
		UserAccessToken: o.UserAccessToken,
		MerchantID:      o.MerchantID,
		EnablePWB:       o.Wallet,
	}
}

func (s *session) finish(fn func(*Result)) {
	s.once.Do(func() {
		fn(&s.res)
		close(s.done)
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kode4food/paybutton"
	"github.com/kode4food/paybutton/internal/archive"
	"github.com/kode4food/paybutton/internal/server"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/log"
)

type devServer struct {
	*app
	hub        *telemetry.Hub
	journal    *archive.Journal
	apiServer  *server.Server
	httpServer *http.Server
	shutdownTP func(context.Context) error
}

var ErrOpenJournal = errors.New("failed to open attempt journal")

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the development server with mock remote services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &devServer{app: a}
			if err := s.start(cmd.Context()); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)
			<-quit

			s.shutdown()
			return nil
		},
	}
}

func (s *devServer) start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	slog.Info("Pay button development server starting",
		slog.String("log_level", s.cfg.LogLevel))

	shutdownTP, err := telemetry.InitTracer(ctx,
		paybutton.Name, paybutton.Version, s.cfg.OTLPEndpoint,
	)
	if err != nil {
		return err
	}
	s.shutdownTP = shutdownTP

	s.journal, err = archive.NewJournal(
		ctx, s.cfg.ArchiveBucketURL, s.cfg.ArchivePrefix,
	)
	if err != nil {
		_ = shutdownTP(ctx)
		return fmt.Errorf("%w: %w", ErrOpenJournal, err)
	}

	s.hub = telemetry.NewHub()
	s.apiServer = server.NewServer(server.NewRemote(), s.journal, s.hub)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: s.apiServer.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
	return nil
}

func (s *devServer) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()
	s.hub.Close()

	if err := s.journal.Close(); err != nil {
		slog.Error("Journal close failed", log.Error(err))
	}
	if err := s.shutdownTP(ctx); err != nil {
		slog.Error("Tracer shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}

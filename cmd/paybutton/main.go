package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kode4food/paybutton"
	"github.com/kode4food/paybutton/internal/config"
	"github.com/kode4food/paybutton/pkg/log"
	"github.com/kode4food/paybutton/pkg/util/call"
)

type app struct {
	cfg     *config.Config
	envFile string
	logOut  io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logOut: os.Stdout}
	root := &cobra.Command{
		Use:           paybutton.Name,
		Short:         "Payment button orchestration engine",
		Version:       paybutton.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure()
		},
	}
	root.PersistentFlags().StringVar(
		&a.envFile, "env-file", "", "dotenv file loaded before the environment",
	)

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.simulateCmd())
	return root
}

func (a *app) configure() error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}

	cfg := config.NewDefaultConfig()
	err := call.Perform(
		func() error { return config.LoadDotEnv(files...) },
		cfg.LoadFromEnv,
		cfg.Validate,
	)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.setupLogging()
	return nil
}

func (a *app) setupLogging() {
	level, _ := log.ParseLevel(a.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithWriter(
		a.logOut, paybutton.Name, env, paybutton.Version, level,
	)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Debug("Configuration loaded",
		slog.String("log_level", a.cfg.LogLevel),
		slog.String("services_url", a.cfg.ServicesURL),
		slog.String("wallet_cache_addr", a.cfg.WalletCache.Addr),
		slog.Int("wallet_cache_db", a.cfg.WalletCache.DB),
		slog.String("archive_bucket_url", a.cfg.ArchiveBucketURL),
		slog.String("api_host", a.cfg.APIHost),
		slog.Int("api_port", a.cfg.APIPort))
}

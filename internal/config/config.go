package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kode4food/paybutton/internal/display"
	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// Config holds configuration settings for the payment button engine
	// and its development server
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Remote Services
		ServicesURL     string
		ServicesTimeout time.Duration

		// Display
		SpinnerDelay   time.Duration
		WalletSelector string
		MenuSelector   string

		// Smart Wallet Cache
		WalletCache CacheConfig

		// Attempt Journal
		ArchiveBucketURL string
		ArchivePrefix    string

		// Order Validation
		Whitelist        []api.ClientID
		SandboxWhitelist []api.ClientID

		// Telemetry
		OTLPEndpoint string

		ShutdownTimeout time.Duration
	}

	// CacheConfig configures the Redis-backed smart wallet cache. An empty
	// address disables the cache
	CacheConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
		TTL      time.Duration
	}
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535
	MaxRedisDB     = 15

	DefaultServicesURL     = "http://localhost:8080"
	DefaultServicesTimeout = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWalletCacheTTL  = 5 * time.Minute
	DefaultWalletPrefix    = "paybutton"
	DefaultArchiveBucket   = "mem://"
	DefaultArchivePrefix   = "attempts/"

	MaxSpinnerDelay = 10 * time.Second
)

var (
	ErrInvalidAPIPort         = errors.New("invalid API port")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrMissingServicesURL     = errors.New("services URL required")
	ErrInvalidServicesTimeout = errors.New(
		"services timeout must be positive",
	)
	ErrInvalidSpinnerDelay = errors.New("spinner delay out of range")
	ErrMissingSelector     = errors.New("render selector required")
	ErrInvalidCacheTTL     = errors.New("wallet cache TTL must be positive")
	ErrInvalidRedisDB      = errors.New("invalid wallet cache redis DB")
	ErrMissingArchive      = errors.New("archive bucket URL required")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// engine, its remote services, and the development server
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		ServicesURL:     DefaultServicesURL,
		ServicesTimeout: DefaultServicesTimeout,
		SpinnerDelay:    display.DefaultSpinnerDelay,
		WalletSelector:  display.WalletSelector,
		MenuSelector:    display.MenuSelector,
		WalletCache: CacheConfig{
			Prefix: DefaultWalletPrefix,
			TTL:    DefaultWalletCacheTTL,
		},
		ArchiveBucketURL: DefaultArchiveBucket,
		ArchivePrefix:    DefaultArchivePrefix,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

// LoadDotEnv seeds the environment from the named files, or from .env when
// none are named. Missing files are ignored and variables that are already
// set are never overridden
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("SERVICES_URL", &c.ServicesURL)
	loadEnvString("WALLET_SELECTOR", &c.WalletSelector)
	loadEnvString("MENU_SELECTOR", &c.MenuSelector)
	loadEnvString("WALLET_CACHE_REDIS_ADDR", &c.WalletCache.Addr)
	loadEnvString("WALLET_CACHE_REDIS_PASSWORD", &c.WalletCache.Password)
	loadEnvString("WALLET_CACHE_PREFIX", &c.WalletCache.Prefix)
	loadEnvString("ARCHIVE_BUCKET_URL", &c.ArchiveBucketURL)
	loadEnvString("ARCHIVE_PREFIX", &c.ArchivePrefix)
	loadEnvString("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", &c.OTLPEndpoint)
	loadEnvClientIDs("ORDER_VALIDATION_WHITELIST", &c.Whitelist)
	loadEnvClientIDs(
		"SANDBOX_ORDER_VALIDATION_WHITELIST", &c.SandboxWhitelist,
	)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"WALLET_CACHE_REDIS_DB", &c.WalletCache.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}

	for key, dst := range map[string]*time.Duration{
		"SERVICES_TIMEOUT": &c.ServicesTimeout,
		"SPINNER_DELAY":    &c.SpinnerDelay,
		"WALLET_CACHE_TTL": &c.WalletCache.TTL,
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
	} {
		if err := loadEnvDuration(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.ServicesURL == "" {
		return ErrMissingServicesURL
	}
	if c.ServicesTimeout <= 0 {
		return ErrInvalidServicesTimeout
	}
	if c.SpinnerDelay < 0 || c.SpinnerDelay > MaxSpinnerDelay {
		return fmt.Errorf("%w: %s", ErrInvalidSpinnerDelay, c.SpinnerDelay)
	}
	if c.WalletSelector == "" || c.MenuSelector == "" {
		return ErrMissingSelector
	}
	if c.WalletCache.TTL <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.WalletCache.DB < 0 || c.WalletCache.DB > MaxRedisDB {
		return fmt.Errorf("%w: %d", ErrInvalidRedisDB, c.WalletCache.DB)
	}
	if c.ArchiveBucketURL == "" {
		return ErrMissingArchive
	}
	return nil
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func loadEnvClientIDs(key string, dst *[]api.ClientID) {
	s := os.Getenv(key)
	if s == "" {
		return
	}
	var res []api.ClientID
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			res = append(res, api.ClientID(id))
		}
	}
	*dst = res
}

func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = d
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

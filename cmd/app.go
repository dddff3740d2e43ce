// Package cmd implements the CLI application to manage personal assets.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assets"
	"github.com/etnz/assets/config"
	"github.com/etnz/assets/exchangerate"
	"github.com/etnz/assets/postgres"
	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Commands lists the atr subcommands.
var Commands = []subcommands.Command{
	&listCmd{},
	&addCmd{},
	&editCmd{},
	&rmCmd{},
	&moveCmd{name: "up", synopsis: "move an asset one row up"},
	&moveCmd{name: "down", synopsis: "move an asset one row down"},
	&sortCmd{},
	&ratesCmd{},
	&exportCmd{},
	&fmtCmd{},
	&shellCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
// Empty values mean "use the configuration".

var (
	configFile  = flag.String("config", config.DefaultFile(), "YAML configuration file")
	storeDriver = flag.String("store", "", "store driver: file, memory or postgres")
	storePath   = flag.String("store-path", "", "JSONL file of the file store")
	storeDSN    = flag.String("dsn", "", "PostgreSQL connection string of the postgres store")
	logLevel    = flag.String("log-level", "", "log level: debug, info, warn or error")
	offline     = flag.Bool("offline", false, "do not fetch exchange rates, use the fallback table")
)

// loadConfig reads the configuration and applies the global flags over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *storeDriver != "" {
		cfg.Store.Driver = *storeDriver
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *storeDSN != "" {
		cfg.Store.DSN = *storeDSN
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger builds a console logger on stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          "console",
		EncoderConfig:     encCfg,
		DisableCaller:     true,
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	return zapCfg.Build()
}

// openStore opens the store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config) (assets.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return assets.NewMemoryStore(), nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return assets.OpenFileStore(cfg.Store.Path)
	}
}

// rateProvider returns the configured exchange rate source, and a function
// releasing its resources.
func rateProvider(cfg *config.Config, logger *zap.Logger) (assets.RateProvider, func() error) {
	client := exchangerate.New(
		exchangerate.WithURL(cfg.Rates.URL),
		exchangerate.WithPath(cfg.Rates.Path),
		exchangerate.WithHTTPClient(exchangerate.Daily(cfg.Rates.CacheDir, logger)),
		exchangerate.WithLogger(logger),
	)
	if cfg.Rates.RedisAddr == "" {
		return client, func() error { return nil }
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Rates.RedisAddr})
	return exchangerate.NewRedisCache(rdb, client, cfg.Rates.RedisTTL, logger), rdb.Close
}

// app holds the resources of a single command execution.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	// rates is nil in offline mode.
	rates   assets.RateProvider
	coll    *assets.Collection
	closers []func() error
}

// openApp loads the configuration, opens the collection and fetches the rates.
// A rate fetch failure is only a warning.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error { logger.Sync(); return nil })

	store, err := openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.coll, err = assets.Open(ctx, store, assets.WithLogger(logger))
	if err != nil {
		store.Close()
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.coll.Close)

	if !*offline {
		var closeRates func() error
		a.rates, closeRates = rateProvider(cfg, logger)
		a.closers = append(a.closers, closeRates)
		if err := a.coll.RefreshRates(ctx, a.rates); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: using fallback exchange rates: %v\n", err)
		}
	}
	if err := a.coll.SetDisplayCurrency(cfg.DisplayCurrency); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: display currency %s unavailable, using %s\n", cfg.DisplayCurrency, a.coll.DisplayCurrency())
	}
	return a, nil
}

// Close releases the app resources, in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// exitStatus reports err on stderr and maps it to an exit status.
// Being already at the top or bottom is only a warning.
func exitStatus(action string, err error) subcommands.ExitStatus {
	switch {
	case err == nil:
		return subcommands.ExitSuccess
	case errors.Is(err, assets.ErrAtBoundary):
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return subcommands.ExitSuccess
	case errors.Is(err, assets.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Warning %s: %v\n", action, err)
		return subcommands.ExitFailure
	case errors.Is(err, assets.ErrValidation):
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
		return subcommands.ExitUsageError
	default:
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
		return subcommands.ExitFailure
	}
}

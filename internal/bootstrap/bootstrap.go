// Package bootstrap wires configuration, logging, and adapters into an
// application context shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"zdguide/internal/adapters/nonce"
	"zdguide/internal/adapters/sqlite"
	"zdguide/internal/adapters/zendesk"
	"zdguide/internal/application"
	"zdguide/internal/config"
	"zdguide/internal/logging"
)

// Options tunes how the runtime is built
type Options struct {
	ConfigFile string

	// Flags, when set, override configuration through config.FlagKeys
	Flags *pflag.FlagSet

	// Interactive discards logs unless a log file is configured, so output
	// never lands on a terminal UI or a stdio protocol stream.
	Interactive bool
}

// Runtime is a fully wired process
type Runtime struct {
	Config *config.Config
	App    *application.Context
	Logger *zap.Logger

	store *sqlite.Store
}

// Open loads configuration and opens the store
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	v := config.New()
	if opts.Flags != nil {
		if err := config.BindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if !opts.Interactive || cfg.Log.File != "" {
		logger, err = logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
		if err != nil {
			return nil, err
		}
	}

	store, err := sqlite.Open(ctx, cfg.Store.Path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", zap.String("path", store.Path()))

	return &Runtime{
		Config: cfg,
		Logger: logger,
		store:  store,
		App: &application.Context{
			Store: store,
			Clients: zendesk.Factory{
				Timeout:  cfg.Zendesk.Timeout,
				MaxPages: cfg.Zendesk.MaxPages,
				PerPage:  cfg.Zendesk.PerPage,
				BaseURL:  cfg.Zendesk.BaseURL,
			},
			Credentials:      cfg.Credentials(),
			Logger:           logger,
			FetchConcurrency: cfg.Sync.FetchConcurrency,
			SiteURL:          cfg.Site.BaseURL,
		},
	}, nil
}

// Nonces builds the anti-replay token manager from the admin settings
func (r *Runtime) Nonces() *nonce.Manager {
	if r.Config.Admin.NonceSecret == "" {
		r.Logger.Warn("admin.nonce_secret is empty; tokens will not survive a restart")
	}
	return nonce.NewManager(r.Config.Admin.NonceSecret, r.Config.Admin.NonceTTL)
}

// Close releases the store and flushes the logger
func (r *Runtime) Close() error {
	err := r.store.Close()
	_ = r.Logger.Sync()
	return err
}

// Package internal contains core application functionality
package internal

import (
	"fmt"
	"io/fs"

	"github.com/karloscodes/cartridge"

	"devconnector/internal/auth"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/github"
)

// Application wraps cartridge.Application with devconnector-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager // devconnector DB manager with migration methods
	Tokens    *auth.TokenService
}

// AppOption customizes NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	clientFS fs.FS
}

// WithClientFS serves client from the root of the site in production.
func WithClientFS(client fs.FS) AppOption {
	return func(o *appOptions) {
		o.clientFS = client
	}
}

// NewApp creates a new application instance from the global configuration
func NewApp(opts ...AppOption) (*Application, error) {
	return NewAppWithConfig(config.GetConfig(), opts...)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config, opts ...AppOption) (*Application, error) {
	var options appOptions
	for _, opt := range opts {
		opt(&options)
	}

	// Create logger
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	routes := RouteMounter(RouteDeps{
		Config:   cfg,
		Tokens:   tokens,
		GitHub:   github.NewClient(cfg.GitHubAPIURL, cfg.GitHubClientID, cfg.GitHubClientSecret),
		ClientFS: options.clientFS,
	})

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:         cfg,
		Logger:         logger,
		DBManager:      dbManager,
		RouteMountFunc: routes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
		Tokens:      tokens,
	}, nil
}

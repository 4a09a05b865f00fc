package cli

import (
	"fmt"

	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/oauth"
	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/budget-mcp/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/budget-mcp/internal/connectors/ynab"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/budget-mcp/internal/core/services"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// app holds the wired services for one command invocation.
type app struct {
	cfg    file.Config
	loader *file.Loader
	store  *sqlite.Store
	auth   *services.AuthorizationService
	budget *services.BudgetService
	client *ynab.Client
}

// loadConfig reads the configuration selected by --config.
func loadConfig() (*file.Loader, file.Config, error) {
	loader, err := file.NewLoader(configPath)
	if err != nil {
		return nil, file.Config{}, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, file.Config{}, err
	}
	logger.SetVerbose(verbose || cfg.Verbose)
	return loader, cfg, nil
}

// newApp validates cfg and wires stores, services and the upstream client.
func newApp(loader *file.Loader, cfg file.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s):\n%w", loader.Path(), err)
	}

	a := &app{cfg: cfg, loader: loader}

	var tokens driven.TokenStore
	switch cfg.TokenStore {
	case file.TokenStoreSQLite:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening token store: %w", err)
		}
		a.store = store
		tokens = store.TokenStore()
		logger.Debug("token store: %s", store.Path())
	default:
		tokens = memory.NewTokenStore()
		logger.Debug("token store: memory")
	}

	exchanger := oauth.NewExchanger(oauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthorizeURL: cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
	})
	a.auth = services.NewAuthorizationService(exchanger, tokens, memory.NewAuthRequestStore(),
		services.AuthorizationConfig{
			RedirectURI: cfg.RedirectURI(),
			RequestTTL:  cfg.AuthRequestTTL.Duration,
			UsePKCE:     cfg.UsePKCE,
		})

	// Zero retries in the file means none; the client treats zero as its default.
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}
	a.client = ynab.NewClient(ynab.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.RequestTimeout.Duration,
		MaxRetries: retries,
		RetryBase:  cfg.RetryBase.Duration,
		UserAgent:  "budget-mcp/" + version,
	}, ynab.NewRateLimiter(cfg.RateLimit, cfg.RateWindow.Duration))
	a.budget = services.NewBudgetService(a.client, cfg.ReadOnly)

	return a, nil
}

// Close releases pending requests and the token store.
func (a *app) Close() error {
	a.auth.Close()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

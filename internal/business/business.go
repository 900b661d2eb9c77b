// Package business wires the configuration into the session store, the
// session manager and the API client, and hosts the refresher daemon.
package business

import (
	"fmt"
	"net/http"

	"github.com/valkey-io/valkey-go"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/config"
	"github.com/devshare/devshare-cli/internal/events"
	"github.com/devshare/devshare-cli/internal/session"
	sessionfile "github.com/devshare/devshare-cli/internal/session/file"
	sessionmock "github.com/devshare/devshare-cli/internal/session/mock"
	sessionvalkey "github.com/devshare/devshare-cli/internal/session/valkey"
	"github.com/devshare/devshare-cli/internal/transport"
)

// App bundles the wired components a command works with.
type App struct {
	Config   *config.Config
	Sessions *session.Manager
	Client   *api.Client
	Bus      *events.Bus

	closeFn func()
}

// Close releases the store backend, if it holds a connection.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// NewApp builds the full client stack from the configuration: the session
// store, the session manager on a plain HTTP client, and the API client on
// a transport that injects the access token and retries once after a
// refresh.
func NewApp(cfg *config.Config) (*App, error) {
	store, closeFn, err := initStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialising the session store: %w", err)
	}

	// The manager talks to the auth endpoints directly; routing it through
	// the authenticated transport would recurse on 401.
	manager, err := session.NewManager(store, cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("initialising the session manager: %w", err)
	}

	bus := events.NewBus()
	httpClient := &http.Client{
		Timeout: cfg.API.Timeout,
		Transport: &transport.AuthTransport{
			Tokens: manager,
			Bus:    bus,
		},
	}

	client, err := api.NewClient(cfg.API.BaseURL, httpClient, cfg.Cache.TTL)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("initialising the api client: %w", err)
	}

	return &App{
		Config:   cfg,
		Sessions: manager,
		Client:   client,
		Bus:      bus,
		closeFn:  closeFn,
	}, nil
}

func initStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case config.StoreFile:
		path, err := cfg.SessionFilePath()
		if err != nil {
			return nil, nil, err
		}

		return sessionfile.NewStore(path), func() {}, nil

	case config.StoreValKey:
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.Session.ValKey.Host},
			Username:    cfg.Session.ValKey.Username,
			Password:    cfg.Session.ValKey.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
		}

		return sessionvalkey.NewStore(client, cfg.Session.ValKey.Prefix), client.Close, nil

	case config.StoreMemory:
		return sessionmock.NewInMemStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

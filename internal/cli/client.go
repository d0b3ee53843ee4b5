package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/minidrive/minidrive/internal/api"
	"github.com/minidrive/minidrive/internal/auth"
	"github.com/minidrive/minidrive/internal/config"
	"github.com/minidrive/minidrive/internal/events"
	"github.com/minidrive/minidrive/internal/notify"
	"github.com/minidrive/minidrive/internal/session"
)

// loadConfig resolves the effective configuration:
// flags > environment > .env > config file > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(apiBaseURL, proxyMode, proxyHost, proxyPort)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getAPIClient loads configuration, opens the saved session and creates
// an API client. This is the standard way to get a client in commands.
func getAPIClient() (*api.Client, *auth.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := auth.NewStore(cfg.SessionPath, cfg.NormalizedBaseURL())
	if err != nil {
		return nil, nil, err
	}
	warnIfExpired(store)

	client, err := api.NewClient(cfg, store, GetLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, store, nil
}

// warnIfExpired logs when the saved cookie's own expiry has passed.
// The request still goes out; the backend decides.
func warnIfExpired(store *auth.Store) {
	if store.Token() == "" {
		return
	}
	claims, err := store.Claims()
	if err != nil {
		GetLogger().Debug().Err(err).Msg("saved session is not a readable token")
		return
	}
	if claims.Expired(time.Now()) {
		GetLogger().Warn().Time("expired", claims.Expiry()).Msg("saved session has expired; run 'minidrive login'")
	}
}

// newNotifier builds the terminal notifier, wrapped with desktop
// notifications when enabled and with event publishing when bus is set.
func newNotifier(w io.Writer, cfg *config.Config, bus *events.EventBus) notify.Notifier {
	var n notify.Notifier = notify.NewConsole(w)
	if cfg != nil && cfg.DesktopNotifications {
		n = notify.NewDesktop(n, GetLogger())
	}
	if bus != nil {
		n = notify.WithEvents(n, bus)
	}
	return n
}

// newController wires a session controller for one command invocation.
func newController(cmd *cobra.Command, client *api.Client, bus *events.EventBus, opener session.Opener) *session.Controller {
	return session.New(client, bus, session.Config{
		Notifier: newNotifier(cmd.ErrOrStderr(), client.GetConfig(), bus),
		Opener:   opener,
		Logger:   GetLogger(),
	})
}

// requireSession fails early when no session cookie is saved.
func requireSession(client *api.Client) error {
	if !client.HasSession() {
		return errNotLoggedIn
	}
	return nil
}

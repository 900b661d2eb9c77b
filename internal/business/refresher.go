package business

import (
	"context"
	"errors"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/internal/config"
	"github.com/devshare/devshare-cli/internal/events"
	"github.com/devshare/devshare-cli/internal/serviceerr"
	"github.com/devshare/devshare-cli/internal/session"
)

// RefresherMain runs the proactive token refresh loop until the context is
// cancelled. Each tick renews the access token when it is within the
// configured margin of its expiry. A rejected refresh clears the session;
// transient failures keep the loop running.
func RefresherMain(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	slogctx.Info(ctx, "Starting token refresh job",
		"interval", cfg.Refresher.Interval,
		"margin", cfg.Refresher.Margin)

	c := time.Tick(cfg.Refresher.Interval)
	for {
		refreshOnce(ctx, app.Sessions, app.Bus, cfg.Refresher.Margin)

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}

func refreshOnce(ctx context.Context, sessions *session.Manager, bus *events.Bus, margin time.Duration) {
	err := sessions.RefreshIfExpiring(ctx, margin)

	switch {
	case err == nil:

	case errors.Is(err, serviceerr.ErrNoSession):
		slogctx.Debug(ctx, "No session to refresh")

	case isRejected(err):
		slogctx.Warn(ctx, "Refresh rejected, clearing the session", "error", err)

		if clearErr := sessions.Clear(ctx); clearErr != nil {
			slogctx.Error(ctx, "Failed to clear the session", "error", clearErr)
		}

		bus.Publish(events.Event{Kind: events.SessionExpired})

	default:
		slogctx.Error(ctx, "Failed to refresh tokens", "error", err)
	}
}

// isRejected reports whether the server refused the refresh token, as
// opposed to a transport failure worth retrying next tick.
func isRejected(err error) bool {
	if errors.Is(err, serviceerr.ErrNoRefreshToken) {
		return true
	}

	_, ok := serviceerr.AsAPIError(err)

	return ok
}

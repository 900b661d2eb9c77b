// Package cmdutils carries the shared plumbing of the CLI commands:
// configuration loading, logger setup and the cobra command scaffold.
package cmdutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/internal/config"
)

// ConfigFlag is the persistent flag naming an explicit config file.
const ConfigFlag = "config"

// CobraCommand builds a cobra command that loads the configuration,
// initialises the logger and hands off to the business function.
func CobraCommand(
	use, short, long string,
	businessFunc func(context.Context, *config.Config, []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE:  RunE(use, businessFunc),
	}
}

// RunE wraps a business function into a cobra RunE: it loads the
// configuration, initialises the logger and forwards the arguments.
func RunE(use string, businessFunc func(context.Context, *config.Config, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ctx, err := initLogger(cmd.Context(), cfg)
		if err != nil {
			return oops.In("main").Wrapf(err, "Failed to initialise the logger")
		}

		err = businessFunc(ctx, cfg, args)
		if err != nil {
			return oops.In("main").Wrapf(err, "Failed to run %s", use)
		}

		return nil
	}
}

// LoadConfig resolves the configuration for a command, honouring the
// --config persistent flag when set.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(ConfigFlag)
	if err != nil {
		path = ""
	}

	return config.Load(path)
}

func initLogger(ctx context.Context, cfg *config.Config) (context.Context, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		return ctx, fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Logger.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(slogctx.NewHandler(handler, nil))
	slog.SetDefault(logger)

	return slogctx.NewCtx(ctx, logger), nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/cmd/devshare/auth"
	"github.com/devshare/devshare-cli/cmd/devshare/feed"
	"github.com/devshare/devshare-cli/cmd/devshare/notifications"
	"github.com/devshare/devshare-cli/cmd/devshare/post"
	"github.com/devshare/devshare-cli/cmd/devshare/profile"
	"github.com/devshare/devshare-cli/cmd/devshare/refresher"
	"github.com/devshare/devshare-cli/cmd/devshare/social"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "dev"

	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "DevShare CLI version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), BuildInfo)
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devshare",
		Short: "DevShare client",
		Long:  "DevShare command line client for the DevShare developer feed API.",
	}

	cmd.PersistentFlags().String(cmdutils.ConfigFlag, "", "path to the config file")
	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 0, "graceful shutdown")

	healthCmd := cmdutils.CobraCommand(
		"health",
		"Check whether the API is reachable",
		"",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			app, err := business.NewApp(cfg)
			if err != nil {
				return err
			}

			defer app.Close()

			if err := app.Client.Health(ctx); err != nil {
				return err
			}

			fmt.Println("ok")

			return nil
		},
	)

	cmd.AddCommand(
		versionCmd,
		healthCmd,
		auth.Cmd(),
		feed.Cmd(),
		post.Cmd(),
		profile.Cmd(),
		social.Cmd(),
		notifications.Cmd(),
		refresher.Cmd(),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to run the command", "error", err)

		return err
	}

	if gracefulShutdown > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// Package notifications holds the notification inbox commands.
package notifications

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
	"github.com/devshare/devshare-cli/internal/events"
)

var (
	page  int
	limit int
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Your notification inbox",
		RunE:  cmdutils.RunE("notifications", list),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "notifications per page")

	cmd.AddCommand(
		cmdutils.CobraCommand("unread", "Show the unread count", "", unread),
		&cobra.Command{
			Use:   "read <notification-id>",
			Short: "Mark one notification as read",
			Args:  cobra.ExactArgs(1),
			RunE:  cmdutils.RunE("notifications read", read),
		},
		cmdutils.CobraCommand("read-all", "Mark all notifications as read", "", readAll),
		&cobra.Command{
			Use:   "rm <notification-id>",
			Short: "Delete one notification",
			Args:  cobra.ExactArgs(1),
			RunE:  cmdutils.RunE("notifications rm", remove),
		},
		cmdutils.CobraCommand("clear", "Delete all notifications", "", clear),
	)

	return cmd
}

func list(ctx context.Context, cfg *config.Config, _ []string) error {
	return withApp(cfg, func(app *business.App) error {
		inbox, err := app.Client.Notifications(ctx, api.NotificationOptions{Page: page, Limit: limit})
		if err != nil {
			return err
		}

		for _, notification := range inbox.Notifications {
			marker := " "
			if !notification.Read {
				marker = "*"
			}

			fmt.Printf("%s %s  %s  %s\n",
				marker, notification.ID, notification.Message, notification.CreatedAt)
		}

		fmt.Printf("Page %d, %d notifications total\n", inbox.Page, inbox.Total)

		return nil
	})
}

func unread(ctx context.Context, cfg *config.Config, _ []string) error {
	return withApp(cfg, func(app *business.App) error {
		count, err := app.Client.UnreadCount(ctx)
		if err != nil {
			return err
		}

		fmt.Println(count)

		return nil
	})
}

func read(ctx context.Context, cfg *config.Config, args []string) error {
	return withApp(cfg, func(app *business.App) error {
		if err := app.Client.MarkNotificationRead(ctx, args[0]); err != nil {
			return err
		}

		app.Bus.Publish(events.Event{Kind: events.NotificationsChanged})
		fmt.Printf("Marked %s as read\n", args[0])

		return nil
	})
}

func readAll(ctx context.Context, cfg *config.Config, _ []string) error {
	return withApp(cfg, func(app *business.App) error {
		updated, err := app.Client.MarkAllNotificationsRead(ctx)
		if err != nil {
			return err
		}

		app.Bus.Publish(events.Event{Kind: events.NotificationsChanged})
		fmt.Printf("Marked %d notifications as read\n", updated)

		return nil
	})
}

func remove(ctx context.Context, cfg *config.Config, args []string) error {
	return withApp(cfg, func(app *business.App) error {
		if err := app.Client.DeleteNotification(ctx, args[0]); err != nil {
			return err
		}

		app.Bus.Publish(events.Event{Kind: events.NotificationsChanged})
		fmt.Printf("Deleted %s\n", args[0])

		return nil
	})
}

func clear(ctx context.Context, cfg *config.Config, _ []string) error {
	return withApp(cfg, func(app *business.App) error {
		deleted, err := app.Client.ClearNotifications(ctx)
		if err != nil {
			return err
		}

		app.Bus.Publish(events.Event{Kind: events.NotificationsChanged})
		fmt.Printf("Deleted %d notifications\n", deleted)

		return nil
	})
}

func withApp(cfg *config.Config, fn func(*business.App) error) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	return fn(app)
}

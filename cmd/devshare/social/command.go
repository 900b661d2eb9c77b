// Package social holds the comment, reply and like commands.
package social

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "social",
		Short: "Comments, replies and likes",
	}

	cmd.AddCommand(commentCmd(), replyCmd(), likeCmd())

	return cmd
}

func commentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage comments on posts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <post-id>",
			Short: "List the comments of a post",
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("comment list", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					comments, err := app.Client.Comments(ctx, args[0])
					if err != nil {
						return err
					}

					for _, comment := range comments {
						fmt.Printf("%s  %s: %s  (%d likes, %d replies)\n",
							comment.ID, comment.User.Username, comment.Content,
							comment.LikesCount, comment.RepliesCount)
					}

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "add <post-id> <content>",
			Short: "Comment on a post",
			Args:  cobra.ExactArgs(2),
			RunE: cmdutils.RunE("comment add", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					comment, err := app.Client.AddComment(ctx, args[0], args[1])
					if err != nil {
						return err
					}

					fmt.Printf("Added comment %s\n", comment.ID)

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "update <comment-id> <content>",
			Short: "Edit one of your comments",
			Args:  cobra.ExactArgs(2),
			RunE: cmdutils.RunE("comment update", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					_, err := app.Client.UpdateComment(ctx, args[0], args[1])
					if err != nil {
						return err
					}

					fmt.Printf("Updated comment %s\n", args[0])

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "rm <comment-id>",
			Short: "Delete one of your comments",
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("comment rm", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					if err := app.Client.DeleteComment(ctx, args[0]); err != nil {
						return err
					}

					fmt.Printf("Deleted comment %s\n", args[0])

					return nil
				})
			}),
		},
	)

	return cmd
}

func replyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Manage replies to comments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <comment-id>",
			Short: "List the replies of a comment",
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("reply list", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					replies, err := app.Client.Replies(ctx, args[0])
					if err != nil {
						return err
					}

					for _, reply := range replies {
						fmt.Printf("%s  %s: %s  (%d likes)\n",
							reply.ID, reply.User.Username, reply.Content, reply.LikesCount)
					}

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "add <comment-id> <content>",
			Short: "Reply to a comment",
			Args:  cobra.ExactArgs(2),
			RunE: cmdutils.RunE("reply add", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					reply, err := app.Client.AddReply(ctx, args[0], args[1])
					if err != nil {
						return err
					}

					fmt.Printf("Added reply %s\n", reply.ID)

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "update <reply-id> <content>",
			Short: "Edit one of your replies",
			Args:  cobra.ExactArgs(2),
			RunE: cmdutils.RunE("reply update", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					_, err := app.Client.UpdateReply(ctx, args[0], args[1])
					if err != nil {
						return err
					}

					fmt.Printf("Updated reply %s\n", args[0])

					return nil
				})
			}),
		},
		&cobra.Command{
			Use:   "rm <reply-id>",
			Short: "Delete one of your replies",
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("reply rm", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					if err := app.Client.DeleteReply(ctx, args[0]); err != nil {
						return err
					}

					fmt.Printf("Deleted reply %s\n", args[0])

					return nil
				})
			}),
		},
	)

	return cmd
}

func likeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like",
		Short: "Toggle and list likes",
	}

	toggle := func(use string, fn func(*api.Client, context.Context, string) (api.LikeResult, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: "Toggle your like on a " + use,
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("like "+use, func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					result, err := fn(app.Client, ctx, args[0])
					if err != nil {
						return err
					}

					state := "unliked"
					if result.Liked {
						state = "liked"
					}

					fmt.Printf("%s, %d likes now\n", state, result.LikesCount)

					return nil
				})
			}),
		}
	}

	cmd.AddCommand(
		toggle("post", func(c *api.Client, ctx context.Context, id string) (api.LikeResult, error) {
			return c.TogglePostLike(ctx, id)
		}),
		toggle("comment", func(c *api.Client, ctx context.Context, id string) (api.LikeResult, error) {
			return c.ToggleCommentLike(ctx, id)
		}),
		toggle("reply", func(c *api.Client, ctx context.Context, id string) (api.LikeResult, error) {
			return c.ToggleReplyLike(ctx, id)
		}),
		&cobra.Command{
			Use:   "list <post-id>",
			Short: "List who liked a post",
			Args:  cobra.ExactArgs(1),
			RunE: cmdutils.RunE("like list", func(ctx context.Context, cfg *config.Config, args []string) error {
				return withApp(cfg, func(app *business.App) error {
					likes, err := app.Client.PostLikes(ctx, args[0])
					if err != nil {
						return err
					}

					for _, like := range likes {
						fmt.Printf("%s  %s\n", like.User.Username, like.CreatedAt)
					}

					return nil
				})
			}),
		},
	)

	return cmd
}

func withApp(cfg *config.Config, fn func(*business.App) error) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	return fn(app)
}

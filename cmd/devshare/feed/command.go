// Package feed holds the feed browsing commands.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
)

var (
	page      int
	limit     int
	sortOrder string
	techStack string
	search    string
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the community feed",
		RunE:  cmdutils.RunE("feed", list),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "posts per page")
	cmd.Flags().StringVar(&sortOrder, "sort", api.SortNewest, "sort order")
	cmd.Flags().StringVar(&techStack, "tech", "", "filter by technology")
	cmd.Flags().StringVar(&search, "search", "", "search in title and description")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a single post with comments and likes",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdutils.RunE("feed show", show),
	})

	return cmd
}

func list(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	feedPage, err := app.Client.Feed(ctx, api.FeedOptions{
		Page:      page,
		Limit:     limit,
		Sort:      sortOrder,
		TechStack: techStack,
		Search:    search,
	})
	if err != nil {
		return err
	}

	for _, post := range feedPage.Posts {
		printPost(post)
	}

	fmt.Printf("Page %d/%d, %d posts total\n",
		feedPage.Pagination.Page, feedPage.Pagination.Pages, feedPage.Pagination.Total)

	return nil
}

func show(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	post, err := app.Client.FeedPost(ctx, args[0])
	if err != nil {
		return err
	}

	printPost(post)

	if post.Description != "" {
		fmt.Printf("\n%s\n", post.Description)
	}

	for _, comment := range post.Comments {
		fmt.Printf("\n  %s: %s\n", comment.User.Username, comment.Content)

		for _, reply := range comment.Replies {
			fmt.Printf("    %s: %s\n", reply.User.Username, reply.Content)
		}
	}

	return nil
}

func printPost(post api.Post) {
	fmt.Printf("%s  %s  by %s", post.ID, post.Title, post.Username)

	if len(post.TechStack) > 0 {
		fmt.Printf("  [%s]", strings.Join(post.TechStack, ", "))
	}

	fmt.Printf("  %d likes, %d comments\n", post.LikesCount, post.CommentsCount)
}

// Package profile holds the commands around the own and public profiles.
package profile

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
)

var (
	username string
	email    string
	page     int
	limit    int
	yes      bool
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit your profile",
		RunE:  cmdutils.RunE("profile", show),
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your profile",
		RunE:  cmdutils.RunE("profile update", update),
	}
	updateCmd.Flags().StringVar(&username, "username", "", "new username")
	updateCmd.Flags().StringVar(&email, "email", "", "new email address")

	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "List your own posts",
		RunE:  cmdutils.RunE("profile posts", posts),
	}
	postsCmd.Flags().IntVar(&page, "page", 1, "page number")
	postsCmd.Flags().IntVar(&limit, "limit", 10, "posts per page")

	userCmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show another user's public profile and posts",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdutils.RunE("profile user", user),
	}
	userCmd.Flags().IntVar(&page, "page", 1, "page number")
	userCmd.Flags().IntVar(&limit, "limit", 10, "posts per page")

	deleteCmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete your account and all its data",
		RunE:  cmdutils.RunE("profile delete-account", deleteAccount),
	}
	deleteCmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	themeCmd := &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the colour theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cmdutils.RunE("profile theme", theme),
	}

	cmd.AddCommand(updateCmd, postsCmd, userCmd, deleteCmd, themeCmd)

	return cmd
}

func show(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	prof, err := app.Client.Profile(ctx)
	if err != nil {
		return err
	}

	printProfile(prof)

	return nil
}

func update(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	req := api.UpdateProfileRequest{}
	if username != "" {
		req.Username = &username
	}

	if email != "" {
		req.Email = &email
	}

	prof, err := app.Client.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}

	printProfile(prof)

	return nil
}

func posts(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	ownPage, err := app.Client.MyPosts(ctx, api.MyPostsOptions{Page: page, Limit: limit})
	if err != nil {
		return err
	}

	printPosts(ownPage)

	return nil
}

func user(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	prof, err := app.Client.UserProfile(ctx, args[0])
	if err != nil {
		return err
	}

	printProfile(prof)

	userPage, err := app.Client.UserPosts(ctx, args[0], api.MyPostsOptions{Page: page, Limit: limit})
	if err != nil {
		return err
	}

	printPosts(userPage)

	return nil
}

func deleteAccount(ctx context.Context, cfg *config.Config, _ []string) error {
	if !yes {
		return fmt.Errorf("refusing to delete the account without --yes")
	}

	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	if err := app.Client.DeleteAccount(ctx); err != nil {
		return err
	}

	if err := app.Sessions.Clear(ctx); err != nil {
		return err
	}

	fmt.Println("Account deleted")

	return nil
}

func theme(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	if len(args) == 0 {
		current, err := app.Sessions.Theme(ctx)
		if err != nil {
			return err
		}

		fmt.Println(current)

		return nil
	}

	if err := app.Sessions.SetTheme(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Theme set to %s\n", args[0])

	return nil
}

func printProfile(prof api.Profile) {
	fmt.Printf("%s <%s>\n", prof.Username, prof.Email)
	fmt.Printf("  %d posts, %d likes received, member since %s\n",
		prof.PostsCount, prof.LikesReceived, prof.CreatedAt)
}

func printPosts(feedPage api.FeedPage) {
	for _, post := range feedPage.Posts {
		fmt.Printf("%s  %s  %d likes, %d comments\n",
			post.ID, post.Title, post.LikesCount, post.CommentsCount)
	}

	fmt.Printf("Page %d/%d, %d posts total\n",
		feedPage.Pagination.Page, feedPage.Pagination.Pages, feedPage.Pagination.Total)
}

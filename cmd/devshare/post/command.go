// Package post holds the commands for publishing and managing own posts.
package post

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/api"
	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
)

var (
	title       string
	description string
	techStack   []string
	githubLink  string
	files       []string
	outputDir   string
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish and manage your posts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new project post",
		RunE:  cmdutils.RunE("post create", create),
	}
	createCmd.Flags().StringVar(&title, "title", "", "post title")
	createCmd.Flags().StringVar(&description, "description", "", "post description")
	createCmd.Flags().StringSliceVar(&techStack, "tech", nil, "technology, repeatable")
	createCmd.Flags().StringVar(&githubLink, "github", "", "repository link")
	createCmd.Flags().StringSliceVar(&files, "file", nil, "file to attach, repeatable")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("description")

	updateCmd := &cobra.Command{
		Use:   "update <post-id>",
		Short: "Edit one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdutils.RunE("post update", update),
	}
	updateCmd.Flags().StringVar(&title, "title", "", "new title")
	updateCmd.Flags().StringVar(&description, "description", "", "new description")
	updateCmd.Flags().StringSliceVar(&techStack, "tech", nil, "replacement technology list, repeatable")
	updateCmd.Flags().StringVar(&githubLink, "github", "", "new repository link")

	downloadCmd := &cobra.Command{
		Use:   "download <post-id> <file-id>",
		Short: "Download an attachment of one of your posts",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdutils.RunE("post download", download),
	}
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to save into")

	cmd.AddCommand(
		createCmd,
		updateCmd,
		downloadCmd,
		&cobra.Command{
			Use:   "show <post-id>",
			Short: "Show one of your posts with its attachments",
			Args:  cobra.ExactArgs(1),
			RunE:  cmdutils.RunE("post show", show),
		},
		&cobra.Command{
			Use:   "rm <post-id>",
			Short: "Delete one of your posts",
			Args:  cobra.ExactArgs(1),
			RunE:  cmdutils.RunE("post rm", remove),
		},
	)

	return cmd
}

func create(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	created, err := app.Client.CreatePost(ctx, api.CreatePostRequest{
		Title:       title,
		Description: description,
		TechStack:   techStack,
		GithubLink:  githubLink,
		FilePaths:   files,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created post %s\n", created.ID)

	return nil
}

func show(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	post, err := app.Client.MyPost(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", post.ID, post.Title)

	if post.Description != "" {
		fmt.Printf("\n%s\n", post.Description)
	}

	for _, file := range post.Files {
		fmt.Printf("  %s  %s  (%d bytes)\n", file.FileID, file.Filename, file.Size)
	}

	return nil
}

func update(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	req := api.UpdatePostRequest{TechStack: techStack}
	if title != "" {
		req.Title = &title
	}

	if description != "" {
		req.Description = &description
	}

	if githubLink != "" {
		req.GithubLink = &githubLink
	}

	updated, err := app.Client.UpdatePost(ctx, args[0], req)
	if err != nil {
		return err
	}

	fmt.Printf("Updated post %s\n", updated.ID)

	return nil
}

func remove(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	if err := app.Client.DeletePost(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted post %s\n", args[0])

	return nil
}

func download(ctx context.Context, cfg *config.Config, args []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	tmp, err := os.CreateTemp(outputDir, ".devshare-download-*")
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}

	filename, written, err := app.Client.DownloadFile(ctx, args[0], args[1], tmp)
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return err
	}

	if filename == "" {
		filename = args[1]
	}

	// The server names the file; keep the download atomic via the temp file.
	target := filepath.Join(outputDir, filepath.Base(filename))
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("saving download: %w", err)
	}

	fmt.Printf("Saved %s (%d bytes)\n", target, written)

	return nil
}

// Package auth holds the login, register, logout and whoami commands.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devshare/devshare-cli/internal/business"
	"github.com/devshare/devshare-cli/internal/cmdutils"
	"github.com/devshare/devshare-cli/internal/config"
	"github.com/devshare/devshare-cli/internal/serviceerr"
	"github.com/devshare/devshare-cli/internal/session"
)

var (
	password        string
	fullname        string
	email           string
	confirmPassword string
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	loginCmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdutils.RunE("login", login),
	}
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password (read from DEVSHARE_PASSWORD when empty)")

	registerCmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdutils.RunE("register", register),
	}
	registerCmd.Flags().StringVar(&fullname, "fullname", "", "full name")
	registerCmd.Flags().StringVar(&email, "email", "", "email address")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "password (read from DEVSHARE_PASSWORD when empty)")
	registerCmd.Flags().StringVar(&confirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")

	cmd.AddCommand(
		loginCmd,
		registerCmd,
		cmdutils.CobraCommand("logout", "Revoke the tokens and clear the session", "", logout),
		cmdutils.CobraCommand("whoami", "Show the logged-in user", "", whoami),
	)

	return cmd
}

func resolvePassword() (string, error) {
	if password != "" {
		return password, nil
	}

	if env := os.Getenv("DEVSHARE_PASSWORD"); env != "" {
		return env, nil
	}

	return "", errors.New("no password given: use --password or DEVSHARE_PASSWORD")
}

func login(ctx context.Context, cfg *config.Config, args []string) error {
	pass, err := resolvePassword()
	if err != nil {
		return err
	}

	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	if _, err := app.Sessions.Login(ctx, args[0], pass); err != nil {
		return err
	}

	// The login response carries tokens only; the profile fills in the user.
	prof, err := app.Client.Profile(ctx)
	if err != nil {
		return err
	}

	err = app.Sessions.CacheUser(ctx, session.User{
		ID:       prof.ID,
		Username: prof.Username,
		Email:    prof.Email,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", prof.Username)

	return nil
}

func register(ctx context.Context, cfg *config.Config, args []string) error {
	pass, err := resolvePassword()
	if err != nil {
		return err
	}

	if confirmPassword == "" {
		confirmPassword = pass
	}

	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	err = app.Sessions.Register(ctx, session.RegisterRequest{
		Username:        args[0],
		Fullname:        fullname,
		Email:           email,
		Password:        pass,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s, you can log in now\n", args[0])

	return nil
}

func logout(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	if err := app.Sessions.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out")

	return nil
}

func whoami(ctx context.Context, cfg *config.Config, _ []string) error {
	app, err := business.NewApp(cfg)
	if err != nil {
		return err
	}

	defer app.Close()

	sess, err := app.Sessions.Current(ctx)
	if errors.Is(err, serviceerr.ErrNoSession) {
		fmt.Println("Not logged in")

		return nil
	}

	if err != nil {
		return err
	}

	if sess.User.Username == "" {
		prof, err := app.Client.Profile(ctx)
		if err != nil {
			return err
		}

		sess.User = session.User{ID: prof.ID, Username: prof.Username, Email: prof.Email}
		_ = app.Sessions.CacheUser(ctx, sess.User)
	}

	fmt.Printf("%s <%s>\n", sess.User.Username, sess.User.Email)

	return nil
}

package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/auth"
)

var (
	loginUser string
	loginPass string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the access token",
	Long: `Exchange a username and password for an access token.

The password is read from stdin when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.Session().Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Login email")
	loginCmd.Flags().StringVarP(&loginPass, "password", "p", "", "Password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPass
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx, cancel := withTimeout(cmd, 15*time.Second)
	defer cancel()

	if err := api.Login(ctx, loginUser, password); err != nil {
		return err
	}

	id, _ := api.Session().Current()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", id.Email)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	id, ok := api.Session().Current()
	if !ok {
		return auth.ErrNoSession
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email: %s\n", id.Email)
	fmt.Fprintf(out, "Role:  %s\n", id.Role)
	fmt.Fprintf(out, "Pro:   %t\n", id.IsPro)
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Token expires %s\n", id.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

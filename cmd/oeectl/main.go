// Command oeectl is the terminal client of the OEE board.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/auth"
	"oee-board/internal/client"
	"oee-board/internal/config"
)

var (
	verbose bool
	apiURL  string

	logger *slog.Logger
	api    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "oeectl",
	Short: "Command-line client for the OEE reporting board",
	Long: `oeectl talks to the OEE board API.

It signs in, uploads production extracts, edits report entries,
prints leaderboards and downloads report exports.

Configuration comes from OEE_API_URL, OEE_AUTH_MODE, OEE_TOKEN_FILE and OEE_TIMEOUT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		cfg, err := config.ReadClient()
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}

		session, err := newSession(cfg)
		if err != nil {
			return err
		}

		api = client.New(logger, cfg.APIURL, session, cfg.Timeout)
		return nil
	},
}

// newSession picks the session backing the client: a fixed admin in static
// mode, otherwise the token saved by the last login.
func newSession(cfg *config.Client) (auth.Session, error) {
	if cfg.AuthMode == config.AuthStatic {
		return auth.NewStaticSession(auth.StaticAdmin), nil
	}

	path := cfg.TokenFile
	if path == "" {
		var err error
		if path, err = auth.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	return auth.NewTokenSession(auth.FileTokenStore{Path: path})
}

// withTimeout bounds one command's remote calls.
func withTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides OEE_API_URL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(entriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

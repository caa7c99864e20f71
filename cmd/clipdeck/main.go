// Package main provides the clipdeck CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/clipdeck/clipdeck/internal/backend"
	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/display"
	"github.com/clipdeck/clipdeck/internal/log"
	"github.com/clipdeck/clipdeck/internal/session"
	"github.com/clipdeck/clipdeck/pkg/credential"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by go install.
func resolveVersion(v string, info *debug.BuildInfo) string {
	if v != "dev" {
		return v
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

// newRootCmd creates the root command for clipdeck CLI.
func newRootCmd() *cobra.Command {
	var envFile string
	var cfg config.Config

	info, _ := debug.ReadBuildInfo()
	rootCmd := &cobra.Command{
		Use:           "clipdeck",
		Short:         "Browse and play a short-form video feed",
		Long:          "Clipdeck plays a vertical feed of short clips from the terminal: navigate, tap to seek, like, save and share.",
		Version:       resolveVersion(version, info),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return err
			}
			cfg = loaded
			log.Configure(log.Config{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	rootCmd.SetVersionTemplate("clipdeck version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this env file instead of ./.env")

	rootCmd.AddCommand(newFeedCmd(&cfg))
	rootCmd.AddCommand(newPlayCmd(&cfg))
	rootCmd.AddCommand(newSavedCmd(&cfg))
	rootCmd.AddCommand(newLoginCmd(&cfg))
	rootCmd.AddCommand(newLogoutCmd(&cfg))
	rootCmd.AddCommand(newConfigCmd(&cfg))

	return rootCmd
}

// signedInUser returns the stored credential, or an anonymous user when none is stored.
func signedInUser(cfg *config.Config) (string, session.User, error) {
	token, err := credential.NewTokenStorage(cfg.ConfigDir).Load()
	if errors.Is(err, credential.ErrTokenNotFound) {
		return "", session.User{}, nil
	}
	if err != nil {
		return "", session.User{}, err
	}
	return token.AccessToken, session.User{ID: token.UserID}, nil
}

func newClient(cfg *config.Config, token string) *backend.Client {
	opts := []backend.ClientOption{
		backend.WithBaseURL(cfg.APIURL),
		backend.WithLogger(log.WithComponent("backend")),
	}
	if token != "" {
		opts = append(opts, backend.WithToken(token))
	}
	return backend.NewClient(opts...)
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd(cfg *config.Config) *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List the clips of a category",
		Long:  "Fetch a category feed and list its clips with their engagement counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category == "" {
				category = cfg.Category
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			token, _, err := signedInUser(cfg)
			if err != nil {
				return err
			}
			clips, err := newClient(cfg, token).FetchFeed(ctx, category)
			if err != nil {
				return fmt.Errorf("failed to load %q: %w", category, err)
			}
			if limit > 0 && len(clips) > limit {
				clips = clips[:limit]
			}

			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatFeed(clips))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Feed category (defaults to CLIPDECK_CATEGORY or shorts)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of clips to display")

	return cmd
}

// newPlayCmd creates the interactive player.
func newPlayCmd(cfg *config.Config) *cobra.Command {
	var category string
	var openShares bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the feed interactively",
		Long: `Play a category feed, reading commands from stdin:

  next | n              move to the next clip
  prev | p              move to the previous clip
  tap left|center|right seek back 10s, play/pause, seek forward 10s
  tap-at <x> <width>    tap at a horizontal position
  like | dislike | save | share
  status                show the current clip
  quit | q              exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if category == "" {
				category = cfg.Category
			}

			token, user, err := signedInUser(cfg)
			if err != nil {
				return err
			}

			p := newPlayer(newClient(cfg, token), user, cmd.OutOrStdout(),
				session.WithCategory(category),
				session.WithRequestTimeout(cfg.RequestTimeout),
				session.WithLogger(log.WithComponent("session")),
			)
			p.openShares = openShares
			defer p.session.Close()

			ctx := cmd.Context()
			if err := p.session.Start(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			}
			return p.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Feed category (defaults to CLIPDECK_CATEGORY or shorts)")
	cmd.Flags().BoolVar(&openShares, "open-shares", false, "Open a clip in the browser after sharing it")

	return cmd
}

// newSavedCmd lists the signed-in user's saved clips.
func newSavedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List your saved clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _, err := signedInUser(cfg)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("not signed in (run 'clipdeck login --token <token>')")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			clips, err := newClient(cfg, token).FetchSaved(ctx)
			if err != nil {
				return fmt.Errorf("failed to load saved clips: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatFeed(clips))
			return nil
		},
	}
}

// newLoginCmd stores a bearer token issued by the backend.
func newLoginCmd(cfg *config.Config) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the access token used for likes, saves and shares",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("missing token: pass --token <access token>")
			}

			userID, err := credential.UserIDFromToken(token)
			if err != nil {
				return fmt.Errorf("invalid token: %w", err)
			}

			storage := credential.NewTokenStorage(cfg.ConfigDir)
			if err := storage.Save(&credential.Token{AccessToken: token, TokenType: "Bearer", UserID: userID}); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", userID)
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to: %s\n", cfg.ConfigDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Access token issued by the clip backend")

	return cmd
}

// newLogoutCmd removes the stored token.
func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.NewTokenStorage(cfg.ConfigDir).Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// newConfigCmd prints the resolved configuration.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long:  "Show the clipdeck configuration resolved from .env files and CLIPDECK_* variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, user, err := signedInUser(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config directory: %s\n", cfg.ConfigDir)
			fmt.Fprintf(out, "API URL: %s\n", cfg.APIURL)
			fmt.Fprintf(out, "Category: %s\n", cfg.Category)
			fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "Request timeout: %s\n", cfg.RequestTimeout)
			if user.ID != "" {
				fmt.Fprintf(out, "Signed in as: %s\n", user.ID)
			} else {
				fmt.Fprintln(out, "Signed in as: (nobody)")
			}
			return nil
		},
	}
}

// Package cli provides the command-line interface for contentpilot.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raphaelgruber/contentpilot/internal/app"
	"github.com/raphaelgruber/contentpilot/internal/client"
	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	cfg           config.Config
	logger        *slog.Logger
	closeLogger   func() error
	application   *app.App
	out           io.Writer = os.Stdout
	newAppFromCfg           = app.New
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "contentpilot",
	Short: "Social media content assistant",
	Long: `Contentpilot turns a product photo and a short prompt into ready-to-post
social media copy: headline, description, call to action and hashtags.

Chat locally against the configured model, or point --server at a running
contentpilot-server to use its sessions and content library.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		// keep the terminal clean unless asked
		level := slog.LevelWarn
		if verbose {
			level = cfg.LogLevel
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close content store: %v\n", err)
			}
			application = nil
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// getApp lazily connects the model and content store for local commands.
func getApp(ctx context.Context) (*app.App, error) {
	if application != nil {
		return application, nil
	}
	a, err := newAppFromCfg(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	application = a
	return a, nil
}

// remoteClient returns a server client when --server is set.
func remoteClient() *client.Client {
	if serverURL == "" {
		return nil
	}
	return client.New(serverURL)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "contentpilot-server URL (e.g. http://localhost:8484); runs locally when empty")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

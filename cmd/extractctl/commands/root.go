// Package commands implements the extractctl command tree.
package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/octobees/contact-extractor/api/internal/client"
)

type options struct {
	server  string
	token   string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(o.server, client.WithToken(o.token))
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "extractctl",
		Short:        "Submit and track contact extraction jobs",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("EXTRACT_SERVER", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("EXTRACT_TOKEN"), "access token (see the token command)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")

	rootCmd.AddCommand(
		newTokenCommand(opts),
		newSubmitCommand(opts),
		newWatchCommand(opts),
		newResultsCommand(opts),
		newExportCommand(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

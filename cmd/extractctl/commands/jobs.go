package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newTokenCommand(opts *options) *cobra.Command {
	var clientID, secret string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Exchange client credentials for an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			token, err := opts.client().IssueToken(ctx, clientID, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", os.Getenv("EXTRACT_CLIENT_ID"), "API client id")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("EXTRACT_CLIENT_SECRET"), "API client secret")
	return cmd
}

func newSubmitCommand(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit [url...]",
		Short: "Submit websites for contact extraction",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			api := opts.client()
			urls := append([]string{}, args...)
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open url list: %w", err)
				}
				defer f.Close()

				uploaded, err := api.Upload(ctx, filepath.Base(file), f)
				if err != nil {
					return err
				}
				urls = append(urls, uploaded...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no urls given; pass them as arguments or with --file")
			}

			jobID, err := api.Submit(ctx, urls)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), jobID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "csv, json or text file with one url per entry")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Download the results of a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			artifact, err := opts.client().Export(ctx, args[0], format)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = artifact.Filename
			}
			if path == "" {
				return fmt.Errorf("server did not name the export; pass --output")
			}
			if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(artifact.Content))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv, excel or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to the server supplied filename)")
	return cmd
}

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/octobees/contact-extractor/api/internal/dto"
)

func newResultsCommand(opts *options) *cobra.Command {
	var filter dto.ResultsFilter

	cmd := &cobra.Command{
		Use:   "results <job-id>",
		Short: "Browse the extracted contacts of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			page, err := opts.client().Results(ctx, args[0], filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "URL\tSTATUS\tEMAILS\tSOCIALS\tSCREENSHOT")
			for _, row := range page.Rows {
				socials := len(row.Facebook) + len(row.Instagram) + len(row.TikTok)
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", row.URL, row.Status, len(row.Emails), socials, row.HasScreenshot)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "page %d of %d (%d matching sites)\n", page.CurrentPage, page.TotalPages, page.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Q, "query", "q", "", "filter by url, email or social link")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filter.PerPage, "per-page", 10, "rows per page")
	return cmd
}

package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/poller"
)

func newWatchCommand(opts *options) *cobra.Command {
	var (
		interval    time.Duration
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.ErrorLevel)

			finished := make(chan error, 1)
			watcher := poller.New(opts.client(), poller.Config{
				Interval:    interval,
				MaxAttempts: maxAttempts,
				Logger:      logger,
			})
			handle := watcher.Watch(ctx, args[0], poller.Callbacks{
				OnProgress: func(p poller.Progress) {
					fmt.Fprintf(out, "%-10s %d/%d sites finished (%d%%)\n",
						p.Status, p.Summary.Done+p.Summary.Failed, p.Summary.Total, p.Summary.Percent)
				},
				OnComplete: func(results map[string]entity.ResultRecord) {
					printCompletion(out, results)
					finished <- nil
				},
				OnError: func(err error) {
					finished <- err
				},
			})
			defer handle.Stop()

			select {
			case err := <-finished:
				return err
			case <-handle.Done():
				select {
				case err := <-finished:
					return err
				default:
					return ctx.Err()
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", poller.DefaultInterval, "time between status checks")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", poller.DefaultMaxAttempts, "give up after this many status checks")
	return cmd
}

func printCompletion(out io.Writer, results map[string]entity.ResultRecord) {
	withEmails := 0
	for _, rec := range results {
		if len(rec.Emails) > 0 {
			withEmails++
		}
	}
	fmt.Fprintf(out, "completed: %d sites, %d with emails\n", len(results), withEmails)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/config"
	"github.com/Dicklesworthstone/sfh/internal/output"
	"github.com/Dicklesworthstone/sfh/internal/overview"
	"github.com/Dicklesworthstone/sfh/internal/server"
	"github.com/Dicklesworthstone/sfh/internal/util"
)

func newStatusCmd() *cobra.Command {
	var watch string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print every account's state and each server's crawl progress",
		Long: `Print every configured account's state and each server's crawl progress.

Output is a table on a terminal and JSON when piped or with --json.
With --watch, the report is printed again on every interval until interrupted.

Examples:
  sfh status
  sfh status --json | jq '.counts'
  sfh status --watch 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var every time.Duration
			if watch != "" {
				every, err = util.ParseInterval(watch, time.Second, "watch", cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			reg := buildRegistry(cfg.Accounts)
			restoreCrawls(reg, cfg.Crawl.StateDir)

			f := reportFormatter(cmd)
			if every <= 0 {
				return printStatus(f, reg, time.Now())
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchStatus(ctx, f, cfg, reg, every)
		},
	}

	cmd.Flags().StringVar(&watch, "watch", "", "Repeat the report on this interval, e.g. 5s")
	return cmd
}

func printStatus(f *output.Formatter, reg *server.Registry, now time.Time) error {
	report := output.NewStatusReport(overview.Summarize(reg.Servers(), now), now)
	return f.Output(report)
}

// watchStatus reprints the report until ctx is done. Crawl snapshots are
// reloaded each round so progress written by a running dashboard shows up.
func watchStatus(ctx context.Context, f *output.Formatter, cfg *config.Config, reg *server.Registry, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if !f.IsJSON() && output.IsTerminal() {
			// Clear the screen between text reports
			fmt.Fprint(f.Writer(), "\033[H\033[2J")
		}
		if err := printStatus(f, reg, time.Now()); err != nil {
			return err
		}
		if !f.IsJSON() {
			writeWatchFooter(f.Writer(), every)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			restoreCrawls(reg, cfg.Crawl.StateDir)
		}
	}
}

func writeWatchFooter(w io.Writer, every time.Duration) {
	fmt.Fprintf(w, "\nRefreshing every %s. Ctrl+C to stop.\n", every)
}

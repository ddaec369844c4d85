package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/events"
	"github.com/Dicklesworthstone/sfh/internal/output"
	"github.com/Dicklesworthstone/sfh/internal/server"
	"github.com/Dicklesworthstone/sfh/internal/util"
)

func newEventsCmd() *cobra.Command {
	var (
		since     string
		serverArg string
		accountID string
		types     []string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent account and crawl events from the event log",
		Long: `Show recent entries from the JSONL event log written by the dashboard.

Examples:
  sfh events
  sfh events --since 1d --type account_poisoned
  sfh events --account alpha --limit 20
  sfh events --server s1.sfgame.net --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			filter := events.Filter{Account: accountID, Limit: limit}
			if since != "" {
				d, err := util.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since %q: %w", since, err)
				}
				filter.Since = time.Now().Add(-d)
			}
			if serverArg != "" {
				filter.Server = server.NewIdent(serverArg).Key
			}
			for _, t := range types {
				filter.Types = append(filter.Types, events.EventType(strings.TrimSpace(t)))
			}

			path := events.ExpandPath(cfg.Events.Path)
			list, err := events.Read(path, filter)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			f := reportFormatter(cmd)
			return f.Output(eventList(list))
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only events newer than this, e.g. 2h or 1d")
	cmd.Flags().StringVar(&serverArg, "server", "", "Only events for this server")
	cmd.Flags().StringVar(&accountID, "account", "", "Only events for this account name or ident")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Only these event types (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Show at most this many of the newest events (0 for all)")
	return cmd
}

type eventList []events.Event

func (l eventList) JSON() interface{} {
	if l == nil {
		return []events.Event{}
	}
	return []events.Event(l)
}

func (l eventList) Text(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	table := output.NewTable(w, "TIME", "TYPE", "SERVER", "ACCOUNT", "DETAIL")
	for _, e := range l {
		who := e.Name()
		if who == "" {
			who = e.Account
		}
		table.AddRow(
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			string(e.Type),
			e.Server,
			who,
			e.Summary(),
		)
	}
	return table.Render()
}

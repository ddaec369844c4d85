package output

import (
	"fmt"
	"io"
	"time"

	"github.com/Dicklesworthstone/sfh/internal/overview"
)

// StatusReport is the result of the status command.
type StatusReport struct {
	GeneratedAt time.Time
	Servers     []overview.ServerSummary
}

// NewStatusReport wraps summaries built at now.
func NewStatusReport(summaries []overview.ServerSummary, now time.Time) StatusReport {
	return StatusReport{GeneratedAt: now.UTC(), Servers: summaries}
}

// JSON implements Result.
func (r StatusReport) JSON() interface{} {
	counts := overview.CountStates(r.Servers)
	servers := r.Servers
	if servers == nil {
		servers = []overview.ServerSummary{}
	}
	return StatusResponse{
		TimestampedResponse: TimestampedResponse{GeneratedAt: r.GeneratedAt},
		Servers:             servers,
		Counts:              counts,
		Total:               counts.Total(),
	}
}

// Text implements Result: one table per server.
func (r StatusReport) Text(w io.Writer) error {
	if len(r.Servers) == 0 {
		_, err := fmt.Fprintln(w, "No accounts.")
		return err
	}

	for i, s := range r.Servers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s  crawl: %s  (%s)\n",
			s.Code, s.Ident.URL, s.Progress, CountStr(len(s.Rows), "account", "accounts"))

		t := NewTable(w, "STATUS", "NAME", "NEXT FIGHT", "AUTO")
		for _, row := range s.Rows {
			t.AddRow(row.Facts.Label, row.DisplayName, row.Facts.Countdown.String(), row.Facts.AutoBattle.String())
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	return nil
}

package overview

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
	"github.com/Dicklesworthstone/sfh/internal/server"
)

// Crawl progress labels.
const (
	ProgressWaiting   = "Waiting"
	ProgressRestoring = "Restoring"
	ProgressError     = "Error"
	ProgressFinished  = "Finished"
)

// RemainingCounter reports how much crawl work is left.
type RemainingCounter interface {
	CountRemaining() int
}

// RecordCounter reports how many records were collected.
type RecordCounter interface {
	Len() int
}

// CrawlProgressLabel formats the progress of an active crawl. The two counts
// are read separately and may be a moment apart; the label shows whatever
// they were.
func CrawlProgressLabel(q RemainingCounter, players RecordCounter) string {
	remaining := q.CountRemaining()
	collected := players.Len()
	total := remaining + collected
	if collected == total {
		return ProgressFinished
	}
	return fmt.Sprintf("%d/%d", collected, total)
}

// ProgressLabel returns the server-level label for a crawl status.
func ProgressLabel(s crawl.Status) string {
	switch st := s.(type) {
	case crawl.Restoring, *crawl.Restoring:
		return ProgressRestoring
	case crawl.Failed, *crawl.Failed:
		return ProgressError
	case crawl.Crawling:
		return crawlingLabel(st)
	case *crawl.Crawling:
		if st == nil {
			return ProgressWaiting
		}
		return crawlingLabel(*st)
	default:
		return ProgressWaiting
	}
}

func crawlingLabel(c crawl.Crawling) string {
	var q RemainingCounter = zeroCounter{}
	var ps RecordCounter = zeroCounter{}
	if c.Queue != nil {
		q = c.Queue
	}
	if c.Players != nil {
		ps = c.Players
	}
	return CrawlProgressLabel(q, ps)
}

type zeroCounter struct{}

func (zeroCounter) CountRemaining() int { return 0 }
func (zeroCounter) Len() int            { return 0 }

// AccountRow is one account line of the overview.
type AccountRow struct {
	Ident       account.Ident `json:"ident"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	ServerKey   string        `json:"server"`
	ServerCode  string        `json:"server_code"`
	Facts       DisplayFacts  `json:"facts"`
	// Progress repeats the owning server's crawl label
	Progress string `json:"server_progress"`
	Poisoned bool   `json:"poisoned,omitempty"`
}

// ServerSummary is one server with its progress label and ordered rows.
type ServerSummary struct {
	Ident     server.Ident `json:"ident"`
	Code      string       `json:"code"`
	CrawlKind crawl.Kind   `json:"crawl_state"`
	Progress  string       `json:"progress"`
	Rows      []AccountRow `json:"accounts"`
}

// SummarizeServer builds the summary of s at instant now. Rows are ordered by
// account name, ties by ident.
func SummarizeServer(s *server.Server, now time.Time) ServerSummary {
	st := s.Crawl.Status()
	progress := ProgressLabel(st)
	code := s.Ident.Code()
	title := cases.Title(language.Und)

	accounts := s.Accounts()
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return accounts[i].Ident.String() < accounts[j].Ident.String()
	})

	rows := make([]AccountRow, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, AccountRow{
			Ident:       acc.Ident,
			Name:        acc.Name,
			DisplayName: title.String(acc.Name),
			ServerKey:   s.Ident.Key,
			ServerCode:  code,
			Facts:       AggregateAccount(acc, now),
			Progress:    progress,
			Poisoned:    acc.Status.Poisoned(),
		})
	}

	return ServerSummary{
		Ident:     s.Ident,
		Code:      code,
		CrawlKind: st.Kind(),
		Progress:  progress,
		Rows:      rows,
	}
}

// Summarize builds summaries for servers ordered by identity key.
func Summarize(servers []*server.Server, now time.Time) []ServerSummary {
	sorted := make([]*server.Server, len(servers))
	copy(sorted, servers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ident.Key < sorted[j].Ident.Key
	})

	out := make([]ServerSummary, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, SummarizeServer(s, now))
	}
	return out
}

// Rows flattens summaries into display order.
func Rows(summaries []ServerSummary) []AccountRow {
	var n int
	for _, s := range summaries {
		n += len(s.Rows)
	}
	out := make([]AccountRow, 0, n)
	for _, s := range summaries {
		out = append(out, s.Rows...)
	}
	return out
}

// Counts tallies rows per account kind.
type Counts map[account.Kind]int

// CountStates tallies the rows of all summaries.
func CountStates(summaries []ServerSummary) Counts {
	c := make(Counts)
	for _, s := range summaries {
		for _, r := range s.Rows {
			c[r.Facts.Kind]++
		}
	}
	return c
}

// Unhealthy returns the number of rows whose account has failed.
func (c Counts) Unhealthy() int {
	var n int
	for k, v := range c {
		if !k.IsHealthy() {
			n += v
		}
	}
	return n
}

// Total returns the number of rows counted.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

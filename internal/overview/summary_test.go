package overview

import (
	"errors"
	"testing"
	"time"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
	"github.com/Dicklesworthstone/sfh/internal/server"
)

type counts struct {
	remaining int
	collected int
}

func (c counts) CountRemaining() int { return c.remaining }
func (c counts) Len() int            { return c.collected }

func TestCrawlProgressLabel(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		collected int
		expected  string
	}{
		{"done", 0, 10, "Finished"},
		{"partial", 3, 7, "7/10"},
		{"nothing collected", 5, 0, "0/5"},
		{"empty crawl", 0, 0, "Finished"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := counts{tt.remaining, tt.collected}
			if got := CrawlProgressLabel(c, c); got != tt.expected {
				t.Errorf("CrawlProgressLabel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressLabel(t *testing.T) {
	q := crawl.NewQueue(1, 2, 3)
	ps := crawl.NewPlayerStore()
	for i := crawl.PlayerID(10); i < 17; i++ {
		ps.Put(crawl.PlayerRecord{ID: i})
	}

	done := crawl.NewPlayerStore()
	done.Put(crawl.PlayerRecord{ID: 1})

	tests := []struct {
		name     string
		status   crawl.Status
		expected string
	}{
		{"waiting", crawl.Waiting{}, "Waiting"},
		{"restoring", crawl.Restoring{}, "Restoring"},
		{"failed", crawl.Failed{Err: errors.New("connection reset")}, "Error"},
		{"failed nil", crawl.Failed{}, "Error"},
		{"crawling", crawl.Crawling{Queue: q, Players: ps}, "7/10"},
		{"crawling pointer", &crawl.Crawling{Queue: q, Players: ps}, "7/10"},
		{"finished", crawl.Crawling{Queue: crawl.NewQueue(), Players: done}, "Finished"},
		{"crawling without parts", crawl.Crawling{}, "Finished"},
		{"nil", nil, "Waiting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressLabel(tt.status); got != tt.expected {
				t.Errorf("ProgressLabel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressLabel_ConcurrentCrawl(t *testing.T) {
	q := crawl.NewQueue()
	for i := crawl.PlayerID(1); i <= 200; i++ {
		q.Push(i)
	}
	ps := crawl.NewPlayerStore()
	st := crawl.Crawling{Queue: q, Players: ps}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			id, ok := q.Next()
			if !ok {
				return
			}
			ps.Put(crawl.PlayerRecord{ID: id})
			q.Done(id)
		}
	}()

	// Labels read mid-crawl may be a step apart; they must never panic.
	for i := 0; i < 100; i++ {
		_ = ProgressLabel(st)
	}
	<-done

	if got := ProgressLabel(st); got != "Finished" {
		t.Errorf("final label = %q, want Finished", got)
	}
}

func TestSummarizeServer_OrdersByName(t *testing.T) {
	s := server.New(server.NewIdent("https://s12.sfgame.net/"))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		s.AddAccount(account.New(name))
	}

	sum := SummarizeServer(s, time.Now())
	want := []string{"alpha", "mid", "zeta"}
	if len(sum.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d, want %d", len(sum.Rows), len(want))
	}
	for i, row := range sum.Rows {
		if row.Name != want[i] {
			t.Errorf("Rows[%d].Name = %q, want %q", i, row.Name, want[i])
		}
	}

	if sum.Code != "s12" || sum.Rows[0].ServerCode != "s12" {
		t.Errorf("Code = %q, row code = %q; want s12", sum.Code, sum.Rows[0].ServerCode)
	}
	if sum.Progress != "Waiting" || sum.Rows[0].Progress != "Waiting" {
		t.Errorf("Progress = %q, want Waiting", sum.Progress)
	}
	if sum.Rows[0].DisplayName != "Alpha" {
		t.Errorf("DisplayName = %q, want Alpha", sum.Rows[0].DisplayName)
	}
}

func TestSummarizeServer_DuplicateNamesDeterministic(t *testing.T) {
	s := server.New(server.NewIdent("s1.sfgame.net"))
	a := account.New("twin")
	b := account.New("twin")
	s.AddAccount(a)
	s.AddAccount(b)

	first := SummarizeServer(s, time.Now())
	for i := 0; i < 10; i++ {
		again := SummarizeServer(s, time.Now())
		if again.Rows[0].Ident != first.Rows[0].Ident {
			t.Fatal("order of equal names changed between passes")
		}
	}
}

func TestSummarizeServer_PoisonedAccountDoesNotAbort(t *testing.T) {
	s := server.New(server.NewIdent("s1.sfgame.net"))
	good := account.New("good")
	good.Status.Set(account.Idle{})
	bad := account.New("bad")
	bad.Status.Poison(errors.New("worker panicked"))
	s.AddAccount(good)
	s.AddAccount(bad)

	sum := SummarizeServer(s, time.Now())
	if len(sum.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(sum.Rows))
	}
	if sum.Rows[0].Facts.Label != "Error!" || !sum.Rows[0].Poisoned {
		t.Errorf("bad row = %+v", sum.Rows[0])
	}
	if sum.Rows[1].Facts.Label != "Active" {
		t.Errorf("good row label = %q, want Active", sum.Rows[1].Facts.Label)
	}
}

func TestSummarize_OrdersServers(t *testing.T) {
	r := server.NewRegistry()
	r.AddAccount("w1.sfgame.net", "x")
	r.AddAccount("f2.sfgame.net", "y")
	r.AddAccount("s3.sfgame.net", "z")

	// Pass servers in an order different from key order.
	servers := r.Servers()
	servers[0], servers[2] = servers[2], servers[0]

	sums := Summarize(servers, time.Now())
	want := []string{"f2", "s3", "w1"}
	for i, s := range sums {
		if s.Code != want[i] {
			t.Errorf("Summarize()[%d].Code = %q, want %q", i, s.Code, want[i])
		}
	}

	rows := Rows(sums)
	if len(rows) != 3 || rows[0].Name != "y" || rows[2].Name != "x" {
		t.Errorf("Rows() = %+v", rows)
	}

	c := CountStates(sums)
	if c[account.KindLoggingIn] != 3 || c.Total() != 3 {
		t.Errorf("CountStates() = %v", c)
	}
}

func TestCountsUnhealthy(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
		want   int
	}{
		{"empty", Counts{}, 0},
		{"all healthy", Counts{account.KindIdle: 2, account.KindBusy: 1, account.KindLoggingInAgain: 1}, 0},
		{"failed", Counts{account.KindIdle: 2, account.KindFatalError: 3}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.counts.Unhealthy(); got != tc.want {
				t.Errorf("Unhealthy() = %d, want %d", got, tc.want)
			}
		})
	}
}

package cli

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/config"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
	"github.com/Dicklesworthstone/sfh/internal/events"
	"github.com/Dicklesworthstone/sfh/internal/server"
	"github.com/Dicklesworthstone/sfh/internal/worker"
)

// demoAccounts fill the dashboard for --simulate when the config lists none.
var demoAccounts = []config.AccountEntry{
	{Name: "aurora", Server: "https://s1.sfgame.net/"},
	{Name: "brimstone", Server: "https://s1.sfgame.net/"},
	{Name: "cinder", Server: "https://s1.sfgame.net/"},
	{Name: "dusk", Server: "https://s7.sfgame.eu/"},
	{Name: "ember", Server: "https://s7.sfgame.eu/"},
	{Name: "frost", Server: "https://f2.sfgame.us/"},
}

// simCrawlSize is how many player ids a simulated crawl walks through.
const simCrawlSize = 400

// buildRegistry registers every configured account.
func buildRegistry(entries []config.AccountEntry) *server.Registry {
	reg := server.NewRegistry()
	for _, e := range entries {
		reg.AddAccount(e.Server, e.Name)
	}
	return reg
}

// newEventsLogger opens the JSONL event log, or returns nil when it is
// disabled or cannot be opened.
func newEventsLogger(cfg *config.Config) *events.Logger {
	if !cfg.Events.Enabled {
		return nil
	}
	logger, err := events.NewLogger(events.LoggerOptions{
		Path:          cfg.Events.Path,
		RetentionDays: cfg.Events.RetentionDays,
		Enabled:       true,
	})
	if err != nil {
		log.Printf("events log disabled: %v", err)
		return nil
	}
	return logger
}

// simulation drives a registry with simulated workers.
type simulation struct {
	cfg    *config.Config
	reg    *server.Registry
	logger *events.Logger
	opts   worker.SimOptions
	// fetchDelay is the latency of one simulated player fetch
	fetchDelay time.Duration
	// sup defaults to a supervisor bounded by max_threads
	sup *worker.Supervisor
}

// restart gives a revived account a fresh simulated job.
func (s *simulation) restart(ctx context.Context) func(*server.Server, *account.Account) {
	return func(srv *server.Server, acc *account.Account) {
		s.sup.Start(ctx, worker.Task{Server: srv, Account: acc, Job: worker.SimulatedAccount(s.opts)})
	}
}

// run starts account jobs and one crawler per server and blocks until ctx
// is done or every job has ended.
func (s *simulation) run(ctx context.Context) error {
	var g errgroup.Group

	var tasks []worker.Task
	for _, srv := range s.reg.Servers() {
		for _, acc := range srv.Accounts() {
			tasks = append(tasks, worker.Task{Server: srv, Account: acc, Job: worker.SimulatedAccount(s.opts)})
		}

		c := &worker.Crawler{
			Server:   srv,
			Fetcher:  worker.SimulatedFetcher(s.fetchDelay, s.opts.Seed),
			Threads:  crawlThreads(s.cfg.MaxThreads),
			StateDir: s.cfg.Crawl.StateDir,
			Seed:     worker.SeedRange(1, simCrawlSize),
			Log:      s.logger,
		}
		g.Go(func() error {
			err := c.Run(ctx)
			if err != nil && ctx.Err() == nil {
				log.Printf("crawl %s stopped: %v", c.Server.Ident.Key, err)
			}
			return nil
		})
	}

	sup := s.sup
	if sup == nil {
		sup = worker.NewSupervisor(s.cfg.MaxThreads, s.logger)
	}
	g.Go(func() error {
		return sup.Run(ctx, tasks)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// crawlThreads splits the thread budget so crawls leave room for accounts.
func crawlThreads(maxThreads int) int {
	n := maxThreads / 4
	if n < 1 {
		n = 1
	}
	return n
}

// restoreCrawls loads each server's saved crawl progress so an offline
// report can show it. Servers without a snapshot stay Waiting; lock
// conflicts leave the server Failed.
func restoreCrawls(reg *server.Registry, stateDir string) {
	if stateDir == "" {
		return
	}
	for _, srv := range reg.Servers() {
		path := crawl.SnapshotPath(stateDir, srv.Ident.Key)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := crawl.Restore(srv.Crawl, path); err != nil {
			log.Printf("crawl snapshot for %s: %v", srv.Ident.Key, err)
		}
	}
}

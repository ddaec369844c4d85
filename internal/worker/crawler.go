package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sfh/internal/crawl"
	"github.com/Dicklesworthstone/sfh/internal/events"
	"github.com/Dicklesworthstone/sfh/internal/server"
)

// DefaultSaveInterval is how often a running crawl writes its snapshot.
const DefaultSaveInterval = 30 * time.Second

// Fetcher loads one player record from the game server.
type Fetcher interface {
	Fetch(ctx context.Context, id crawl.PlayerID) (crawl.PlayerRecord, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, id crawl.PlayerID) (crawl.PlayerRecord, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, id crawl.PlayerID) (crawl.PlayerRecord, error) {
	return f(ctx, id)
}

// Crawler collects player records for one server.
type Crawler struct {
	Server  *server.Server
	Fetcher Fetcher
	// Threads bounds concurrent fetches; values below 1 mean one.
	Threads int
	// StateDir holds snapshots; empty disables persistence.
	StateDir     string
	SaveInterval time.Duration
	// Seed is queued after restoring. IDs already collected are skipped.
	Seed []crawl.PlayerID

	Log *events.Logger
}

// Run restores the previous snapshot, crawls until the queue drains, ctx is
// cancelled or a fetch fails, and saves progress on the way out. The server's
// crawl status follows along: Restoring, then Crawling, or Failed.
func (c *Crawler) Run(ctx context.Context) error {
	h := NewHandle(c.Server, nil, c.Log)

	var (
		cur  crawl.Crawling
		path string
		err  error
	)
	if c.StateDir != "" {
		path = crawl.SnapshotPath(c.StateDir, c.Server.Ident.Key)
		cur, err = crawl.Restore(c.Server.Crawl, path)
		h.emitCrawl(c.Server.Crawl.Status())
		if err != nil {
			return fmt.Errorf("restoring crawl for %s: %w", c.Server.Ident.Key, err)
		}
	} else {
		cur = crawl.Crawling{Queue: crawl.NewQueue(), Players: crawl.NewPlayerStore()}
		h.SetCrawl(cur)
	}

	for _, id := range c.Seed {
		if _, ok := cur.Players.Get(id); !ok {
			cur.Queue.Push(id)
		}
	}

	stopSaver := c.startSaver(ctx, path, cur)
	err = c.drain(ctx, cur)
	stopSaver()

	if path != "" {
		c.save(path, cur)
	}

	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.emitCrawl(c.Server.Crawl.Status())
		return err
	default:
		h.SetCrawl(crawl.Failed{Err: err})
		return err
	}
}

func (c *Crawler) drain(ctx context.Context, cur crawl.Crawling) error {
	threads := c.Threads
	if threads < 1 {
		threads = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("crawl worker panic: %v", r)
				}
			}()
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				id, ok := cur.Queue.Next()
				if !ok {
					return nil
				}
				rec, err := c.Fetcher.Fetch(gctx, id)
				if err != nil {
					cur.Queue.Requeue(id)
					return fmt.Errorf("fetching player %d: %w", id, err)
				}
				rec.ID = id
				if rec.FetchedAt.IsZero() {
					rec.FetchedAt = time.Now().UTC()
				}
				cur.Players.Put(rec)
				cur.Queue.Done(id)
			}
		})
	}
	return g.Wait()
}

func (c *Crawler) startSaver(ctx context.Context, path string, cur crawl.Crawling) func() {
	if path == "" {
		return func() {}
	}
	interval := c.SaveInterval
	if interval <= 0 {
		interval = DefaultSaveInterval
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				c.save(path, cur)
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

func (c *Crawler) save(path string, cur crawl.Crawling) {
	snap := crawl.Capture(c.Server.Ident.Key, cur.Queue, cur.Players)
	if err := snap.Save(path); err != nil {
		log.Printf("crawl: saving snapshot for %s: %v", c.Server.Ident.Key, err)
		return
	}
	err := c.Log.LogEvent(events.EventCrawlSnapshot, c.Server.Ident.Key, "", events.CrawlData{
		State:     string(crawl.KindCrawling),
		Remaining: len(snap.Remaining),
		Collected: len(snap.Players),
		Path:      path,
	})
	if err != nil {
		log.Printf("crawl: logging snapshot: %v", err)
	}
}

// Package worker runs the per-account jobs and per-server crawls whose state
// the dashboard observes. Workers are the only writers of account and crawl
// status.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/sfh/internal/account"
	"github.com/Dicklesworthstone/sfh/internal/crawl"
	"github.com/Dicklesworthstone/sfh/internal/events"
	"github.com/Dicklesworthstone/sfh/internal/server"
)

// DefaultMaxThreads bounds concurrent jobs when no limit is configured.
const DefaultMaxThreads = 10

// Job drives one account until ctx is done or the job gives up.
type Job interface {
	Run(ctx context.Context, h *Handle) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, h *Handle) error

// Run calls f.
func (f JobFunc) Run(ctx context.Context, h *Handle) error {
	return f(ctx, h)
}

// Handle is a job's write access to its account and server.
type Handle struct {
	Server  *server.Server
	Account *account.Account

	log *events.Logger
}

// NewHandle binds acc on srv. logger may be nil.
func NewHandle(srv *server.Server, acc *account.Account, logger *events.Logger) *Handle {
	return &Handle{Server: srv, Account: acc, log: logger}
}

// Set publishes s as the account status and records the transition.
func (h *Handle) Set(s account.Status) {
	prev, _ := h.Account.Status.Snapshot()
	h.Account.Status.Set(s)

	to := account.Normalize(s)
	data := events.StatusData{Name: h.Account.Name, To: to.Kind().String()}
	if prev != nil {
		data.From = prev.Kind().String()
	}
	if b, ok := to.(account.Busy); ok {
		data.Reason = b.Reason
	}
	h.emit(events.EventAccountStatus, data)
}

// SetScrapbook attaches scrapbook info to the account.
func (h *Handle) SetScrapbook(info *account.ScrapbookInfo) {
	h.Account.SetScrapbook(info)
}

// SetCrawl publishes the server's crawl status.
func (h *Handle) SetCrawl(s crawl.Status) {
	h.Server.Crawl.Set(s)
	h.emitCrawl(h.Server.Crawl.Status())
}

func (h *Handle) emitCrawl(s crawl.Status) {
	data := events.CrawlData{State: string(s.Kind())}
	if c, ok := s.(crawl.Crawling); ok {
		data.Remaining = c.Queue.CountRemaining()
		data.Collected = c.Players.Len()
	}
	if err := h.log.LogEvent(events.EventCrawlState, h.Server.Ident.Key, "", data); err != nil {
		log.Printf("worker: logging crawl state: %v", err)
	}
}

func (h *Handle) emit(t events.EventType, data interface{}) {
	if err := h.log.LogEvent(t, h.Server.Ident.Key, h.Account.Ident.String(), data); err != nil {
		log.Printf("worker: logging %s: %v", t, err)
	}
}

// PanicError is the poison cause recorded when a job panics.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v", e.Value)
}

// Task pairs an account with the job driving it.
type Task struct {
	Server  *server.Server
	Account *account.Account
	Job     Job
}

// Supervisor runs tasks with bounded concurrency. A job that returns an error
// leaves its account in FatalError; a job that panics poisons the account's
// status cell. Neither stops the other tasks.
type Supervisor struct {
	// slots holds one token per running job
	slots chan struct{}
	log   *events.Logger
}

// NewSupervisor creates a supervisor running at most maxThreads jobs at once.
// Values below 1 use DefaultMaxThreads.
func NewSupervisor(maxThreads int, logger *events.Logger) *Supervisor {
	if maxThreads < 1 {
		maxThreads = DefaultMaxThreads
	}
	return &Supervisor{slots: make(chan struct{}, maxThreads), log: logger}
}

// Run executes tasks until all finish or ctx is cancelled. It returns ctx's
// error when cancelled and nil otherwise; per-account failures are reported
// through the accounts' status.
func (s *Supervisor) Run(ctx context.Context, tasks []Task) error {
	var g errgroup.Group
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			s.runSlot(ctx, t)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

// Start runs one more task in the background, sharing Run's thread limit.
// It is how a revived account gets a fresh job; the job ends with ctx.
func (s *Supervisor) Start(ctx context.Context, t Task) {
	go s.runSlot(ctx, t)
}

func (s *Supervisor) runSlot(ctx context.Context, t Task) {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.slots }()

	if ctx.Err() != nil {
		return
	}
	s.runOne(ctx, t)
}

func (s *Supervisor) runOne(ctx context.Context, t Task) {
	h := NewHandle(t.Server, t.Account, s.log)

	defer func() {
		if r := recover(); r != nil {
			cause := &PanicError{Value: r, Stack: debug.Stack()}
			t.Account.Status.Poison(cause)
			h.emit(events.EventAccountPoison, events.PoisonData{
				Name:  t.Account.Name,
				Cause: cause.Error(),
				Stack: string(cause.Stack),
			})
			log.Printf("worker: account %s on %s poisoned: %v", t.Account.Name, t.Server.Ident.Key, r)
		}
	}()

	err := t.Job.Run(ctx, h)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	default:
		h.Set(account.FatalError{Err: err})
		h.emit(events.EventError, events.ErrorData{ErrorType: "job", Message: err.Error()})
	}
}

// Revive clears a poisoned or failed account and puts it back to LoggingIn.
func Revive(h *Handle) {
	h.Account.Status.Reset(account.LoggingIn{})
	h.emit(events.EventAccountReset, events.StatusData{
		Name: h.Account.Name,
		To:   account.KindLoggingIn.String(),
	})
}

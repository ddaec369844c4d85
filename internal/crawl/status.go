package crawl

import (
	"sync/atomic"
	"time"
)

// Kind names the active variant of a Status.
type Kind string

const (
	KindWaiting   Kind = "waiting"
	KindRestoring Kind = "restoring"
	KindFailed    Kind = "failed"
	KindCrawling  Kind = "crawling"
)

// Status is the crawl state of one server: Waiting, Restoring, Failed or Crawling.
type Status interface {
	Kind() Kind
	isCrawlStatus()
}

// Waiting means the crawl has not started.
type Waiting struct{}

// Restoring means partial progress is being loaded from disk.
type Restoring struct{}

// Failed means the crawl stopped abnormally. Collected data may exist but
// progress is frozen.
type Failed struct {
	Err error
}

// Crawling means the crawl is active.
type Crawling struct {
	Queue   *Queue
	Players *PlayerStore
}

func (Waiting) Kind() Kind   { return KindWaiting }
func (Restoring) Kind() Kind { return KindRestoring }
func (Failed) Kind() Kind    { return KindFailed }
func (Crawling) Kind() Kind  { return KindCrawling }

func (Waiting) isCrawlStatus()   {}
func (Restoring) isCrawlStatus() {}
func (Failed) isCrawlStatus()    {}
func (Crawling) isCrawlStatus()  {}

// Progress holds the current crawl Status of a server. Reads never block.
type Progress struct {
	cur atomic.Pointer[progressValue]
}

type progressValue struct {
	status    Status
	changedAt time.Time
}

// NewProgress creates a Progress in the Waiting state.
func NewProgress() *Progress {
	p := &Progress{}
	p.Set(Waiting{})
	return p
}

// Status returns the current status; a zero Progress reports Waiting.
func (p *Progress) Status() Status {
	v := p.cur.Load()
	if v == nil {
		return Waiting{}
	}
	return v.status
}

// Set publishes s. A nil s, or a Crawling without queue or store, is stored
// as Waiting.
func (p *Progress) Set(s Status) {
	switch st := s.(type) {
	case nil:
		s = Waiting{}
	case Crawling:
		if st.Queue == nil || st.Players == nil {
			s = Waiting{}
		}
	case *Crawling:
		if st == nil || st.Queue == nil || st.Players == nil {
			s = Waiting{}
		} else {
			s = *st
		}
	}
	p.cur.Store(&progressValue{status: s, changedAt: time.Now()})
}

// ChangedAt returns when the current status was published.
func (p *Progress) ChangedAt() time.Time {
	v := p.cur.Load()
	if v == nil {
		return time.Time{}
	}
	return v.changedAt
}

// Package crawl tracks the bulk collection of player records for a server:
// the queue of remaining work, the collected records, and the server-level
// crawl state the dashboard summarizes.
package crawl

import (
	"sync"
	"time"
)

// PlayerID identifies a player on a server.
type PlayerID uint32

// PlayerRecord is one collected player entry.
type PlayerRecord struct {
	ID        PlayerID  `yaml:"id"`
	Name      string    `yaml:"name"`
	Level     int       `yaml:"level"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// Queue holds the player IDs still to be crawled. An ID handed out by Next
// stays counted as remaining until Done or Requeue is called for it. The zero
// value is an empty queue.
type Queue struct {
	mu       sync.Mutex
	pending  []PlayerID
	inFlight map[PlayerID]struct{}
	queued   map[PlayerID]struct{}
}

// NewQueue creates a queue seeded with ids. Duplicates are dropped.
func NewQueue(ids ...PlayerID) *Queue {
	q := &Queue{}
	q.Push(ids...)
	return q
}

// init allocates the sets. The caller holds mu.
func (q *Queue) init() {
	if q.queued == nil {
		q.queued = make(map[PlayerID]struct{})
		q.inFlight = make(map[PlayerID]struct{})
	}
}

// Push appends ids that are not already queued or in flight.
func (q *Queue) Push(ids ...PlayerID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.init()
	for _, id := range ids {
		if _, ok := q.queued[id]; ok {
			continue
		}
		if _, ok := q.inFlight[id]; ok {
			continue
		}
		q.queued[id] = struct{}{}
		q.pending = append(q.pending, id)
	}
}

// Next hands out the oldest pending ID.
func (q *Queue) Next() (PlayerID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return 0, false
	}
	q.init()
	id := q.pending[0]
	q.pending = q.pending[1:]
	delete(q.queued, id)
	q.inFlight[id] = struct{}{}
	return id, true
}

// Done removes an in-flight ID for good.
func (q *Queue) Done(id PlayerID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, id)
}

// Requeue moves an in-flight ID back to the end of the queue.
func (q *Queue) Requeue(id PlayerID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inFlight[id]; !ok {
		return
	}
	delete(q.inFlight, id)
	q.queued[id] = struct{}{}
	q.pending = append(q.pending, id)
}

// CountRemaining returns pending plus in-flight IDs.
func (q *Queue) CountRemaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + len(q.inFlight)
}

// Remaining returns pending and in-flight IDs, in-flight first.
func (q *Queue) Remaining() []PlayerID {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PlayerID, 0, len(q.pending)+len(q.inFlight))
	for id := range q.inFlight {
		out = append(out, id)
	}
	return append(out, q.pending...)
}

// PlayerStore holds collected player records keyed by ID.
type PlayerStore struct {
	mu      sync.RWMutex
	players map[PlayerID]PlayerRecord
}

// NewPlayerStore creates an empty store.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{players: make(map[PlayerID]PlayerRecord)}
}

// Put records a player. Recording the same ID twice keeps one entry.
func (s *PlayerStore) Put(rec PlayerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[rec.ID] = rec
}

// Get returns the record for id.
func (s *PlayerStore) Get(id PlayerID) (PlayerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.players[id]
	return rec, ok
}

// Len returns the number of collected records.
func (s *PlayerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Records returns a copy of all records in unspecified order.
func (s *PlayerStore) Records() []PlayerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PlayerRecord, 0, len(s.players))
	for _, rec := range s.players {
		out = append(out, rec)
	}
	return out
}

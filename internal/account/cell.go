package account

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrPoisoned is returned by Snapshot after the owning worker terminated
// abnormally while the cell was in use.
var ErrPoisoned = errors.New("status cell poisoned")

// StatusCell holds the current Status of one account.
//
// Writers publish a fresh immutable value with Set or Update; readers Load the
// latest value without blocking. Values handed to Set must not be mutated
// afterwards, including the time a GameState's NextFreeFight points to.
type StatusCell struct {
	cur atomic.Pointer[cellValue]
}

type cellValue struct {
	status    Status
	poison    error
	updatedAt time.Time
}

// NewStatusCell creates a cell holding initial (LoggingIn when nil).
func NewStatusCell(initial Status) *StatusCell {
	c := &StatusCell{}
	c.cur.Store(&cellValue{status: Normalize(initial), updatedAt: time.Now()})
	return c
}

func (c *StatusCell) load() *cellValue {
	v := c.cur.Load()
	if v == nil {
		return &cellValue{status: LoggingIn{}}
	}
	return v
}

// Set publishes s. It has no effect on a poisoned cell; use Reset to recover.
func (c *StatusCell) Set(s Status) {
	c.Update(func(Status) Status { return s })
}

// Update applies fn to the current status and publishes the result. fn may be
// called more than once under contention and must not have side effects.
// Update has no effect on a poisoned cell.
func (c *StatusCell) Update(fn func(Status) Status) {
	for {
		old := c.cur.Load()
		if old != nil && old.poison != nil {
			return
		}
		prev := Status(LoggingIn{})
		if old != nil {
			prev = old.status
		}
		next := &cellValue{status: Normalize(fn(prev)), updatedAt: time.Now()}
		if c.cur.CompareAndSwap(old, next) {
			return
		}
	}
}

// Poison marks the cell as broken. Later Snapshot calls return ErrPoisoned
// until Reset is called.
func (c *StatusCell) Poison(cause error) {
	if cause == nil {
		cause = errors.New("worker terminated")
	}
	prev := c.load()
	c.cur.Store(&cellValue{status: prev.status, poison: cause, updatedAt: time.Now()})
}

// Reset clears poisoning and publishes s.
func (c *StatusCell) Reset(s Status) {
	c.cur.Store(&cellValue{status: Normalize(s), updatedAt: time.Now()})
}

// Snapshot returns the most recently published status.
func (c *StatusCell) Snapshot() (Status, error) {
	v := c.load()
	if v.poison != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoisoned, v.poison)
	}
	return v.status, nil
}

// Poisoned reports whether the cell is poisoned.
func (c *StatusCell) Poisoned() bool {
	return c.load().poison != nil
}

// UpdatedAt returns when the current value was published.
func (c *StatusCell) UpdatedAt() time.Time {
	return c.load().updatedAt
}

// Package account models a game account driven by a worker: its identity,
// the status cell the worker mutates, and optional scrapbook data.
package account

import "time"

// Kind names the active variant of a Status.
type Kind string

const (
	// KindLoggingIn indicates authentication is in flight
	KindLoggingIn Kind = "logging_in"
	// KindLoggingInAgain indicates re-authentication after a dropped session
	KindLoggingInAgain Kind = "logging_in_again"
	// KindIdle indicates the account is authenticated and not executing an action
	KindIdle Kind = "idle"
	// KindBusy indicates the account is executing an action
	KindBusy Kind = "busy"
	// KindFatalError indicates the worker gave up on the account
	KindFatalError Kind = "fatal_error"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// IsHealthy returns true for kinds the worker can make progress from
func (k Kind) IsHealthy() bool {
	return k != KindFatalError
}

// Status is the state of one account. Exactly one of LoggingIn,
// LoggingInAgain, Idle, Busy or FatalError holds at any instant.
type Status interface {
	Kind() Kind
	isStatus()
}

// LoggingIn means authentication is in flight.
type LoggingIn struct{}

// LoggingInAgain means the session dropped and the worker re-authenticates.
type LoggingInAgain struct{}

// Idle means the account is authenticated and waiting for its next action.
type Idle struct {
	Session Session
	Game    GameState
}

// Busy means the account is executing the action named by Reason.
type Busy struct {
	Game   GameState
	Reason string
}

// FatalError means the worker stopped; only external intervention changes it.
type FatalError struct {
	Err error
}

func (LoggingIn) Kind() Kind      { return KindLoggingIn }
func (LoggingInAgain) Kind() Kind { return KindLoggingInAgain }
func (Idle) Kind() Kind           { return KindIdle }
func (Busy) Kind() Kind           { return KindBusy }
func (FatalError) Kind() Kind     { return KindFatalError }

func (LoggingIn) isStatus()      {}
func (LoggingInAgain) isStatus() {}
func (Idle) isStatus()           {}
func (Busy) isStatus()           {}
func (FatalError) isStatus()     {}

// Error returns the wrapped error text, or a generic message when Err is nil.
func (f FatalError) Error() string {
	if f.Err == nil {
		return "fatal error"
	}
	return f.Err.Error()
}

// Session is the authenticated session handed out by the game server.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// GameState is the slice of character state the dashboard reads.
type GameState struct {
	Character Character
	Arena     Arena
}

// Character holds display data for the logged-in character.
type Character struct {
	Name  string
	Level int
}

// Arena tracks the arena cooldown.
type Arena struct {
	// NextFreeFight is nil when no fight was ever scheduled or it is not tracked
	NextFreeFight *time.Time
}

// Normalize dereferences pointer variants so callers can switch on values
// only. A nil status or nil pointer becomes LoggingIn.
func Normalize(s Status) Status {
	switch st := s.(type) {
	case nil:
		return LoggingIn{}
	case *LoggingIn:
		return LoggingIn{}
	case *LoggingInAgain:
		return LoggingInAgain{}
	case *Idle:
		if st == nil {
			return LoggingIn{}
		}
		return *st
	case *Busy:
		if st == nil {
			return LoggingIn{}
		}
		return *st
	case *FatalError:
		if st == nil {
			return FatalError{}
		}
		return *st
	}
	return s
}

// GameStateOf returns the game state carried by Idle and Busy.
func GameStateOf(s Status) (GameState, bool) {
	switch st := Normalize(s).(type) {
	case Idle:
		return st.Game, true
	case Busy:
		return st.Game, true
	}
	return GameState{}, false
}

// Package overview turns the live worker state of accounts and servers into
// the plain display facts the dashboard and the status command render.
//
// Everything here reads a snapshot and returns data; nothing blocks on a
// worker, writes to shared state, or returns an error. A pass can be repeated
// at any rate and each call stands on its own.
package overview

import (
	"fmt"
	"time"

	"github.com/Dicklesworthstone/sfh/internal/account"
)

// Display labels for account states.
const (
	LabelLoggingIn = "Logging in"
	LabelActive    = "Active"
	LabelError     = "Error!"
)

// IconKind is the state of a small status indicator.
type IconKind string

const (
	// IconUnknown means the underlying data is not available
	IconUnknown IconKind = "unknown"
	// IconCountdown carries a number of seconds until something is ready
	IconCountdown IconKind = "countdown"
	// IconReady is the affirmative state
	IconReady IconKind = "ready"
	// IconNegative is the explicit "no" state
	IconNegative IconKind = "negative"
)

// Icon is an indicator value. Seconds is only meaningful for IconCountdown.
type Icon struct {
	Kind    IconKind `json:"kind"`
	Seconds int64    `json:"seconds,omitempty"`
}

// Unknown returns an IconUnknown indicator.
func Unknown() Icon { return Icon{Kind: IconUnknown} }

// Ready returns an IconReady indicator.
func Ready() Icon { return Icon{Kind: IconReady} }

// Negative returns an IconNegative indicator.
func Negative() Icon { return Icon{Kind: IconNegative} }

// CountdownSeconds returns an IconCountdown indicator.
func CountdownSeconds(secs int64) Icon { return Icon{Kind: IconCountdown, Seconds: secs} }

// String renders the icon as plain text.
func (i Icon) String() string {
	switch i.Kind {
	case IconCountdown:
		return fmt.Sprintf("%ds", i.Seconds)
	case IconReady:
		return "✓"
	case IconNegative:
		return "✗"
	default:
		return "?"
	}
}

// DisplayFacts is the render-ready summary of one account.
type DisplayFacts struct {
	Kind       account.Kind `json:"kind"`
	Label      string       `json:"label"`
	Countdown  Icon         `json:"next_free_fight"`
	AutoBattle Icon         `json:"auto_battle"`
}

// StatusReader yields the latest status of an account. account.StatusCell
// satisfies it.
type StatusReader interface {
	Snapshot() (account.Status, error)
}

// Label returns the fixed display label for s.
func Label(s account.Status) string {
	switch st := account.Normalize(s).(type) {
	case account.LoggingIn, account.LoggingInAgain:
		return LabelLoggingIn
	case account.Idle:
		return LabelActive
	case account.Busy:
		return st.Reason
	default:
		return LabelError
	}
}

// Countdown derives the next-free-fight indicator from s at instant now.
// Only Idle and Busy carry a game state; anything else is Unknown.
func Countdown(s account.Status, now time.Time) Icon {
	gs, ok := account.GameStateOf(s)
	if !ok {
		return Unknown()
	}
	next := gs.Arena.NextFreeFight
	if next == nil {
		return Unknown()
	}
	if next.After(now) {
		return CountdownSeconds(int64(next.Sub(now) / time.Second))
	}
	return Ready()
}

// AutoBattleIcon maps the optional scrapbook flag to an indicator.
func AutoBattleIcon(sb *account.ScrapbookInfo) Icon {
	switch {
	case sb == nil:
		return Unknown()
	case sb.AutoBattle:
		return Ready()
	default:
		return Negative()
	}
}

// Aggregate computes the display facts of one account.
func Aggregate(s account.Status, sb *account.ScrapbookInfo, now time.Time) DisplayFacts {
	s = account.Normalize(s)
	return DisplayFacts{
		Kind:       s.Kind(),
		Label:      Label(s),
		Countdown:  Countdown(s, now),
		AutoBattle: AutoBattleIcon(sb),
	}
}

// AggregateCell reads one snapshot from r and aggregates it. A failed read,
// such as a poisoned cell, is shown as a fatal error.
func AggregateCell(r StatusReader, sb *account.ScrapbookInfo, now time.Time) DisplayFacts {
	s, err := r.Snapshot()
	if err != nil {
		s = account.FatalError{Err: err}
	}
	return Aggregate(s, sb, now)
}

// AggregateAccount aggregates acc's current status and scrapbook.
func AggregateAccount(acc *account.Account, now time.Time) DisplayFacts {
	return AggregateCell(acc.Status, acc.Scrapbook(), now)
}

// Package layout sizes the dashboard table for the terminal width.
package layout

import (
	"github.com/mattn/go-runewidth"
)

// Width tiers shared by the dashboard views.
//
//	TierCompact (<80):   status, name and countdown only
//	TierNormal  (80-119): every column, stacked detail view
//	TierSplit   (>=120): table and detail pane side by side
const (
	NormalViewThreshold = 80
	SplitViewThreshold  = 120
)

// Tier describes the current width bucket.
type Tier int

const (
	TierCompact Tier = iota
	TierNormal
	TierSplit
)

func (t Tier) String() string {
	switch t {
	case TierCompact:
		return "compact"
	case TierNormal:
		return "normal"
	case TierSplit:
		return "split"
	default:
		return "unknown"
	}
}

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	switch {
	case width >= SplitViewThreshold:
		return TierSplit
	case width >= NormalViewThreshold:
		return TierNormal
	default:
		return TierCompact
	}
}

// Columns holds the cell widths of one account row. A zero width hides the
// column.
type Columns struct {
	Status     int
	Server     int
	Name       int
	Countdown  int
	AutoBattle int
	Progress   int
}

// Fixed column widths; Name absorbs what is left.
const (
	statusWidth     = 16
	serverWidth     = 6
	countdownWidth  = 7
	autoBattleWidth = 4
	progressWidth   = 13
	minNameWidth    = 8
	gutter          = 1
)

// ColumnsForWidth lays out a row in total cells.
func ColumnsForWidth(total int) Columns {
	c := Columns{Status: statusWidth, Countdown: countdownWidth}
	if TierForWidth(total) >= TierNormal {
		c.Server = serverWidth
		c.AutoBattle = autoBattleWidth
		c.Progress = progressWidth
	}

	used := 0
	for _, w := range []int{c.Status, c.Server, c.Countdown, c.AutoBattle, c.Progress} {
		if w > 0 {
			used += w + gutter
		}
	}
	c.Name = total - used
	if c.Name < minNameWidth {
		c.Name = minNameWidth
	}
	return c
}

// SplitProportions returns table/detail widths for split view given total width.
// It removes a small padding budget to prevent edge wrapping.
func SplitProportions(total int) (left int, right int) {
	if total < SplitViewThreshold {
		return total, 0
	}
	// Budget 4 cols for borders/padding on each panel (8 total)
	avail := total - 8
	left = int(float64(avail) * 0.65)
	right = avail - left
	return
}

// TruncateRunes trims s to max terminal cells and appends suffix if
// truncated. Wide glyphs count as two cells.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= runewidth.StringWidth(suffix) {
		return runewidth.Truncate(s, max, "")
	}
	return runewidth.Truncate(s, max, suffix)
}

// Truncate is TruncateRunes with a single-character ellipsis.
func Truncate(s string, max int) string {
	return TruncateRunes(s, max, "…")
}

// Fit truncates s to width cells and pads it on the right to exactly width.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(Truncate(s, width), width)
}

// FitLeft is Fit with the padding on the left, for numeric columns.
func FitLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillLeft(Truncate(s, width), width)
}

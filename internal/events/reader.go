package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Filter selects events when reading the log. Zero fields match everything.
type Filter struct {
	Since time.Time
	// Server matches the server key exactly
	Server string
	// Account matches the account ident or, ignoring case, the account name
	Account string
	Types   []EventType
	// Limit keeps only the newest Limit matches
	Limit int
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Event) bool {
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if f.Server != "" && e.Server != f.Server {
		return false
	}
	if f.Account != "" && e.Account != f.Account && !strings.EqualFold(e.Name(), f.Account) {
		return false
	}
	if len(f.Types) > 0 {
		for _, t := range f.Types {
			if e.Type == t {
				return true
			}
		}
		return false
	}
	return true
}

// Read returns the events in the log at path that match f, oldest first.
// Lines that do not parse are skipped.
func Read(path string, f Filter) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out []Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if !f.Match(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) > f.Limit {
			out = out[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// Name returns the account name recorded in the event data, if any.
func (e Event) Name() string {
	name, _ := e.Data["name"].(string)
	return name
}

// Summary renders the event data as one line of text.
func (e Event) Summary() string {
	str := func(k string) string {
		if v, ok := e.Data[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}

	switch e.Type {
	case EventAccountStatus:
		s := str("to")
		if from := str("from"); from != "" {
			s = from + " -> " + s
		}
		if reason := str("reason"); reason != "" {
			s += " (" + reason + ")"
		}
		return s
	case EventAccountPoison:
		return str("cause")
	case EventAccountReset:
		return "reset to " + str("to")
	case EventCrawlState, EventCrawlSnapshot:
		s := str("state")
		if str("state") == "crawling" {
			s += fmt.Sprintf(" %s collected, %s left", str("collected"), str("remaining"))
		}
		if p := str("path"); p != "" {
			s += " " + p
		}
		return s
	case EventError:
		return str("error_type") + ": " + str("message")
	default:
		return ""
	}
}

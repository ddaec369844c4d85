// Package events records worker activity for sfh. Events are appended to a
// JSONL file and entries past the retention period are pruned.
package events

import (
	"time"
)

// EventType represents the type of event being logged.
type EventType string

const (
	// Account lifecycle events
	EventAccountAdd    EventType = "account_add"
	EventAccountRemove EventType = "account_remove"
	EventAccountStatus EventType = "account_status"
	EventAccountPoison EventType = "account_poisoned"
	EventAccountReset  EventType = "account_reset"

	// Crawl events
	EventCrawlState    EventType = "crawl_state"
	EventCrawlSnapshot EventType = "crawl_snapshot"

	// Application events
	EventConfigReload EventType = "config_reload"

	// Error events
	EventError EventType = "error"
)

// Event represents a single logged event.
type Event struct {
	// Timestamp when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// Type of the event
	Type EventType `json:"type"`

	// Server key (if applicable)
	Server string `json:"server,omitempty"`

	// Account ident (if applicable)
	Account string `json:"account,omitempty"`

	// Additional data specific to the event type
	Data map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, server, account string, data map[string]interface{}) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Server:    server,
		Account:   account,
		Data:      data,
	}
}

// StatusData contains data for account_status events.
type StatusData struct {
	Name   string `json:"name"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// PoisonData contains data for account_poisoned events.
type PoisonData struct {
	Name  string `json:"name"`
	Cause string `json:"cause"`
	Stack string `json:"stack,omitempty"`
}

// CrawlData contains data for crawl_state and crawl_snapshot events.
type CrawlData struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining,omitempty"`
	Collected int    `json:"collected,omitempty"`
	Path      string `json:"path,omitempty"`
}

// ErrorData contains data for error events.
type ErrorData struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// ToMap converts a struct to a map[string]interface{} for event data.
func ToMap(v interface{}) map[string]interface{} {
	switch d := v.(type) {
	case StatusData:
		return map[string]interface{}{
			"name":   d.Name,
			"from":   d.From,
			"to":     d.To,
			"reason": d.Reason,
		}
	case PoisonData:
		return map[string]interface{}{
			"name":  d.Name,
			"cause": d.Cause,
			"stack": truncateStack(d.Stack),
		}
	case CrawlData:
		return map[string]interface{}{
			"state":     d.State,
			"remaining": d.Remaining,
			"collected": d.Collected,
			"path":      d.Path,
		}
	case ErrorData:
		return map[string]interface{}{
			"error_type": d.ErrorType,
			"message":    d.Message,
		}
	case map[string]interface{}:
		return d
	default:
		return nil
	}
}

// maxStackSize bounds the stack kept in a poison event.
const maxStackSize = 64 << 10

func truncateStack(stack string) string {
	if len(stack) <= maxStackSize {
		return stack
	}
	return stack[:maxStackSize] + "\n... (truncated)"
}

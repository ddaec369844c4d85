package events

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "events.jsonl")
	writeEvents(t, path,
		Event{Timestamp: base, Type: EventAccountStatus, Server: "s1.sfgame.net", Account: "id-a",
			Data: map[string]interface{}{"name": "Alpha", "to": "idle"}},
		"{broken",
		Event{Timestamp: base.Add(time.Minute), Type: EventCrawlState, Server: "s1.sfgame.net",
			Data: map[string]interface{}{"state": "crawling", "remaining": 2, "collected": 3}},
		Event{Timestamp: base.Add(2 * time.Minute), Type: EventAccountPoison, Server: "f2.sfgame.us", Account: "id-b",
			Data: map[string]interface{}{"name": "beta", "cause": "worker panic: boom"}},
		Event{Timestamp: base.Add(3 * time.Minute), Type: EventAccountStatus, Server: "s1.sfgame.net", Account: "id-a",
			Data: map[string]interface{}{"name": "Alpha", "from": "idle", "to": "busy", "reason": "Dungeon"}},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []EventType
	}{
		{"all", Filter{}, []EventType{EventAccountStatus, EventCrawlState, EventAccountPoison, EventAccountStatus}},
		{"since", Filter{Since: base.Add(90 * time.Second)}, []EventType{EventAccountPoison, EventAccountStatus}},
		{"server", Filter{Server: "f2.sfgame.us"}, []EventType{EventAccountPoison}},
		{"account by name", Filter{Account: "alpha"}, []EventType{EventAccountStatus, EventAccountStatus}},
		{"account by ident", Filter{Account: "id-b"}, []EventType{EventAccountPoison}},
		{"types", Filter{Types: []EventType{EventCrawlState, EventAccountPoison}}, []EventType{EventCrawlState, EventAccountPoison}},
		{"limit keeps newest", Filter{Limit: 2}, []EventType{EventAccountPoison, EventAccountStatus}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Read(path, tc.filter)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tc.want), got)
			}
			for i, e := range got {
				if e.Type != tc.want[i] {
					t.Errorf("event %d = %s, want %s", i, e.Type, tc.want[i])
				}
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "none.jsonl"), Filter{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestEventSummary(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want string
	}{
		{
			"status with reason",
			Event{Type: EventAccountStatus, Data: map[string]interface{}{"from": "idle", "to": "busy", "reason": "Dungeon"}},
			"idle -> busy (Dungeon)",
		},
		{
			"first status",
			Event{Type: EventAccountStatus, Data: map[string]interface{}{"to": "logging_in"}},
			"logging_in",
		},
		{
			"poisoned",
			Event{Type: EventAccountPoison, Data: map[string]interface{}{"cause": "worker panic: boom"}},
			"worker panic: boom",
		},
		{
			"reset",
			Event{Type: EventAccountReset, Data: map[string]interface{}{"to": "logging_in"}},
			"reset to logging_in",
		},
		{
			"crawling",
			Event{Type: EventCrawlState, Data: map[string]interface{}{"state": "crawling", "remaining": float64(2), "collected": float64(3)}},
			"crawling 3 collected, 2 left",
		},
		{
			"snapshot",
			Event{Type: EventCrawlSnapshot, Data: map[string]interface{}{"state": "waiting", "path": "/tmp/s1.yaml"}},
			"waiting /tmp/s1.yaml",
		},
		{
			"error",
			Event{Type: EventError, Data: map[string]interface{}{"error_type": "job", "message": "bad password"}},
			"job: bad password",
		},
		{"unknown", Event{Type: EventConfigReload}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.Summary(); got != tc.want {
				t.Errorf("Summary() = %q, want %q", got, tc.want)
			}
		})
	}
}

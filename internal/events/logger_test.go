package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "events.jsonl")
	logger, err := NewLogger(LoggerOptions{Path: path, RetentionDays: 30, Enabled: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

// readLines returns the decoded events in path.
func readLines(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	var out []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning %s: %v", path, err)
	}
	return out
}

func writeEvents(t *testing.T, path string, lines ...interface{}) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	var data []byte
	for _, l := range lines {
		switch v := l.(type) {
		case string:
			data = append(data, v...)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				t.Fatal(err)
			}
			data = append(data, b...)
		}
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	logger, path := newTestLogger(t)

	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNewLoggerDisabledIsNil(t *testing.T) {
	logger, err := NewLogger(LoggerOptions{Path: filepath.Join(t.TempDir(), "x.jsonl")})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if logger != nil {
		t.Fatal("disabled logger should be nil")
	}
	if err := logger.Log(NewEvent(EventAccountAdd, "s1.sfgame.net", "", nil)); err != nil {
		t.Errorf("Log on disabled logger = %v", err)
	}
}

func TestLoggerLogEvent(t *testing.T) {
	logger, path := newTestLogger(t)

	if err := logger.LogEvent(EventAccountStatus, "s1.sfgame.net", "3f1c", StatusData{
		Name: "alpha", From: "idle", To: "busy", Reason: "Dungeon",
	}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if err := logger.LogEvent(EventCrawlState, "s1.sfgame.net", "", CrawlData{
		State: "crawling", Remaining: 3, Collected: 7,
	}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	logger.Close()

	got := readLines(t, path)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Type != EventAccountStatus || got[0].Account != "3f1c" || got[0].Name() != "alpha" {
		t.Errorf("first event = %+v", got[0])
	}
	if c, ok := got[1].Data["collected"].(float64); !ok || int(c) != 7 {
		t.Errorf("collected = %v, want 7", got[1].Data["collected"])
	}
}

func TestLoggerAfterCloseDrops(t *testing.T) {
	logger, path := newTestLogger(t)
	logger.Close()

	if err := logger.LogEvent(EventError, "", "", ErrorData{Message: "late"}); err != nil {
		t.Errorf("Log after Close = %v", err)
	}
	if got := readLines(t, path); len(got) != 0 {
		t.Errorf("got %d events after Close", len(got))
	}
}

func TestNewLoggerPrunesExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	now := time.Now().UTC()
	writeEvents(t, path,
		Event{Timestamp: now.AddDate(0, 0, -35), Type: EventAccountStatus, Account: "old"},
		Event{Timestamp: now.AddDate(0, 0, -5), Type: EventAccountStatus, Account: "recent"},
		Event{Timestamp: now, Type: EventAccountStatus, Account: "now"},
	)

	logger, err := NewLogger(LoggerOptions{Path: path, RetentionDays: 30, Enabled: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Close()

	got := readLines(t, path)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.Account == "old" {
			t.Error("expired entry kept")
		}
	}
}

func TestPrune(t *testing.T) {
	now := time.Now().UTC()
	cutoff := now.Add(-time.Hour)

	tests := []struct {
		name        string
		lines       []interface{}
		wantDropped int
		wantLines   int
	}{
		{
			name: "drops old keeps new",
			lines: []interface{}{
				Event{Timestamp: now.Add(-2 * time.Hour), Type: EventError},
				Event{Timestamp: now, Type: EventError},
			},
			wantDropped: 1,
			wantLines:   1,
		},
		{
			name: "keeps malformed lines",
			lines: []interface{}{
				"not json",
				Event{Timestamp: now.Add(-2 * time.Hour), Type: EventError},
			},
			wantDropped: 1,
			wantLines:   1,
		},
		{
			name:        "nothing to drop",
			lines:       []interface{}{Event{Timestamp: now, Type: EventError}},
			wantDropped: 0,
			wantLines:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "events.jsonl")
			writeEvents(t, path, tc.lines...)

			dropped, err := Prune(path, cutoff)
			if err != nil {
				t.Fatalf("Prune failed: %v", err)
			}
			if dropped != tc.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tc.wantDropped)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			lines := 0
			for _, b := range data {
				if b == '\n' {
					lines++
				}
			}
			if lines != tc.wantLines {
				t.Errorf("lines = %d, want %d:\n%s", lines, tc.wantLines, data)
			}
		})
	}
}

func TestPruneMissingFile(t *testing.T) {
	dropped, err := Prune(filepath.Join(t.TempDir(), "none.jsonl"), time.Now())
	if err != nil || dropped != 0 {
		t.Errorf("Prune(missing) = %d, %v", dropped, err)
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if ExpandPath("~/test") == "~/test" {
		t.Error("ExpandPath should have expanded ~")
	}
}

func TestToMap(t *testing.T) {
	m := ToMap(StatusData{Name: "alpha", From: "idle", To: "busy", Reason: "Fighting"})

	if m["to"] != "busy" {
		t.Errorf("to = %v, want busy", m["to"])
	}
	if m["reason"] != "Fighting" {
		t.Errorf("reason = %v, want Fighting", m["reason"])
	}
	if ToMap(42) != nil {
		t.Error("ToMap of an unknown type should be nil")
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	event := NewEvent(EventCrawlSnapshot, "s1.sfgame.net", "", map[string]interface{}{"path": "/tmp/s1.yaml"})
	after := time.Now()

	if event.Type != EventCrawlSnapshot || event.Server != "s1.sfgame.net" {
		t.Errorf("event = %+v", event)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Error("Timestamp should be between before and after")
	}
}

func TestLoggerNilIsNoop(t *testing.T) {
	var logger *Logger
	if err := logger.LogEvent(EventError, "", "", ErrorData{Message: "x"}); err != nil {
		t.Errorf("LogEvent on nil logger = %v", err)
	}
	if logger.Path() != "" {
		t.Error("nil logger has no path")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil logger = %v", err)
	}
}

func TestLoggerBoundsLineSize(t *testing.T) {
	logger, path := newTestLogger(t)

	huge := strings.Repeat("goroutine 1 [running]:\n", maxLineSize/8)
	if err := logger.LogEvent(EventAccountPoison, "s1.sfgame.net", "id-a", PoisonData{
		Name: "alpha", Cause: "worker panic: boom", Stack: huge,
	}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	oversized := NewEvent(EventError, "", "", map[string]interface{}{"message": strings.Repeat("x", maxLineSize)})
	if err := logger.Log(oversized); err == nil {
		t.Error("Log of an oversized event should fail")
	}
	logger.Close()

	got := readLines(t, path)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	stack, _ := got[0].Data["stack"].(string)
	if len(stack) > maxStackSize+64 || !strings.HasSuffix(stack, "(truncated)") {
		t.Errorf("stack kept %d bytes", len(stack))
	}

	if _, err := Prune(path, time.Now().Add(-time.Hour)); err != nil {
		t.Errorf("Prune after a poison event: %v", err)
	}
}

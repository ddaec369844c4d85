package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultLogPath is the default location for the events log.
	DefaultLogPath = "~/.local/state/sfh/events.jsonl"

	// DefaultRetentionDays is the number of days to retain log entries.
	DefaultRetentionDays = 30

	// pruneCheckEvents is how many writes pass between retention checks.
	pruneCheckEvents = 100

	// pruneEvery bounds how often a long-running logger rewrites the file.
	pruneEvery = 24 * time.Hour

	// maxLineSize caps one JSONL entry; poison events carry stack traces.
	maxLineSize = 1 << 20
)

// Logger appends events to a JSONL file and drops entries older than the
// retention period. A nil *Logger is valid and discards everything.
type Logger struct {
	path      string
	retention time.Duration

	mu       sync.Mutex
	file     *os.File
	written  int
	prunedAt time.Time
}

// LoggerOptions configures the event logger.
type LoggerOptions struct {
	Path          string
	RetentionDays int
	Enabled       bool
}

// DefaultOptions returns the default logger options.
func DefaultOptions() LoggerOptions {
	return LoggerOptions{
		Path:          ExpandPath(DefaultLogPath),
		RetentionDays: DefaultRetentionDays,
		Enabled:       true,
	}
}

// NewLogger opens the log for appending after pruning expired entries.
// It returns a nil Logger when opts.Enabled is false.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	if !opts.Enabled {
		return nil, nil
	}
	if opts.Path == "" {
		opts.Path = DefaultLogPath
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}

	l := &Logger{
		path:      ExpandPath(opts.Path),
		retention: time.Duration(opts.RetentionDays) * 24 * time.Hour,
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	if _, err := Prune(l.path, time.Now().Add(-l.retention)); err != nil {
		log.Printf("event log pruning: %v", err)
	}
	l.prunedAt = time.Now()

	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	l.file = f
	return nil
}

// Log appends event as one JSON line.
func (l *Logger) Log(event *Event) error {
	if l == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if len(data) >= maxLineSize {
		return fmt.Errorf("event %s is %d bytes, over the %d byte line limit", event.Type, len(data), maxLineSize)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	l.written++
	if l.written%pruneCheckEvents == 0 && time.Since(l.prunedAt) >= pruneEvery {
		l.pruneLocked()
	}
	return nil
}

// LogEvent is a convenience method to create and log an event in one call.
func (l *Logger) LogEvent(eventType EventType, server, account string, data interface{}) error {
	if l == nil {
		return nil
	}
	return l.Log(NewEvent(eventType, server, account, ToMap(data)))
}

// pruneLocked rewrites the file without expired entries. The caller holds mu.
func (l *Logger) pruneLocked() {
	l.prunedAt = time.Now()

	if err := l.file.Close(); err != nil {
		log.Printf("event log close before pruning: %v", err)
	}
	l.file = nil

	if _, err := Prune(l.path, l.prunedAt.Add(-l.retention)); err != nil {
		log.Printf("event log pruning: %v", err)
	}
	if err := l.open(); err != nil {
		log.Printf("event log reopen: %v", err)
	}
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the log file. Later Log calls are dropped.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Prune removes entries with a timestamp before cutoff from the log at path
// and reports how many were dropped. Lines that do not parse are kept. A
// missing file is not an error.
func Prune(path string, cutoff time.Time) (int, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening log file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "events-prune-*.jsonl")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	dropped := 0
	w := bufio.NewWriter(tmp)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if json.Unmarshal(line, &e) == nil && e.Timestamp.Before(cutoff) {
			dropped++
			continue
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("scanning log file: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("flushing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	if dropped == 0 {
		return 0, nil
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("replacing log file: %w", err)
	}
	return dropped, nil
}

// ExpandPath expands ~ in a path to the home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

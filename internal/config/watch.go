package config

import (
	"fmt"
	"log"
	"time"

	"github.com/Dicklesworthstone/sfh/internal/watcher"
)

// Watch reloads the config at path whenever it changes and passes the result
// to onChange. Files that fail to parse are logged and skipped. The returned
// function stops watching.
func Watch(path string, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}

	// Debounce so a single save doesn't trigger several reloads
	w, err := watcher.New(func([]string) {
		cfg, err := Load(path)
		if err != nil {
			log.Printf("Error reloading config: %v", err)
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	}, watcher.WithDebounceDuration(500*time.Millisecond),
		watcher.WithErrorHandler(func(err error) {
			log.Printf("Config watch error: %v", err)
		}))
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config path %s: %w", path, err)
	}

	return func() {
		w.Close()
	}, nil
}

package crawl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrLocked is returned when another process holds the snapshot lock.
var ErrLocked = errors.New("crawl snapshot locked by another process")

// Snapshot is the persisted partial progress of a crawl.
type Snapshot struct {
	Server    string         `yaml:"server"`
	SavedAt   time.Time      `yaml:"saved_at"`
	Remaining []PlayerID     `yaml:"remaining"`
	Players   []PlayerRecord `yaml:"players"`
}

// SnapshotPath returns the snapshot file for serverKey inside dir.
func SnapshotPath(dir, serverKey string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(serverKey) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "_"
	}
	return filepath.Join(dir, name+".yaml")
}

// Capture copies the queue and store into a Snapshot. The two reads are not
// atomic with respect to each other. The queue is read first: an ID recorded
// and marked done between the reads then appears in both lists and is
// dropped from the queue on restore, rather than in neither.
func Capture(server string, q *Queue, ps *PlayerStore) Snapshot {
	remaining := q.Remaining()
	players := ps.Records()
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return Snapshot{
		Server:    server,
		SavedAt:   time.Now().UTC(),
		Remaining: remaining,
		Players:   players,
	}
}

// Save writes the snapshot to path atomically while holding path's lock file.
func (s Snapshot) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	unlock, err := lockSnapshot(path)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the snapshot at path. A missing file yields an error
// matching fs.ErrNotExist.
func LoadSnapshot(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	unlock, err := lockSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &s, nil
}

func lockSnapshot(path string) (func(), error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}

// Store rebuilds the collected records.
func (s *Snapshot) Store() *PlayerStore {
	ps := NewPlayerStore()
	for _, rec := range s.Players {
		ps.Put(rec)
	}
	return ps
}

// Queue rebuilds the remaining work, skipping IDs already collected.
func (s *Snapshot) Queue() *Queue {
	collected := make(map[PlayerID]struct{}, len(s.Players))
	for _, rec := range s.Players {
		collected[rec.ID] = struct{}{}
	}
	q := NewQueue()
	for _, id := range s.Remaining {
		if _, ok := collected[id]; ok {
			continue
		}
		q.Push(id)
	}
	return q
}

// Restore loads the snapshot at path into p. While loading, p reports
// Restoring; afterwards Crawling, or Failed if the file could not be read.
// A missing file starts an empty crawl.
func Restore(p *Progress, path string) (Crawling, error) {
	p.Set(Restoring{})

	snap, err := LoadSnapshot(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := Crawling{Queue: NewQueue(), Players: NewPlayerStore()}
		p.Set(c)
		return c, nil
	}
	if err != nil {
		p.Set(Failed{Err: err})
		return Crawling{}, err
	}

	c := Crawling{Queue: snap.Queue(), Players: snap.Store()}
	p.Set(c)
	return c, nil
}

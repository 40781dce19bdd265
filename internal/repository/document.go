package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("record not found")

// jsonDocument is a flat JSON array on disk, read whole and rewritten whole on
// every mutation. The mutex serialises read-modify-write cycles within one
// process; separate processes sharing the file remain last-writer-wins.
type jsonDocument[T any] struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func newJSONDocument[T any](path string, log zerolog.Logger) *jsonDocument[T] {
	return &jsonDocument[T]{
		path: path,
		log:  log.With().Str("document", filepath.Base(path)).Logger(),
	}
}

// ensure creates the directory and seeds the file if it does not exist yet.
func (d *jsonDocument[T]) ensure(seed []T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(d.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", d.path, err)
	}

	if seed == nil {
		seed = []T{}
	}
	d.log.Info().Int("items", len(seed)).Msg("Seeding data file")
	return d.writeLocked(seed)
}

// read returns the current items. Unreadable or malformed files degrade to an
// empty collection so one bad edit never takes the exam offline.
func (d *jsonDocument[T]) read() []T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readLocked()
}

// update applies fn to the current items and persists the result. If fn
// returns an error nothing is written.
func (d *jsonDocument[T]) update(fn func(items []T) ([]T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	items, err := fn(d.readLocked())
	if err != nil {
		return err
	}
	return d.writeLocked(items)
}

func (d *jsonDocument[T]) readLocked() []T {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		d.log.Error().Err(err).Msg("Error reading JSON document")
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		d.log.Error().Err(err).Msg("Error parsing JSON document, using empty collection")
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// writeLocked pretty-prints items to a temp file and renames it over the
// document so readers never observe a half-written file.
func (d *jsonDocument[T]) writeLocked(items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "."+filepath.Base(d.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replace %s: %w", d.path, err)
	}
	return nil
}

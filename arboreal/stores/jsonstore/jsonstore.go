// Package jsonstore provides a Store backed by a single JSON file.
// Writes go through a copy-on-write snapshot guarded by an in-process
// RW mutex and a cross-process file lock, saved with an atomic rename.
// Reads reload the file whenever its modification time has moved, so
// commits from other processes become visible on the next transaction.
// It suits small hierarchies and tests; the sqlstore and badgerstore
// backends scale further.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/yob/arboreal/types"
)

const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// Store implements types.Store over a JSON file. The zero value is not
// usable; call New.
type Store struct {
	filePath string
	fileLock *flock.Flock
	mu       sync.RWMutex
	data     *storeData

	// loadedMod is the data file's mtime as of the last load or save;
	// a mismatch on read means another process has committed.
	loadedMod time.Time

	// timeFunc defaults to time.Now and can be overridden in tests.
	timeFunc func() time.Time
}

type storeData struct {
	Nodes    []types.Node  `json:"nodes"`
	Metadata storeMetadata `json:"metadata"`
}

type storeMetadata struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New opens (or creates) a JSON file store at the given path. A
// separate ".lock" file is used for cross-process locking so the data
// file can be atomically replaced on save.
func New(filePath string) (*Store, error) {
	s := &Store{
		filePath: filePath,
		fileLock: flock.New(filePath + ".lock"),
		timeFunc: time.Now,
		data: &storeData{
			Metadata: storeMetadata{
				Version:   "1.0",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		},
	}
	if err := s.withFileLock(func() error { return s.load() }); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return s, nil
}

// SetTimeFunc overrides the clock, for deterministic test timestamps.
func (s *Store) SetTimeFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeFunc = fn
}

func (s *Store) withFileLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: file lock: %v", types.ErrConflict, err)
	}
	if !locked {
		return fmt.Errorf("%w: file lock timed out", types.ErrConflict)
	}
	defer func() { _ = s.fileLock.Unlock() }()

	return fn()
}

// load reads the JSON file into memory. Caller must hold the file lock.
func (s *Store) load() error {
	fi, err := os.Stat(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(raw) == 0 {
		s.loadedMod = fi.ModTime()
		return nil
	}
	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	s.data = &data
	s.loadedMod = fi.ModTime()
	return nil
}

// save writes data to the JSON file via a temp file and atomic rename.
// Caller must hold the file lock.
func (s *Store) save(data *storeData) error {
	data.Metadata.UpdatedAt = s.timeFunc()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, raw, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	if fi, err := os.Stat(s.filePath); err == nil {
		s.loadedMod = fi.ModTime()
	}
	return nil
}

// Begin starts a transaction. A writable transaction holds the write
// mutex and the cross-process file lock until Commit or Rollback, so
// writers serialize fully. Readers first refresh from disk if another
// process has saved, then pin the committed snapshot; since committed
// snapshots are never mutated in place, no lock is held for the life
// of a read transaction.
func (s *Store) Begin(writable bool) (types.Tx, error) {
	if !writable {
		if err := s.refresh(); err != nil {
			return nil, err
		}
		s.mu.RLock()
		data := s.data
		s.mu.RUnlock()
		return &tx{store: s, data: data}, nil
	}

	// In-process writers serialize on the mutex first; the file lock
	// then excludes other processes for the life of the transaction.
	s.mu.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: file lock: %v", types.ErrConflict, err)
	}
	if !locked {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: file lock timed out", types.ErrConflict)
	}

	// Pick up commits from other processes before mutating.
	if err := s.load(); err != nil {
		_ = s.fileLock.Unlock()
		s.mu.Unlock()
		return nil, err
	}

	// Work on a deep copy; Commit swaps it in wholesale.
	working := &storeData{
		Nodes:    make([]types.Node, len(s.data.Nodes)),
		Metadata: s.data.Metadata,
	}
	for i := range s.data.Nodes {
		working.Nodes[i] = *s.data.Nodes[i].Clone()
	}
	return &tx{store: s, data: working, writable: true}, nil
}

// refresh reloads the file under a shared lock when its mtime no
// longer matches the snapshot in memory, picking up commits made by
// other processes.
func (s *Store) refresh() error {
	fi, err := os.Stat(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fi.ModTime().Equal(s.loadedMod) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := s.fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: file lock: %v", types.ErrConflict, err)
	}
	if !locked {
		return fmt.Errorf("%w: file lock timed out", types.ErrConflict)
	}
	defer func() { _ = s.fileLock.Unlock() }()

	return s.load()
}

// Close removes the lock file. Data is saved on every commit, so there
// is nothing to flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.filePath + ".lock")
	return nil
}

// tx is a single transaction over the store. Writable transactions own
// a deep copy of the node slice; read transactions share the committed
// snapshot and only ever hand out clones.
type tx struct {
	store    *Store
	data     *storeData
	writable bool
	done     bool
}

func (t *tx) Create(n *types.Node) error {
	if err := t.writeCheck(); err != nil {
		return err
	}
	n.ID = uuid.New().String()
	now := t.store.timeFunc()
	n.CreatedAt = now
	n.UpdatedAt = now
	t.data.Nodes = append(t.data.Nodes, *n.Clone())
	return nil
}

func (t *tx) Get(id string) (*types.Node, error) {
	for i := range t.data.Nodes {
		if t.data.Nodes[i].ID == id {
			return t.data.Nodes[i].Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
}

func (t *tx) Update(n *types.Node) error {
	if err := t.writeCheck(); err != nil {
		return err
	}
	for i := range t.data.Nodes {
		if t.data.Nodes[i].ID == n.ID {
			updated := *n.Clone()
			updated.CreatedAt = t.data.Nodes[i].CreatedAt
			updated.UpdatedAt = t.store.timeFunc()
			t.data.Nodes[i] = updated
			return nil
		}
	}
	return fmt.Errorf("%w: %s", types.ErrNotFound, n.ID)
}

func (t *tx) Delete(id string) error {
	if err := t.writeCheck(); err != nil {
		return err
	}
	for i := range t.data.Nodes {
		if t.data.Nodes[i].ID == id {
			t.data.Nodes = append(t.data.Nodes[:i], t.data.Nodes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", types.ErrNotFound, id)
}

func (t *tx) Query(f types.Filter) ([]*types.Node, error) {
	if len(f.IDs) > 0 {
		// Ordered lookup: results follow the requested id order.
		result := make([]*types.Node, 0, len(f.IDs))
		for _, id := range f.IDs {
			for i := range t.data.Nodes {
				if t.data.Nodes[i].ID == id && matches(&t.data.Nodes[i], f) {
					result = append(result, t.data.Nodes[i].Clone())
					break
				}
			}
		}
		return result, nil
	}

	var result []*types.Node
	for i := range t.data.Nodes {
		if matches(&t.data.Nodes[i], f) {
			result = append(result, t.data.Nodes[i].Clone())
		}
	}
	return result, nil
}

func matches(n *types.Node, f types.Filter) bool {
	if f.ParentID != nil && n.ParentID != *f.ParentID {
		return false
	}
	if f.PathPrefix != "" && !strings.HasPrefix(n.Path, f.PathPrefix) {
		return false
	}
	if f.PathExact != "" && n.Path != f.PathExact {
		return false
	}
	return true
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.writable {
		return nil
	}
	defer t.store.mu.Unlock()
	defer func() { _ = t.store.fileLock.Unlock() }()

	if err := t.store.save(t.data); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	t.store.data = t.data
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.writable {
		return nil
	}
	t.store.mu.Unlock()
	_ = t.store.fileLock.Unlock()
	return nil
}

func (t *tx) writeCheck() error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	return nil
}

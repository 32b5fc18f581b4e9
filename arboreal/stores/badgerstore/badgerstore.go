// Package badgerstore provides a Store backed by BadgerDB. Badger's
// optimistic concurrency control does the conflict detection the engine
// requires: a transaction whose read set was touched by a concurrent
// commit fails with badger.ErrConflict, surfaced as the engine's
// retryable conflict error.
package badgerstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/yob/arboreal/types"
)

// nodePrefix namespaces node records inside the key space.
const nodePrefix = "node/"

// Store implements types.Store over a badger database.
type Store struct {
	db *badger.DB
}

// New opens (or creates) a badger database at the given directory.
func New(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// NewInMemory opens an in-memory badger database, for tests.
func NewInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Begin(writable bool) (types.Tx, error) {
	return &tx{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type tx struct {
	txn      *badger.Txn
	writable bool
	done     bool
}

func nodeKey(id string) []byte {
	return []byte(nodePrefix + id)
}

func (t *tx) put(n *types.Node) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}
	if err := t.txn.Set(nodeKey(n.ID), raw); err != nil {
		return mapErr(err)
	}
	return nil
}

func (t *tx) Create(n *types.Node) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	n.ID = uuid.New().String()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return t.put(n)
}

func (t *tx) Get(id string) (*types.Node, error) {
	item, err := t.txn.Get(nodeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	var n types.Node
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &n)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %s: %w", id, err)
	}
	return &n, nil
}

func (t *tx) Update(n *types.Node) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	if _, err := t.Get(n.ID); err != nil {
		return err
	}
	n.UpdatedAt = time.Now().UTC()
	return t.put(n)
}

func (t *tx) Delete(id string) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	if _, err := t.Get(id); err != nil {
		return err
	}
	return mapErr(t.txn.Delete(nodeKey(id)))
}

func (t *tx) Query(f types.Filter) ([]*types.Node, error) {
	if len(f.IDs) > 0 {
		// Ordered lookup: results follow the requested id order.
		result := make([]*types.Node, 0, len(f.IDs))
		for _, id := range f.IDs {
			n, err := t.Get(id)
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if matches(n, f) {
				result = append(result, n)
			}
		}
		return result, nil
	}

	// Badger keys are opaque to path/parent predicates, so the scan
	// iterates the node keyspace and filters decoded records.
	var result []*types.Node
	it := t.txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         []byte(nodePrefix),
	})
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix([]byte(nodePrefix)); it.Next() {
		item := it.Item()
		var n types.Node
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &n)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %s: %w",
				bytes.TrimPrefix(item.Key(), []byte(nodePrefix)), err)
		}
		if matches(&n, f) {
			result = append(result, n.Clone())
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
		t.txn.Discard()
		return nil
	}
	return mapErr(t.txn.Commit())
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.txn.Discard()
	return nil
}

// mapErr translates badger errors into the engine's error kinds.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", types.ErrConflict, err)
	}
	return err
}

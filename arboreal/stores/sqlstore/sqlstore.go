// Package sqlstore provides a Store backed by SQLite via the pure-Go
// modernc.org/sqlite driver. Write transactions run BEGIN IMMEDIATE so
// two writers cannot validate against the same snapshot; a busy
// database surfaces as the retryable conflict error.
package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yob/arboreal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	parent_id  TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_parent_id ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path);
`

// Store implements types.Store over a SQLite database file.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and bootstraps the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set busy timeout first to help with concurrent access during
	// initialization; WAL gives readers a consistent snapshot while a
	// writer is active.
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Begin starts a transaction. Writable transactions take the write lock
// up front (BEGIN IMMEDIATE) so the snapshot they validate against is
// the one they commit against.
func (s *Store) Begin(writable bool) (types.Tx, error) {
	sqlTx, err := s.db.Begin()
	if err != nil {
		return nil, mapErr(err)
	}
	if writable {
		// database/sql has no IMMEDIATE knob; upgrade the deferred
		// transaction to a write transaction before any read.
		if _, err := sqlTx.Exec("DELETE FROM nodes WHERE 0"); err != nil {
			_ = sqlTx.Rollback()
			return nil, mapErr(err)
		}
	}
	return &tx{sqlTx: sqlTx, writable: writable}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// mapErr translates driver errors into the engine's error kinds. SQLite
// reports writer contention as SQLITE_BUSY / "database is locked".
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%w: %v", types.ErrConflict, err)
	}
	return err
}

type tx struct {
	sqlTx    *sql.Tx
	writable bool
	done     bool
}

const nodeColumns = "id, parent_id, path, type, name, data, created_at, updated_at"

func scanNode(scanner interface{ Scan(...interface{}) error }) (*types.Node, error) {
	var n types.Node
	var data string
	if err := scanner.Scan(&n.ID, &n.ParentID, &n.Path, &n.Type, &n.Name, &data, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if data != "" && data != "{}" {
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return nil, fmt.Errorf("failed to parse node data: %w", err)
		}
	}
	return &n, nil
}

func marshalData(data map[string]string) (string, error) {
	if len(data) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal node data: %w", err)
	}
	return string(raw), nil
}

func (t *tx) Create(n *types.Node) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	n.ID = uuid.New().String()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	data, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	_, err = t.sqlTx.Exec(
		"INSERT INTO nodes ("+nodeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.ParentID, n.Path, n.Type, n.Name, data, n.CreatedAt, n.UpdatedAt,
	)
	return mapErr(err)
}

func (t *tx) Get(id string) (*types.Node, error) {
	row := t.sqlTx.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return n, nil
}

func (t *tx) Update(n *types.Node) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	data, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	res, err := t.sqlTx.Exec(
		"UPDATE nodes SET parent_id = ?, path = ?, type = ?, name = ?, data = ?, updated_at = ? WHERE id = ?",
		n.ParentID, n.Path, n.Type, n.Name, data, time.Now().UTC(), n.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", types.ErrNotFound, n.ID)
	}
	return nil
}

func (t *tx) Delete(id string) error {
	if !t.writable {
		return fmt.Errorf("write on read-only transaction")
	}
	res, err := t.sqlTx.Exec("DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	return nil
}

func (t *tx) Query(f types.Filter) ([]*types.Node, error) {
	if len(f.IDs) > 0 {
		return t.queryByIDs(f)
	}

	query := "SELECT " + nodeColumns + " FROM nodes"
	var conds []string
	var args []interface{}
	if f.ParentID != nil {
		conds = append(conds, "parent_id = ?")
		args = append(args, *f.ParentID)
	}
	if f.PathPrefix != "" {
		conds = append(conds, "path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(f.PathPrefix)+"%")
	}
	if f.PathExact != "" {
		conds = append(conds, "path = ?")
		args = append(args, f.PathExact)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := t.sqlTx.Query(query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*types.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// queryByIDs preserves the requested id order, which SQL IN does not.
func (t *tx) queryByIDs(f types.Filter) ([]*types.Node, error) {
	result := make([]*types.Node, 0, len(f.IDs))
	for _, id := range f.IDs {
		n, err := t.Get(id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

// escapeLike escapes LIKE metacharacters in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	return mapErr(t.sqlTx.Commit())
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.sqlTx.Rollback()
}

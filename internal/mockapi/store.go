package mockapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/marcus/bizdesk/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS records (
	entity     TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (entity, id)
);
CREATE TABLE IF NOT EXISTS tokens (
	token   TEXT PRIMARY KEY,
	user_id TEXT NOT NULL
);
`

// Store keeps records as JSON documents in SQLite.
type Store struct {
	conn *sql.DB
}

// OpenStore opens (or creates) the database at path. Use ":memory:" for a
// throwaway store.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// a single connection keeps :memory: databases shared and writes serialized
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{conn: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// List returns every record of entity in insertion order.
func (s *Store) List(ctx context.Context, entity string) ([]models.Record, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT data FROM records WHERE entity = ? ORDER BY created_at, rowid`, entity)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", entity)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		var rec models.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, errors.Wrap(err, "decode record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, entity, id string) (models.Record, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %s", entity, id)
	}
	var rec models.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	return rec, nil
}

// Insert stores rec under a new id and returns it.
func (s *Store) Insert(ctx context.Context, entity string, rec models.Record) (models.Record, error) {
	out := models.Record{}
	for k, v := range rec {
		out[k] = v
	}
	if out.ID() == "" {
		out["id"] = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := out["created_at"]; !ok {
		out["created_at"] = now
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO records (entity, id, data, created_at) VALUES (?, ?, ?, ?)`,
		entity, out.ID(), string(data), now); err != nil {
		return nil, errors.Wrapf(err, "insert %s", entity)
	}
	return out, nil
}

// Replace overwrites the stored document for id.
func (s *Store) Replace(ctx context.Context, entity, id string, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE records SET data = ? WHERE entity = ? AND id = ?`, string(data), entity, id)
	if err != nil {
		return errors.Wrapf(err, "update %s %s", entity, id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, entity, id string) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM records WHERE entity = ? AND id = ?`, entity, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s %s", entity, id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveToken binds a bearer token to a user.
func (s *Store) SaveToken(ctx context.Context, token, userID string) error {
	if _, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO tokens (token, user_id) VALUES (?, ?)`, token, userID); err != nil {
		return errors.Wrap(err, "save token")
	}
	return nil
}

// TokenUser returns the user bound to token.
func (s *Store) TokenUser(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.conn.QueryRowContext(ctx,
		`SELECT user_id FROM tokens WHERE token = ?`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "lookup token")
	}
	return userID, nil
}

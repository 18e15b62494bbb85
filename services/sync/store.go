package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"rostersync-backend/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS record_hashes (
	sourced_id TEXT PRIMARY KEY,
	hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	summary TEXT NOT NULL
);
`

const (
	keyEndpoint       = "endpoint"
	keyEncryptedToken = "encrypted_token"
	keySchedule       = "schedule"
	keyLastOutcome    = "last_outcome"
)

// logLimit bounds the rolling sync log.
const logLimit = 50

// Store persists everything a sync run needs between invocations: the
// target endpoint, the encrypted token, the schedule, the hash index
// and a rolling log of past runs.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) get(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (s Store) GetEndpoint(ctx context.Context) (string, error) {
	return s.get(ctx, keyEndpoint)
}

func (s Store) SetEndpoint(ctx context.Context, endpoint string) error {
	return s.set(ctx, keyEndpoint, endpoint)
}

func (s Store) GetEncryptedToken(ctx context.Context) (string, error) {
	return s.get(ctx, keyEncryptedToken)
}

func (s Store) SetEncryptedToken(ctx context.Context, blob string) error {
	return s.set(ctx, keyEncryptedToken, blob)
}

func (s Store) GetSchedule(ctx context.Context) (string, error) {
	return s.get(ctx, keySchedule)
}

func (s Store) SetSchedule(ctx context.Context, schedule string) error {
	return s.set(ctx, keySchedule, schedule)
}

// LastOutcome returns the outcome of the most recent sync, or nil if
// none has run yet.
func (s Store) LastOutcome(ctx context.Context) (*Outcome, error) {
	raw, err := s.get(ctx, keyLastOutcome)
	if err != nil || raw == "" {
		return nil, err
	}
	var outcome Outcome
	err = json.Unmarshal([]byte(raw), &outcome)
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (s Store) SetLastOutcome(ctx context.Context, outcome Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	return s.set(ctx, keyLastOutcome, string(raw))
}

type LogEntry struct {
	Time    time.Time
	Summary string
}

// AppendLog records one line about a sync run and trims the log to the
// newest entries.
func (s Store) AppendLog(ctx context.Context, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_log (time, summary) VALUES (?, ?)`,
		timezone.Now().Unix(), summary)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM sync_log WHERE id NOT IN (
			SELECT id FROM sync_log ORDER BY id DESC LIMIT ?
		)`, logLimit)
	return err
}

// Log returns the rolling sync log, newest first.
func (s Store) Log(ctx context.Context) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, summary FROM sync_log ORDER BY id DESC LIMIT ?`, logLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var unix int64
		var summary string
		err := rows.Scan(&unix, &summary)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{
			Time:    time.Unix(unix, 0).In(timezone.Location),
			Summary: summary,
		})
	}
	return entries, rows.Err()
}

// HashIndex loads the persisted content-hash index.
func (s Store) HashIndex(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sourced_id, hash FROM record_hashes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := map[string]string{}
	for rows.Next() {
		var id, hash string
		err := rows.Scan(&id, &hash)
		if err != nil {
			return nil, err
		}
		index[id] = hash
	}
	return index, rows.Err()
}

// ReplaceHashIndex swaps the persisted index for the given one in a
// single transaction.
func (s Store) ReplaceHashIndex(ctx context.Context, index map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM record_hashes`)
	if err != nil {
		return err
	}
	for id, hash := range index {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO record_hashes (sourced_id, hash) VALUES (?, ?)`,
			id, hash)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

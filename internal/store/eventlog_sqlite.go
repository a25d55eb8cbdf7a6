package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"motionline/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.IndexPath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and CLI share the workspace; busy_timeout avoids "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateEventLog(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateEventLog(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			entity_seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, entity_seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
		`CREATE TABLE IF NOT EXISTS entity_seq (
			entity_id TEXT PRIMARY KEY,
			next_seq INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	_, err := ensureMetaUUID(ctx, db, "workspace_id")
	return err
}

func ensureMetaUUID(ctx context.Context, db *sql.DB, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("empty meta key")
	}
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	switch {
	case err == nil && strings.TrimSpace(v) != "":
		return v, nil
	case err == nil, errors.Is(err, sql.ErrNoRows):
	default:
		return "", err
	}
	v = uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, v); err != nil {
		return "", err
	}
	return v, nil
}

// WorkspaceID returns the stable id generated when the workspace was first opened.
func (s Store) WorkspaceID() (string, error) {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return ensureMetaUUID(ctx, db, "workspace_id")
}

func (s Store) appendEventSQLite(ctx context.Context, typ, entityID string, payload any) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return errors.New("event: missing type")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return errors.New("event: missing entity id")
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event: marshal payload: %w", err)
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	wsID, err := ensureMetaUUID(ctx, db, "workspace_id")
	if err != nil {
		return err
	}

	nowMs := time.Now().UTC().UnixMilli()
	eventID := uuid.NewString()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Allocate per-entity sequence.
	var seq int64
	err = tx.QueryRowContext(ctx, `SELECT next_seq FROM entity_seq WHERE entity_id = ?`, entityID).Scan(&seq)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `UPDATE entity_seq SET next_seq = ? WHERE entity_id = ?`, seq+1, entityID); err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		seq = 1
		if _, err := tx.ExecContext(ctx, `INSERT INTO entity_seq(entity_id, next_seq) VALUES(?, ?)`, entityID, int64(2)); err != nil {
			return err
		}
	default:
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events(
			event_id, workspace_id, entity_id, entity_seq,
			type, issued_at_unixms, payload_json, created_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, eventID, wsID, entityID, seq, typ, nowMs, string(pb), nowMs); err != nil {
		return err
	}

	return tx.Commit()
}

const eventColumns = `event_id, issued_at_unixms, type, entity_id, payload_json`

func (s Store) readEventsSQLite(ctx context.Context, limit int) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at_unixms ASC, rowid ASC`
	if limit > 0 {
		return s.queryEvents(ctx, q+` LIMIT ?`, limit)
	}
	return s.queryEvents(ctx, q)
}

func (s Store) readEventsTailSQLite(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		return s.readEventsSQLite(ctx, 0)
	}
	q := `SELECT ` + eventColumns + ` FROM (
		SELECT rowid AS rid, * FROM events ORDER BY created_at_unixms DESC, rowid DESC LIMIT ?
	) ORDER BY created_at_unixms ASC, rid ASC`
	return s.queryEvents(ctx, q, limit)
}

func (s Store) readEventsForEntitySQLite(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	q := `SELECT ` + eventColumns + ` FROM events WHERE entity_id = ? ORDER BY entity_seq ASC`
	if limit > 0 {
		return s.queryEvents(ctx, q+` LIMIT ?`, entityID, limit)
	}
	return s.queryEvents(ctx, q, entityID)
}

func (s Store) queryEvents(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var id, typ, entityID, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &tsMs, &typ, &entityID, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

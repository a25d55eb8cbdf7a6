package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"motionline/internal/animation"
	"motionline/internal/model"
)

// LoadSQLite loads the workspace snapshot from .motionline/index.sqlite.
// An empty database yields an empty DB at the current version.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return loadStateFromSQLite(ctx, db)
}

// SaveSQLite replaces the stored snapshot with st in one transaction.
func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	version := st.Version
	if version == 0 {
		version = currentVersion
	}
	meta := map[string]string{
		"version":         strconv.Itoa(version),
		"active_layer_id": strings.TrimSpace(st.ActiveLayerID),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all strategy: the snapshot is small and always written whole.
	for _, t := range []string{"animation", "tracks", "selections"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	if st.Animation != nil {
		raw, err := json.Marshal(st.Animation)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO animation(id, name, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			st.Animation.ID, st.Animation.Name, string(raw), nowMs); err != nil {
			return err
		}
	}

	levels := []model.TrackType{model.TrackTypeLayer, model.TrackTypeBone, model.TrackTypeProperty}
	for _, lvl := range levels {
		for _, tr := range st.Timeline.TracksOf(lvl) {
			raw, err := json.Marshal(tr)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO tracks(level, track_number, track_id, parent_track_number, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
				string(lvl), tr.Identifier.TrackNumber, tr.Identifier.TrackID, tr.Identifier.ParentTrackNumber, string(raw), nowMs); err != nil {
				return fmt.Errorf("save %s track %s: %w", lvl, tr.Identifier.TrackID, err)
			}
		}
		for _, c := range st.Timeline.SelectionOf(lvl) {
			raw, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO selections(level, track_number, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
				string(lvl), c.Identifier.TrackNumber, string(raw), nowMs); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

const currentVersion = 1

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS animation (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tracks (
			level TEXT NOT NULL,
			track_number INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			parent_track_number INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(level, track_number)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_track_id ON tracks(track_id);`,
		`CREATE TABLE IF NOT EXISTS selections (
			level TEXT NOT NULL,
			track_number INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(level, track_number)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: currentVersion}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	out.ActiveLayerID = readMeta("active_layer_id")

	anims, err := readJSONRows[animation.Animation](ctx, db, `SELECT json FROM animation LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(anims) == 1 {
		out.Animation = &anims[0]
	}

	tracks := func(lvl model.TrackType) ([]model.Track, error) {
		xs, err := readJSONRows[model.Track](ctx, db, `SELECT json FROM tracks WHERE level = ? ORDER BY track_number`, string(lvl))
		if xs == nil {
			xs = []model.Track{}
		}
		return xs, err
	}
	clusters := func(lvl model.TrackType) ([]model.SelectionCluster, error) {
		xs, err := readJSONRows[model.SelectionCluster](ctx, db, `SELECT json FROM selections WHERE level = ? ORDER BY track_number`, string(lvl))
		if xs == nil {
			xs = []model.SelectionCluster{}
		}
		return xs, err
	}

	tl := &out.Timeline
	if tl.Layers, err = tracks(model.TrackTypeLayer); err != nil {
		return nil, err
	}
	if tl.Bones, err = tracks(model.TrackTypeBone); err != nil {
		return nil, err
	}
	if tl.Properties, err = tracks(model.TrackTypeProperty); err != nil {
		return nil, err
	}
	if tl.SelectedLayers, err = clusters(model.TrackTypeLayer); err != nil {
		return nil, err
	}
	if tl.SelectedBones, err = clusters(model.TrackTypeBone); err != nil {
		return nil, err
	}
	if tl.SelectedProperties, err = clusters(model.TrackTypeProperty); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package store

import (
	"context"
	"os"
	"path/filepath"

	"motionline/internal/animation"
	"motionline/internal/model"
)

const (
	dirName       = ".motionline"
	indexFileName = "index.sqlite"
)

// DB is the persisted workspace snapshot: the animation document, which layer is resident
// and the resident layer's timeline (tracks plus selections).
type DB struct {
	Version       int                  `json:"version"`
	Animation     *animation.Animation `json:"animation,omitempty"`
	ActiveLayerID string               `json:"activeLayerId,omitempty"`
	Timeline      model.Timeline       `json:"timeline"`
}

// HasAnimation reports whether an animation has been imported.
func (db *DB) HasAnimation() bool {
	return db != nil && db.Animation != nil
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Exists reports whether the workspace has been initialized.
func (s Store) Exists() bool {
	_, err := os.Stat(s.IndexPath())
	return err == nil
}

func (s Store) IndexPath() string {
	return filepath.Join(s.Dir, indexFileName)
}

func (s Store) Load() (*DB, error) {
	return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	return s.SaveSQLite(context.Background(), db)
}

func (s Store) AppendEvent(typ, entityID string, payload any) error {
	return s.appendEventSQLite(context.Background(), typ, entityID, payload)
}

func (s Store) ReadEvents(limit int) ([]model.Event, error) {
	return s.readEventsSQLite(context.Background(), limit)
}

// ReadEventsTail returns the most recent limit events, oldest first.
func (s Store) ReadEventsTail(limit int) ([]model.Event, error) {
	return s.readEventsTailSQLite(context.Background(), limit)
}

func (s Store) ReadEventsForEntity(entityID string, limit int) ([]model.Event, error) {
	return s.readEventsForEntitySQLite(context.Background(), entityID, limit)
}

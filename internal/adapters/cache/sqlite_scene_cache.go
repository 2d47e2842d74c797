package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autodrive-service/internal/domain"
)

// SQLite backed cache mapping route coordinates to previously fetched scene
// metadata. Keys are coordinates quantized to ~10m so nearby samples on
// repeated drives share entries. Only the provider response is persisted;
// drive-session state never touches this table.
type SqliteSceneCache struct {
	DB *sql.DB
}

func NewSqliteSceneCache(db *sql.DB) *SqliteSceneCache {
	return &SqliteSceneCache{DB: db}
}

// InitSchema creates the scene cache table if it does not exist.
func (s *SqliteSceneCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("scene cache: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS scene_cache (
        coord_key TEXT PRIMARY KEY,
        pano_id   TEXT NOT NULL,
        image_url TEXT NOT NULL,
        lat       REAL NOT NULL,
        lon       REAL NOT NULL
    );
	`)
	if err != nil {
		return fmt.Errorf("init scene cache schema: %w", err)
	}

	return nil
}

// coordKey quantizes a coordinate to four decimal places (~11m) so that
// adjacent route samples resolve to a stable cache key.
func coordKey(c domain.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Get returns cached scene metadata for a coordinate, if present.
func (s *SqliteSceneCache) Get(ctx context.Context, c domain.Coordinates) (domain.SceneHandle, bool, error) {
	if s.DB == nil {
		return domain.SceneHandle{}, false, errors.New("scene cache: db is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT pano_id, image_url, lat, lon
    FROM scene_cache
    WHERE coord_key = ?;
	`, coordKey(c))

	var h domain.SceneHandle
	err := row.Scan(&h.PanoID, &h.ImageURL, &h.Location.Lat, &h.Location.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SceneHandle{}, false, nil
	}
	if err != nil {
		return domain.SceneHandle{}, false, fmt.Errorf("get scene cache: scan row: %w", err)
	}

	return h, true, nil
}

// Put stores scene metadata for a coordinate.
func (s *SqliteSceneCache) Put(ctx context.Context, c domain.Coordinates, h domain.SceneHandle) error {
	if s.DB == nil {
		return errors.New("scene cache: db is nil")
	}

	if h.PanoID == "" {
		return errors.New("put scene cache: empty pano id")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO scene_cache (
        coord_key,
        pano_id,
        image_url,
        lat,
        lon
    )
    VALUES (?, ?, ?, ?, ?);
	`, coordKey(c), h.PanoID, h.ImageURL, h.Location.Lat, h.Location.Lon)
	if err != nil {
		return fmt.Errorf("put scene cache coord=%q: %w", coordKey(c), err)
	}

	return nil
}

// Package sqlite holds device-local storage backed by an embedded sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"studioflow/internal/domain/repositories"
)

const signatureSchema = `
CREATE TABLE IF NOT EXISTS saved_signatures (
    device_id  TEXT PRIMARY KEY,
    image_data TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SignatureCacheStore keeps one saved signature per device in a sqlite file.
// It never leaves the machine it runs on.
type SignatureCacheStore struct {
	db *sql.DB
}

// OpenSignatureCache opens (or creates) the cache file at path
func OpenSignatureCache(path string) (*SignatureCacheStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open signature cache: %w", err)
	}

	if _, err := db.Exec(signatureSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate signature cache: %w", err)
	}

	return &SignatureCacheStore{db: db}, nil
}

// Close closes the database connection
func (s *SignatureCacheStore) Close() error {
	return s.db.Close()
}

// ForDevice returns the cache slot of one device
func (s *SignatureCacheStore) ForDevice(deviceID string) repositories.SignatureCache {
	return &deviceSlot{db: s.db, deviceID: deviceID}
}

type deviceSlot struct {
	db       *sql.DB
	deviceID string
}

// SavedSignature returns the device's cached image, if any
func (d *deviceSlot) SavedSignature(ctx context.Context) (string, bool, error) {
	if d.deviceID == "" {
		return "", false, nil
	}
	var img string
	err := d.db.QueryRowContext(ctx,
		`SELECT image_data FROM saved_signatures WHERE device_id = ?`,
		d.deviceID,
	).Scan(&img)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read saved signature: %w", err)
	}
	return img, true, nil
}

// SaveSignature overwrites the device's cached image
func (d *deviceSlot) SaveSignature(ctx context.Context, imageData string) error {
	if d.deviceID == "" {
		return nil
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO saved_signatures (device_id, image_data, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(device_id) DO UPDATE SET image_data = excluded.image_data, updated_at = excluded.updated_at`,
		d.deviceID, imageData,
	)
	if err != nil {
		return fmt.Errorf("save signature: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liveeditor/internal/domain"
)

// BackupStore implements domain.BackupStore using SQLite. Records are never
// expired; they are only removed by DeleteBackup.
type BackupStore struct {
	db *DB
}

func NewBackupStore(db *DB) *BackupStore {
	return &BackupStore{db: db}
}

// GetBackup returns the record under key, or nil if none exists.
func (s *BackupStore) GetBackup(ctx context.Context, tenantID, key string) (*domain.ThemeSnapshot, error) {
	var raw string
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT record_json FROM theme_backups WHERE tenant_id = ? AND backup_key = ?`, tenantID, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", key, err)
	}
	snap := &domain.ThemeSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", key, err)
	}
	return snap, nil
}

func (s *BackupStore) PutBackup(ctx context.Context, tenantID string, snap *domain.ThemeSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode backup %s: %w", snap.Key, err)
	}
	created := snap.CapturedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO theme_backups (tenant_id, backup_key, theme, record_json, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id, backup_key) DO UPDATE SET
			theme = excluded.theme,
			record_json = excluded.record_json,
			created_at = excluded.created_at`,
		tenantID, snap.Key, snap.Theme, string(raw), created,
	)
	if err != nil {
		return fmt.Errorf("put backup %s: %w", snap.Key, err)
	}
	return nil
}

func (s *BackupStore) DeleteBackup(ctx context.Context, tenantID, key string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM theme_backups WHERE tenant_id = ? AND backup_key = ?`, tenantID, key)
	return err
}

// ListBackups returns the tenant's backup keys ordered by theme number.
func (s *BackupStore) ListBackups(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT backup_key FROM theme_backups WHERE tenant_id = ? ORDER BY theme ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

var _ domain.BackupStore = (*BackupStore)(nil)

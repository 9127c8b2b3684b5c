package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liveeditor/internal/domain"
)

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// encodeDocument returns the canonical JSON of a document. UpdatedAt lives in
// its own column so identical content always encodes to identical bytes.
func encodeDocument(doc *domain.TenantDocument) ([]byte, string, error) {
	c := *doc
	c.UpdatedAt = time.Time{}
	raw, err := json.Marshal(&c)
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	sum := sha256.Sum256(raw)
	return raw, hex.EncodeToString(sum[:]), nil
}

func decodeDocument(raw []byte, tenantID string) (*domain.TenantDocument, error) {
	doc := domain.NewTenantDocument(tenantID)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.TenantID = tenantID
	if doc.ComponentSettings == nil {
		doc.ComponentSettings = map[string]domain.PageComposition{}
	}
	if doc.StaticPagesData == nil {
		doc.StaticPagesData = map[string]domain.StaticPage{}
	}
	return doc, nil
}

// LoadDocument returns the tenant's document, or an empty one if none has
// been saved yet.
func (s *DocumentStore) LoadDocument(ctx context.Context, tenantID string) (*domain.TenantDocument, error) {
	var (
		raw       string
		updatedAt time.Time
	)
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT document_json, updated_at FROM tenant_documents WHERE tenant_id = ?`, tenantID,
	).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewTenantDocument(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc, err := decodeDocument([]byte(raw), tenantID)
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = updatedAt
	return doc, nil
}

// SaveDocument upserts the document. A save whose content matches what is
// stored is a no-op, so repeated syncs leave the row untouched.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.TenantDocument) error {
	raw, hash, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	var current string
	err = s.db.Conn().QueryRowContext(ctx,
		`SELECT content_hash FROM tenant_documents WHERE tenant_id = ?`, doc.TenantID,
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read document hash: %w", err)
	}
	if current == hash {
		return nil
	}

	now := time.Now()
	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO tenant_documents (tenant_id, active_theme, document_json, content_hash, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id) DO UPDATE SET
			active_theme = excluded.active_theme,
			document_json = excluded.document_json,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at`,
		doc.TenantID, doc.ActiveTheme, string(raw), hash, now,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	doc.UpdatedAt = now
	return nil
}

// RawDocument returns the stored JSON exactly as persisted.
func (s *DocumentStore) RawDocument(ctx context.Context, tenantID string) ([]byte, error) {
	var raw string
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT document_json FROM tenant_documents WHERE tenant_id = ?`, tenantID,
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("get raw document: %w", err)
	}
	return []byte(raw), nil
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

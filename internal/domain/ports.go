package domain

import "context"

// ElementBounds is the measured box of one rendered component.
type ElementBounds struct {
	ID       string  `json:"id"`
	Zone     ZoneKey `json:"zone"`
	Position int     `json:"position"`
	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
}

// Midpoint is the vertical centre of the element.
func (b ElementBounds) Midpoint() float64 {
	return b.Top + (b.Bottom-b.Top)/2
}

// LayoutQueryPort is the only coupling to whatever renders the page. The
// engine reads element boxes and writes back the component id and position
// attributes plus a position: relative hint.
type LayoutQueryPort interface {
	ListComponentBounds() []ElementBounds
	TagElement(id string, position int)
}

// DocumentStore persists tenant documents.
type DocumentStore interface {
	LoadDocument(ctx context.Context, tenantID string) (*TenantDocument, error)
	SaveDocument(ctx context.Context, doc *TenantDocument) error
}

// BackupStore persists theme snapshots keyed by BackupKey.
type BackupStore interface {
	GetBackup(ctx context.Context, tenantID, key string) (*ThemeSnapshot, error)
	PutBackup(ctx context.Context, tenantID string, snap *ThemeSnapshot) error
	DeleteBackup(ctx context.Context, tenantID, key string) error
	ListBackups(ctx context.Context, tenantID string) ([]string, error)
}

// ThemeSource resolves theme definitions by number.
type ThemeSource interface {
	Definition(number int) (*ThemeDefinition, error)
}

package domain

import "time"

// TenantDocument is the persisted site document of one tenant. It is only
// written through the store synchronizer.
type TenantDocument struct {
	TenantID             string                     `json:"tenantId"`
	ActiveTheme          int                        `json:"activeTheme"`
	ComponentSettings    map[string]PageComposition `json:"componentSettings"`
	GlobalComponentsData GlobalComponentsData       `json:"globalComponentsData"`
	StaticPagesData      map[string]StaticPage      `json:"staticPagesData"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
}

// NewTenantDocument returns an empty document for a tenant.
func NewTenantDocument(tenantID string) *TenantDocument {
	return &TenantDocument{
		TenantID:          tenantID,
		ComponentSettings: map[string]PageComposition{},
		StaticPagesData:   map[string]StaticPage{},
	}
}

// PageShape returns the shape a page was persisted in, if any.
func (d *TenantDocument) PageShape(page string) (Shape, bool) {
	if d == nil {
		return "", false
	}
	c, ok := d.ComponentSettings[page]
	if !ok || !c.Shape.Valid() {
		return "", false
	}
	return c.Shape, true
}

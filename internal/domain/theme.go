package domain

import (
	"fmt"
	"time"
)

// ThemeDefinition is the read-only default composition of one theme.
type ThemeDefinition struct {
	Number      int                             `json:"number"`
	Name        string                          `json:"name"`
	Locales     []string                        `json:"locales,omitempty"`
	Pages       map[string]ThemePage            `json:"pages"`
	Global      GlobalDefaults                  `json:"globalComponents"`
	StaticPages map[string]StaticPageDefinition `json:"staticPages,omitempty"`
}

// ThemePage is a page's default components. Shape is optional; an empty
// shape means the theme does not declare one.
type ThemePage struct {
	Shape      Shape           `json:"shape,omitempty"`
	Components []ComponentNode `json:"components"`
}

// GlobalSlot is the default of a global component (header or footer).
type GlobalSlot struct {
	Variant  string         `json:"variant"`
	Variants []string       `json:"variants,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Offers reports whether the slot still provides the given variant. A slot
// with no declared variant list offers only its default.
func (s GlobalSlot) Offers(variant string) bool {
	if variant == "" {
		return false
	}
	if variant == s.Variant {
		return true
	}
	for _, v := range s.Variants {
		if v == variant {
			return true
		}
	}
	return false
}

type GlobalDefaults struct {
	Header GlobalSlot `json:"header"`
	Footer GlobalSlot `json:"footer"`
}

// StaticPageDefinition is a special page (property or project detail) the
// theme defines.
type StaticPageDefinition struct {
	Title        map[string]string `json:"title,omitempty"`
	Description  map[string]string `json:"description,omitempty"`
	Components   []ComponentNode   `json:"components"`
	APIEndpoints map[string]string `json:"apiEndpoints,omitempty"`
}

type MetaDescriptor struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StaticPage is a static page as held in the editor and persisted document.
type StaticPage struct {
	Slug         string                    `json:"slug"`
	Components   []ComponentNode           `json:"components"`
	APIEndpoints map[string]string         `json:"apiEndpoints,omitempty"`
	Meta         map[string]MetaDescriptor `json:"meta,omitempty"`
}

func (p StaticPage) Clone() StaticPage {
	out := p
	out.Components = CloneNodes(p.Components)
	if p.APIEndpoints != nil {
		out.APIEndpoints = make(map[string]string, len(p.APIEndpoints))
		for k, v := range p.APIEndpoints {
			out.APIEndpoints[k] = v
		}
	}
	if p.Meta != nil {
		out.Meta = make(map[string]MetaDescriptor, len(p.Meta))
		for k, v := range p.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

func CloneStaticPages(in map[string]StaticPage) map[string]StaticPage {
	out := make(map[string]StaticPage, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

type GlobalVariants struct {
	Header string `json:"header"`
	Footer string `json:"footer"`
}

// GlobalComponentsData is the header/footer payload plus the selected
// variants.
type GlobalComponentsData struct {
	Header   map[string]any `json:"header"`
	Footer   map[string]any `json:"footer"`
	Variants GlobalVariants `json:"globalComponents"`
}

// VariantField is the key the resolved variant is embedded under inside the
// header and footer payloads.
const VariantField = "variant"

// EmbedVariants writes the selected variants into their payloads so variant
// selection travels with the data it configures.
func (g GlobalComponentsData) EmbedVariants() GlobalComponentsData {
	out := g.Clone()
	if out.Header == nil {
		out.Header = map[string]any{}
	}
	if out.Footer == nil {
		out.Footer = map[string]any{}
	}
	if out.Variants.Header != "" {
		out.Header[VariantField] = out.Variants.Header
	}
	if out.Variants.Footer != "" {
		out.Footer[VariantField] = out.Variants.Footer
	}
	return out
}

func (g GlobalComponentsData) Clone() GlobalComponentsData {
	return GlobalComponentsData{
		Header:   CloneFields(g.Header),
		Footer:   CloneFields(g.Footer),
		Variants: g.Variants,
	}
}

func (g GlobalComponentsData) IsZero() bool {
	return len(g.Header) == 0 && len(g.Footer) == 0 && g.Variants == (GlobalVariants{})
}

// ThemeSnapshot is the backup record of a theme's full composition.
type ThemeSnapshot struct {
	Key              string                     `json:"key"`
	Theme            int                        `json:"theme"`
	Pages            map[string]PageComposition `json:"pages"`
	GlobalComponents GlobalComponentsData       `json:"_globalComponentsData"`
	StaticPages      map[string]StaticPage      `json:"_staticPagesData"`
	CapturedAt       time.Time                  `json:"capturedAt"`
}

// IsEmpty reports whether the snapshot has nothing worth restoring.
func (s *ThemeSnapshot) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, p := range s.Pages {
		if p.Len() > 0 {
			return false
		}
	}
	return len(s.StaticPages) == 0 && s.GlobalComponents.IsZero()
}

// BackupKey is the storage key of a theme's backup record.
func BackupKey(theme int) string {
	return fmt.Sprintf("Theme%dBackup", theme)
}

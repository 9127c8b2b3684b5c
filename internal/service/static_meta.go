package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"liveeditor/internal/composition"
	"liveeditor/internal/domain"
)

// DefaultLocales is used when a theme does not list its locales.
var DefaultLocales = []string{"en"}

// StaticPagesFromDefinition builds the static pages a theme defines, with a
// meta descriptor per locale. A missing title falls back to the title-cased
// slug; a missing description stays empty.
func StaticPagesFromDefinition(def *domain.ThemeDefinition) map[string]domain.StaticPage {
	out := make(map[string]domain.StaticPage, len(def.StaticPages))
	locales := def.Locales
	if len(locales) == 0 {
		locales = DefaultLocales
	}
	for slug, sd := range def.StaticPages {
		page := domain.StaticPage{
			Slug:       slug,
			Components: composition.Renumber(domain.CloneNodes(sd.Components)),
			Meta:       make(map[string]domain.MetaDescriptor, len(locales)),
		}
		if len(sd.APIEndpoints) > 0 {
			page.APIEndpoints = make(map[string]string, len(sd.APIEndpoints))
			for k, v := range sd.APIEndpoints {
				page.APIEndpoints[k] = v
			}
		}
		for _, loc := range locales {
			title := sd.Title[loc]
			if title == "" {
				title = slugTitle(slug, loc)
			}
			page.Meta[loc] = domain.MetaDescriptor{Title: title, Description: sd.Description[loc]}
		}
		out[slug] = page
	}
	return out
}

// slugTitle turns "property-detail" into "Property Detail".
func slugTitle(slug, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == '/' })
	return cases.Title(tag).String(strings.Join(words, " "))
}

package state

import (
	"sort"
	"sync"

	"liveeditor/internal/domain"
)

// StaticPageStore is the per-slug store static pages resolve their
// authoritative component list from. It is written independently of the
// editor buffer.
type StaticPageStore struct {
	mu    sync.RWMutex
	pages map[string]domain.StaticPage
}

func NewStaticPageStore() *StaticPageStore {
	return &StaticPageStore{pages: make(map[string]domain.StaticPage)}
}

func (s *StaticPageStore) Get(slug string) (domain.StaticPage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[slug]
	if !ok {
		return domain.StaticPage{}, false
	}
	return p.Clone(), true
}

func (s *StaticPageStore) Put(page domain.StaticPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.Slug] = page.Clone()
}

// Replace swaps the whole store content.
func (s *StaticPageStore) Replace(pages map[string]domain.StaticPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = domain.CloneStaticPages(pages)
}

func (s *StaticPageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[string]domain.StaticPage)
}

func (s *StaticPageStore) Slugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pages))
	for slug := range s.pages {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

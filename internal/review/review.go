// Package review is the read-only, tabbed and paginated view over a staged import.
package review

import (
	"fmt"
	"strings"
	"sync"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/paginate"
)

// Category selects one of the two staged collections.
type Category string

const (
	CategoryDocuments Category = "protocolos"
	CategoryEvents    Category = "andamentos"
)

// DefaultPageSize is used when a surface is built with a non-positive page size.
const DefaultPageSize = 10

// ParseCategory accepts the wire names of the collections.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDocuments:
		return CategoryDocuments, nil
	case CategoryEvents:
		return CategoryEvents, nil
	default:
		return "", fmt.Errorf("unknown review category %q", s)
	}
}

// View is one page of one category. Exactly one of Documents or Events is set.
type View struct {
	Category   Category                 `json:"category"`
	Documents  []entities.SubDocument   `json:"protocolos,omitempty"`
	Events     []entities.TimelineEvent `json:"andamentos,omitempty"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	Total      int                      `json:"total"`
	TotalPages int                      `json:"total_pages"`
	HasPrev    bool                     `json:"has_prev"`
	HasNext    bool                     `json:"has_next"`
}

// Surface keeps the active tab and an independent page index per category.
// It only reads the session.
type Surface struct {
	session  *importsession.Session
	pageSize int

	mu         sync.Mutex
	active     Category
	pages      map[Category]int
	generation uint64
}

// NewSurface creates a surface over session showing pageSize rows per page.
func NewSurface(session *importsession.Session, pageSize int) *Surface {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Surface{
		session:  session,
		pageSize: pageSize,
		active:   CategoryDocuments,
		pages:    map[Category]int{CategoryDocuments: 0, CategoryEvents: 0},
	}
}

// PageSize returns the fixed page size.
func (s *Surface) PageSize() int {
	return s.pageSize
}

// Active returns the selected category.
func (s *Surface) Active() Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// PageOf returns the remembered page index of a category.
func (s *Surface) PageOf(c Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gen, _ := s.session.Staged(); gen != s.generation {
		return 0
	}
	return s.pages[c]
}

// Select switches the active tab. Page indices are left alone.
func (s *Surface) Select(c Category) (View, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	s.active = c
	s.mu.Unlock()
	return s.View(c, s.PageOf(c))
}

// Current returns the remembered page of the active tab.
func (s *Surface) Current() (View, error) {
	c := s.Active()
	return s.View(c, s.PageOf(c))
}

// View returns page of category c and remembers it as that category's page.
// Pages past the end are empty, not errors.
func (s *Surface) View(c Category, page int) (View, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return View{}, err
	}
	if page < 0 {
		page = 0
	}

	s.mu.Lock()
	bundle, generation, _ := s.session.Staged()
	s.syncLocked(generation)
	s.pages[c] = page
	s.mu.Unlock()

	switch c {
	case CategoryEvents:
		p := paginate.NewPage(bundle.Events, page, s.pageSize)
		return View{
			Category:   c,
			Events:     p.Items,
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasPrev:    p.HasPrev,
			HasNext:    p.HasNext,
		}, nil
	default:
		p := paginate.NewPage(bundle.SubDocuments, page, s.pageSize)
		return View{
			Category:   c,
			Documents:  p.Items,
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasPrev:    p.HasPrev,
			HasNext:    p.HasNext,
		}, nil
	}
}

// CurrentLocation returns the last timeline event, which is where the case is now.
func (s *Surface) CurrentLocation() (entities.TimelineEvent, bool) {
	bundle, _, ok := s.session.Staged()
	if !ok || len(bundle.Events) == 0 {
		return entities.TimelineEvent{}, false
	}
	return bundle.Events[len(bundle.Events)-1], true
}

// syncLocked resets every page index when the staged collections were replaced.
// Generations only move forward; an older one is ignored.
func (s *Surface) syncLocked(generation uint64) {
	if generation <= s.generation {
		return
	}
	s.generation = generation
	for c := range s.pages {
		s.pages[c] = 0
	}
}

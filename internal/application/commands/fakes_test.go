package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"zdguide/internal/application"
	"zdguide/internal/domain"
	"zdguide/internal/ports"
)

// memStore is an in-memory ContentStore
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	terms    map[int64]*domain.Term
	articles map[int64]*domain.Article

	findTermCalls int
	slugWrites    int

	failCreateName string // CreateTerm fails for this name
	failList       error  // ListSyncedTerms fails
}

var _ ports.ContentStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		terms:    make(map[int64]*domain.Term),
		articles: make(map[int64]*domain.Article),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) FindTermByExternalID(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findTermCalls++
	for _, id := range s.sortedTermIDs() {
		t := s.terms[id]
		if t.Kind == kind && t.ExternalID == externalID {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetTerm(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.terms[id]
	if !ok || t.Kind != kind {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (s *memStore) ListSyncedTerms(ctx context.Context, kind domain.EntityKind) ([]domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []domain.Term
	for _, id := range s.sortedTermIDs() {
		t := s.terms[id]
		if t.Kind == kind && t.HasExternalID() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) ListTerms(ctx context.Context, kind domain.EntityKind, limit int) ([]domain.TermSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TermSummary
	for _, t := range s.terms {
		if t.Kind != kind {
			continue
		}
		count := 0
		for _, a := range s.articles {
			if a.Status == domain.ArticleStatusPublished && (a.SectionID == t.ID || a.CategoryID == t.ID) {
				count++
			}
		}
		out = append(out, domain.TermSummary{Term: *t, ArticleCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CreateTerm(ctx context.Context, term *domain.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if term.Name == s.failCreateName && s.failCreateName != "" {
		return errors.New("disk full")
	}
	for _, t := range s.terms {
		if t.Kind == term.Kind && t.Slug == term.Slug {
			return fmt.Errorf("UNIQUE constraint failed: %s", term.Slug)
		}
	}
	term.ID = s.id()
	c := *term
	s.terms[term.ID] = &c
	return nil
}

func (s *memStore) UpdateTerm(ctx context.Context, term *domain.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.terms[term.ID]
	if !ok {
		return application.ErrNotFound
	}
	t.Name = term.Name
	t.Description = term.Description
	t.ParentID = term.ParentID
	return nil
}

func (s *memStore) SetTermSlug(ctx context.Context, kind domain.EntityKind, id int64, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.terms[id]
	if !ok {
		return application.ErrNotFound
	}
	s.slugWrites++
	t.Slug = slug
	return nil
}

func (s *memStore) SetTermExternalID(ctx context.Context, kind domain.EntityKind, id, externalID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.terms[id]
	if !ok {
		return application.ErrNotFound
	}
	t.ExternalID = externalID
	return nil
}

func (s *memStore) UniqueSlug(ctx context.Context, kind domain.EntityKind, slug string, excludeID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := func(candidate string) bool {
		if kind == domain.KindArticle {
			for id, a := range s.articles {
				if id != excludeID && a.Slug == candidate {
					return true
				}
			}
			return false
		}
		for id, t := range s.terms {
			if id != excludeID && t.Kind == kind && t.Slug == candidate {
				return true
			}
		}
		return false
	}

	candidate := slug
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
	return candidate, nil
}

func (s *memStore) FindArticleByExternalID(ctx context.Context, externalID int64) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *domain.Article
	for _, a := range s.articles {
		if a.ExternalID == externalID && (best == nil || a.ID < best.ID) {
			best = a
		}
	}
	if best == nil {
		return nil, nil
	}
	c := *best
	return &c, nil
}

func (s *memStore) SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	words := strings.Fields(strings.ToLower(query))
	var out []domain.Article
	for _, id := range s.sortedArticleIDs() {
		a := s.articles[id]
		if a.Status != domain.ArticleStatusPublished || len(words) == 0 {
			continue
		}
		title, body := strings.ToLower(a.Title), strings.ToLower(a.Body)
		all := true
		for _, w := range words {
			if !strings.Contains(title, w) && !strings.Contains(body, w) {
				all = false
				break
			}
		}
		if all {
			out = append(out, *a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CreateArticle(ctx context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	article.ID = s.id()
	c := *article
	s.articles[article.ID] = &c
	return nil
}

func (s *memStore) UpdateArticle(ctx context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[article.ID]
	if !ok {
		return application.ErrNotFound
	}
	a.Title = article.Title
	a.Body = article.Body
	a.Status = article.Status
	a.ExternalID = article.ExternalID
	return nil
}

func (s *memStore) SetArticleTerm(ctx context.Context, articleID int64, kind domain.EntityKind, termID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok {
		return application.ErrNotFound
	}
	switch kind {
	case domain.KindSection:
		a.SectionID = termID
	case domain.KindCategory:
		a.CategoryID = termID
	default:
		return fmt.Errorf("invalid kind %s", kind)
	}
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) sortedTermIDs() []int64 {
	ids := make([]int64, 0, len(s.terms))
	for id := range s.terms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memStore) sortedArticleIDs() []int64 {
	ids := make([]int64, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// termsOf returns the terms of kind in creation order
func (s *memStore) termsOf(kind domain.EntityKind) []domain.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Term
	for _, id := range s.sortedTermIDs() {
		if t := s.terms[id]; t.Kind == kind {
			out = append(out, *t)
		}
	}
	return out
}

func (s *memStore) articleList() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Article
	for _, id := range s.sortedArticleIDs() {
		out = append(out, *s.articles[id])
	}
	return out
}

// fakeHelpCenter serves canned remote data
type fakeHelpCenter struct {
	mu sync.Mutex

	categories    []ports.RemoteCategory
	categoriesErr error
	sections      map[int64][]ports.RemoteSection
	articles      map[int64][]ports.RemoteArticle
	failParents   map[int64]error // per-parent fetch errors
	forms         []ports.TicketForm
	connErr       error

	calls int
}

var _ ports.HelpCenter = (*fakeHelpCenter)(nil)

func (f *fakeHelpCenter) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeHelpCenter) TestConnection(ctx context.Context) error {
	f.count()
	return f.connErr
}

func (f *fakeHelpCenter) ListCategories(ctx context.Context) ([]ports.RemoteCategory, error) {
	f.count()
	return f.categories, f.categoriesErr
}

func (f *fakeHelpCenter) ListSections(ctx context.Context, categoryID int64) ([]ports.RemoteSection, error) {
	f.count()
	if err := f.failParents[categoryID]; err != nil {
		return nil, err
	}
	return f.sections[categoryID], nil
}

func (f *fakeHelpCenter) ListArticles(ctx context.Context, sectionID int64) ([]ports.RemoteArticle, error) {
	f.count()
	if err := f.failParents[sectionID]; err != nil {
		return nil, err
	}
	return f.articles[sectionID], nil
}

func (f *fakeHelpCenter) ListTicketForms(ctx context.Context) ([]ports.TicketForm, error) {
	f.count()
	return f.forms, nil
}

var validCreds = ports.Credentials{Subdomain: "acme", Email: "ops@acme.test", APIToken: "tok"}

func newTestApp(t *testing.T, store *memStore, remote *fakeHelpCenter) *application.Context {
	t.Helper()
	return &application.Context{
		Store: store,
		Clients: ports.ClientFactoryFunc(func(ports.Credentials) ports.HelpCenter {
			return remote
		}),
		Credentials: validCreds,
		SiteURL:     "https://docs.acme.test/",
	}
}

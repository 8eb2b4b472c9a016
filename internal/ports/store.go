package ports

import (
	"context"

	"zdguide/internal/domain"
)

// ContentStore defines the local persistence for synced terms and articles.
// Lookups that find nothing return (nil, nil).
type ContentStore interface {
	// Term queries
	FindTermByExternalID(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.Term, error)
	GetTerm(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Term, error)
	ListSyncedTerms(ctx context.Context, kind domain.EntityKind) ([]domain.Term, error)
	ListTerms(ctx context.Context, kind domain.EntityKind, limit int) ([]domain.TermSummary, error)

	// Term writes
	CreateTerm(ctx context.Context, term *domain.Term) error
	// UpdateTerm writes name, description and parent; the slug is left alone
	UpdateTerm(ctx context.Context, term *domain.Term) error
	SetTermSlug(ctx context.Context, kind domain.EntityKind, id int64, slug string) error
	SetTermExternalID(ctx context.Context, kind domain.EntityKind, id, externalID int64) error

	// UniqueSlug returns slug, or slug with a "-N" suffix, such that no other
	// entity of kind (ignoring excludeID) uses it.
	UniqueSlug(ctx context.Context, kind domain.EntityKind, slug string, excludeID int64) (string, error)

	// Article queries; FindArticleByExternalID returns the lowest-ID match
	FindArticleByExternalID(ctx context.Context, externalID int64) (*domain.Article, error)
	SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error)

	// Article writes
	CreateArticle(ctx context.Context, article *domain.Article) error
	UpdateArticle(ctx context.Context, article *domain.Article) error

	// SetArticleTerm replaces the article's classification for kind
	SetArticleTerm(ctx context.Context, articleID int64, kind domain.EntityKind, termID int64) error

	Close() error
}

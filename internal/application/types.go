package application

import (
	"fmt"

	"zdguide/internal/domain"
)

// Re-export domain types for use by adapters
type (
	EntityKind  = domain.EntityKind
	Term        = domain.Term
	Article     = domain.Article
	TermSummary = domain.TermSummary
	SyncStats   = domain.SyncStats
)

const (
	KindCategory = domain.KindCategory
	KindSection  = domain.KindSection
	KindArticle  = domain.KindArticle
)

// Intent is one operator-triggered action
type Intent string

const (
	IntentTestConnection Intent = "test_connection"
	IntentSyncCategories Intent = "sync_categories"
	IntentSyncSections   Intent = "sync_sections"
	IntentSyncArticles   Intent = "sync_articles"
)

// Intents lists every operator action in cascade order
var Intents = []Intent{
	IntentTestConnection,
	IntentSyncCategories,
	IntentSyncSections,
	IntentSyncArticles,
}

// Label returns a short human-readable name
func (i Intent) Label() string {
	switch i {
	case IntentTestConnection:
		return "Test connection"
	case IntentSyncCategories:
		return "Sync categories"
	case IntentSyncSections:
		return "Sync sections"
	case IntentSyncArticles:
		return "Sync articles"
	default:
		return string(i)
	}
}

// ParseIntent validates an intent name
func ParseIntent(s string) (Intent, error) {
	for _, i := range Intents {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIntent, s)
}

// ParseEntityKind parses a kind name
func ParseEntityKind(s string) (EntityKind, error) {
	return domain.ParseEntityKind(s)
}

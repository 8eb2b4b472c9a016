package domain

import "fmt"

// EntityKind identifies one level of the help-center hierarchy
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindCategory
	KindSection
	KindArticle
)

func (k EntityKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindSection:
		return "section"
	case KindArticle:
		return "article"
	default:
		return "unknown"
	}
}

// IsTerm reports whether the kind is stored as a hierarchical term
func (k EntityKind) IsTerm() bool {
	return k == KindCategory || k == KindSection
}

// ParseEntityKind parses a kind name as produced by String
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "category", "categories":
		return KindCategory, nil
	case "section", "sections":
		return KindSection, nil
	case "article", "articles":
		return KindArticle, nil
	default:
		return KindUnknown, fmt.Errorf("unknown entity kind: %q", s)
	}
}

// ArticleStatusPublished is the only status sync ever writes
const ArticleStatusPublished = "publish"

// Term is a local Category or Section.
// A Section's ParentID points at the local ID of its Category.
type Term struct {
	ID          int64
	Kind        EntityKind
	Name        string
	Description string
	Slug        string
	ParentID    int64 // 0 for categories and orphaned sections
	ExternalID  int64 // 0 when the term was never synced
}

// HasExternalID reports whether the term carries an external-id marker
func (t *Term) HasExternalID() bool {
	return t.ExternalID != 0
}

// Article is a local leaf document
type Article struct {
	ID         int64
	Title      string
	Body       string
	Slug       string
	Status     string
	ExternalID int64
	SectionID  int64 // classification link, 0 when unset
	CategoryID int64 // classification link, 0 when unset
}

// TermSummary is a term with its article count, for index listings
type TermSummary struct {
	Term
	ArticleCount int
}

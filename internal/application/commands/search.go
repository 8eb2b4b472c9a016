package commands

import (
	"context"
	"html"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"zdguide/internal/application"
	"zdguide/internal/domain"
)

const (
	defaultSearchPerPage = 5
	maxSearchPerPage     = 20
	excerptWords         = 32
	// candidateFactor widens the store query so ranking has room to reorder
	candidateFactor = 4
)

var stripTags = bluemonday.StrictPolicy()

// SearchResult is one article hit
type SearchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
}

// SearchCommand searches published articles with fuzzy ranking
type SearchCommand struct {
	app         *application.Context
	Query       string
	PerPage     int
	ShowExcerpt bool
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(app *application.Context, query string, perPage int, showExcerpt bool) *SearchCommand {
	return &SearchCommand{
		app:         app,
		Query:       query,
		PerPage:     perPage,
		ShowExcerpt: showExcerpt,
	}
}

// Execute runs the search and returns at most PerPage ranked results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	query := strings.TrimSpace(c.Query)
	if query == "" {
		return []SearchResult{}, nil
	}
	perPage := clamp(c.PerPage, defaultSearchPerPage, 1, maxSearchPerPage)

	articles, err := c.app.Store.SearchArticles(ctx, query, perPage*candidateFactor)
	if err != nil {
		return nil, &application.StoreError{Op: "search articles", Err: err}
	}

	ranked := rankArticles(articles, query)
	if len(ranked) > perPage {
		ranked = ranked[:perPage]
	}

	results := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		hit := SearchResult{
			ID:    r.article.ID,
			Title: html.UnescapeString(r.article.Title),
			URL:   c.app.Permalink("/help-center/" + r.article.Slug),
		}
		if c.ShowExcerpt {
			hit.Excerpt = r.excerpt
		}
		results = append(results, hit)
	}
	return results, nil
}

// Excerpt strips markup from body and keeps its first words words,
// appending an ellipsis when anything was cut.
func Excerpt(body string, words int) string {
	// Separate adjacent elements so their words do not run together
	text := html.UnescapeString(stripTags.Sanitize(strings.ReplaceAll(body, "<", " <")))
	fields := strings.Fields(text)
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + "\u2026"
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '.' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

type rankedArticle struct {
	article      domain.Article
	excerpt      string
	titleScore   int
	excerptScore int
}

// wordsScore sums the fuzzy score of each query word against target
func wordsScore(target string, words []string) int {
	score := 0
	for _, w := range words {
		score += FuzzyScore(target, w)
	}
	return score
}

// rankArticles orders articles by title relevance, then excerpt relevance,
// scoring each query word on its own so word order does not matter.
// Store order breaks ties; candidates scoring zero are kept last.
func rankArticles(articles []domain.Article, query string) []rankedArticle {
	words := strings.Fields(query)
	ranked := make([]rankedArticle, 0, len(articles))
	for _, a := range articles {
		excerpt := Excerpt(a.Body, excerptWords)
		ranked = append(ranked, rankedArticle{
			article:      a,
			excerpt:      excerpt,
			titleScore:   wordsScore(a.Title, words),
			excerptScore: wordsScore(excerpt, words),
		})
	}

	slices.SortStableFunc(ranked, func(a, b rankedArticle) int {
		if a.titleScore != b.titleScore {
			return b.titleScore - a.titleScore
		}
		return b.excerptScore - a.excerptScore
	})
	return ranked
}

// clamp returns v bounded to [lo, hi], or def when v is not positive
func clamp(v, def, lo, hi int) int {
	if v <= 0 {
		v = def
	}
	return max(lo, min(v, hi))
}

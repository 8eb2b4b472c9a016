package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"zdguide/internal/domain"
)

// likeEscaper escapes LIKE wildcards so the query matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchArticles returns published articles in which every word of query
// appears in the title or body, in any order. Articles whose title holds more
// of the words come first, then the most recently updated.
func (s *Store) SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	args := []any{domain.ArticleStatusPublished}
	match := make([]string, 0, len(words))
	titleHits := make([]string, 0, len(words))
	for _, w := range words {
		pattern := "%" + likeEscaper.Replace(w) + "%"
		match = append(match, `(a.title LIKE ? ESCAPE '\' OR a.body LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	for _, w := range words {
		titleHits = append(titleHits, `(a.title LIKE ? ESCAPE '\')`)
		args = append(args, "%"+likeEscaper.Replace(w)+"%")
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, articleSelect+`
		WHERE a.status = ?
		  AND `+strings.Join(match, " AND ")+`
		ORDER BY (`+strings.Join(titleHits, " + ")+`) DESC, a.updated_at DESC, a.id DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// ListTerms returns up to limit terms of kind ordered by name, each with its
// published article count.
func (s *Store) ListTerms(ctx context.Context, kind domain.EntityKind, limit int) ([]domain.TermSummary, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.kind, t.name, t.description, t.slug, t.parent_id, t.external_id,
			(SELECT COUNT(*) FROM article_terms at
			 JOIN articles a ON a.id = at.article_id
			 WHERE at.term_id = t.id AND at.kind = t.kind AND a.status = ?)
		FROM terms t
		WHERE t.kind = ?
		ORDER BY t.name COLLATE NOCASE, t.id
		LIMIT ?
	`, domain.ArticleStatusPublished, kind.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TermSummary
	for rows.Next() {
		var (
			sum    domain.TermSummary
			k      string
			parent sql.NullInt64
			ext    sql.NullInt64
		)
		if err := rows.Scan(&sum.ID, &k, &sum.Name, &sum.Description, &sum.Slug, &parent, &ext, &sum.ArticleCount); err != nil {
			return nil, err
		}
		sum.Kind, _ = domain.ParseEntityKind(k)
		sum.ParentID = parent.Int64
		sum.ExternalID = ext.Int64
		out = append(out, sum)
	}
	return out, rows.Err()
}

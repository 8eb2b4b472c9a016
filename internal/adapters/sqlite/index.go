package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"zdguide/internal/application"
	"zdguide/internal/domain"
	"zdguide/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// openMaxElapsed bounds how long Open waits for a locked database
const openMaxElapsed = 10 * time.Second

// Store implements ports.ContentStore using SQLite
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Ensure Store implements ContentStore
var _ ports.ContentStore = (*Store)(nil)

// Open opens (creating if needed) the store at dbPath.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		expanded, err := expandHome(dbPath)
		if err != nil {
			return nil, err
		}
		dbPath = expanded

		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		dsn = "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	} else {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: sync runs are sequential and :memory: is per-connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: dbPath, now: time.Now}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = openMaxElapsed
	err = backoff.Retry(func() error {
		err := s.setup(ctx)
		if err != nil && isBusy(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return s, nil
}

// setup applies pragmas, schema and metadata in one batch
func (s *Store) setup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL,
			parent_id INTEGER REFERENCES terms(id) ON DELETE SET NULL,
			external_id INTEGER,
			UNIQUE (kind, slug)
		);
		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			external_id INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS article_terms (
			article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, kind)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_terms_external ON terms(kind, external_id);
		CREATE INDEX IF NOT EXISTS idx_articles_external ON articles(external_id);
		CREATE INDEX IF NOT EXISTS idx_article_terms_term ON article_terms(term_id);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.dbPath
}

// FindTermByExternalID retrieves a term by its external-id marker
func (s *Store) FindTermByExternalID(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.Term, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, description, slug, parent_id, external_id
		FROM terms WHERE kind = ? AND external_id = ?
		ORDER BY id LIMIT 1
	`, kind.String(), externalID)
	return scanTerm(row)
}

// GetTerm retrieves a term by local ID
func (s *Store) GetTerm(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Term, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, description, slug, parent_id, external_id
		FROM terms WHERE kind = ? AND id = ?
	`, kind.String(), id)
	return scanTerm(row)
}

// ListSyncedTerms returns every term of kind carrying an external-id marker
func (s *Store) ListSyncedTerms(ctx context.Context, kind domain.EntityKind) ([]domain.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, description, slug, parent_id, external_id
		FROM terms WHERE kind = ? AND external_id IS NOT NULL
		ORDER BY id
	`, kind.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []domain.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, *t)
	}
	return terms, rows.Err()
}

// CreateTerm inserts term and sets its ID
func (s *Store) CreateTerm(ctx context.Context, term *domain.Term) error {
	if !term.Kind.IsTerm() {
		return fmt.Errorf("create term: invalid kind %s", term.Kind)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO terms (kind, name, description, slug, parent_id, external_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, term.Kind.String(), term.Name, term.Description, term.Slug, nullInt(term.ParentID), nullInt(term.ExternalID))
	if err != nil {
		return fmt.Errorf("create term %q: %w", term.Name, err)
	}
	term.ID, err = res.LastInsertId()
	return err
}

// UpdateTerm writes name, description and parent of an existing term
func (s *Store) UpdateTerm(ctx context.Context, term *domain.Term) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE terms SET name = ?, description = ?, parent_id = ?
		WHERE id = ? AND kind = ?
	`, term.Name, term.Description, nullInt(term.ParentID), term.ID, term.Kind.String())
	if err != nil {
		return fmt.Errorf("update term %d: %w", term.ID, err)
	}
	return expectOneRow(res, "term", term.ID)
}

// SetTermSlug rewrites the slug of an existing term
func (s *Store) SetTermSlug(ctx context.Context, kind domain.EntityKind, id int64, slug string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE terms SET slug = ? WHERE id = ? AND kind = ?`, slug, id, kind.String())
	if err != nil {
		return fmt.Errorf("set slug of term %d: %w", id, err)
	}
	return expectOneRow(res, "term", id)
}

// SetTermExternalID persists the external-id marker
func (s *Store) SetTermExternalID(ctx context.Context, kind domain.EntityKind, id, externalID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE terms SET external_id = ? WHERE id = ? AND kind = ?`,
		nullInt(externalID), id, kind.String())
	if err != nil {
		return fmt.Errorf("set external id of term %d: %w", id, err)
	}
	return expectOneRow(res, "term", id)
}

// UniqueSlug appends -2, -3, ... until slug is free within kind
func (s *Store) UniqueSlug(ctx context.Context, kind domain.EntityKind, slug string, excludeID int64) (string, error) {
	query := `SELECT EXISTS (SELECT 1 FROM terms WHERE kind = ? AND slug = ? AND id <> ?)`
	args := func(candidate string) []any { return []any{kind.String(), candidate, excludeID} }
	if kind == domain.KindArticle {
		query = `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = ? AND id <> ?)`
		args = func(candidate string) []any { return []any{candidate, excludeID} }
	}

	candidate := slug
	for n := 2; ; n++ {
		var taken bool
		if err := s.db.QueryRowContext(ctx, query, args(candidate)...).Scan(&taken); err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
}

// FindArticleByExternalID returns the lowest-ID article with the marker
func (s *Store) FindArticleByExternalID(ctx context.Context, externalID int64) (*domain.Article, error) {
	row := s.db.QueryRowContext(ctx, articleSelect+`
		WHERE a.external_id = ?
		ORDER BY a.id LIMIT 1
	`, externalID)
	return scanArticle(row)
}

// CreateArticle inserts article and sets its ID
func (s *Store) CreateArticle(ctx context.Context, article *domain.Article) error {
	now := s.now().Unix()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (title, body, slug, status, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, article.Title, article.Body, article.Slug, article.Status, nullInt(article.ExternalID), now, now)
	if err != nil {
		return fmt.Errorf("create article %q: %w", article.Title, err)
	}
	article.ID, err = res.LastInsertId()
	return err
}

// UpdateArticle writes title, body, status and external id of an existing article
func (s *Store) UpdateArticle(ctx context.Context, article *domain.Article) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE articles SET title = ?, body = ?, status = ?, external_id = ?, updated_at = ?
		WHERE id = ?
	`, article.Title, article.Body, article.Status, nullInt(article.ExternalID), s.now().Unix(), article.ID)
	if err != nil {
		return fmt.Errorf("update article %d: %w", article.ID, err)
	}
	return expectOneRow(res, "article", article.ID)
}

const articleSelect = `
	SELECT a.id, a.title, a.body, a.slug, a.status, a.external_id,
		(SELECT term_id FROM article_terms WHERE article_id = a.id AND kind = 'section'),
		(SELECT term_id FROM article_terms WHERE article_id = a.id AND kind = 'category')
	FROM articles a`

type scanner interface {
	Scan(dest ...any) error
}

func scanTerm(row scanner) (*domain.Term, error) {
	var (
		t          domain.Term
		kind       string
		parentID   sql.NullInt64
		externalID sql.NullInt64
	)
	err := row.Scan(&t.ID, &kind, &t.Name, &t.Description, &t.Slug, &parentID, &externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Kind, _ = domain.ParseEntityKind(kind)
	t.ParentID = parentID.Int64
	t.ExternalID = externalID.Int64
	return &t, nil
}

func scanArticle(row scanner) (*domain.Article, error) {
	var (
		a          domain.Article
		externalID sql.NullInt64
		sectionID  sql.NullInt64
		categoryID sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.Slug, &a.Status, &externalID, &sectionID, &categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.ExternalID = externalID.Int64
	a.SectionID = sectionID.Int64
	a.CategoryID = categoryID.Int64
	return &a, nil
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, application.ErrNotFound)
	}
	return nil
}

// nullInt returns nil for zero IDs (for nullable columns)
func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// isBusy reports whether err is SQLite's transient lock contention
func isBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

// expandHome expands a leading ~ in path
func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

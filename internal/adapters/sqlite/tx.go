package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"zdguide/internal/application"
	"zdguide/internal/domain"
)

// classifyTx wraps one classification change
type classifyTx struct {
	tx *sql.Tx
}

func (s *Store) beginClassify(ctx context.Context) (*classifyTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &classifyTx{tx: tx}, nil
}

// clear removes the article's existing term of kind
func (t *classifyTx) clear(ctx context.Context, articleID int64, kind domain.EntityKind) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM article_terms WHERE article_id = ? AND kind = ?`, articleID, kind.String())
	return err
}

// assign links the article to termID, which must be a term of kind
func (t *classifyTx) assign(ctx context.Context, articleID int64, kind domain.EntityKind, termID int64) error {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM terms WHERE id = ? AND kind = ?)`, termID, kind.String()).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s %d: %w", kind, termID, application.ErrNotFound)
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO article_terms (article_id, kind, term_id) VALUES (?, ?, ?)`,
		articleID, kind.String(), termID)
	return err
}

func (t *classifyTx) commit() error {
	return t.tx.Commit()
}

func (t *classifyTx) rollback() error {
	return t.tx.Rollback()
}

// SetArticleTerm replaces the article's classification for kind.
// A zero termID leaves the article unclassified for that kind.
func (s *Store) SetArticleTerm(ctx context.Context, articleID int64, kind domain.EntityKind, termID int64) error {
	if !kind.IsTerm() {
		return fmt.Errorf("set article term: invalid kind %s", kind)
	}

	tx, err := s.beginClassify(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.rollback() }()

	if err := tx.clear(ctx, articleID, kind); err != nil {
		return fmt.Errorf("clear %s of article %d: %w", kind, articleID, err)
	}
	if termID != 0 {
		if err := tx.assign(ctx, articleID, kind, termID); err != nil {
			return fmt.Errorf("assign %s of article %d: %w", kind, articleID, err)
		}
	}
	return tx.commit()
}

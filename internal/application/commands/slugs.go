package commands

import (
	"context"
	"strconv"

	"zdguide/internal/domain"
	"zdguide/internal/ports"
)

// slugResolver turns names into collision-free slugs within a kind
type slugResolver struct {
	store ports.ContentStore
}

// forCreate derives a slug for a new entity
func (r slugResolver) forCreate(ctx context.Context, kind domain.EntityKind, name string, externalID int64) (string, error) {
	candidate := domain.DeriveSlug(name, strconv.FormatInt(externalID, 10))
	return r.store.UniqueSlug(ctx, kind, candidate, 0)
}

// forUpdate returns the slug an existing entity should carry after a rename
// and whether it differs from current. The store is only consulted when the
// derived candidate differs from current.
func (r slugResolver) forUpdate(ctx context.Context, kind domain.EntityKind, id int64, current, name string, externalID int64) (string, bool, error) {
	candidate := domain.DeriveSlug(name, strconv.FormatInt(externalID, 10))
	if candidate == current {
		return current, false, nil
	}

	resolved, err := r.store.UniqueSlug(ctx, kind, candidate, id)
	if err != nil {
		return "", false, err
	}
	return resolved, resolved != current, nil
}

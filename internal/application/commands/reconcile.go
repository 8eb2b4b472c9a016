package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"zdguide/internal/application"
	"zdguide/internal/domain"
	"zdguide/internal/ports"
)

// syncRun is the state owned by one reconciliation invocation
type syncRun struct {
	store  ports.ContentStore
	log    *zap.Logger
	cache  *IDCache
	slugs  slugResolver
	report *application.RunReport
}

func newSyncRun(app *application.Context, report *application.RunReport) *syncRun {
	return &syncRun{
		store:  app.Store,
		log:    app.Log().With(zap.String("intent", string(report.Intent))),
		cache:  NewIDCache(),
		slugs:  slugResolver{store: app.Store},
		report: report,
	}
}

// termInput is one remote category or section to upsert
type termInput struct {
	Kind        domain.EntityKind
	ExternalID  int64
	Name        string
	Description string
	ParentID    int64
	SetParent   bool
}

// resolveTerm finds the local term with the external id, consulting the cache first
func (r *syncRun) resolveTerm(ctx context.Context, kind domain.EntityKind, externalID int64) (*domain.Term, error) {
	if term, state := r.cache.Lookup(kind, externalID); state != NotCached {
		return term, nil
	}

	term, err := r.store.FindTermByExternalID(ctx, kind, externalID)
	if err != nil {
		return nil, &application.StoreError{Op: fmt.Sprintf("find %s %d", kind, externalID), Err: err}
	}
	r.cache.Remember(kind, externalID, term)
	return term, nil
}

// upsertTerm creates or updates the local term for in; created reports which
func (r *syncRun) upsertTerm(ctx context.Context, in termInput) (bool, error) {
	existing, err := r.resolveTerm(ctx, in.Kind, in.ExternalID)
	if err != nil {
		return false, err
	}

	if existing == nil {
		slug, err := r.slugs.forCreate(ctx, in.Kind, in.Name, in.ExternalID)
		if err != nil {
			return false, &application.StoreError{Op: "resolve slug", Err: err}
		}
		term := &domain.Term{
			Kind:        in.Kind,
			Name:        in.Name,
			Description: in.Description,
			Slug:        slug,
			ParentID:    in.ParentID,
			ExternalID:  in.ExternalID,
		}
		if err := r.store.CreateTerm(ctx, term); err != nil {
			return false, &application.StoreError{Op: "create " + in.Kind.String(), Err: err}
		}
		r.cache.Remember(in.Kind, in.ExternalID, term)
		return true, nil
	}

	term := *existing
	term.Name = in.Name
	term.Description = in.Description
	if in.SetParent {
		term.ParentID = in.ParentID
	}
	if err := r.store.UpdateTerm(ctx, &term); err != nil {
		return false, &application.StoreError{Op: fmt.Sprintf("update %s %d", in.Kind, term.ID), Err: err}
	}

	slug, changed, err := r.slugs.forUpdate(ctx, in.Kind, term.ID, term.Slug, in.Name, in.ExternalID)
	if err != nil {
		return false, &application.StoreError{Op: "resolve slug", Err: err}
	}
	if changed {
		if err := r.store.SetTermSlug(ctx, in.Kind, term.ID, slug); err != nil {
			return false, &application.StoreError{Op: fmt.Sprintf("set slug of %s %d", in.Kind, term.ID), Err: err}
		}
		term.Slug = slug
	}

	if err := r.store.SetTermExternalID(ctx, in.Kind, term.ID, in.ExternalID); err != nil {
		return false, &application.StoreError{Op: fmt.Sprintf("mark %s %d", in.Kind, term.ID), Err: err}
	}
	r.cache.Remember(in.Kind, in.ExternalID, &term)
	return false, nil
}

// tally records an item outcome in the run stats
func (r *syncRun) tally(created bool, err error, fields ...zap.Field) {
	switch {
	case err != nil:
		r.report.Stats.Failed++
		r.log.Warn("item write failed", append(fields, zap.Error(err))...)
	case created:
		r.report.Stats.Created++
	default:
		r.report.Stats.Updated++
	}
}

// skipParent records a swallowed per-parent fetch failure
func (r *syncRun) skipParent(parent domain.Term, err error) {
	r.report.Stats.SkippedParents++
	r.log.Debug("skipping parent after fetch failure",
		zap.String("kind", parent.Kind.String()),
		zap.Int64("external_id", parent.ExternalID),
		zap.Error(err))
}

// interrupted records a cancelled run; it reports whether ctx is done
func (r *syncRun) interrupted(ctx context.Context) bool {
	if ctx.Err() == nil {
		return false
	}
	r.report.Fail("Sync interrupted: ", &application.TransportError{Op: "sync", Err: ctx.Err()})
	return true
}

// childFetcher returns the remote children of parents[i]
type childFetcher[T any] func(i int) ([]T, error)

type fetchResult[T any] struct {
	items []T
	err   error
}

// fetchChildren prepares the per-parent fetches for a cascade level. With a
// concurrency below 2 each fetch runs on demand in parent order; otherwise all
// parents are fetched up front with at most concurrency requests in flight.
// Fetch errors are kept per parent and never cancel sibling fetches.
func fetchChildren[T any](ctx context.Context, concurrency int, parents []domain.Term, fetch func(context.Context, int64) ([]T, error)) childFetcher[T] {
	if concurrency < 2 || len(parents) < 2 {
		return func(i int) ([]T, error) {
			return fetch(ctx, parents[i].ExternalID)
		}
	}

	results := make([]fetchResult[T], len(parents))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, parent := range parents {
		g.Go(func() error {
			items, err := fetch(ctx, parent.ExternalID)
			results[i] = fetchResult[T]{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return func(i int) ([]T, error) {
		return results[i].items, results[i].err
	}
}

// configurationOutcome reports a credential problem before any fetch
func configurationOutcome(report *application.RunReport, action string, err error) {
	var cfgErr *application.ConfigurationError
	if errors.As(err, &cfgErr) {
		report.Error(application.CodeConfiguration, fmt.Sprintf("Please fill in all API settings before %s.", action))
		return
	}
	report.Fail("Invalid API settings: ", err)
}

package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"zdguide/internal/application"
	"zdguide/internal/domain"
	"zdguide/internal/ports"
)

// TestConnectionCommand checks that the stored credentials reach the API
type TestConnectionCommand struct {
	app *application.Context
}

// NewTestConnectionCommand creates a new TestConnectionCommand
func NewTestConnectionCommand(app *application.Context) *TestConnectionCommand {
	return &TestConnectionCommand{app: app}
}

// Execute performs one authenticated read
func (c *TestConnectionCommand) Execute(ctx context.Context) *application.RunReport {
	report := application.NewRunReport(application.IntentTestConnection)
	defer report.Finish()

	client, err := c.app.Client()
	if err != nil {
		configurationOutcome(report, "testing the connection", err)
		return report
	}

	if err := client.TestConnection(ctx); err != nil {
		c.app.Log().Info("connection test failed", zap.Error(err))
		report.Fail("API connection failed: ", err)
		return report
	}

	report.Success(application.CodeConnected, "API connection successful!")
	return report
}

// SyncCategoriesCommand mirrors remote categories into the store
type SyncCategoriesCommand struct {
	app *application.Context
}

// NewSyncCategoriesCommand creates a new SyncCategoriesCommand
func NewSyncCategoriesCommand(app *application.Context) *SyncCategoriesCommand {
	return &SyncCategoriesCommand{app: app}
}

// Execute fetches every category and upserts it by external id
func (c *SyncCategoriesCommand) Execute(ctx context.Context) *application.RunReport {
	report := application.NewRunReport(application.IntentSyncCategories)
	defer report.Finish()

	client, err := c.app.Client()
	if err != nil {
		configurationOutcome(report, "syncing categories", err)
		return report
	}

	unlock := c.app.LockRun()
	defer unlock()

	categories, err := client.ListCategories(ctx)
	if err != nil {
		c.app.Log().Error("fetch categories failed", zap.Error(err))
		report.Fail("Failed to fetch categories: ", err)
		return report
	}
	if len(categories) == 0 {
		report.Warning(application.CodeEmptyResult, "No categories found in Zendesk.")
		return report
	}

	run := newSyncRun(c.app, report)
	report.Stats.Fetched = len(categories)
	for _, rc := range categories {
		if run.interrupted(ctx) {
			return report
		}
		created, err := run.upsertTerm(ctx, termInput{
			Kind:        domain.KindCategory,
			ExternalID:  rc.ID,
			Name:        rc.Name,
			Description: rc.Description,
		})
		run.tally(created, err, zap.Int64("category", rc.ID))
	}

	run.log.Info("categories synced",
		zap.Int("created", report.Stats.Created),
		zap.Int("updated", report.Stats.Updated),
		zap.Int("failed", report.Stats.Failed))
	report.Success(application.CodeSynced, fmt.Sprintf("Successfully synced %d new categories.", report.Stats.Created))
	return report
}

// SyncSectionsCommand mirrors the sections of every synced category
type SyncSectionsCommand struct {
	app *application.Context
}

// NewSyncSectionsCommand creates a new SyncSectionsCommand
func NewSyncSectionsCommand(app *application.Context) *SyncSectionsCommand {
	return &SyncSectionsCommand{app: app}
}

// Execute walks local categories carrying an external id and upserts their
// remote sections, re-pointing each section at its current category.
func (c *SyncSectionsCommand) Execute(ctx context.Context) *application.RunReport {
	report := application.NewRunReport(application.IntentSyncSections)
	defer report.Finish()

	client, err := c.app.Client()
	if err != nil {
		configurationOutcome(report, "syncing sections", err)
		return report
	}

	unlock := c.app.LockRun()
	defer unlock()

	categories, err := c.app.Store.ListSyncedTerms(ctx, domain.KindCategory)
	if err != nil {
		report.Fail("Failed to read local categories: ", &application.StoreError{Op: "list categories", Err: err})
		return report
	}
	if len(categories) == 0 {
		report.Warning(application.CodePrerequisiteMissing, "No categories to sync sections from. Please sync categories first.")
		return report
	}

	run := newSyncRun(c.app, report)
	next := fetchChildren(ctx, c.app.FetchConcurrency, categories, client.ListSections)
	for i, category := range categories {
		if run.interrupted(ctx) {
			return report
		}

		sections, err := next(i)
		if err != nil {
			run.skipParent(category, err)
			continue
		}

		report.Stats.Fetched += len(sections)
		for _, rs := range sections {
			created, err := run.upsertTerm(ctx, termInput{
				Kind:        domain.KindSection,
				ExternalID:  rs.ID,
				Name:        rs.Name,
				Description: rs.Description,
				ParentID:    category.ID,
				SetParent:   true,
			})
			run.tally(created, err, zap.Int64("section", rs.ID), zap.Int64("category", category.ExternalID))
		}
	}

	run.log.Info("sections synced",
		zap.Int("created", report.Stats.Created),
		zap.Int("updated", report.Stats.Updated),
		zap.Int("skipped_parents", report.Stats.SkippedParents))
	report.Success(application.CodeSynced, fmt.Sprintf("Successfully synced %d new sections.", report.Stats.Created))
	return report
}

// SyncArticlesCommand mirrors the articles of every synced section
type SyncArticlesCommand struct {
	app *application.Context
}

// NewSyncArticlesCommand creates a new SyncArticlesCommand
func NewSyncArticlesCommand(app *application.Context) *SyncArticlesCommand {
	return &SyncArticlesCommand{app: app}
}

// Execute walks local sections carrying an external id and upserts their
// remote articles, classifying each under its section and that section's category.
func (c *SyncArticlesCommand) Execute(ctx context.Context) *application.RunReport {
	report := application.NewRunReport(application.IntentSyncArticles)
	defer report.Finish()

	client, err := c.app.Client()
	if err != nil {
		configurationOutcome(report, "syncing articles", err)
		return report
	}

	unlock := c.app.LockRun()
	defer unlock()

	sections, err := c.app.Store.ListSyncedTerms(ctx, domain.KindSection)
	if err != nil {
		report.Fail("Failed to read local sections: ", &application.StoreError{Op: "list sections", Err: err})
		return report
	}
	if len(sections) == 0 {
		report.Warning(application.CodePrerequisiteMissing, "No sections to sync articles from. Please sync sections first.")
		return report
	}

	run := newSyncRun(c.app, report)
	parents := newParentResolver(c.app.Store)
	next := fetchChildren(ctx, c.app.FetchConcurrency, sections, client.ListArticles)
	for i, section := range sections {
		if run.interrupted(ctx) {
			return report
		}

		articles, err := next(i)
		if err != nil {
			run.skipParent(section, err)
			continue
		}

		report.Stats.Fetched += len(articles)
		for _, ra := range articles {
			created, err := run.upsertArticle(ctx, ra, section, parents)
			run.tally(created, err, zap.Int64("article", ra.ID), zap.Int64("section", section.ExternalID))
		}
	}

	run.log.Info("articles synced",
		zap.Int("created", report.Stats.Created),
		zap.Int("updated", report.Stats.Updated),
		zap.Int("skipped_parents", report.Stats.SkippedParents))
	report.Success(application.CodeSynced, fmt.Sprintf("Successfully synced %d new articles.", report.Stats.Created))
	return report
}

// upsertArticle creates or updates the local article for ra and classifies it
func (r *syncRun) upsertArticle(ctx context.Context, ra ports.RemoteArticle, section domain.Term, parents *parentResolver) (bool, error) {
	existing, err := r.store.FindArticleByExternalID(ctx, ra.ID)
	if err != nil {
		return false, &application.StoreError{Op: fmt.Sprintf("find article %d", ra.ID), Err: err}
	}

	created := existing == nil
	article := existing
	if created {
		slug, err := r.slugs.forCreate(ctx, domain.KindArticle, ra.Title, ra.ID)
		if err != nil {
			return false, &application.StoreError{Op: "resolve slug", Err: err}
		}
		article = &domain.Article{
			Title:      ra.Title,
			Body:       ra.Body,
			Slug:       slug,
			Status:     domain.ArticleStatusPublished,
			ExternalID: ra.ID,
		}
		if err := r.store.CreateArticle(ctx, article); err != nil {
			return false, &application.StoreError{Op: "create article", Err: err}
		}
	} else {
		article.Title = ra.Title
		article.Body = ra.Body
		article.Status = domain.ArticleStatusPublished
		if err := r.store.UpdateArticle(ctx, article); err != nil {
			return false, &application.StoreError{Op: fmt.Sprintf("update article %d", article.ID), Err: err}
		}
	}

	if err := r.store.SetArticleTerm(ctx, article.ID, domain.KindSection, section.ID); err != nil {
		return false, &application.StoreError{Op: fmt.Sprintf("classify article %d", article.ID), Err: err}
	}

	categoryID, err := parents.categoryOf(ctx, section)
	if err != nil {
		return false, err
	}
	if categoryID != 0 {
		if err := r.store.SetArticleTerm(ctx, article.ID, domain.KindCategory, categoryID); err != nil {
			return false, &application.StoreError{Op: fmt.Sprintf("classify article %d", article.ID), Err: err}
		}
	}
	return created, nil
}

// parentResolver memoizes which section parents still exist as categories
type parentResolver struct {
	store   ports.ContentStore
	checked map[int64]bool
}

func newParentResolver(store ports.ContentStore) *parentResolver {
	return &parentResolver{store: store, checked: make(map[int64]bool)}
}

// categoryOf returns the local category of section, or 0 when its parent link is broken
func (p *parentResolver) categoryOf(ctx context.Context, section domain.Term) (int64, error) {
	if section.ParentID == 0 {
		return 0, nil
	}
	if ok, seen := p.checked[section.ParentID]; seen {
		if ok {
			return section.ParentID, nil
		}
		return 0, nil
	}

	category, err := p.store.GetTerm(ctx, domain.KindCategory, section.ParentID)
	if err != nil {
		return 0, &application.StoreError{Op: fmt.Sprintf("get category %d", section.ParentID), Err: err}
	}
	p.checked[section.ParentID] = category != nil
	if category == nil {
		return 0, nil
	}
	return category.ID, nil
}

package commands

import (
	"context"
	"fmt"

	"zdguide/internal/application"
	"zdguide/internal/domain"
	"zdguide/internal/ports"
)

const (
	defaultTermLimit = 6
	maxTermLimit     = 50
)

// TermEntry is one row of a taxonomy index
type TermEntry struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	ArticleCount int    `json:"count"`
	URL          string `json:"url"`
}

// ListTermsCommand lists categories or sections by name
type ListTermsCommand struct {
	app   *application.Context
	Kind  domain.EntityKind
	Limit int
}

// NewListTermsCommand creates a new ListTermsCommand
func NewListTermsCommand(app *application.Context, kind domain.EntityKind, limit int) *ListTermsCommand {
	return &ListTermsCommand{
		app:   app,
		Kind:  kind,
		Limit: limit,
	}
}

// Validate checks the requested taxonomy
func (c *ListTermsCommand) Validate() error {
	if !c.Kind.IsTerm() {
		return &application.ValidationError{
			Field:   "taxonomy",
			Message: fmt.Sprintf("expected category or section, got: %s", c.Kind),
		}
	}
	return nil
}

// Execute runs the list terms command
func (c *ListTermsCommand) Execute(ctx context.Context) ([]TermEntry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	terms, err := c.app.Store.ListTerms(ctx, c.Kind, clamp(c.Limit, defaultTermLimit, 1, maxTermLimit))
	if err != nil {
		return nil, &application.StoreError{Op: "list " + c.Kind.String(), Err: err}
	}

	prefix := "/help-center/categories/"
	if c.Kind == domain.KindSection {
		prefix = "/help-center/sections/"
	}

	entries := make([]TermEntry, 0, len(terms))
	for _, t := range terms {
		entries = append(entries, TermEntry{
			ID:           t.ID,
			Name:         t.Name,
			Slug:         t.Slug,
			Description:  t.Description,
			ArticleCount: t.ArticleCount,
			URL:          c.app.Permalink(prefix + t.Slug),
		})
	}
	return entries, nil
}

// ListTicketFormsCommand fetches the account's ticket forms
type ListTicketFormsCommand struct {
	app *application.Context
}

// NewListTicketFormsCommand creates a new ListTicketFormsCommand
func NewListTicketFormsCommand(app *application.Context) *ListTicketFormsCommand {
	return &ListTicketFormsCommand{app: app}
}

// Execute runs the list ticket forms command
func (c *ListTicketFormsCommand) Execute(ctx context.Context) ([]ports.TicketForm, error) {
	client, err := c.app.Client()
	if err != nil {
		return nil, err
	}
	return client.ListTicketForms(ctx)
}

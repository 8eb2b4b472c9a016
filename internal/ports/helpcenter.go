package ports

import "context"

// Credentials authenticate against one help-center account
type Credentials struct {
	Subdomain string
	Email     string
	APIToken  string
}

// RemoteCategory is a category as returned by the help-center API
type RemoteCategory struct {
	ID          int64
	Name        string
	Description string
	Position    int
	HTMLURL     string
}

// RemoteSection is a section as returned by the help-center API
type RemoteSection struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description string
	Position    int
	HTMLURL     string
}

// RemoteArticle is an article as returned by the help-center API
type RemoteArticle struct {
	ID        int64
	SectionID int64
	Title     string
	Body      string
	Draft     bool
	HTMLURL   string
}

// TicketForm is a support ticket form
type TicketForm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HelpCenter defines the read-only contract with the remote help-center API.
// Each call is one authenticated read; failures are returned as
// *application.TransportError or *application.UpstreamStatusError.
type HelpCenter interface {
	// TestConnection performs a cheap authenticated read
	TestConnection(ctx context.Context) error

	ListCategories(ctx context.Context) ([]RemoteCategory, error)
	ListSections(ctx context.Context, categoryID int64) ([]RemoteSection, error)
	ListArticles(ctx context.Context, sectionID int64) ([]RemoteArticle, error)

	ListTicketForms(ctx context.Context) ([]TicketForm, error)
}

// ClientFactory builds a HelpCenter client from stored credentials
type ClientFactory interface {
	NewHelpCenter(creds Credentials) HelpCenter
}

// ClientFactoryFunc adapts a function to ClientFactory
type ClientFactoryFunc func(creds Credentials) HelpCenter

// NewHelpCenter calls f(creds)
func (f ClientFactoryFunc) NewHelpCenter(creds Credentials) HelpCenter {
	return f(creds)
}

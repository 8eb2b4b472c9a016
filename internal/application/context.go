package application

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"zdguide/internal/ports"
)

// Context is the process-wide application state, built once at startup and
// shared by reference with every command. It must not be copied.
type Context struct {
	Store       ports.ContentStore
	Clients     ports.ClientFactory
	Credentials ports.Credentials
	Logger      *zap.Logger

	// FetchConcurrency bounds parallel remote fetches of sibling parents.
	// Values below 2 mean strictly sequential.
	FetchConcurrency int

	// SiteURL prefixes permalinks of synced content
	SiteURL string

	runMu sync.Mutex
}

// Client builds a help-center client from the stored credentials.
// Returns a *ConfigurationError when any credential is empty.
func (c *Context) Client() (ports.HelpCenter, error) {
	if err := ValidateCredentials(c.Credentials); err != nil {
		return nil, err
	}
	return c.Clients.NewHelpCenter(c.Credentials), nil
}

// Log returns the configured logger, or a no-op logger
func (c *Context) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// LockRun serializes sync runs within the process; call the returned func to release
func (c *Context) LockRun() func() {
	c.runMu.Lock()
	return c.runMu.Unlock
}

// Permalink joins the site URL with a content path
func (c *Context) Permalink(path string) string {
	return strings.TrimRight(c.SiteURL, "/") + path
}

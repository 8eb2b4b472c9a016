// Package zendesk provides a read-only client for the Zendesk Help Center API.
package zendesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"zdguide/internal/application"
	"zdguide/internal/ports"
)

const (
	// DefaultTimeout is the wait ceiling for one API call
	DefaultTimeout = 30 * time.Second
	// DefaultPerPage is the page size requested from list endpoints
	DefaultPerPage = 100

	userAgent = "zdguide-sync/1.0"
	// maxErrorBody bounds the body fragment kept in status errors
	maxErrorBody = 256
)

// Client provides HTTP access to one Help Center account
type Client struct {
	Subdomain  string
	Email      string
	APIToken   string
	BaseURL    string // https://{subdomain}.zendesk.com unless overridden
	HTTPClient *http.Client

	// MaxPages bounds how many next_page links a list call follows.
	// 1 reads only the first page; 0 follows every page.
	MaxPages int
	PerPage  int
}

// Ensure Client implements HelpCenter
var _ ports.HelpCenter = (*Client)(nil)

// NewClient creates a new client for the given credentials
func NewClient(creds ports.Credentials) *Client {
	return &Client{
		Subdomain: creds.Subdomain,
		Email:     creds.Email,
		APIToken:  creds.APIToken,
		BaseURL:   fmt.Sprintf("https://%s.zendesk.com", creds.Subdomain),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		MaxPages: 1,
		PerPage:  DefaultPerPage,
	}
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.HTTPClient = httpClient
	return c
}

// WithBaseURL points the client at a different host (tests, proxies)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.BaseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// WithPaging sets the page-follow limit and page size
func (c *Client) WithPaging(maxPages, perPage int) *Client {
	c.MaxPages = maxPages
	if perPage > 0 {
		c.PerPage = perPage
	}
	return c
}

// Factory builds clients that share timeout and paging settings
type Factory struct {
	Timeout  time.Duration
	MaxPages int
	PerPage  int
	BaseURL  string // optional override
}

// NewHelpCenter implements ports.ClientFactory
func (f Factory) NewHelpCenter(creds ports.Credentials) ports.HelpCenter {
	c := NewClient(creds).WithPaging(f.MaxPages, f.PerPage)
	if f.Timeout > 0 {
		c.HTTPClient.Timeout = f.Timeout
	}
	if f.BaseURL != "" {
		c.WithBaseURL(f.BaseURL)
	}
	return c
}

type category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	HTMLURL     string `json:"html_url"`
}

type section struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	HTMLURL     string `json:"html_url"`
}

type article struct {
	ID        int64  `json:"id"`
	SectionID int64  `json:"section_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Draft     bool   `json:"draft"`
	HTMLURL   string `json:"html_url"`
}

type ticketForm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TestConnection reads one page of articles
func (c *Client) TestConnection(ctx context.Context) error {
	_, _, err := c.getPage(ctx, "test connection", c.helpCenterURL("/articles.json", 1))
	return err
}

// ListCategories fetches all categories
func (c *Client) ListCategories(ctx context.Context) ([]ports.RemoteCategory, error) {
	items, err := listAll[category](ctx, c, "list categories", c.helpCenterURL("/categories.json", c.PerPage), "categories")
	if err != nil {
		return nil, err
	}

	out := make([]ports.RemoteCategory, 0, len(items))
	for _, it := range items {
		out = append(out, ports.RemoteCategory{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Position:    it.Position,
			HTMLURL:     it.HTMLURL,
		})
	}
	return out, nil
}

// ListSections fetches the sections of one category
func (c *Client) ListSections(ctx context.Context, categoryID int64) ([]ports.RemoteSection, error) {
	path := fmt.Sprintf("/categories/%d/sections.json", categoryID)
	op := fmt.Sprintf("list sections of category %d", categoryID)
	items, err := listAll[section](ctx, c, op, c.helpCenterURL(path, c.PerPage), "sections")
	if err != nil {
		return nil, err
	}

	out := make([]ports.RemoteSection, 0, len(items))
	for _, it := range items {
		out = append(out, ports.RemoteSection{
			ID:          it.ID,
			CategoryID:  it.CategoryID,
			Name:        it.Name,
			Description: it.Description,
			Position:    it.Position,
			HTMLURL:     it.HTMLURL,
		})
	}
	return out, nil
}

// ListArticles fetches the articles of one section
func (c *Client) ListArticles(ctx context.Context, sectionID int64) ([]ports.RemoteArticle, error) {
	path := fmt.Sprintf("/sections/%d/articles.json", sectionID)
	op := fmt.Sprintf("list articles of section %d", sectionID)
	items, err := listAll[article](ctx, c, op, c.helpCenterURL(path, c.PerPage), "articles")
	if err != nil {
		return nil, err
	}

	out := make([]ports.RemoteArticle, 0, len(items))
	for _, it := range items {
		out = append(out, ports.RemoteArticle{
			ID:        it.ID,
			SectionID: it.SectionID,
			Title:     it.Title,
			Body:      it.Body,
			Draft:     it.Draft,
			HTMLURL:   it.HTMLURL,
		})
	}
	return out, nil
}

// ListTicketForms fetches the account's ticket forms
func (c *Client) ListTicketForms(ctx context.Context) ([]ports.TicketForm, error) {
	apiURL := c.BaseURL + "/api/v2/ticket_forms.json"
	items, err := listAll[ticketForm](ctx, c, "list ticket forms", apiURL, "ticket_forms")
	if err != nil {
		return nil, err
	}

	out := make([]ports.TicketForm, 0, len(items))
	for _, it := range items {
		out = append(out, ports.TicketForm{ID: it.ID, Name: it.Name})
	}
	return out, nil
}

// listAll decodes the array under field from each page, following next_page
// links until MaxPages is reached or the API reports no further page.
func listAll[T any](ctx context.Context, c *Client, op, apiURL, field string) ([]T, error) {
	var all []T
	for pages := 1; apiURL != ""; pages++ {
		envelope, next, err := c.getPage(ctx, op, apiURL)
		if err != nil {
			return nil, err
		}

		if raw, ok := envelope[field]; ok && string(raw) != "null" {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, &application.TransportError{Op: op, Err: fmt.Errorf("parse %s: %w", field, err)}
			}
			all = append(all, items...)
		}

		if c.MaxPages > 0 && pages >= c.MaxPages || next == "" {
			break
		}
		if apiURL, err = c.resolveNextPage(next); err != nil {
			return nil, &application.TransportError{Op: op, Err: err}
		}
	}
	return all, nil
}

// resolveNextPage resolves a next_page link against BaseURL and refuses links
// to another scheme or host, since every request carries the credentials.
func (c *Client) resolveNextPage(next string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	u, err := base.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse next_page: %w", err)
	}
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", fmt.Errorf("next_page points outside %s: %s://%s", c.BaseURL, u.Scheme, u.Host)
	}
	return u.String(), nil
}

// getPage performs one GET and returns the decoded top-level object and its next_page link
func (c *Client) getPage(ctx context.Context, op, apiURL string) (map[string]json.RawMessage, string, error) {
	body, err := c.doRequest(ctx, op, apiURL)
	if err != nil {
		return nil, "", err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "", &application.TransportError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}

	var next string
	if raw, ok := envelope["next_page"]; ok {
		_ = json.Unmarshal(raw, &next) // null leaves next empty
	}
	return envelope, next, nil
}

// doRequest executes an authenticated GET and returns the response body
func (c *Client) doRequest(ctx context.Context, op, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &application.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &application.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &application.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &application.UpstreamStatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	return respBody, nil
}

// setAuth sets API-token basic auth: "{email}/token:{api_token}"
func (c *Client) setAuth(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.Email + "/token:" + c.APIToken))
	req.Header.Set("Authorization", "Basic "+auth)
}

// helpCenterURL builds a Help Center endpoint URL with a page size
func (c *Client) helpCenterURL(path string, perPage int) string {
	params := url.Values{}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	u := c.BaseURL + "/api/v2/help_center" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// errorMessage extracts the error text from an error response body.
// Zendesk sends either {"error": "..."} or {"error": {"title": ..., "message": ...}},
// sometimes with a top-level "description".
func errorMessage(body []byte) string {
	var payload struct {
		Error       json.RawMessage `json:"error"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var s string
		if json.Unmarshal(payload.Error, &s) == nil && s != "" {
			if payload.Description != "" {
				return s + ": " + payload.Description
			}
			return s
		}
		var obj struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &obj) == nil && (obj.Title != "" || obj.Message != "") {
			if obj.Title != "" && obj.Message != "" {
				return obj.Title + ": " + obj.Message
			}
			return obj.Title + obj.Message
		}
		if payload.Description != "" {
			return payload.Description
		}
	}

	fragment := strings.TrimSpace(string(body))
	if len(fragment) > maxErrorBody {
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(fragment[n]) {
			n--
		}
		fragment = fragment[:n]
	}
	return fragment
}

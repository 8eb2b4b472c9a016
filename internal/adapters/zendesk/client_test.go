package zendesk

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"zdguide/internal/application"
	"zdguide/internal/ports"
)

var testCreds = ports.Credentials{Subdomain: "acme", Email: "ops@acme.test", APIToken: "s3cret"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testCreds).WithBaseURL(srv.URL)
}

// TestNewClient verifies the constructor creates a properly configured client.
func TestNewClient(t *testing.T) {
	client := NewClient(testCreds)

	if client.BaseURL != "https://acme.zendesk.com" {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL, "https://acme.zendesk.com")
	}
	if client.HTTPClient == nil || client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("HTTPClient timeout not set to %v", DefaultTimeout)
	}
	if client.MaxPages != 1 {
		t.Errorf("MaxPages = %d, want 1", client.MaxPages)
	}
}

func TestListCategories_SendsAuthAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/help_center/categories.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("ops@acme.test/token:s3cret"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %q, want 100", r.URL.Query().Get("per_page"))
		}
		fmt.Fprint(w, `{"categories":[{"id":10,"name":"Billing","description":"Money"},{"id":11,"name":"Billing"}],"next_page":null}`)
	})

	cats, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].ID != 10 || cats[0].Name != "Billing" || cats[0].Description != "Money" {
		t.Errorf("unexpected first category: %+v", cats[0])
	}
	if cats[1].ID != 11 {
		t.Errorf("unexpected second category: %+v", cats[1])
	}
}

func TestListSections_Path(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/help_center/categories/10/sections.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"sections":[{"id":100,"category_id":10,"name":"Invoices"}]}`)
	})

	sections, err := client.ListSections(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	if len(sections) != 1 || sections[0].CategoryID != 10 || sections[0].Name != "Invoices" {
		t.Errorf("unexpected sections: %+v", sections)
	}
}

func TestListArticles_MissingFieldIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":0}`)
	})

	articles, err := client.ListArticles(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
}

func TestListArticles_Pagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"articles":[{"id":1,"title":"One"}],"next_page":"%s/api/v2/help_center/sections/5/articles.json?page=2"}`, srv.URL)
		case "2":
			fmt.Fprint(w, `{"articles":[{"id":2,"title":"Two"}],"next_page":null}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		maxPages int
		want     int
	}{
		{name: "first page only", maxPages: 1, want: 1},
		{name: "unlimited", maxPages: 0, want: 2},
		{name: "limit above page count", maxPages: 5, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(testCreds).WithBaseURL(srv.URL).WithPaging(tt.maxPages, 0)
			articles, err := client.ListArticles(context.Background(), 5)
			if err != nil {
				t.Fatalf("ListArticles failed: %v", err)
			}
			if len(articles) != tt.want {
				t.Errorf("got %d articles, want %d", len(articles), tt.want)
			}
		})
	}
}

func TestListArticles_RefusesForeignNextPage(t *testing.T) {
	var foreignHits int
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits++
		fmt.Fprint(w, `{"articles":[],"next_page":null}`)
	}))
	defer foreign.Close()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"articles":[{"id":1}],"next_page":"%s/steal?page=2"}`, foreign.URL)
	}).WithPaging(0, 0)

	_, err := client.ListArticles(context.Background(), 5)

	var transportErr *application.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if foreignHits != 0 {
		t.Errorf("credentials were sent to a foreign host %d times", foreignHits)
	}
}

func TestListArticles_RelativeNextPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"articles":[{"id":2}],"next_page":null}`)
			return
		}
		fmt.Fprint(w, `{"articles":[{"id":1}],"next_page":"/api/v2/help_center/sections/5/articles.json?page=2"}`)
	}).WithPaging(0, 0)

	articles, err := client.ListArticles(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("got %d articles, want 2", len(articles))
	}
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxErrorBody-1) + "é tail"

	got := errorMessage([]byte(body))

	if !utf8.ValidString(got) {
		t.Fatalf("truncated message is not valid UTF-8: %q", got[len(got)-4:])
	}
	if want := strings.Repeat("a", maxErrorBody-1); got != want {
		t.Errorf("got %d bytes, want %d", len(got), len(want))
	}
}

func TestDoRequest_StatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "string error",
			status:  http.StatusUnauthorized,
			body:    `{"error":"Couldn't authenticate you"}`,
			wantMsg: "Couldn't authenticate you",
		},
		{
			name:    "object error",
			status:  http.StatusForbidden,
			body:    `{"error":{"title":"Forbidden","message":"You do not have access"}}`,
			wantMsg: "Forbidden: You do not have access",
		},
		{
			name:    "string error with description",
			status:  http.StatusNotFound,
			body:    `{"error":"RecordNotFound","description":"Not found"}`,
			wantMsg: "RecordNotFound: Not found",
		},
		{
			name:    "non-json body",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			wantMsg: "<html>bad gateway</html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.ListCategories(context.Background())
			var statusErr *application.UpstreamStatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected UpstreamStatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
			if statusErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", statusErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestDoRequest_TimeoutIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	client.HTTPClient.Timeout = 20 * time.Millisecond

	err := client.TestConnection(context.Background())
	var transportErr *application.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestDoRequest_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"categories":[`)
	})

	_, err := client.ListCategories(context.Background())
	var transportErr *application.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "parse response") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestListTicketForms(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/ticket_forms.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"ticket_forms":[{"id":7,"name":"Default"}]}`)
	})

	forms, err := client.ListTicketForms(context.Background())
	if err != nil {
		t.Fatalf("ListTicketForms failed: %v", err)
	}
	if len(forms) != 1 || forms[0].ID != 7 || forms[0].Name != "Default" {
		t.Errorf("unexpected forms: %+v", forms)
	}
}

func TestFactory(t *testing.T) {
	f := Factory{Timeout: 5 * time.Second, MaxPages: 3, PerPage: 50, BaseURL: "http://localhost:9999/"}
	hc := f.NewHelpCenter(testCreds)

	c, ok := hc.(*Client)
	if !ok {
		t.Fatalf("expected *Client, got %T", hc)
	}
	if c.HTTPClient.Timeout != 5*time.Second || c.MaxPages != 3 || c.PerPage != 50 {
		t.Errorf("factory settings not applied: %+v", c)
	}
	if c.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
}

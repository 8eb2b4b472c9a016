package views

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zdguide/internal/adapters/sqlite"
	"zdguide/internal/application"
	"zdguide/internal/application/commands"
	"zdguide/internal/domain"
)

func newTestApp(t *testing.T) *application.Context {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	// No credentials: every sync ends with a configuration outcome
	return &application.Context{Store: store, SiteURL: "https://docs.acme.test"}
}

func stubClipboard(t *testing.T, err error) *string {
	t.Helper()
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = s
		return err
	}
	t.Cleanup(func() { copyToClipboard = orig })
	return &copied
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestActionsModel_CursorStaysInRange(t *testing.T) {
	m := NewActionsModel(context.Background(), newTestApp(t))

	m.Update(keyPress("up"))
	assert.Equal(t, application.IntentTestConnection, m.Selected())

	for range application.Intents {
		m.Update(keyPress("j"))
	}
	assert.Equal(t, application.IntentSyncArticles, m.Selected())
}

func TestActionsModel_RunLifecycle(t *testing.T) {
	m := NewActionsModel(context.Background(), newTestApp(t))
	m.Update(keyPress("down"))

	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.Running())

	// Navigation is ignored during a run
	m.Update(keyPress("down"))
	assert.Equal(t, application.IntentSyncCategories, m.Selected())

	msg := m.run(m.Selected())()
	m.Update(msg)

	assert.False(t, m.Running())
	require.NotNil(t, m.Report())
	assert.True(t, m.Report().Has(application.CodeConfiguration))
	assert.Contains(t, m.View(), "Please fill in all API settings before syncing categories.")
}

func TestActionsModel_CopyReport(t *testing.T) {
	copied := stubClipboard(t, nil)
	m := NewActionsModel(context.Background(), newTestApp(t))

	m.Update(keyPress("y"))
	assert.True(t, m.MessageErr, "nothing to copy before a run")

	m.Update(RunFinishedMsg{Report: commands.Run(context.Background(), m.app, application.IntentTestConnection)})
	m.Update(keyPress("y"))

	assert.False(t, m.MessageErr)
	assert.Equal(t, "Test connection\n[error] Please fill in all API settings before testing the connection.\n", *copied)
}

func TestActionsModel_CopyFailure(t *testing.T) {
	stubClipboard(t, errors.New("no display"))
	m := NewActionsModel(context.Background(), newTestApp(t))
	m.Update(RunFinishedMsg{Report: application.NewRunReport(application.IntentSyncSections)})

	m.Update(keyPress("y"))

	assert.True(t, m.MessageErr)
	assert.Equal(t, "Copy failed: no display", m.Message)
}

func TestRenderStats(t *testing.T) {
	assert.Empty(t, RenderStats(domain.SyncStats{}))

	got := RenderStats(domain.SyncStats{Fetched: 4, Created: 1, Updated: 2, Failed: 1, SkippedParents: 2, Duration: 1500 * time.Millisecond})
	assert.Equal(t, "fetched 4, created 1, updated 2, failed 1, skipped 2 parents in 1.5s", got)
}

func TestRenderReport(t *testing.T) {
	report := application.NewRunReport(application.IntentSyncArticles)
	report.Success(application.CodeSynced, "Successfully synced 3 new articles.")
	report.Warning(application.CodeEmptyResult, "No categories found in Zendesk.")
	report.Stats = domain.SyncStats{Fetched: 3, Created: 3}

	out := RenderReport(report)

	assert.Contains(t, out, "Sync articles")
	assert.Contains(t, out, "✓ Successfully synced 3 new articles.")
	assert.Contains(t, out, "! No categories found in Zendesk.")
	assert.Contains(t, out, "fetched 3, created 3, updated 0")
	assert.Empty(t, RenderReport(nil))
}

func TestSearchModel_DropsStaleResults(t *testing.T) {
	m := NewSearchModel(context.Background(), newTestApp(t))
	m.input.SetValue("invoice")

	m.Update(searchResultsMsg{query: "inv", results: []commands.SearchResult{{ID: 1, Title: "Old"}}})
	assert.Empty(t, m.results)

	m.Update(searchResultsMsg{query: "invoice", results: []commands.SearchResult{{ID: 2, Title: "Download an invoice", URL: "https://docs.acme.test/help-center/download-an-invoice"}}})
	require.Len(t, m.results, 1)
	assert.Contains(t, m.View(), "Download an invoice")
}

func TestSearchModel_SelectCopiesURL(t *testing.T) {
	copied := stubClipboard(t, nil)
	m := NewSearchModel(context.Background(), newTestApp(t))
	m.input.SetValue("invoice")
	m.Update(searchResultsMsg{query: "invoice", results: []commands.SearchResult{
		{ID: 1, Title: "A", URL: "https://docs.acme.test/help-center/a"},
		{ID: 2, Title: "B", URL: "https://docs.acme.test/help-center/b"},
	}})

	m.Update(keyPress("down"))
	m.Update(keyPress("enter"))

	assert.Equal(t, "https://docs.acme.test/help-center/b", *copied)
}

func TestSearchModel_EscReturnsToActions(t *testing.T) {
	m := NewSearchModel(context.Background(), newTestApp(t))

	_, cmd := m.Update(keyPress("esc"))

	require.NotNil(t, cmd)
	assert.IsType(t, SwitchToActionsMsg{}, cmd())
}

package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"zdguide/internal/adapters/tui/styles"
	"zdguide/internal/application"
	"zdguide/internal/application/commands"
)

const (
	minQueryLen   = 2
	searchPerPage = 10
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy URL"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

// SearchModel searches synced articles as the operator types
type SearchModel struct {
	ViewState

	ctx     context.Context
	app     *application.Context
	input   textinput.Model
	query   string // query of the results currently shown
	results []commands.SearchResult
	cursor  int
}

// NewSearchModel creates a new search view model
func NewSearchModel(ctx context.Context, app *application.Context) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search articles..."
	input.Focus()

	return &SearchModel{ctx: ctx, app: app, input: input}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and results
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.query = ""
	m.results = nil
	m.cursor = 0
	m.ClearMessage()
	m.input.Focus()
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
	err     error
}

func (m *SearchModel) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := commands.NewSearchCommand(m.app, query, searchPerPage, true).Execute(m.ctx)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		// Drop responses for queries the operator already typed past
		if msg.query != m.input.Value() {
			return m, nil
		}
		if msg.err != nil {
			m.SetMessage(application.ErrorMessage(msg.err), true)
			return m, nil
		}
		m.query = msg.query
		m.results = msg.results
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg { return SwitchToActionsMsg{} }

		case key.Matches(msg, SearchKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if m.cursor < len(m.results) {
				url := m.results[m.cursor].URL
				if err := copyToClipboard(url); err != nil {
					m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
				} else {
					m.SetMessage("Copied "+url, false)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	query := m.input.Value()
	switch {
	case len(query) >= minQueryLen && query != m.query:
		return m, tea.Batch(cmd, m.search(query))
	case len(query) < minQueryLen:
		m.query = ""
		m.results = nil
	}
	return m, cmd
}

// View renders the search view
func (m *SearchModel) View() string {
	v := NewViewBuilder().Title("Search").
		Line(styles.InputFocused.Render(m.input.View())).
		BlankLine()

	switch {
	case len(m.input.Value()) < minQueryLen:
		v.Muted(fmt.Sprintf("Type at least %d characters to search", minQueryLen))
	case len(m.results) == 0:
		v.Muted("No results found")
	default:
		v.Subtitle(fmt.Sprintf("%d results", len(m.results)))
		for i, r := range m.results {
			if i == m.cursor {
				v.Line(styles.ItemSelected.Render(r.Title))
			} else {
				v.Line(styles.Item.Render(r.Title))
			}
			v.Line(styles.Item.Render(styles.MutedText.Render(r.URL)))
			if r.Excerpt != "" && i == m.cursor {
				v.Line(styles.Item.Render(r.Excerpt))
			}
		}
	}
	v.BlankLine()

	return v.Message(m.Message, m.MessageErr).
		Help(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Cancel).
		String()
}

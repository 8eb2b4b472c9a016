package views

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"zdguide/internal/adapters/tui/styles"
	"zdguide/internal/application"
	"zdguide/internal/application/commands"
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// ActionsKeyMap defines key bindings for the actions view
type ActionsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Run    key.Binding
	Copy   key.Binding
	Search key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var ActionsKeys = ActionsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Run: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy report"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ActionsModel lists the operator intents and shows the last run's report
type ActionsModel struct {
	ViewState

	ctx     context.Context
	app     *application.Context
	cursor  int
	running bool
	spinner spinner.Model
	report  *application.RunReport
}

// NewActionsModel creates a new actions view model
func NewActionsModel(ctx context.Context, app *application.Context) *ActionsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &ActionsModel{
		ctx:     ctx,
		app:     app,
		spinner: s,
	}
}

// Init initializes the actions view
func (m *ActionsModel) Init() tea.Cmd {
	return nil
}

// Selected returns the intent under the cursor
func (m *ActionsModel) Selected() application.Intent {
	return application.Intents[m.cursor]
}

// Report returns the last finished report, if any
func (m *ActionsModel) Report() *application.RunReport {
	return m.report
}

// Running reports whether an intent is in flight
func (m *ActionsModel) Running() bool {
	return m.running
}

func (m *ActionsModel) run(intent application.Intent) tea.Cmd {
	return func() tea.Msg {
		return RunFinishedMsg{Report: commands.Run(m.ctx, m.app, intent)}
	}
}

// Update handles messages for the actions view
func (m *ActionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RunFinishedMsg:
		m.running = false
		m.report = msg.Report
		m.ClearMessage()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, ActionsKeys.Quit) {
			return m, tea.Quit
		}
		// Only quitting is allowed while a run is in flight
		if m.running {
			return m, nil
		}

		switch {
		case key.Matches(msg, ActionsKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, ActionsKeys.Down):
			if m.cursor < len(application.Intents)-1 {
				m.cursor++
			}
		case key.Matches(msg, ActionsKeys.Run):
			m.running = true
			m.ClearMessage()
			return m, tea.Batch(m.spinner.Tick, m.run(m.Selected()))
		case key.Matches(msg, ActionsKeys.Copy):
			m.copyReport()
		case key.Matches(msg, ActionsKeys.Search):
			return m, func() tea.Msg { return SwitchToSearchMsg{} }
		case key.Matches(msg, ActionsKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
	}

	return m, nil
}

func (m *ActionsModel) copyReport() {
	if m.report == nil {
		m.SetMessage("Nothing to copy yet", true)
		return
	}
	if err := copyToClipboard(PlainReport(m.report)); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.SetMessage("Report copied to clipboard", false)
}

// View renders the actions view
func (m *ActionsModel) View() string {
	account := "not configured"
	if sub := m.app.Credentials.Subdomain; sub != "" {
		account = sub + ".zendesk.com"
	}
	v := NewViewBuilder().
		Title("Help Center Sync").
		Subtitle(account)

	for i, intent := range application.Intents {
		if i == m.cursor {
			v.Line(styles.ItemSelected.Render(intent.Label()))
		} else {
			v.Line(styles.Item.Render(intent.Label()))
		}
	}
	v.BlankLine()

	if m.running {
		v.Line(m.spinner.View() + " " + m.Selected().Label() + "...").BlankLine()
	} else if m.report != nil {
		v.Line(RenderReport(m.report)).BlankLine()
	}

	return v.Message(m.Message, m.MessageErr).
		Help(ActionsKeys.Up, ActionsKeys.Down, ActionsKeys.Run, ActionsKeys.Copy,
			ActionsKeys.Search, ActionsKeys.Help, ActionsKeys.Quit).
		String()
}

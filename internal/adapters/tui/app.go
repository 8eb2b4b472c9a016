package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"zdguide/internal/adapters/tui/views"
	"zdguide/internal/application"
)

// ViewState represents the current view
type ViewState int

const (
	ViewActions ViewState = iota
	ViewSearch
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state   ViewState
	actions *views.ActionsModel
	search  *views.SearchModel
	help    *views.HelpModel
}

// NewApp creates a new TUI application
func NewApp(ctx context.Context, app *application.Context) *App {
	return &App{
		state:   ViewActions,
		actions: views.NewActionsModel(ctx, app),
		search:  views.NewSearchModel(ctx, app),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.actions.Init()
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.actions.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToActionsMsg:
		a.state = ViewActions
		return a, nil

	case views.RunFinishedMsg:
		// Runs always belong to the actions view, whichever view is showing
		_, cmd := a.actions.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	default:
		_, cmd = a.actions.Update(msg)
	}
	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.actions.View()
	}
}

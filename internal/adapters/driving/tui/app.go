package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/components/input"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/components/list"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/components/status"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/keymap"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/messages"
	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driving/tui/styles"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// The interface is a single read-only screen: a query input at the
// top, a navigable result list below it, and a status bar showing
// index statistics and the active search strategy.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// input is the query input component.
	input *input.SearchInput

	// list is the result list component.
	list *list.ResultList

	// statusbar shows state, index stats and key hints.
	statusbar *status.Bar

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool

	// focusInput is true while typing, false while navigating results.
	focusInput bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		focusInput: true,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("PocketMCP - Local Search"),
		a.input.Init(),
		a.loadStats(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SearchCompleted:
		a.handleSearchCompleted(msg)
		return a, nil

	case messages.StatsLoaded:
		// A failed stats read leaves the bar without counts; search
		// still works, so no error state.
		if msg.Err == nil {
			a.statusbar.SetStats(msg.Stats)
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the components
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.list, cmd = a.list.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if keymap.Matches(msg.String(), a.keymap.Quit) {
		return a, tea.Quit
	}

	// Esc returns from results to the input; from the input it quits.
	if msg.Type == tea.KeyEsc {
		if !a.focusInput {
			a.focusInput = true
			return a, a.input.Focus()
		}
		return a, tea.Quit
	}

	// Enter in input mode submits the search
	if msg.Type == tea.KeyEnter && a.focusInput {
		query := a.input.Value()
		if query == "" {
			return a, nil
		}
		a.statusbar.SetState(status.StateSearching)
		a.focusInput = false
		a.input.Blur()
		return a, tea.Batch(a.performSearch(query), a.loadStats())
	}

	// Input mode: all other keys go to the input
	if a.focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode: navigation
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		a.list.MoveUp()
		return a, nil
	case tea.KeyDown:
		a.list.MoveDown()
		return a, nil
	}

	switch msg.String() {
	case "k":
		a.list.MoveUp()
		return a, nil
	case "j":
		a.list.MoveDown()
		return a, nil
	case "n":
		// New search: clear input and focus it
		a.focusInput = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	return a, nil
}

// performSearch executes a search and delivers the results as a message.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		matches, err := a.ports.Search.Search(a.ctx, query, domain.SearchOptions{})
		return messages.SearchCompleted{Matches: matches, Err: err}
	}
}

// loadStats reads index statistics for the status bar.
func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.ports.Documents.Stats(a.ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// handleSearchCompleted processes search results.
func (a *App) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return
	}

	a.err = nil
	a.list.SetMatches(msg.Matches)
	a.statusbar.SetState(status.StateResults)
	a.statusbar.SetResultCount(len(msg.Matches))

	// Stay in results mode after a successful search
	a.focusInput = false
	a.input.Blur()
}

// View implements tea.Model.
// It renders the screen as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	// Header
	header := a.styles.Title.Render("PocketMCP")
	sections = append(sections, header, "")

	// Query input
	sections = append(sections, a.input.View(), "")

	// Error display
	if a.err != nil {
		errView := a.styles.Error.Render("Error: " + a.err.Error())
		sections = append(sections, errView, "")
	}

	// Result list
	sections = append(sections, a.list.View())

	// Status bar at the bottom
	sections = append(sections, "", a.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Allocate space to components
	a.input.SetWidth(width)
	a.list.SetDimensions(width, height-8) // Reserve space for header, input, status
	a.statusbar.SetWidth(width)
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.input.Value()
}

// SetQuery sets the search query.
func (a *App) SetQuery(query string) {
	a.input.SetValue(query)
}

// Results returns the current search matches.
func (a *App) Results() []domain.Match {
	return a.list.Matches()
}

// SelectedIndex returns the index of the selected match.
func (a *App) SelectedIndex() int {
	return a.list.Selected()
}

// SelectedMatch returns the currently selected match.
func (a *App) SelectedMatch() *domain.Match {
	return a.list.SelectedMatch()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// InputFocused returns whether the query input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}

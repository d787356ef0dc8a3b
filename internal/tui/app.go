// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for Kringle.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ohalloran/kringle/internal/config"
	"github.com/ohalloran/kringle/internal/exchange"
	"github.com/ohalloran/kringle/internal/logbook"
	"github.com/ohalloran/kringle/internal/rosterfile"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu     appState = iota // Main menu with "New Exchange", etc.
	stateNameEntry                    // Collecting participant names
	statePartnerEntry                 // Collecting the partner for the pending name
	stateForcedEntry                  // Collecting "Giver > Receiver" pairs
	stateReview                       // Roster summary before the draw
	stateReveal                       // Private, one-at-a-time reveal
	stateLookup                       // "Look up again" by name
)

const doneWord = "done"

// drawFinishedMsg carries the solver result back into the Update loop.
type drawFinishedMsg struct {
	assignment *exchange.Assignment
	err        error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSolveOptions appends solver options to every draw the app runs.
// Tests use this to seed the random source.
func WithSolveOptions(opts ...exchange.SolveOption) AppOption {
	return func(a *App) {
		a.solveOpts = append(a.solveOpts, opts...)
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	logbook *logbook.Logbook

	// Roster under construction plus the name waiting for its partner
	// answer.
	roster      *exchange.Roster
	pendingName string

	// The completed draw, if any.
	assignment *exchange.Assignment

	// UI components
	mainMenu     list.Model
	nameInput    textinput.Model
	partnerInput textinput.Model
	forcedInput  textinput.Model
	lookupInput  textinput.Model

	// Reveal progress
	revealIdx   int
	revealPhase revealPhase
	lookupFound string

	solveOpts []exchange.SolveOption

	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(cfg.LogsDir(), "draw.log")
	lb, err := logbook.New(logPath)
	if err != nil {
		return nil, err
	}
	lb.Info("Session opened")

	mainMenu := list.New(buildMainMenu(cfg, false), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "✦ KRINGLE"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:        stateMainMenu,
		config:       cfg,
		logbook:      lb,
		mainMenu:     mainMenu,
		nameInput:    newInput("Participant name (or 'done')"),
		partnerInput: newInput("Partner name (or 'none')"),
		forcedInput:  newInput("Giver > Receiver (or 'done')"),
		lookupInput:  newInput("Your name"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// buildMainMenu creates the main menu items. Reveal entries only appear
// once a draw exists.
func buildMainMenu(cfg *config.Config, hasDraw bool) []list.Item {
	items := []list.Item{
		menuItem{title: "New Exchange", desc: "Enter participants, partners and fixed pairs"},
		menuItem{title: "Load Roster", desc: fmt.Sprintf("Read %s", filepath.Base(cfg.RosterPath()))},
	}
	if hasDraw {
		items = append(items,
			menuItem{title: "Reveal Assignments", desc: "Show each receiver privately, one at a time"},
			menuItem{title: "Look Up Again", desc: "Re-check a single assignment by name"},
		)
	}
	items = append(items, menuItem{title: "Exit", desc: "Quit Kringle"})
	return items
}

func (a *App) refreshMainMenu() {
	a.mainMenu.SetItems(buildMainMenu(a.config, a.assignment != nil))
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case drawFinishedMsg:
		return a.handleDrawFinished(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				a.logInfo("Session closed")
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "enter":
			return a.handleEnter()
		case "s":
			if a.state == stateReview {
				return a.saveRoster()
			}
		}
	}

	return a.updateFocusedComponent(msg)
}

// updateFocusedComponent forwards remaining messages to whichever
// component owns the keyboard.
func (a *App) updateFocusedComponent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case stateMainMenu:
		a.mainMenu, cmd = a.mainMenu.Update(msg)
	case stateNameEntry:
		a.nameInput, cmd = a.nameInput.Update(msg)
	case statePartnerEntry:
		a.partnerInput, cmd = a.partnerInput.Update(msg)
	case stateForcedEntry:
		a.forcedInput, cmd = a.forcedInput.Update(msg)
	case stateLookup:
		if a.lookupFound == "" {
			a.lookupInput, cmd = a.lookupInput.Update(msg)
		}
	}
	return a, cmd
}

// handleEnter routes the enter key by screen.
func (a *App) handleEnter() (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMainMenu:
		return a.handleMainMenuSelection()
	case stateNameEntry:
		return a.handleNameSubmitted()
	case statePartnerEntry:
		return a.handlePartnerSubmitted()
	case stateForcedEntry:
		return a.handleForcedSubmitted()
	case stateReview:
		a.statusMsg = "Drawing..."
		return a, a.drawCmd()
	case stateReveal:
		return a.advanceReveal()
	case stateLookup:
		return a.handleLookupSubmitted()
	}
	return a, nil
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "New Exchange":
		a.logInfo("Menu · New Exchange selected")
		return a.beginRosterEntry()

	case "Load Roster":
		a.logInfo("Menu · Load Roster selected")
		return a.loadRoster()

	case "Reveal Assignments":
		a.logInfo("Menu · Reveal selected")
		return a.beginReveal()

	case "Look Up Again":
		a.logInfo("Menu · Look Up Again selected")
		return a.beginLookup()

	case "Exit":
		a.logInfo("Session closed")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) beginRosterEntry() (tea.Model, tea.Cmd) {
	a.roster = exchange.NewRoster()
	a.assignment = nil
	a.pendingName = ""
	a.state = stateNameEntry
	a.statusMsg = "Enter the names of participants. Type 'done' when finished."
	a.nameInput.SetValue("")
	return a, a.nameInput.Focus()
}

func (a *App) handleNameSubmitted() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(a.nameInput.Value())
	a.nameInput.SetValue("")
	if name == "" {
		a.statusMsg = "Please enter a valid name."
		return a, nil
	}
	if strings.EqualFold(name, doneWord) {
		a.nameInput.Blur()
		a.state = stateForcedEntry
		a.statusMsg = "Enter fixed pairs as 'Giver > Receiver', or 'done' to continue."
		a.forcedInput.SetValue("")
		return a, a.forcedInput.Focus()
	}
	if a.roster.Contains(name) {
		a.statusMsg = fmt.Sprintf("%s is already on the roster.", name)
		return a, nil
	}
	a.pendingName = name
	a.nameInput.Blur()
	a.state = statePartnerEntry
	a.statusMsg = fmt.Sprintf("Enter %s's partner, or 'none'.", name)
	a.partnerInput.SetValue("")
	return a, a.partnerInput.Focus()
}

func (a *App) handlePartnerSubmitted() (tea.Model, tea.Cmd) {
	partner := strings.TrimSpace(a.partnerInput.Value())
	a.partnerInput.SetValue("")
	a.partnerInput.Blur()

	var err error
	if partner == "" || strings.EqualFold(partner, "none") {
		err = a.roster.AddParticipant(a.pendingName)
	} else {
		err = a.roster.AddPartners(a.pendingName, partner)
	}
	if err != nil {
		a.statusMsg = err.Error()
		a.state = stateNameEntry
		return a, a.nameInput.Focus()
	}
	a.statusMsg = fmt.Sprintf("%d on the roster. Next name, or 'done'.", a.roster.Len())
	a.pendingName = ""
	a.state = stateNameEntry
	return a, a.nameInput.Focus()
}

func (a *App) handleForcedSubmitted() (tea.Model, tea.Cmd) {
	entry := strings.TrimSpace(a.forcedInput.Value())
	a.forcedInput.SetValue("")
	if strings.EqualFold(entry, doneWord) || entry == "" {
		a.forcedInput.Blur()
		a.state = stateReview
		a.statusMsg = "Review the roster. Enter draws, s saves the roster, Esc cancels."
		return a, nil
	}
	giver, receiver, ok := strings.Cut(entry, ">")
	if !ok {
		a.statusMsg = "Invalid format. Please use 'Giver > Receiver'."
		return a, nil
	}
	if err := a.roster.AddForced(giver, receiver); err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Fixed %s > %s. Another pair, or 'done'.",
		strings.TrimSpace(giver), strings.TrimSpace(receiver))
	return a, nil
}

func (a *App) loadRoster() (tea.Model, tea.Cmd) {
	path := a.config.RosterPath()
	doc, err := rosterfile.Load(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Load failed: %v", err)
		a.logError("Roster load failed: %v", err)
		return a, nil
	}
	roster, err := doc.Roster()
	if err != nil {
		a.statusMsg = fmt.Sprintf("Roster problem: %v", err)
		a.logError("Roster rejected: %v", err)
		return a, nil
	}
	a.roster = roster
	a.assignment = nil
	a.state = stateReview
	a.statusMsg = fmt.Sprintf("Loaded %d participants from %s. Enter draws.",
		roster.Len(), filepath.Base(path))
	a.logInfo("Roster loaded · %d participants", roster.Len())
	return a, nil
}

func (a *App) saveRoster() (tea.Model, tea.Cmd) {
	if a.roster == nil || a.roster.Len() == 0 {
		a.statusMsg = "Nothing to save yet."
		return a, nil
	}
	path := a.config.RosterPath()
	if err := rosterfile.Save(path, rosterfile.FromRoster(a.roster)); err != nil {
		a.statusMsg = fmt.Sprintf("Save failed: %v", err)
		a.logError("Roster save failed: %v", err)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Roster saved to %s.", filepath.Base(path))
	a.logInfo("Roster saved · %d participants", a.roster.Len())
	return a, nil
}

// drawCmd runs the solver off the Update loop.
func (a *App) drawCmd() tea.Cmd {
	roster := a.roster
	opts := make([]exchange.SolveOption, 0, len(a.solveOpts)+1)
	if n := a.config.SolverMaxAttempts(); n > 0 {
		opts = append(opts, exchange.WithMaxAttempts(n))
	}
	opts = append(opts, a.solveOpts...)
	return func() tea.Msg {
		assignment, err := exchange.Solve(roster, opts...)
		return drawFinishedMsg{assignment: assignment, err: err}
	}
}

func (a *App) handleDrawFinished(msg drawFinishedMsg) (tea.Model, tea.Cmd) {
	switch {
	case exchange.IsConfigError(msg.err):
		a.statusMsg = fmt.Sprintf("Roster problem: %v", msg.err)
		a.logError("Draw rejected: %v", msg.err)
		a.state = stateReview
		return a, nil
	case errors.Is(msg.err, exchange.ErrInfeasible):
		a.statusMsg = "No valid assignment exists for this roster. Adjust partners or fixed pairs and try again."
		a.logWarn("Draw infeasible · %d participants", a.roster.Len())
		a.state = stateReview
		return a, nil
	case msg.err != nil:
		a.statusMsg = fmt.Sprintf("Draw failed: %v", msg.err)
		a.logError("Draw failed: %v", msg.err)
		a.state = stateReview
		return a, nil
	}
	a.assignment = msg.assignment
	// Draw id and count only. The pairing never reaches the log.
	a.logInfo("Draw %s complete · %d participants", msg.assignment.ID(), msg.assignment.Len())
	a.refreshMainMenu()
	a.state = stateMainMenu
	a.statusMsg = "Draw complete. Choose Reveal Assignments when everyone is ready."
	return a, nil
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.pendingName = ""
	a.lookupFound = ""
	a.nameInput.Blur()
	a.partnerInput.Blur()
	a.forcedInput.Blur()
	a.lookupInput.Blur()
	a.refreshMainMenu()
	if a.statusMsg == "" {
		a.statusMsg = "Back at the main menu."
	}
	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateNameEntry:
		content = a.renderEntry("Participants", a.nameInput.View())
	case statePartnerEntry:
		content = a.renderEntry(fmt.Sprintf("Partner for %s", a.pendingName), a.partnerInput.View())
	case stateForcedEntry:
		content = a.renderEntry("Fixed pairs", a.forcedInput.View())
	case stateReview:
		content = a.renderReview()
	case stateReveal:
		content = a.renderReveal()
	case stateLookup:
		content = a.renderLookup()
	}
	return a.renderFrame(content, width)
}

func (a *App) renderEntry(title, input string) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(title)
	body := lipgloss.JoinVertical(lipgloss.Left, head, "", input)
	if a.roster != nil && a.roster.Len() > 0 {
		count := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render(fmt.Sprintf("%d participant(s) so far", a.roster.Len()))
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", count)
	}
	return body
}

func (a *App) renderFrame(content string, width int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C94F4F")).
		MarginBottom(1).
		Render("✦ KRINGLE")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(40, width-2)).
		Render(content)
	sections := []string{header, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

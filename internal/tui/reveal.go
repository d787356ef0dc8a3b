// internal/tui/reveal.go
//
// The review table and the private reveal flow. The reveal shows one
// receiver at a time: the giver presses enter to see their receiver,
// then hides it again before handing the terminal to the next person.
// Alt-screen re-rendering stands in for clearing the console.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

// revealPhase tracks where the current giver is in the reveal dance.
type revealPhase int

const (
	revealPrompt  revealPhase = iota // "press enter to reveal"
	revealShown                      // receiver on screen
	revealCleared                    // hidden again, waiting for handover
)

var (
	revealNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	revealBoxStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#3C8D5A")).
			Padding(1, 3)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			MarginTop(1)
)

func (a *App) beginReveal() (tea.Model, tea.Cmd) {
	if a.assignment == nil {
		a.statusMsg = "Nothing to reveal yet. Run a draw first."
		return a, nil
	}
	a.state = stateReveal
	a.revealIdx = 0
	a.revealPhase = revealPrompt
	a.statusMsg = "Pass the terminal to each participant in turn. Esc aborts."
	return a, nil
}

// advanceReveal moves the reveal forward one enter-press at a time.
func (a *App) advanceReveal() (tea.Model, tea.Cmd) {
	switch a.revealPhase {
	case revealPrompt:
		a.revealPhase = revealShown
		return a, nil
	case revealShown:
		if a.config.ConfirmHide() {
			a.revealPhase = revealCleared
			return a, nil
		}
		return a.nextRevealGiver()
	case revealCleared:
		return a.nextRevealGiver()
	}
	return a, nil
}

func (a *App) nextRevealGiver() (tea.Model, tea.Cmd) {
	a.revealIdx++
	a.revealPhase = revealPrompt
	if a.revealIdx >= a.assignment.Len() {
		a.logInfo("Reveal finished · draw %s", a.assignment.ID())
		a.statusMsg = "Everyone has seen their assignment."
		return a.returnToMainMenu()
	}
	return a, nil
}

func (a *App) renderReveal() string {
	givers := a.assignment.Givers()
	giver := givers[a.revealIdx]
	progress := fmt.Sprintf("(%d/%d)", a.revealIdx+1, len(givers))

	switch a.revealPhase {
	case revealShown:
		receiver, _ := a.assignment.Receiver(giver)
		box := revealBoxStyle.Render(fmt.Sprintf("%s → you give to → %s", giver, receiver))
		hint := hintStyle.Render("Enter → hide again before passing the terminal on")
		return lipgloss.JoinVertical(lipgloss.Left,
			revealNameStyle.Render(fmt.Sprintf("%s %s", giver, progress)), "", box, hint)
	case revealCleared:
		hint := hintStyle.Render("Screen cleared. Enter → next participant")
		return lipgloss.JoinVertical(lipgloss.Left,
			revealNameStyle.Render(fmt.Sprintf("%s %s", giver, progress)),
			"", "· · ·", hint)
	default:
		hint := hintStyle.Render("Everyone else, look away. Enter → reveal")
		return lipgloss.JoinVertical(lipgloss.Left,
			revealNameStyle.Render(fmt.Sprintf("%s %s — press enter to see your receiver", giver, progress)),
			"", hint)
	}
}

func (a *App) beginLookup() (tea.Model, tea.Cmd) {
	if a.assignment == nil {
		a.statusMsg = "Nothing to look up yet. Run a draw first."
		return a, nil
	}
	a.state = stateLookup
	a.lookupFound = ""
	a.lookupInput.SetValue("")
	a.statusMsg = "Type your name to see your assignment again. Esc returns."
	return a, a.lookupInput.Focus()
}

func (a *App) handleLookupSubmitted() (tea.Model, tea.Cmd) {
	if a.lookupFound != "" {
		// The receiver is on screen; enter hides it and resets the
		// prompt for the next person.
		a.lookupFound = ""
		a.lookupInput.SetValue("")
		return a, a.lookupInput.Focus()
	}
	name := strings.TrimSpace(a.lookupInput.Value())
	if name == "" {
		a.statusMsg = "Please enter a valid name."
		return a, nil
	}
	if _, ok := a.assignment.Receiver(name); !ok {
		a.statusMsg = fmt.Sprintf("No participant named %s. Please try again.", name)
		a.lookupInput.SetValue("")
		return a, nil
	}
	a.lookupFound = name
	a.lookupInput.Blur()
	a.statusMsg = "Enter hides the assignment again."
	return a, nil
}

func (a *App) renderLookup() string {
	head := revealNameStyle.Render("Look up an assignment")
	if a.lookupFound != "" {
		receiver, _ := a.assignment.Receiver(a.lookupFound)
		box := revealBoxStyle.Render(fmt.Sprintf("%s → you give to → %s", a.lookupFound, receiver))
		return lipgloss.JoinVertical(lipgloss.Left, head, "", box)
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, "", a.lookupInput.View())
}

// renderReview summarizes the roster before the draw. Forced pairs are
// organizer input, so showing them here leaks nothing the organizer
// does not already know.
func (a *App) renderReview() string {
	if a.roster == nil || a.roster.Len() == 0 {
		return "No roster yet."
	}
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Participant", "Cannot draw", "Fixed receiver"})
	for _, name := range a.roster.Participants() {
		partners := strings.Join(a.roster.Partners(name), ", ")
		forced := ""
		if receiver, ok := a.roster.ForcedReceiver(name); ok {
			forced = receiver
		}
		table.Append([]string{name, partners, forced})
	}
	table.Render()

	head := revealNameStyle.Render(fmt.Sprintf("Roster · %d participant(s)", a.roster.Len()))
	hint := hintStyle.Render("Enter → draw    s → save roster    Esc → cancel")
	return lipgloss.JoinVertical(lipgloss.Left, head, "", buf.String(), hint)
}

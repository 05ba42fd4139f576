// Package statusbar provides the status bar UI component.
package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fnugdev/fnug/internal/ui/styles"
)

// Model is the status bar component.
type Model struct {
	width        int
	message      string
	isError      bool
	runningCount int
	watching     bool
	termFocused  bool
}

// New creates a new status bar component.
func New() Model {
	return Model{}
}

// SetWidth updates the status bar width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetMessage sets a temporary message.
func (m *Model) SetMessage(msg string, isError bool) {
	m.message = msg
	m.isError = isError
}

// ClearMessage clears the temporary message.
func (m *Model) ClearMessage() {
	m.message = ""
	m.isError = false
}

// SetRunningCount updates the running process count.
func (m *Model) SetRunningCount(count int) {
	m.runningCount = count
}

// SetWatching records whether the file watcher is active.
func (m *Model) SetWatching(watching bool) {
	m.watching = watching
}

// SetTerminalFocused records which pane the key hints describe.
func (m *Model) SetTerminalFocused(focused bool) {
	m.termFocused = focused
}

// View renders the status bar.
func (m Model) View() string {
	brand := styles.StatusBarBrand.Render(" fnug ")

	var helpItems []string
	if m.termFocused {
		helpItems = append(helpItems,
			m.renderKey("tab", "tree"),
			m.renderKey("shift+↑/↓", "scroll"),
			m.renderKey("pgup/pgdn", "page"),
			m.renderKey("end", "latest"),
			m.renderKey("x", "kill"),
		)
	} else {
		helpItems = append(helpItems,
			m.renderKey("↑/↓", "move"),
			m.renderKey("enter", "run"),
			m.renderKey("a", "run selected"),
			m.renderKey("x", "kill"),
			m.renderKey("c", "clear"),
			m.renderKey("tab", "terminal"),
			m.renderKey("q", "quit"),
		)
	}
	help := strings.Join(helpItems, " ")

	var badges string
	if m.watching {
		badges += lipgloss.NewStyle().Foreground(styles.Accent).Render(" 👁 watch ")
	}
	if m.runningCount > 0 {
		badges += lipgloss.NewStyle().
			Foreground(styles.Success).
			Render(fmt.Sprintf(" ● %d running ", m.runningCount))
	}

	var msgArea string
	if m.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		if m.isError {
			msgStyle = lipgloss.NewStyle().Foreground(styles.Danger).Bold(true)
		}
		msgArea = msgStyle.Render(" " + m.message + " ")
	}

	left := brand + badges
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(msgArea) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	content := left +
		strings.Repeat(" ", leftPad) +
		msgArea +
		strings.Repeat(" ", rightPad) +
		help

	return lipgloss.NewStyle().
		Background(styles.Mantle).
		Foreground(styles.TextMuted).
		Width(m.width).
		Render(content)
}

// renderKey renders a key binding hint.
func (m Model) renderKey(key, desc string) string {
	return styles.StatusBarKey.Render(key) + styles.StatusBarDesc.Render(":"+desc)
}

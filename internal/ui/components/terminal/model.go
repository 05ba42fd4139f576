// Package terminal provides the terminal output UI component.
package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fnugdev/fnug/internal/runtime"
	"github.com/fnugdev/fnug/internal/ui/styles"
)

// Model is the terminal pane. It displays the latest frame published by a
// process output stream; all screen state lives in the process.
type Model struct {
	frame   runtime.Frame
	hasProc bool
	name    string

	focused bool
	width   int
	height  int
}

// New creates an empty terminal pane.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// PTYSize returns the size processes should be spawned and resized to.
func (m Model) PTYSize() (cols, rows int) {
	cols = m.width - 4
	rows = m.height - 4
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// SetFocused updates the focus state.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the component is focused.
func (m Model) IsFocused() bool {
	return m.focused
}

// SetCommand switches the pane to a different command's output.
func (m *Model) SetCommand(name string) {
	m.name = name
	m.hasProc = false
	m.frame = runtime.Frame{}
}

// SetFrame stores the latest frame for display.
func (m *Model) SetFrame(frame runtime.Frame) {
	m.frame = frame
	m.hasProc = true
}

// Frame returns the frame currently on display.
func (m Model) Frame() runtime.Frame {
	return m.frame
}

// View renders the terminal panel.
func (m Model) View() string {
	innerWidth := m.width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}

	title := "Terminal"
	if m.name != "" {
		title = m.name
	}
	if m.focused {
		title = styles.PanelTitleFocused.Render(title)
	} else {
		title = styles.PanelTitle.Render(title)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Left, title, "  ", m.statusInfo())

	var content string
	if !m.hasProc {
		content = m.placeholder("Select a command and press Enter to run", innerWidth)
	} else {
		content = strings.Join(m.frame.Lines, "\n")
		if m.frame.Offset > 0 {
			content += "\n" + styles.TerminalPlaceholder.Render(
				fmt.Sprintf("· scrolled %d/%d ·", m.frame.Offset, m.frame.ScrollbackLen))
		}
	}

	border := styles.BorderStyle
	if m.focused {
		border = styles.FocusedBorderStyle
	}

	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			strings.Repeat("─", innerWidth),
			content,
		))
}

func (m Model) statusInfo() string {
	if !m.hasProc {
		return lipgloss.NewStyle().Foreground(styles.StatusIdle).Render("IDLE")
	}
	switch m.frame.Status.State {
	case runtime.StateRunning, runtime.StateStarting:
		return lipgloss.NewStyle().Foreground(styles.StatusRunning).Render("RUNNING")
	case runtime.StateExited:
		if m.frame.Status.ExitCode == 0 {
			return lipgloss.NewStyle().Foreground(styles.StatusExited).Render("DONE")
		}
		return lipgloss.NewStyle().Foreground(styles.StatusCrashed).
			Render(fmt.Sprintf("FAILED (%d)", m.frame.Status.ExitCode))
	case runtime.StateKilled:
		return lipgloss.NewStyle().Foreground(styles.StatusKilled).Render("KILLED")
	case runtime.StateCrashed:
		return lipgloss.NewStyle().Foreground(styles.StatusCrashed).Render("CRASHED")
	default:
		return lipgloss.NewStyle().Foreground(styles.StatusIdle).Render("IDLE")
	}
}

func (m Model) placeholder(msg string, width int) string {
	height := m.height - 4
	if height < 1 {
		height = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.TerminalPlaceholder.Render(msg))
}

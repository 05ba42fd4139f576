// Package cmdtree provides the command tree UI component.
package cmdtree

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/runtime"
	"github.com/fnugdev/fnug/internal/ui/styles"
)

// Kind distinguishes tree rows.
type Kind int

const (
	KindGroup Kind = iota
	KindCommand
)

// Item is one row of the flattened tree.
type Item struct {
	Kind    Kind
	Depth   int
	ID      string
	Name    string
	Command *config.Command
}

// Model is the command tree component.
type Model struct {
	tree      *config.Group
	items     []Item // visible rows, recomputed on collapse changes
	collapsed map[string]bool
	statuses  map[string]runtime.Status

	cursor  int
	offset  int
	focused bool
	width   int
	height  int
}

// New creates the tree component for a resolved config tree.
func New(tree *config.Group) Model {
	m := Model{
		tree:      tree,
		collapsed: make(map[string]bool),
		statuses:  make(map[string]runtime.Status),
	}
	m.rebuild()
	return m
}

// rebuild flattens the tree into visible rows, honoring collapsed groups.
func (m *Model) rebuild() {
	m.items = m.items[:0]
	m.appendGroup(m.tree, 0, true)
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) appendGroup(g *config.Group, depth int, isRoot bool) {
	if !isRoot {
		m.items = append(m.items, Item{Kind: KindGroup, Depth: depth, ID: g.ID, Name: g.Name})
		if m.collapsed[g.ID] {
			return
		}
		depth++
	}
	for i := range g.Commands {
		cmd := &g.Commands[i]
		m.items = append(m.items, Item{
			Kind: KindCommand, Depth: depth, ID: cmd.ID, Name: cmd.Name, Command: cmd,
		})
	}
	for i := range g.Children {
		m.appendGroup(&g.Children[i], depth, false)
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureVisible()
}

// SetFocused updates the focus state.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the component is focused.
func (m Model) IsFocused() bool {
	return m.focused
}

// SetStatus records the process status for a command id.
func (m *Model) SetStatus(id string, status runtime.Status) {
	m.statuses[id] = status
}

// SelectedCommand returns the command under the cursor, or nil on a group
// row.
func (m Model) SelectedCommand() *config.Command {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor].Command
}

// SelectedItem returns the row under the cursor.
func (m Model) SelectedItem() *Item {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return &m.items[m.cursor]
}

// CursorUp moves the cursor up.
func (m *Model) CursorUp() {
	if m.cursor > 0 {
		m.cursor--
		m.ensureVisible()
	}
}

// CursorDown moves the cursor down.
func (m *Model) CursorDown() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
		m.ensureVisible()
	}
}

// Collapse folds the group under the cursor.
func (m *Model) Collapse() {
	item := m.SelectedItem()
	if item == nil || item.Kind != KindGroup {
		return
	}
	m.collapsed[item.ID] = true
	m.rebuild()
}

// Expand unfolds the group under the cursor.
func (m *Model) Expand() {
	item := m.SelectedItem()
	if item == nil || item.Kind != KindGroup {
		return
	}
	delete(m.collapsed, item.ID)
	m.rebuild()
}

func (m *Model) ensureVisible() {
	visible := m.visibleRows()
	if visible < 1 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m Model) visibleRows() int {
	return m.height - 3 // border + header
}

// View renders the tree panel.
func (m Model) View() string {
	title := "Commands"
	if m.focused {
		title = styles.PanelTitleFocused.Render(title)
	} else {
		title = styles.PanelTitle.Render(title)
	}

	innerWidth := m.width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}

	var rows []string
	visible := m.visibleRows()
	for i := m.offset; i < len(m.items) && len(rows) < visible; i++ {
		rows = append(rows, m.renderItem(i, innerWidth))
	}
	for len(rows) < visible {
		rows = append(rows, "")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Repeat("─", innerWidth),
		strings.Join(rows, "\n"),
	)

	border := styles.BorderStyle
	if m.focused {
		border = styles.FocusedBorderStyle
	}
	return border.Width(m.width - 2).Height(m.height - 2).Render(body)
}

func (m Model) renderItem(i, width int) string {
	item := m.items[i]
	indent := strings.Repeat("  ", item.Depth)

	var line string
	switch item.Kind {
	case KindGroup:
		marker := "▾"
		if m.collapsed[item.ID] {
			marker = "▸"
		}
		line = indent + marker + " " + item.Name
	case KindCommand:
		line = indent + m.statusIcon(item.ID) + " " + item.Name
	}

	if len(line) > width {
		line = line[:width]
	}

	switch {
	case i == m.cursor && m.focused:
		return styles.TreeItemSelected.Width(width).Render(line)
	case i == m.cursor:
		return styles.TreeItem.Width(width).Bold(true).Render(line)
	case item.Kind == KindGroup:
		return styles.TreeGroup.Width(width).Render(line)
	default:
		return styles.TreeItem.Width(width).Render(line)
	}
}

func (m Model) statusIcon(id string) string {
	status := m.statuses[id]

	var color lipgloss.Color
	switch status.State {
	case runtime.StateRunning, runtime.StateStarting:
		color = styles.StatusRunning
	case runtime.StateExited:
		if status.ExitCode == 0 {
			color = styles.StatusExited
		} else {
			color = styles.StatusCrashed
		}
	case runtime.StateKilled:
		color = styles.StatusKilled
	case runtime.StateCrashed:
		color = styles.StatusCrashed
	default:
		color = styles.StatusIdle
	}
	return lipgloss.NewStyle().Foreground(color).Render("●")
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/core"
	"github.com/fnugdev/fnug/internal/notify"
	"github.com/fnugdev/fnug/internal/runtime"
	"github.com/fnugdev/fnug/internal/ui/components/cmdtree"
	"github.com/fnugdev/fnug/internal/ui/components/statusbar"
	"github.com/fnugdev/fnug/internal/ui/components/terminal"
	"github.com/fnugdev/fnug/internal/ui/keys"
	"github.com/fnugdev/fnug/internal/watcher"
)

// FocusArea represents which UI pane has focus.
type FocusArea int

const (
	// FocusTree is the command tree pane.
	FocusTree FocusArea = iota
	// FocusTerminal is the terminal viewport pane.
	FocusTerminal
)

const (
	minAppWidth  = 40
	minAppHeight = 10
	treeWidth    = 32
)

// Options configures the application.
type Options struct {
	// Watch enables the file watcher stream.
	Watch bool
	// Notify configures result notifications.
	Notify notify.Config
}

// App is the main application model.
type App struct {
	// Components
	tree      cmdtree.Model
	terminal  terminal.Model
	statusBar statusbar.Model

	// State
	focus    FocusArea
	width    int
	height   int
	ready    bool
	quitting bool
	activeID string
	running  map[string]bool

	// Dependencies
	core        *core.Core
	engine      *runtime.Engine
	notifier    *notify.Dispatcher
	keys        keys.KeyMap
	opts        Options
	watchStream *watcher.Stream
	frameStream *runtime.FrameStream
}

// New creates a new application instance.
func New(c *core.Core, e *runtime.Engine, opts Options) App {
	app := App{
		tree:      cmdtree.New(c.Config()),
		terminal:  terminal.New(),
		statusBar: statusbar.New(),
		core:      c,
		engine:    e,
		notifier:  notify.NewDispatcher(opts.Notify),
		keys:      keys.DefaultKeyMap(),
		opts:      opts,
		running:   make(map[string]bool),
	}
	app.updateFocus()

	if opts.Watch {
		if stream, err := c.Watch(); err == nil {
			app.watchStream = stream
			app.statusBar.SetWatching(true)
		} else {
			app.statusBar.SetMessage(fmt.Sprintf("watcher unavailable: %v", err), true)
		}
	}
	return app
}

// Init starts pulling from the watcher stream when watching is enabled.
func (a App) Init() tea.Cmd {
	if a.watchStream == nil {
		return nil
	}
	return a.watchNext()
}

func (a *App) watchNext() tea.Cmd {
	stream := a.watchStream
	return func() tea.Msg {
		commands, err := stream.Next(context.Background())
		if err != nil {
			return watchStoppedMsg{err: err}
		}
		return watchTickMsg{commands: commands}
	}
}

func (a *App) frameNext() tea.Cmd {
	stream := a.frameStream
	id := a.activeID
	return func() tea.Msg {
		frame, err := stream.Next(context.Background())
		if err != nil {
			return frameDoneMsg{id: id}
		}
		return frameMsg{id: id, frame: frame}
	}
}

func waitFor(id string, proc *runtime.Process) tea.Cmd {
	return func() tea.Msg {
		return procExitMsg{id: id, status: proc.Wait()}
	}
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)
	case tea.KeyMsg:
		return a.handleKey(msg)
	case watchTickMsg:
		return a.handleWatchTick(msg)
	case watchStoppedMsg:
		a.statusBar.SetWatching(false)
		if msg.err != nil && !errors.Is(msg.err, watcher.ErrStreamClosed) {
			a.statusBar.SetMessage(fmt.Sprintf("watcher stopped: %v", msg.err), true)
		}
		return a, nil
	case frameMsg:
		if msg.id == a.activeID {
			a.terminal.SetFrame(msg.frame)
			return a, a.frameNext()
		}
		return a, nil
	case frameDoneMsg:
		return a, nil
	case procExitMsg:
		return a.handleExit(msg)
	case startErrMsg:
		a.statusBar.SetMessage(fmt.Sprintf("%s: %v", msg.name, msg.err), true)
		return a, nil
	}
	return a, nil
}

func (a App) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height
	a.ready = a.width >= minAppWidth && a.height >= minAppHeight

	barHeight := 1
	a.statusBar.SetWidth(a.width)
	a.tree.SetSize(treeWidth, a.height-barHeight)
	a.terminal.SetSize(a.width-treeWidth, a.height-barHeight)

	// Keep the active PTY in step with the pane.
	if proc, ok := a.engine.Get(a.activeID); ok && !proc.Status().Done() {
		cols, rows := a.terminal.PTYSize()
		_ = proc.Resize(cols, rows)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Terminal-focused interactive commands receive raw input, so only a
	// small set of control keys stays with the UI.
	if a.focus == FocusTerminal {
		return a.handleTerminalKey(msg)
	}
	return a.handleTreeKey(msg)
}

func (a App) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		a.teardown()
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		a.tree.CursorUp()
	case key.Matches(msg, a.keys.Down):
		a.tree.CursorDown()
	case key.Matches(msg, a.keys.Collapse):
		a.tree.Collapse()
	case key.Matches(msg, a.keys.Expand):
		a.tree.Expand()
	case key.Matches(msg, a.keys.Tab):
		a.focus = FocusTerminal
		a.updateFocus()
	case key.Matches(msg, a.keys.Run):
		if cmd := a.tree.SelectedCommand(); cmd != nil {
			return a, a.startCommand(*cmd)
		}
	case key.Matches(msg, a.keys.RunAuto):
		var batch []tea.Cmd
		for _, cmd := range a.core.SelectedCommands() {
			batch = append(batch, a.startCommand(cmd))
		}
		return a, tea.Batch(batch...)
	case key.Matches(msg, a.keys.Kill):
		if cmd := a.tree.SelectedCommand(); cmd != nil {
			a.engine.Kill(cmd.ID)
		}
	case key.Matches(msg, a.keys.Clear):
		if cmd := a.tree.SelectedCommand(); cmd != nil {
			if proc, ok := a.engine.Get(cmd.ID); ok {
				proc.Clear()
			}
		}
	}
	return a, nil
}

func (a App) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	proc, hasProc := a.engine.Get(a.activeID)

	switch {
	case key.Matches(msg, a.keys.Tab):
		a.focus = FocusTree
		a.updateFocus()
		return a, nil
	case key.Matches(msg, a.keys.Quit):
		if !hasProc || !proc.CanFocus() {
			a.quitting = true
			a.teardown()
			return a, tea.Quit
		}
	case key.Matches(msg, a.keys.ScrollUp):
		if hasProc {
			proc.Scroll(1)
		}
		return a, nil
	case key.Matches(msg, a.keys.ScrollDown):
		if hasProc {
			proc.Scroll(-1)
		}
		return a, nil
	case key.Matches(msg, a.keys.PageUp):
		if hasProc {
			_, rows := a.terminal.PTYSize()
			proc.Scroll(rows)
		}
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		if hasProc {
			_, rows := a.terminal.PTYSize()
			proc.Scroll(-rows)
		}
		return a, nil
	case key.Matches(msg, a.keys.Bottom):
		// Snap to the live screen when scrolled; otherwise the key falls
		// through to the child below.
		if hasProc && a.terminal.Frame().Offset > 0 {
			proc.SetScroll(0)
			return a, nil
		}
	case key.Matches(msg, a.keys.Kill):
		// Interactive children own their keystrokes; plain commands can be
		// killed straight from the terminal pane.
		if hasProc && !proc.CanFocus() {
			proc.Kill()
			return a, nil
		}
	}

	// Anything else goes to the child, but only for interactive commands.
	if hasProc && proc.CanFocus() && !proc.Status().Done() {
		if input := keyToBytes(msg); len(input) > 0 {
			proc.Write(input)
		}
	}
	return a, nil
}

func (a App) handleWatchTick(msg watchTickMsg) (tea.Model, tea.Cmd) {
	batch := []tea.Cmd{a.watchNext()}
	for _, cmd := range msg.commands {
		batch = append(batch, a.startCommand(cmd))
	}
	if len(msg.commands) > 0 {
		a.statusBar.SetMessage(fmt.Sprintf("running %d command(s)", len(msg.commands)), false)
	}
	return a, tea.Batch(batch...)
}

func (a App) handleExit(msg procExitMsg) (tea.Model, tea.Cmd) {
	a.tree.SetStatus(msg.id, msg.status)
	delete(a.running, msg.id)
	a.statusBar.SetRunningCount(len(a.running))

	if msg.status.State == runtime.StateExited && msg.status.ExitCode != 0 {
		cmd := a.core.Config().FindCommand(msg.id)
		name := msg.id
		if cmd != nil {
			name = cmd.Name
		}
		event := notify.Event{
			CommandID:   msg.id,
			CommandName: name,
			Type:        notify.EventFailed,
			ExitCode:    msg.status.ExitCode,
			Message:     fmt.Sprintf("exit code %d", msg.status.ExitCode),
			Timestamp:   time.Now(),
		}
		go a.notifier.Dispatch(context.Background(), event)
	}
	return a, nil
}

// startCommand spawns a command and points the terminal pane at it.
func (a *App) startCommand(cmd config.Command) tea.Cmd {
	cols, rows := a.terminal.PTYSize()
	proc, err := a.engine.Start(cmd, cols, rows)
	if err != nil {
		return func() tea.Msg { return startErrMsg{name: cmd.Name, err: err} }
	}

	a.running[cmd.ID] = true
	a.statusBar.SetRunningCount(len(a.running))
	a.tree.SetStatus(cmd.ID, proc.Status())

	cmds := []tea.Cmd{waitFor(cmd.ID, proc)}
	cmds = append(cmds, a.setActive(cmd.ID, cmd.Name, proc))
	return tea.Batch(cmds...)
}

// setActive switches the terminal pane to a process's output stream.
func (a *App) setActive(id, name string, proc *runtime.Process) tea.Cmd {
	if a.frameStream != nil {
		a.frameStream.Close()
	}
	a.activeID = id
	a.terminal.SetCommand(name)
	a.frameStream = proc.Output()
	return a.frameNext()
}

func (a *App) updateFocus() {
	a.tree.SetFocused(a.focus == FocusTree)
	a.terminal.SetFocused(a.focus == FocusTerminal)
	a.statusBar.SetTerminalFocused(a.focus == FocusTerminal)
}

func (a *App) teardown() {
	if a.watchStream != nil {
		_ = a.watchStream.Close()
	}
	if a.frameStream != nil {
		a.frameStream.Close()
	}
	a.engine.CloseAll()
}

// View renders the application.
func (a App) View() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		if a.width == 0 {
			return "loading..."
		}
		return fmt.Sprintf("Terminal too small (need at least %dx%d)", minAppWidth, minAppHeight)
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top, a.tree.View(), a.terminal.View())
	return lipgloss.JoinVertical(lipgloss.Left, panes, a.statusBar.View())
}

// Package ui provides the terminal user interface for fnug.
package ui

import (
	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/runtime"
)

// watchTickMsg carries a selection from the watcher stream.
type watchTickMsg struct {
	commands []config.Command
}

// watchStoppedMsg signals that the watcher stream ended.
type watchStoppedMsg struct {
	err error
}

// frameMsg carries a new frame for a command's terminal.
type frameMsg struct {
	id    string
	frame runtime.Frame
}

// frameDoneMsg signals that a command's output stream finished.
type frameDoneMsg struct {
	id string
}

// procExitMsg reports a process reaching a terminal state.
type procExitMsg struct {
	id     string
	status runtime.Status
}

// startErrMsg reports a spawn failure.
type startErrMsg struct {
	name string
	err  error
}

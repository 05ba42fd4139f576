// Package core wires the resolved config tree to the selection engine and
// the watcher, and is the entry point the CLI and TUI build on.
package core

import (
	"fmt"
	"os"

	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/selector"
	"github.com/fnugdev/fnug/internal/watcher"
)

// Core owns a resolved command tree and the working directory everything
// resolves against.
type Core struct {
	root *config.Group
	cwd  string
	path string
}

// FromGroup wraps a programmatically built, already-resolved tree.
func FromGroup(group *config.Group, cwd string) *Core {
	return &Core{root: group, cwd: cwd}
}

// FromConfigFile loads a config file and returns a core rooted at the
// file's directory. With an empty path the file is discovered by walking up
// from the process working directory.
func FromConfigFile(path string) (*Core, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	group, configPath, err := config.Discover(wd, path)
	if err != nil {
		return nil, err
	}

	c := FromGroup(group, group.Cwd)
	c.path = configPath
	return c, nil
}

// Config returns the resolved tree.
func (c *Core) Config() *config.Group { return c.root }

// Cwd returns the root working directory.
func (c *Core) Cwd() string { return c.cwd }

// ConfigPath returns the loaded config file path, if any.
func (c *Core) ConfigPath() string { return c.path }

// AllCommands returns every command in document order.
func (c *Core) AllCommands() []config.Command {
	return c.root.AllCommands()
}

// SelectedCommands returns the union of the always and git selections.
func (c *Core) SelectedCommands() []config.Command {
	return selector.Selected(c.root, c.cwd)
}

// Watch constructs a watcher stream over this tree. The caller owns the
// stream and must close it to release the OS watches.
func (c *Core) Watch() (*watcher.Stream, error) {
	return watcher.NewStream(c.root, c.cwd)
}

package runtime

import (
	"sync"

	"github.com/fnugdev/fnug/internal/config"
)

// Engine tracks the running process for each command. Starting a command
// that is already running kills the old process first.
type Engine struct {
	mu    sync.RWMutex
	procs map[string]*Process
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{procs: make(map[string]*Process)}
}

// Start spawns cmd in a new PTY of the given size, replacing any prior run.
func (e *Engine) Start(cmd config.Command, cols, rows int) (*Process, error) {
	e.mu.Lock()
	prior := e.procs[cmd.ID]
	e.mu.Unlock()

	if prior != nil && !prior.Status().Done() {
		prior.Kill()
	}

	proc, err := Spawn(cmd, cols, rows)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.procs[cmd.ID] = proc
	e.mu.Unlock()
	return proc, nil
}

// Get returns the most recent process for a command id.
func (e *Engine) Get(id string) (*Process, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	proc, ok := e.procs[id]
	return proc, ok
}

// List returns every tracked process.
func (e *Engine) List() []*Process {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Process, 0, len(e.procs))
	for _, p := range e.procs {
		out = append(out, p)
	}
	return out
}

// Kill terminates the process for a command id, if any.
func (e *Engine) Kill(id string) {
	if proc, ok := e.Get(id); ok {
		proc.Kill()
	}
}

// CloseAll kills every tracked process.
func (e *Engine) CloseAll() {
	e.mu.Lock()
	procs := make([]*Process, 0, len(e.procs))
	for _, p := range e.procs {
		procs = append(procs, p)
	}
	e.procs = make(map[string]*Process)
	e.mu.Unlock()

	for _, p := range procs {
		p.Kill()
	}
}

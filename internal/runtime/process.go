// Package runtime spawns commands in pseudo-terminals and exposes their
// parsed screen state as an observable stream of frames.
package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aymanbagabas/go-pty"
	"github.com/hinshun/vt10x"

	"github.com/fnugdev/fnug/internal/config"
)

// State is one step of the one-way process state machine.
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateExited   State = "exited"
	StateKilled   State = "killed"
	StateCrashed  State = "crashed"
)

// Status is a snapshot of the state machine.
type Status struct {
	State    State
	ExitCode int
	Err      error
}

// Done reports whether the process has reached a terminal state.
func (s Status) Done() bool {
	return s.State == StateExited || s.State == StateKilled || s.State == StateCrashed
}

// ErrProcessSpawn means the PTY could not be allocated or the child failed
// to start.
var ErrProcessSpawn = errors.New("process spawn failed")

const (
	// DefaultScrollback is the scrollback line limit unless the command
	// overrides it.
	DefaultScrollback = 3500

	killGrace      = 3 * time.Second
	readBufferSize = 4096
	writeQueueSize = 256
)

// Process owns one child command, its PTY, its VT parser, and the reader and
// writer goroutines that connect them. Kill releases everything.
type Process struct {
	cmd config.Command

	ptmx pty.Pty
	proc *pty.Cmd

	mu         sync.Mutex // guards term, scrollback, offset, status
	term       vt10x.Terminal
	scrollback *lineBuffer
	offset     int
	cols, rows int
	status     Status

	modes      modeTracker
	generation atomic.Uint64
	broadcast  *broadcaster

	writeQueue    chan []byte
	killRequested atomic.Bool

	done       chan struct{} // closed when kill or exit starts teardown
	exited     chan struct{} // closed when the child has been waited on
	readerDone chan struct{}
	writerDone chan struct{}
	killOnce   sync.Once
}

// Spawn starts cmd in a fresh PTY of the given size. The command line runs
// under `sh -c`, in the command's resolved cwd and env.
func Spawn(cmd config.Command, cols, rows int) (*Process, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrProcessSpawn, cols, rows)
	}

	ptmx, err := pty.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessSpawn, err)
	}
	if err := ptmx.Resize(cols, rows); err != nil {
		_ = ptmx.Close()
		return nil, fmt.Errorf("%w: %v", ErrProcessSpawn, err)
	}

	limit := cmd.Scrollback
	if limit <= 0 {
		limit = DefaultScrollback
	}

	p := &Process{
		cmd:        cmd,
		ptmx:       ptmx,
		term:       vt10x.New(vt10x.WithSize(cols, rows)),
		scrollback: newLineBuffer(limit),
		cols:       cols,
		rows:       rows,
		status:     Status{State: StateStarting},
		broadcast:  newBroadcaster(),
		writeQueue: make(chan []byte, writeQueueSize),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
		readerDone: make(chan struct{}),
		writerDone: make(chan struct{}),
	}

	proc := ptmx.Command("sh", "-c", cmd.Cmd)
	proc.Dir = cmd.Cwd
	proc.Env = append(os.Environ(), "TERM=xterm-256color")
	for k, v := range cmd.Env {
		proc.Env = append(proc.Env, k+"="+v)
	}

	slog.Debug("spawning command", "command", cmd.Name, "cmd", cmd.Cmd, "cwd", cmd.Cwd)

	if err := proc.Start(); err != nil {
		_ = ptmx.Close()
		p.setStatus(Status{State: StateCrashed, Err: err})
		return nil, fmt.Errorf("%w: %s: %v", ErrProcessSpawn, cmd.Cmd, err)
	}
	p.proc = proc
	p.setStatus(Status{State: StateRunning})

	p.Echo(startBanner(cmd.Cmd))

	go p.readLoop()
	go p.writeLoop()
	go p.waitLoop()

	return p, nil
}

// Command returns the command this process runs.
func (p *Process) Command() config.Command { return p.cmd }

// CanFocus reports whether the UI may route keystrokes to this process.
func (p *Process) CanFocus() bool { return p.cmd.Interactive }

// Status returns a snapshot of the state machine.
func (p *Process) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Generation returns the current generation counter.
func (p *Process) Generation() uint64 { return p.generation.Load() }

func (p *Process) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// bump advances the generation counter and wakes every subscriber. Called
// after the parser lock is released.
func (p *Process) bump() {
	p.generation.Add(1)
	p.broadcast.notify()
}

// readLoop reads PTY output in chunks and applies it to the parser.
func (p *Process) readLoop() {
	defer close(p.readerDone)

	buf := make([]byte, readBufferSize)
	for {
		n, err := p.ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			p.mu.Lock()
			_, _ = p.term.Write(chunk)
			p.scrollback.absorb(chunk)
			if p.offset > 0 {
				// Keep the viewport anchored while new history arrives.
				p.clampOffsetLocked()
			}
			p.mu.Unlock()

			p.modes.scan(chunk)
			p.bump()
		}
		if err != nil {
			// EOF or EIO after child exit is the normal shutdown path.
			return
		}
	}
}

// writeLoop drains the bounded write queue into the PTY master.
func (p *Process) writeLoop() {
	defer close(p.writerDone)

	for {
		select {
		case <-p.done:
			return
		case data := <-p.writeQueue:
			if _, err := p.ptmx.Write(data); err != nil {
				slog.Debug("pty write failed", "command", p.cmd.Name, "error", err)
				return
			}
		}
	}
}

// waitLoop reaps the child and records its exit status.
func (p *Process) waitLoop() {
	err := p.proc.Wait()
	code := 0
	if p.proc.ProcessState != nil {
		code = p.proc.ProcessState.ExitCode()
	}

	p.mu.Lock()
	if !p.status.Done() {
		p.status = Status{State: StateExited, ExitCode: code, Err: err}
	}
	final := p.status
	p.mu.Unlock()
	close(p.exited)

	if final.State == StateExited && !p.killRequested.Load() {
		if code == 0 {
			p.Echo(successBanner())
		} else {
			p.Echo(failureBanner(code))
		}
		slog.Debug("command exited", "command", p.cmd.Name, "code", code)
	}
	p.bump()
}

// Write enqueues bytes for the child's stdin. Blocks when the queue is full;
// silently drops input once the process is shutting down.
func (p *Process) Write(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	select {
	case <-p.done:
	case p.writeQueue <- buf:
	}
}

// Echo feeds bytes straight to the parser without involving the child.
func (p *Process) Echo(data []byte) {
	p.mu.Lock()
	_, _ = p.term.Write(data)
	p.scrollback.absorb(data)
	p.mu.Unlock()
	p.bump()
}

// Resize atomically sets the PTY and parser dimensions. Zero dimensions are
// rejected. Scrollback depth is unaffected.
func (p *Process) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid size %dx%d", cols, rows)
	}

	p.mu.Lock()
	p.cols, p.rows = cols, rows
	p.term.Resize(cols, rows)
	p.clampOffsetLocked()
	p.mu.Unlock()

	if err := p.ptmx.Resize(cols, rows); err != nil {
		return fmt.Errorf("resize pty: %w", err)
	}
	p.bump()
	return nil
}

// Scroll adds delta to the scroll offset. Positive values scroll toward
// older history; the offset clamps to [0, scrollback height].
func (p *Process) Scroll(delta int) {
	p.mu.Lock()
	p.offset += delta
	p.clampOffsetLocked()
	p.mu.Unlock()
	p.bump()
}

// SetScroll sets the absolute scroll offset, clamped like Scroll.
func (p *Process) SetScroll(rows int) {
	p.mu.Lock()
	p.offset = rows
	p.clampOffsetLocked()
	p.mu.Unlock()
	p.bump()
}

func (p *Process) clampOffsetLocked() {
	if p.offset < 0 {
		p.offset = 0
	}
	if max := p.scrollback.len(); p.offset > max {
		p.offset = max
	}
}

// Click forwards a mouse press/release pair to the child if it has enabled
// mouse reporting; otherwise it is a no-op.
func (p *Process) Click(x, y int) {
	if !p.modes.mouseEnabled() {
		return
	}
	p.Write(fmt.Appendf(nil, "\x1b[<0;%d;%dM", x+1, y+1))
	p.Write(fmt.Appendf(nil, "\x1b[<0;%d;%dm", x+1, y+1))
}

// MouseScroll forwards a wheel event (SGR buttons 64/65) if mouse reporting
// is active. Returns whether the event was forwarded.
func (p *Process) MouseScroll(up bool, x, y int) bool {
	if !p.modes.mouseEnabled() {
		return false
	}
	button := 65
	if up {
		button = 64
	}
	p.Write(fmt.Appendf(nil, "\x1b[<%d;%d;%dM", button, x+1, y+1))
	return true
}

// Clear resets the screen and scrollback, and nudges the child to repaint.
func (p *Process) Clear() {
	p.mu.Lock()
	_, _ = p.term.Write([]byte("\x1b[2J\x1b[H"))
	p.scrollback.reset()
	p.offset = 0
	p.mu.Unlock()

	p.Write([]byte{0x0c})
	p.bump()
}

// Wait blocks until the child has been reaped.
func (p *Process) Wait() Status {
	<-p.exited
	return p.Status()
}

// Kill terminates the child (TERM, then KILL after a grace period), closes
// the PTY, and joins the reader and writer goroutines. Idempotent. If the
// child had already exited the recorded status is preserved.
func (p *Process) Kill() {
	p.killOnce.Do(func() {
		p.killRequested.Store(true)
		alreadyExited := false
		select {
		case <-p.exited:
			alreadyExited = true
		default:
		}

		if !alreadyExited && p.proc != nil && p.proc.Process != nil {
			_ = p.proc.Process.Signal(syscall.SIGTERM)
			select {
			case <-p.exited:
			case <-time.After(killGrace):
				slog.Debug("kill grace expired, sending KILL", "command", p.cmd.Name)
				_ = p.proc.Process.Kill()
			}
		}

		close(p.done)
		_ = p.ptmx.Close()
		<-p.readerDone
		<-p.writerDone
		<-p.exited

		p.mu.Lock()
		if p.status.State != StateExited && p.status.State != StateCrashed {
			p.status = Status{State: StateKilled}
		}
		// The recorded status stays Exited when the child beat the signal.
		if !alreadyExited && p.status.State == StateExited {
			p.status = Status{State: StateKilled}
		}
		p.mu.Unlock()
		p.bump()
	})
}

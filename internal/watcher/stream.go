package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/selector"
)

// ErrStreamClosed is returned by Next after the stream has been closed.
var ErrStreamClosed = errors.New("watcher stream closed")

// Stream is a lazy, infinite producer of command selections. The first Next
// returns the always and git selections; later calls block until a debounced
// batch selects at least one command. Single consumer; closing the stream
// tears down the debouncer and its OS watches.
type Stream struct {
	tree *config.Group
	cwd  string
	deb  *Debouncer

	first bool
	done  chan struct{}
	once  sync.Once
}

// NewStream builds the stream for a resolved tree. The debouncer watches the
// union of auto paths of every watch-enabled command; a tree with no
// watchable commands still serves the first tick and then blocks forever.
func NewStream(tree *config.Group, cwd string) (*Stream, error) {
	deb, err := NewDebouncer(watchRoots(tree), Window)
	if err != nil {
		return nil, err
	}
	return &Stream{
		tree:  tree,
		cwd:   cwd,
		deb:   deb,
		first: true,
		done:  make(chan struct{}),
	}, nil
}

// watchRoots collects the distinct auto paths of watch-enabled commands.
func watchRoots(tree *config.Group) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, cmd := range tree.AllCommands() {
		if !cmd.Auto.Watch {
			continue
		}
		for _, p := range cmd.Auto.Path {
			if !seen[p] {
				seen[p] = true
				roots = append(roots, p)
			}
		}
	}
	return roots
}

// Next returns the next selection of commands to run. It blocks until a
// batch produces a non-empty selection, the context is cancelled, or the
// stream is closed.
func (s *Stream) Next(ctx context.Context) ([]config.Command, error) {
	select {
	case <-s.done:
		return nil, ErrStreamClosed
	default:
	}

	if s.first {
		s.first = false
		return selector.Selected(s.tree, s.cwd), nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.done:
			return nil, ErrStreamClosed
		case err := <-s.deb.Errors():
			slog.Warn("watch root unavailable", "error", err)
		case batch, ok := <-s.deb.Batches():
			if !ok {
				return nil, ErrStreamClosed
			}
			selected := selector.SelectWatch(s.tree, s.cwd, batch)
			if len(selected) > 0 {
				return selected, nil
			}
		}
	}
}

// Close tears down the debouncer and all OS watches. Idempotent.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.deb.Close()
	})
	return err
}

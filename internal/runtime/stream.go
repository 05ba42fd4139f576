package runtime

import (
	"context"
	"errors"
	"sync"
)

// ErrOutputDone is returned by FrameStream.Next once the process has reached
// a terminal state and its final frame has been delivered.
var ErrOutputDone = errors.New("process output finished")

// FrameStream is a pull-based stream of frames. Next yields a fresh frame
// every time the generation counter has advanced since the last yield;
// intermediate generations are skipped, never reordered. Single consumer.
type FrameStream struct {
	p       *Process
	tick    chan struct{}
	lastGen uint64

	once   sync.Once
	closed chan struct{}
}

// Output subscribes a new frame stream to this process. Closing the stream
// detaches it without affecting the process.
func (p *Process) Output() *FrameStream {
	return &FrameStream{
		p:      p,
		tick:   p.broadcast.subscribe(),
		closed: make(chan struct{}),
	}
}

// Next blocks until the generation counter advances, then returns the
// rendered frame. After the process terminates and the final frame has been
// observed, Next returns ErrOutputDone.
func (s *FrameStream) Next(ctx context.Context) (Frame, error) {
	for {
		select {
		case <-s.closed:
			return Frame{}, ErrOutputDone
		default:
		}

		if gen := s.p.Generation(); gen != s.lastGen {
			frame := s.p.Frame()
			s.lastGen = frame.Generation
			return frame, nil
		}

		if s.p.Status().Done() {
			// No more generations will arrive.
			return Frame{}, ErrOutputDone
		}

		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-s.closed:
			return Frame{}, ErrOutputDone
		case <-s.tick:
		}
	}
}

// Close detaches the stream from the process.
func (s *FrameStream) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.p.broadcast.unsubscribe(s.tick)
	})
}

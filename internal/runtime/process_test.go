//go:build unix

package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fnugdev/fnug/internal/config"
)

func testCommand(t *testing.T, cmdline string) config.Command {
	t.Helper()
	return config.Command{
		ID:   "test",
		Name: "test",
		Cmd:  cmdline,
		Cwd:  t.TempDir(),
	}
}

func waitForFrame(t *testing.T, s *FrameStream, deadline time.Duration, match func(Frame) bool) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	for {
		frame, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("no matching frame: %v", err)
		}
		if match(frame) {
			return frame
		}
	}
}

func TestProcessEcho(t *testing.T) {
	p, err := Spawn(testCommand(t, "cat"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	if got := p.Status().State; got != StateRunning {
		t.Fatalf("state = %v, want running", got)
	}

	stream := p.Output()
	defer stream.Close()

	p.Write([]byte("hello\n"))

	waitForFrame(t, stream, 5*time.Second, func(f Frame) bool {
		for _, line := range f.Lines {
			if strings.Contains(line, "hello") {
				return true
			}
		}
		return false
	})

	p.Kill()
	if got := p.Status().State; got != StateKilled {
		t.Errorf("state after kill = %v, want killed", got)
	}

	// Write after kill must be a silent no-op.
	p.Write([]byte("ignored\n"))
}

func TestProcessExitCode(t *testing.T) {
	p, err := Spawn(testCommand(t, "exit 3"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	status := p.Wait()
	if status.State != StateExited {
		t.Fatalf("state = %v, want exited", status.State)
	}
	if status.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", status.ExitCode)
	}
}

func TestProcessKillIdempotent(t *testing.T) {
	p, err := Spawn(testCommand(t, "sleep 30"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}

	p.Kill()
	p.Kill()
	if got := p.Status().State; got != StateKilled {
		t.Errorf("state = %v, want killed", got)
	}
}

func TestProcessKillAfterExitKeepsExited(t *testing.T) {
	p, err := Spawn(testCommand(t, "true"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}

	p.Wait()
	p.Kill()
	if got := p.Status().State; got != StateExited {
		t.Errorf("state = %v, want exited preserved", got)
	}
}

func TestProcessSpawnFailure(t *testing.T) {
	_, err := Spawn(testCommand(t, "true"), 0, 24)
	if !errors.Is(err, ErrProcessSpawn) {
		t.Errorf("want ErrProcessSpawn for zero width, got %v", err)
	}
}

func TestProcessGenerationMonotonic(t *testing.T) {
	p, err := Spawn(testCommand(t, "seq 1 50"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	stream := p.Output()
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var last uint64
	for {
		frame, err := stream.Next(ctx)
		if errors.Is(err, ErrOutputDone) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if frame.Generation <= last {
			t.Fatalf("generation went from %d to %d", last, frame.Generation)
		}
		last = frame.Generation
	}
	if last == 0 {
		t.Fatal("no frames observed")
	}
}

func TestProcessResizePreservesScrollback(t *testing.T) {
	p, err := Spawn(testCommand(t, "seq 1 500"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	p.Wait()
	// Let the reader drain the tail of the output.
	deadline := time.Now().Add(5 * time.Second)
	for p.Frame().ScrollbackLen < 500 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	before := p.Frame().ScrollbackLen
	if before < 500 {
		t.Fatalf("scrollback = %d, want >= 500", before)
	}

	p.Scroll(before + 100)
	frame := p.Frame()
	if frame.Offset != before {
		t.Errorf("offset = %d, want clamped to %d", frame.Offset, before)
	}
	if !strings.Contains(frame.Lines[0], "❱") && !strings.Contains(frame.Lines[0], "1") {
		t.Errorf("oldest row not at top: %q", frame.Lines[0])
	}

	if err := p.Resize(80, 50); err != nil {
		t.Fatal(err)
	}
	after := p.Frame().ScrollbackLen
	if after != before {
		t.Errorf("scrollback changed across resize: %d -> %d", before, after)
	}
}

func TestProcessScrollClampsToZero(t *testing.T) {
	p, err := Spawn(testCommand(t, "true"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	p.Scroll(-10)
	if got := p.Frame().Offset; got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

func TestProcessResizeRejectsZero(t *testing.T) {
	p, err := Spawn(testCommand(t, "cat"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	if err := p.Resize(0, 24); err == nil {
		t.Error("resize with zero width should fail")
	}
}

func TestProcessClickWithoutMouseModeIsNoop(t *testing.T) {
	p, err := Spawn(testCommand(t, "cat"), 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	p.Click(3, 4)
	if p.MouseScroll(true, 1, 1) {
		t.Error("mouse scroll should not forward without mouse mode")
	}
}

func TestProcessCanFocus(t *testing.T) {
	cmd := testCommand(t, "cat")
	cmd.Interactive = true
	p, err := Spawn(cmd, 80, 24)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Kill()

	if !p.CanFocus() {
		t.Error("interactive command should be focusable")
	}
}

func TestEngineReplacesRunningProcess(t *testing.T) {
	e := NewEngine()
	defer e.CloseAll()

	cmd := testCommand(t, "sleep 30")
	first, err := e.Start(cmd, 80, 24)
	if err != nil {
		t.Fatal(err)
	}

	second, err := e.Start(cmd, 80, 24)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("expected a fresh process")
	}
	if got := first.Status().State; got != StateKilled {
		t.Errorf("prior process state = %v, want killed", got)
	}

	current, ok := e.Get(cmd.ID)
	if !ok || current != second {
		t.Error("engine should track the replacement process")
	}
}

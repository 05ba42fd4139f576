package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fnugdev/fnug/internal/config"
)

func TestDebouncerBatchesDistinctPaths(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDebouncer([]string{dir}, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// Give the watch a moment to establish before generating events.
	time.Sleep(50 * time.Millisecond)

	target := filepath.Join(dir, "a.txt")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-d.Batches():
		seen := make(map[string]bool)
		for _, p := range batch {
			if seen[p] {
				t.Errorf("duplicate path in batch: %s", p)
			}
			seen[p] = true
		}
		if !seen[target] {
			t.Errorf("batch %v missing %s", batch, target)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch within deadline")
	}
}

func TestDebouncerSuppressesVCSPaths(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}

	d, err := NewDebouncer([]string{dir}, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(gitDir, "index"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "code.go"), []byte("package x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-d.Batches():
		for _, p := range batch {
			if filepath.Base(filepath.Dir(p)) == ".git" {
				t.Errorf("suppressed path leaked into batch: %s", p)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch within deadline")
	}
}

func TestDebouncerReportsMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	d, err := NewDebouncer([]string{missing}, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	select {
	case err := <-d.Errors():
		if !errors.Is(err, ErrWatchInit) {
			t.Errorf("want ErrWatchInit, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a watch init error")
	}
}

func TestDebouncerCloseIdempotent(t *testing.T) {
	d, err := NewDebouncer(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestStreamFirstTick(t *testing.T) {
	tree := &config.Group{
		ID: "root", Name: "root",
		Commands: []config.Command{
			{ID: "a", Name: "a", Cmd: "true", Auto: config.Auto{Always: true}},
			{ID: "b", Name: "b", Cmd: "true"},
		},
	}

	s, err := NewStream(tree, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	selected, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(selected) != 1 || selected[0].ID != "a" {
		t.Errorf("first tick = %v", selected)
	}
}

func TestStreamWatchTick(t *testing.T) {
	dir := t.TempDir()
	tree := &config.Group{
		ID: "root", Name: "root",
		Commands: []config.Command{{
			ID: "lint", Name: "lint", Cmd: "true",
			Auto: config.Auto{Watch: true, Path: []string{dir}, Regex: []string{`\.go$`}},
		}},
	}

	s, err := NewStream(tree, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Drain the first tick (no always/git commands here).
	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("first Next: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	selected, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(selected) != 1 || selected[0].ID != "lint" {
		t.Errorf("watch tick = %v", selected)
	}
}

func TestStreamClosed(t *testing.T) {
	tree := &config.Group{ID: "root", Name: "root"}
	s, err := NewStream(tree, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = s.Next(context.Background())
	if !errors.Is(err, ErrStreamClosed) {
		t.Errorf("want ErrStreamClosed, got %v", err)
	}
}

func TestStreamContextCancel(t *testing.T) {
	tree := &config.Group{ID: "root", Name: "root"}
	s, err := NewStream(tree, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("first Next: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := ExpandPath("~/projects")
	want := filepath.Join(home, "projects")
	if got != want {
		t.Errorf("ExpandPath(~/projects) = %q, want %q", got, want)
	}
}

func TestExpandPathCleans(t *testing.T) {
	got := ExpandPath("/a/b/../c")
	if got != "/a/c" {
		t.Errorf("ExpandPath = %q, want /a/c", got)
	}
	if strings.HasPrefix(ExpandPath("plain"), "~") {
		t.Error("non-tilde path must not expand")
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	if !IsDir(dir) {
		t.Errorf("IsDir(%q) = false", dir)
	}
	if IsDir(filepath.Join(dir, "missing")) {
		t.Error("IsDir on missing path should be false")
	}
}

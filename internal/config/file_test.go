package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.yaml")
	content := `fnug_version: "0.1.0"
name: root
id: root
commands:
  - name: a
    cmd: "true"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	group, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if group.Name != "root" {
		t.Errorf("name = %q", group.Name)
	}

	all := group.AllCommands()
	if len(all) != 1 || all[0].Name != "a" {
		t.Fatalf("commands = %+v", all)
	}
	if all[0].Cwd != dir {
		t.Errorf("cwd = %q, want %q", all[0].Cwd, dir)
	}
	if all[0].Auto.Watch || all[0].Auto.Git {
		t.Errorf("auto should default off: %+v", all[0].Auto)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.json")
	content := `{
		"fnug_version": "0.1.0",
		"name": "root",
		"id": "root",
		"commands": [{"name": "test", "cmd": "echo hello"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	group, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if group.Name != "root" {
		t.Errorf("name = %q", group.Name)
	}
}

func TestLoadGeneratesMissingIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.yaml")
	content := "name: root\ncommands:\n  - name: a\n    cmd: \"true\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	group, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if group.ID == "" {
		t.Error("group id should be generated")
	}
	if group.Commands[0].ID == "" {
		t.Error("command id should be generated")
	}
}

func TestLoadParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.yaml")
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrParse) {
		t.Errorf("want ErrParse, got %v", err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, ".fnug.yml")
	if err := os.WriteFile(path, []byte("name: root\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != path {
		t.Errorf("found = %q, want %q", found, path)
	}
}

func TestFindPrefersYAMLOverJSON(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".fnug.yaml", ".fnug.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("name: root\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	found, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !strings.HasSuffix(found, ".fnug.yaml") {
		t.Errorf("found = %q, want .fnug.yaml first", found)
	}
}

func TestFindNotFound(t *testing.T) {
	_, err := Find(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestDiscoverExplicitMissing(t *testing.T) {
	_, _, err := Discover(t.TempDir(), "/nonexistent/.fnug.yaml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestAsYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.yaml")
	content := `name: root
id: root
commands:
  - name: lint
    id: lint
    cmd: make lint
    auto:
      git: true
      path: [src]
      regex: ['\.go$']
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	group, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := AsYAML(group)
	if err != nil {
		t.Fatalf("AsYAML: %v", err)
	}
	for _, want := range []string{"name: root", "cmd: make lint", "git: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("AsYAML output missing %q:\n%s", want, out)
		}
	}
}

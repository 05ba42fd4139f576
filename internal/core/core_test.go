package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fnugdev/fnug/internal/config"
)

func TestFromConfigFileResolvesTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".fnug.yaml")
	content := `name: root
commands:
  - name: a
    cmd: "true"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := FromConfigFile(path)
	if err != nil {
		t.Fatalf("FromConfigFile: %v", err)
	}

	all := c.AllCommands()
	if len(all) != 1 || all[0].Name != "a" {
		t.Fatalf("commands = %+v", all)
	}
	if c.Cwd() != dir {
		t.Errorf("cwd = %q, want %q", c.Cwd(), dir)
	}
	if c.ConfigPath() != path {
		t.Errorf("config path = %q, want %q", c.ConfigPath(), path)
	}
}

func TestSelectedCommandsIncludesAlways(t *testing.T) {
	tree := &config.Group{
		ID: "root", Name: "root",
		Commands: []config.Command{
			{ID: "a", Name: "a", Cmd: "true", Auto: config.Auto{Always: true}},
			{ID: "b", Name: "b", Cmd: "true"},
		},
	}

	c := FromGroup(tree, t.TempDir())
	selected := c.SelectedCommands()
	if len(selected) != 1 || selected[0].ID != "a" {
		t.Errorf("selected = %+v", selected)
	}
}

func TestWatchFirstTickMatchesSelected(t *testing.T) {
	tree := &config.Group{
		ID: "root", Name: "root",
		Commands: []config.Command{
			{ID: "a", Name: "a", Cmd: "true", Auto: config.Auto{Always: true}},
		},
	}

	c := FromGroup(tree, t.TempDir())
	stream, err := c.Watch()
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	first, err := stream.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := c.SelectedCommands()
	if len(first) != len(want) {
		t.Fatalf("first tick = %d commands, want %d", len(first), len(want))
	}
	for i := range want {
		if first[i].ID != want[i].ID {
			t.Errorf("first[%d] = %q, want %q", i, first[i].ID, want[i].ID)
		}
	}
}

package selector

import (
	"path/filepath"
	"strings"

	"github.com/fnugdev/fnug/internal/config"
)

// SelectWatch maps a batch of changed paths to the commands that should
// re-run. A change selects a command when the path lies under one of the
// command's resolved auto paths and matches one of its regexes. Each command
// appears at most once, in traversal order.
func SelectWatch(tree *config.Group, cwd string, batch []string) []config.Command {
	if len(batch) == 0 {
		return nil
	}

	abs := make([]string, 0, len(batch))
	for _, p := range batch {
		abs = append(abs, absAgainst(cwd, filepath.Clean(p)))
	}

	var selected []config.Command
	for _, cmd := range tree.AllCommands() {
		if !cmd.Auto.Watch || len(cmd.Auto.Path) == 0 {
			continue
		}
		if watchMatches(cmd, cwd, abs) {
			selected = append(selected, cmd)
		}
	}
	return selected
}

func watchMatches(cmd config.Command, cwd string, paths []string) bool {
	for _, p := range paths {
		if !underAny(p, cmd.Auto.Path) {
			continue
		}
		rel := p
		if r, err := filepath.Rel(cwd, p); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
		if matchAny(cmd.Auto.Regex, rel) {
			return true
		}
	}
	return false
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		root = strings.TrimSuffix(root, "/")
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

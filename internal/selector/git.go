package selector

import (
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fnugdev/fnug/internal/config"
)

// gitScanner caches repository discovery and status enumeration for the
// duration of one selection pass.
type gitScanner struct {
	repoCache    map[string]string
	changesCache map[string][]string
}

func newGitScanner() *gitScanner {
	return &gitScanner{
		repoCache:    make(map[string]string),
		changesCache: make(map[string][]string),
	}
}

// repoRoot discovers the repository containing path. Returns "" when the
// path is not inside a work tree.
func (s *gitScanner) repoRoot(path string) string {
	if root, ok := s.repoCache[path]; ok {
		return root
	}

	out, err := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel").Output()
	root := ""
	if err == nil {
		root = strings.TrimSpace(string(out))
	} else {
		slog.Debug("no git repository found", "path", path)
	}
	s.repoCache[path] = root
	return root
}

// changes returns the repo-relative paths of every file in the working tree
// diff against HEAD: new, modified, deleted, and both sides of a rename.
func (s *gitScanner) changes(root string) []string {
	if cached, ok := s.changesCache[root]; ok {
		return cached
	}

	out, err := exec.Command("git", "-C", root, "status", "--porcelain", "-z", "--untracked-files=all").Output()
	if err != nil {
		slog.Warn("git status failed", "repo", root, "error", err)
		s.changesCache[root] = nil
		return nil
	}

	changed := parsePorcelain(string(out))
	slog.Debug("enumerated git changes", "repo", root, "count", len(changed))
	s.changesCache[root] = changed
	return changed
}

// parsePorcelain parses `git status --porcelain -z` output. Entries are
// NUL-terminated "XY path"; rename and copy entries are followed by a second
// NUL-terminated origin path.
func parsePorcelain(out string) []string {
	var changed []string
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		status := entry[:2]
		path := entry[3:]
		changed = append(changed, path)
		if strings.ContainsAny(status, "RC") {
			i++
			if i < len(fields) && fields[i] != "" {
				changed = append(changed, fields[i])
			}
		}
	}
	return changed
}

// hasChanges reports whether any changed file under watchPath matches one of
// the regexes. The prefix check runs on absolute paths; regexes match the
// repo-relative path.
func (s *gitScanner) hasChanges(watchPath string, regexes []string) bool {
	root := s.repoRoot(watchPath)
	if root == "" {
		return false
	}

	for _, rel := range s.changes(root) {
		abs := filepath.Join(root, rel)
		if !underAny(abs, []string{watchPath}) {
			continue
		}
		if matchAny(regexes, rel) {
			return true
		}
	}
	return false
}

// SelectGit returns the commands whose watched paths intersect uncommitted
// changes. Commands without auto.git, or without any resolved auto.path,
// never match. A missing repository yields an empty selection rather than an
// error.
func SelectGit(tree *config.Group, cwd string) []config.Command {
	scanner := newGitScanner()

	var selected []config.Command
	for _, cmd := range tree.AllCommands() {
		if !cmd.Auto.Git || len(cmd.Auto.Path) == 0 {
			continue
		}
		for _, watchPath := range cmd.Auto.Path {
			if scanner.hasChanges(absAgainst(cwd, watchPath), cmd.Auto.Regex) {
				slog.Debug("git-selected command", "command", cmd.Name)
				selected = append(selected, cmd)
				break
			}
		}
	}
	return selected
}

func absAgainst(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}

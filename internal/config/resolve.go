package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// rawAuto keeps the document's tri-state bools until resolution collapses
// them.
type rawAuto struct {
	Watch  *bool
	Git    *bool
	Always *bool
	Path   []string
	Regex  []string
}

type rawCommand struct {
	ID          string
	Name        string
	Cmd         string
	Cwd         string
	Interactive bool
	Auto        rawAuto
	Env         map[string]string
	Scrollback  int
}

type rawGroup struct {
	ID       string
	Name     string
	Cwd      string
	Auto     rawAuto
	Commands []rawCommand
	Children []rawGroup
	Env      map[string]string
}

// inheritance carries the resolved state a parent hands down to each child.
type inheritance struct {
	cwd  string
	auto Auto
	env  map[string]string
}

// Resolve turns a parsed document tree into a resolved Group. cwd is the
// root working directory; every relative cwd and auto path below resolves
// against it. The resolved tree is validated before it is returned.
func Resolve(root rawGroup, cwd string) (*Group, error) {
	if err := validate(&root); err != nil {
		return nil, err
	}
	warnEmptyGroups(&root)
	base := inheritance{cwd: filepath.Clean(cwd)}
	group := resolveGroup(root, base)
	return &group, nil
}

func resolveGroup(g rawGroup, parent inheritance) Group {
	inh := childInheritance(g.Cwd, g.Auto, g.Env, parent)

	resolved := Group{
		ID:   g.ID,
		Name: g.Name,
		Cwd:  inh.cwd,
		Auto: inh.auto,
		Env:  inh.env,
	}
	for _, cmd := range g.Commands {
		resolved.Commands = append(resolved.Commands, resolveCommand(cmd, inh))
	}
	for _, child := range g.Children {
		resolved.Children = append(resolved.Children, resolveGroup(child, inh))
	}
	return resolved
}

func resolveCommand(c rawCommand, parent inheritance) Command {
	inh := childInheritance(c.Cwd, c.Auto, c.Env, parent)
	return Command{
		ID:          c.ID,
		Name:        c.Name,
		Cmd:         c.Cmd,
		Cwd:         inh.cwd,
		Interactive: c.Interactive,
		Auto:        inh.auto,
		Env:         inh.env,
		Scrollback:  c.Scrollback,
	}
}

func childInheritance(cwd string, auto rawAuto, env map[string]string, parent inheritance) inheritance {
	resolvedCwd := inheritPath(parent.cwd, cwd)

	merged := make(map[string]string, len(parent.env)+len(env))
	for k, v := range parent.env {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}

	return inheritance{
		cwd:  resolvedCwd,
		auto: mergeAuto(auto, parent.auto, resolvedCwd),
		env:  merged,
	}
}

// inheritPath joins a declared cwd onto the parent's resolved cwd. An empty
// declaration inherits the parent; an absolute one stands alone.
func inheritPath(parent, child string) string {
	switch {
	case child == "":
		return parent
	case filepath.IsAbs(child):
		return filepath.Clean(child)
	default:
		return filepath.Join(parent, child)
	}
}

// mergeAuto collapses a node's declared auto rules against the parent's
// resolved ones. Bools fall back to the parent when unset; path and regex
// lists are the union of both, declared entries first resolved against the
// node's cwd.
func mergeAuto(declared rawAuto, parent Auto, cwd string) Auto {
	merged := Auto{
		Watch:  boolOr(declared.Watch, parent.Watch),
		Git:    boolOr(declared.Git, parent.Git),
		Always: boolOr(declared.Always, parent.Always),
	}

	seen := make(map[string]bool)
	for _, p := range parent.Path {
		if !seen[p] {
			seen[p] = true
			merged.Path = append(merged.Path, p)
		}
	}
	for _, p := range declared.Path {
		abs := inheritPath(cwd, p)
		if !seen[abs] {
			seen[abs] = true
			merged.Path = append(merged.Path, abs)
		}
	}

	seenRe := make(map[string]bool)
	for _, r := range parent.Regex {
		if !seenRe[r] {
			seenRe[r] = true
			merged.Regex = append(merged.Regex, r)
		}
	}
	for _, r := range declared.Regex {
		if !seenRe[r] {
			seenRe[r] = true
			merged.Regex = append(merged.Regex, r)
		}
	}

	return merged
}

func boolOr(own *bool, parent bool) bool {
	if own != nil {
		return *own
	}
	return parent
}

// validate checks the unresolved tree for structural violations: duplicate
// ids, empty names, empty command lines, and regex patterns that do not
// compile.
func validate(root *rawGroup) error {
	seen := make(map[string]bool)
	return validateGroup(root, seen)
}

func validateGroup(g *rawGroup, seen map[string]bool) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: group %q has an empty name", ErrInvalid, g.ID)
	}
	if seen[g.ID] {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalid, g.ID)
	}
	seen[g.ID] = true
	if err := validateRegexes(g.Auto.Regex); err != nil {
		return err
	}

	for i := range g.Commands {
		cmd := &g.Commands[i]
		if strings.TrimSpace(cmd.Name) == "" {
			return fmt.Errorf("%w: command %q has an empty name", ErrInvalid, cmd.ID)
		}
		if strings.TrimSpace(cmd.Cmd) == "" {
			return fmt.Errorf("%w: command %q has an empty cmd", ErrInvalid, cmd.Name)
		}
		if seen[cmd.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalid, cmd.ID)
		}
		seen[cmd.ID] = true
		if err := validateRegexes(cmd.Auto.Regex); err != nil {
			return err
		}
	}

	for i := range g.Children {
		if err := validateGroup(&g.Children[i], seen); err != nil {
			return err
		}
	}
	return nil
}

func warnEmptyGroups(g *rawGroup) {
	for i := range g.Children {
		child := &g.Children[i]
		if len(child.Commands) == 0 && len(child.Children) == 0 {
			slog.Warn("group has no commands and no children", "group", child.Name)
		}
		warnEmptyGroups(child)
	}
}

func validateRegexes(patterns []string) error {
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: regex %q: %v", ErrInvalid, p, err)
		}
	}
	return nil
}

package selector

import "github.com/fnugdev/fnug/internal/config"

// SelectAlways returns every command with auto.always set, in traversal
// order.
func SelectAlways(tree *config.Group) []config.Command {
	var selected []config.Command
	for _, cmd := range tree.AllCommands() {
		if cmd.Auto.Always {
			selected = append(selected, cmd)
		}
	}
	return selected
}

// Selected returns the union of the always and git selections, deduplicated,
// preserving traversal order.
func Selected(tree *config.Group, cwd string) []config.Command {
	seen := make(map[string]bool)
	var result []config.Command
	for _, cmd := range SelectAlways(tree) {
		if !seen[cmd.ID] {
			seen[cmd.ID] = true
			result = append(result, cmd)
		}
	}
	for _, cmd := range SelectGit(tree, cwd) {
		if !seen[cmd.ID] {
			seen[cmd.ID] = true
			result = append(result, cmd)
		}
	}
	return result
}

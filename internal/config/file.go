package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Version is the config format version this binary understands.
const Version = "0.1.0"

// Errors returned by the loader. Callers match with errors.Is.
var (
	// ErrNotFound means no config file was discovered at or above the
	// starting directory, or an explicit path does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrParse means the document is not valid YAML/JSON.
	ErrParse = errors.New("config parse error")
	// ErrInvalid means the document parsed but violates a structural rule.
	ErrInvalid = errors.New("invalid config")
)

// filenames is the discovery order within each directory.
var filenames = []string{".fnug.yaml", ".fnug.yml", ".fnug.json"}

// fileAuto mirrors the auto block of the config document. Absent bools mean
// "inherit from parent", so they parse as pointers and are collapsed during
// resolution.
type fileAuto struct {
	Watch  *bool    `yaml:"watch" json:"watch"`
	Git    *bool    `yaml:"git" json:"git"`
	Always *bool    `yaml:"always" json:"always"`
	Path   []string `yaml:"path" json:"path"`
	Regex  []string `yaml:"regex" json:"regex"`
}

type fileCommand struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Cmd         string            `yaml:"cmd" json:"cmd"`
	Cwd         string            `yaml:"cwd" json:"cwd"`
	Interactive bool              `yaml:"interactive" json:"interactive"`
	Auto        *fileAuto         `yaml:"auto" json:"auto"`
	Env         map[string]string `yaml:"env" json:"env"`
	Scrollback  int               `yaml:"scrollback" json:"scrollback"`
}

type fileGroup struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name" json:"name"`
	Cwd      string            `yaml:"cwd" json:"cwd"`
	Auto     *fileAuto         `yaml:"auto" json:"auto"`
	Commands []fileCommand     `yaml:"commands" json:"commands"`
	Children []fileGroup       `yaml:"children" json:"children"`
	Env      map[string]string `yaml:"env" json:"env"`
}

// fileConfig is the root document: a group plus the version marker.
type fileConfig struct {
	FnugVersion string `yaml:"fnug_version" json:"fnug_version"`
	fileGroup   `yaml:",inline"`
}

type jsonConfig struct {
	FnugVersion string `json:"fnug_version"`
	fileGroup
}

// Find searches for a config file starting at dir and walking up to the
// filesystem root. The first match wins.
func Find(dir string) (string, error) {
	start := dir
	for {
		for _, name := range filenames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				slog.Debug("found config file", "path", candidate)
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched %s and its parents", ErrNotFound, start)
		}
		dir = parent
	}
}

// Load reads and parses the config file at path, then resolves inheritance
// with the file's directory as the root working directory. The returned tree
// is fully resolved and validated.
func Load(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var doc fileConfig
	if strings.HasSuffix(path, ".json") {
		var jdoc jsonConfig
		if err := json.Unmarshal(data, &jdoc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
		doc = fileConfig{FnugVersion: jdoc.FnugVersion, fileGroup: jdoc.fileGroup}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
	}

	if doc.FnugVersion != "" && doc.FnugVersion != Version {
		slog.Warn("config fnug_version differs from binary version",
			"config_version", doc.FnugVersion, "binary_version", Version)
	}

	root := doc.fileGroup.toGroup()
	cwd, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: resolving config directory: %v", ErrInvalid, err)
	}
	return Resolve(root, cwd)
}

// Discover finds a config file at or above dir and loads it. If explicit is
// non-empty it is used verbatim instead of searching.
func Discover(dir, explicit string) (*Group, string, error) {
	path := explicit
	if path == "" {
		found, err := Find(dir)
		if err != nil {
			return nil, "", err
		}
		path = found
	} else if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	group, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return group, path, nil
}

func (a *fileAuto) toAuto() rawAuto {
	if a == nil {
		return rawAuto{}
	}
	return rawAuto{
		Watch:  a.Watch,
		Git:    a.Git,
		Always: a.Always,
		Path:   a.Path,
		Regex:  a.Regex,
	}
}

func (c fileCommand) toCommand() rawCommand {
	return rawCommand{
		ID:          orGenerate(c.ID),
		Name:        c.Name,
		Cmd:         c.Cmd,
		Cwd:         c.Cwd,
		Interactive: c.Interactive,
		Auto:        c.Auto.toAuto(),
		Env:         c.Env,
		Scrollback:  c.Scrollback,
	}
}

func (g fileGroup) toGroup() rawGroup {
	commands := make([]rawCommand, 0, len(g.Commands))
	for _, c := range g.Commands {
		commands = append(commands, c.toCommand())
	}
	children := make([]rawGroup, 0, len(g.Children))
	for _, child := range g.Children {
		children = append(children, child.toGroup())
	}
	return rawGroup{
		ID:       orGenerate(g.ID),
		Name:     g.Name,
		Cwd:      g.Cwd,
		Auto:     g.Auto.toAuto(),
		Commands: commands,
		Children: children,
		Env:      g.Env,
	}
}

func orGenerate(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// AsYAML serializes an already-resolved tree back to YAML, preserving field
// order.
func AsYAML(g *Group) (string, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

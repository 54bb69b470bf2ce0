package mcpconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/ulpi-io/agent-library/internal/catalog"
)

// Outcome describes what a write did to one configuration file.
type Outcome string

const (
	Created           Outcome = "created"
	Updated           Outcome = "updated"
	AlreadyConfigured Outcome = "already configured"
	Failed            Outcome = "failed"
)

// Policy decides how an existing global JSON file missing a managed server is
// rewritten. Both policies back the file up first.
type Policy string

const (
	// PolicyReplace overwrites the file with the managed document, dropping
	// every other key it held.
	PolicyReplace Policy = "replace"
	// PolicyPreserve inserts the managed servers and keeps everything else.
	PolicyPreserve Policy = "preserve"
)

// ParsePolicy validates a policy name. An empty name is PolicyReplace.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReplace:
		return PolicyReplace, nil
	case PolicyPreserve:
		return PolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown MCP merge policy %q (want %s or %s)", s, PolicyReplace, PolicyPreserve)
	}
}

// Dialect is the file format of a configuration target.
type Dialect string

const (
	DialectJSON Dialect = "json"
	DialectTOML Dialect = "toml"
)

// Target is one editor's global configuration file.
type Target struct {
	Editor  string
	Path    string
	Dialect Dialect
}

// Result reports the write to one file.
type Result struct {
	Editor  string
	Path    string
	Outcome Outcome
	Backup  string
	Err     error
}

const backupSuffix = ".backup"

// GlobalTarget returns the global configuration file for an editor under home.
// The second return value is false for editors without one.
func GlobalTarget(editor, home string) (Target, bool) {
	switch editor {
	case catalog.EditorAmazonQ:
		return Target{Editor: editor, Path: filepath.Join(home, ".aws", "amazonq", "mcp.json"), Dialect: DialectJSON}, true
	case catalog.EditorCursor:
		return Target{Editor: editor, Path: filepath.Join(home, ".cursor", "mcp.json"), Dialect: DialectJSON}, true
	case catalog.EditorClaude:
		return Target{Editor: editor, Path: filepath.Join(home, ".claude", "mcp.json"), Dialect: DialectJSON}, true
	case catalog.EditorCodex:
		return Target{Editor: editor, Path: filepath.Join(home, ".codex", "config.toml"), Dialect: DialectTOML}, true
	}
	return Target{}, false
}

// ProjectPaths returns the project-local files written for a selection,
// relative to the target directory.
func ProjectPaths(ulpi bool) []string {
	paths := []string{".mcp.json"}
	if ulpi {
		paths = append(paths, filepath.Join(".ulpi", "mcp.json"))
	}
	return paths
}

// Option configures a Merger.
type Option func(*Merger)

// Merger writes MCP configuration files.
type Merger struct {
	fs     afero.Fs
	home   string
	policy Policy
	logger *log.Logger
}

// NewMerger creates a merger that resolves global files under home.
func NewMerger(home string, opts ...Option) *Merger {
	m := &Merger{
		fs:     afero.NewOsFs(),
		home:   home,
		policy: PolicyReplace,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithFs sets the filesystem configuration files live on.
func WithFs(fs afero.Fs) Option {
	return func(m *Merger) { m.fs = fs }
}

// WithPolicy sets the global JSON merge policy.
func WithPolicy(p Policy) Option {
	return func(m *Merger) {
		if p != "" {
			m.policy = p
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// Setup writes the project files and merges every selected editor's global
// file. A failing global file is recorded in its Result and does not stop the
// others; only a failing project file is returned as an error.
func (m *Merger) Setup(targetDir string, editors []string, port int) ([]Result, error) {
	cfg := New(port)

	ulpi := false
	for _, e := range editors {
		if e == catalog.EditorULPI {
			ulpi = true
		}
	}

	var results []Result
	for _, rel := range ProjectPaths(ulpi) {
		res, err := m.WriteProject(filepath.Join(targetDir, rel), cfg)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	for _, editor := range editors {
		target, ok := GlobalTarget(editor, m.home)
		if !ok {
			continue
		}
		var res Result
		var err error
		switch target.Dialect {
		case DialectTOML:
			res, err = m.MergeTOML(target.Path, cfg)
		default:
			res, err = m.MergeJSON(target.Path, cfg)
		}
		res.Editor = editor
		if err != nil {
			m.logger.Debug("mcp merge failed", "editor", editor, "path", target.Path, "err", err)
			res.Path = target.Path
			res.Outcome = Failed
			res.Err = err
		}
		results = append(results, res)
	}
	return results, nil
}

// WriteProject overwrites an installer-owned file with cfg.
func (m *Merger) WriteProject(path string, cfg Config) (Result, error) {
	data, err := cfg.JSON()
	if err != nil {
		return Result{}, err
	}

	outcome := Created
	if m.exists(path) {
		outcome = Updated
	}
	if err := m.writeFile(path, data); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}
	m.logger.Debug("wrote project mcp config", "path", path)
	return Result{Path: path, Outcome: outcome}, nil
}

func (m *Merger) exists(path string) bool {
	_, err := m.fs.Stat(path)
	return err == nil
}

// readExisting returns the file content, or nil with ok false when absent.
func (m *Merger) readExisting(path string) ([]byte, bool, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// writeFile writes atomically via a temp file, creating parent directories.
func (m *Merger) writeFile(path string, data []byte) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(m.fs, tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := m.fs.Rename(tmpPath, path); err != nil {
		m.fs.Remove(tmpPath)
		return err
	}
	return nil
}

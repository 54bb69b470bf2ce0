// Package installer runs the install pipeline: resolve the selection against
// the manifest, fetch and place files, install skills and project memory,
// configure MCP servers and record what was written.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/config"
	"github.com/ulpi-io/agent-library/internal/filemanager"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
	"github.com/ulpi-io/agent-library/internal/registry"
	"github.com/ulpi-io/agent-library/internal/resolver"
)

// Option configures an Installer.
type Option func(*Installer)

// Installer installs a selection into a target directory.
type Installer struct {
	manifest    *registry.Manifest
	files       *filemanager.Manager
	mcp         *mcpconfig.Merger
	manifestURL string
	skillsFrom  string
	prune       bool
	logger      *log.Logger
}

// New creates an installer. files must be rooted at the selection's target.
func New(m *registry.Manifest, files *filemanager.Manager, mcp *mcpconfig.Merger, opts ...Option) *Installer {
	inst := &Installer{
		manifest: m,
		files:    files,
		mcp:      mcp,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// WithManifestURL sets the manifest location stored in the install record.
func WithManifestURL(u string) Option {
	return func(i *Installer) { i.manifestURL = u }
}

// WithSkillsFrom copies skills from a local checkout of the library instead
// of fetching them.
func WithSkillsFrom(dir string) Option {
	return func(i *Installer) { i.skillsFrom = dir }
}

// WithPrune removes files recorded by a previous install that the current
// selection no longer produces.
func WithPrune(prune bool) Option {
	return func(i *Installer) { i.prune = prune }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// SkillFailure is a skill that could not be installed.
type SkillFailure struct {
	Key string
	Err error
}

// SkillsResult tallies skill installation.
type SkillsResult struct {
	Success  int
	Failed   int
	Failures []SkillFailure
}

// Report describes everything a run did.
type Report struct {
	DryRun    bool
	Planned   []registry.FileEntry
	Unmatched []resolver.Combination
	Files     filemanager.Result

	// CodexAgent is true when AGENTS.md was created from the codex agent.
	CodexAttempted bool
	CodexAgent     bool

	Skills SkillsResult

	ClaudeMDAttempted bool
	ClaudeMD          filemanager.Result

	MCP         []mcpconfig.Result
	Pruned      []string
	RecordSaved bool
}

// ErrUnknownSkill is recorded for a selected skill the manifest does not list.
var ErrUnknownSkill = errors.New("skill not found in manifest")

// Run installs sel. Individual file, skill and MCP failures are reported in
// the Report; only conditions that make the install impossible are returned.
func (i *Installer) Run(ctx context.Context, sel resolver.Selection) (*Report, error) {
	fs := i.files.Fs()
	target := i.files.TargetDir()

	res := resolver.NewResolver(i.manifest).Resolve(sel.Agents, sel.Editors)
	report := &Report{
		DryRun:    sel.DryRun,
		Planned:   res.Files,
		Unmatched: res.Unmatched,
	}
	for _, c := range res.Unmatched {
		i.logger.Debug("no files for combination", "editor", c.Editor, "agent", c.Agent)
	}

	if sel.DryRun {
		report.Files = i.files.FetchAll(ctx, res.Files, true)
		return report, nil
	}

	if err := fs.MkdirAll(target, 0o755); err != nil {
		return report, &filemanager.CopyError{Path: target, Err: err}
	}

	var previous *config.Record
	if i.prune {
		rec, err := config.LoadRecord(fs, target)
		switch {
		case err == nil:
			previous = rec
		case errors.Is(err, config.ErrNoRecord):
		default:
			return report, err
		}
	}

	record := &config.Record{
		ManifestURL: i.manifestURL,
		Framework:   sel.Framework,
		Editors:     sel.Editors,
		Agents:      sel.Agents,
		Port:        sel.Port,
		Files:       make(map[string]string),
		SkillDirs:   make(map[string]string),
	}
	keep := make(map[string]bool)

	report.Files = i.files.FetchAll(ctx, res.Files, false)
	i.recordFiles(record, keep, res.Files, report.Files)

	if sel.HasEditor(catalog.EditorCodex) {
		report.CodexAttempted = true
		ok, err := i.installCodexAgent(sel.Framework)
		if err != nil {
			i.logger.Warn("codex agent", "err", err)
		}
		report.CodexAgent = ok
		keep["AGENTS.md"] = true
		if ok {
			i.recordHash(record, "AGENTS.md")
		}
	}

	if sel.HasEditor(catalog.EditorClaude) {
		if len(sel.ClaudeSkills) > 0 {
			report.Skills = i.installSkills(ctx, sel.ClaudeSkills, record, keep)
			record.Skills = sel.ClaudeSkills
		}

		report.ClaudeMDAttempted = true
		claudeFiles := i.manifest.ClaudeMDFiles(sel.Framework)
		report.ClaudeMD = i.files.FetchAll(ctx, claudeFiles, false)
		i.recordFiles(record, keep, claudeFiles, report.ClaudeMD)
	}

	results, err := i.mcp.Setup(target, sel.Editors, sel.Port)
	report.MCP = results
	if err != nil {
		return report, fmt.Errorf("configuring MCP servers: %w", err)
	}

	if previous != nil {
		pruned, err := filemanager.RemoveStale(fs, target, previous.Paths(), keep)
		report.Pruned = pruned
		if err != nil {
			return report, err
		}
	}

	if err := config.SaveRecord(fs, target, record); err != nil {
		return report, err
	}
	report.RecordSaved = true
	return report, nil
}

// installCodexAgent copies the framework's codex agent to the root AGENTS.md.
func (i *Installer) installCodexAgent(framework string) (bool, error) {
	fs := i.files.Fs()
	target := i.files.TargetDir()
	src := filepath.Join(target, ".codex", framework+".md")
	return filemanager.InstallSpecialFile(fs, src, filepath.Join(target, "AGENTS.md"))
}

func (i *Installer) installSkills(ctx context.Context, keys []string, record *config.Record, keep map[string]bool) SkillsResult {
	var result SkillsResult
	fail := func(key string, err error) {
		i.logger.Debug("skill failed", "skill", key, "err", err)
		result.Failed++
		result.Failures = append(result.Failures, SkillFailure{Key: key, Err: err})
	}

	for _, key := range keys {
		skill, ok := i.manifest.Skill(key)
		if !ok {
			fail(key, ErrUnknownSkill)
			continue
		}
		keep[skill.Destination] = true

		if err := i.installSkill(ctx, skill); err != nil {
			fail(key, err)
			continue
		}
		result.Success++

		dir, err := filemanager.ResolveInside(i.files.TargetDir(), skill.Destination)
		if err != nil {
			continue
		}
		if hash, err := filemanager.HashDir(i.files.Fs(), dir); err == nil {
			record.SkillDirs[skill.Destination] = hash
		}
	}
	return result
}

func (i *Installer) installSkill(ctx context.Context, skill registry.Skill) error {
	if i.skillsFrom == "" {
		_, err := i.files.FetchFolder(ctx, skill.Source, skill.Destination)
		return err
	}

	src, err := filemanager.ResolveInside(i.skillsFrom, skill.Source)
	if err != nil {
		return err
	}
	dst, err := filemanager.ResolveInside(i.files.TargetDir(), skill.Destination)
	if err != nil {
		return err
	}
	return filemanager.CopyTree(i.files.Fs(), src, dst)
}

// recordFiles hashes the entries that were written and marks every planned
// destination as kept.
func (i *Installer) recordFiles(record *config.Record, keep map[string]bool, entries []registry.FileEntry, result filemanager.Result) {
	failed := make(map[string]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.Entry.Destination] = true
	}
	for _, e := range entries {
		keep[e.Destination] = true
		if !failed[e.Destination] {
			i.recordHash(record, e.Destination)
		}
	}
}

func (i *Installer) recordHash(record *config.Record, rel string) {
	path, err := filemanager.ResolveInside(i.files.TargetDir(), rel)
	if err != nil {
		return
	}
	hash, err := filemanager.HashFile(i.files.Fs(), path)
	if err != nil {
		i.logger.Debug("hashing installed file", "path", rel, "err", err)
		return
	}
	record.Files[rel] = hash
}

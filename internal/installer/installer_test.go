package installer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"github.com/ulpi-io/agent-library/internal/config"
	"github.com/ulpi-io/agent-library/internal/filemanager"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
	"github.com/ulpi-io/agent-library/internal/registry"
	"github.com/ulpi-io/agent-library/internal/resolver"
)

func entry(src, dst string) registry.FileEntry {
	return registry.FileEntry{Source: src, Destination: dst}
}

func testManifest() *registry.Manifest {
	return &registry.Manifest{
		Editors:    []string{"ulpi", "cursor", "amazonq", "claude", "codex"},
		Frameworks: []string{"nextjs", "laravel"},
		Files: registry.Files{
			Tools: []registry.ToolEntry{
				{FileEntry: entry("tools/launch-chrome-debug.sh", ".ulpi/tools/launch-chrome-debug.sh"), Editors: registry.EditorSet{"all"}},
			},
			Agents: map[string]map[string]registry.AgentFiles{
				"cursor": {
					"nextjs": {entry("templates/cursor/nextjs.mdc", ".cursor/rules/nextjs.mdc"), entry("templates/cursor/app.md", "app/AGENTS.md")},
				},
				"claude": {
					"nextjs":        {entry("templates/claude/nextjs.md", ".claude/agents/nextjs.md")},
					"devops-docker": {entry("templates/claude/devops-docker.md", ".claude/agents/devops-docker.md")},
				},
				"codex": {
					"nextjs": {entry("templates/codex/nextjs.md", ".codex/nextjs.md")},
				},
			},
			ClaudeSkills: []registry.Skill{
				{Key: "start", Name: "Start", Source: "skills/start", Destination: ".claude/skills/start"},
			},
			ClaudeMD: map[string]registry.ClaudeMD{
				"nextjs": {
					Main: &registry.FileEntry{Source: "claude-md/nextjs/CLAUDE.md", Destination: "CLAUDE.md"},
					Refs: []registry.FileEntry{entry("claude-md/nextjs/refs/routing.md", ".claude/refs/routing.md")},
				},
			},
		},
	}
}

var libraryFiles = map[string]string{
	"/tools/launch-chrome-debug.sh":      "#!/bin/sh\nopen -a chrome --remote-debugging-port=9222\n",
	"/templates/cursor/nextjs.mdc":       "# Next.js cursor rules",
	"/templates/cursor/app.md":           "# app directory",
	"/templates/claude/nextjs.md":        "# Next.js senior engineer",
	"/templates/claude/devops-docker.md": "# Docker",
	"/templates/codex/nextjs.md":         "# Codex Next.js",
	"/claude-md/nextjs/CLAUDE.md":        "# Project memory",
	"/claude-md/nextjs/refs/routing.md":  "# Routing",
	"/skills/start/SKILL.md":             "# Start skill",
}

// setupLibrary serves library files and the skills folder listing. hits
// counts every request.
func setupLibrary(t *testing.T, hits *atomic.Int32) *registry.Client {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path == "/contents/skills/start" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]registry.ContentItem{
				{Type: registry.ContentFile, Name: "SKILL.md", Path: "skills/start/SKILL.md", DownloadURL: server.URL + "/skills/start/SKILL.md"},
			})
			return
		}
		content, ok := libraryFiles[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(content))
	}))
	t.Cleanup(server.Close)

	return registry.NewClient(
		registry.WithBaseURL(server.URL),
		registry.WithHTTPClient(server.Client()),
		registry.WithRetries(0),
	)
}

type env struct {
	fs        afero.Fs
	installer *Installer
}

func newEnv(t *testing.T, client *registry.Client, m *registry.Manifest, opts ...Option) env {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := filemanager.NewManager(client, "/project", filemanager.WithFs(fs))
	merger := mcpconfig.NewMerger("/home/dev", mcpconfig.WithFs(fs))
	return env{fs: fs, installer: New(m, files, merger, opts...)}
}

func selection(editors []string, agents ...string) resolver.Selection {
	if len(agents) == 0 {
		agents = []string{"nextjs"}
	}
	return resolver.Selection{
		Framework: "nextjs",
		Editors:   editors,
		Agents:    agents,
		Target:    "/project",
		Port:      resolver.DefaultPort,
	}
}

func exists(fs afero.Fs, path string) bool {
	ok, _ := afero.Exists(fs, path)
	return ok
}

func TestRunEndToEnd(t *testing.T) {
	client := setupLibrary(t, nil)
	dir := t.TempDir()
	home := t.TempDir()

	fs := afero.NewOsFs()
	files := filemanager.NewManager(client, dir)
	merger := mcpconfig.NewMerger(home)
	inst := New(testManifest(), files, merger, WithManifestURL("https://example.test/map.json"))

	sel := selection([]string{"cursor"})
	sel.Target = dir

	report, err := inst.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Files.Total != 3 || report.Files.Downloaded != 3 || report.Files.Failed != 0 {
		t.Fatalf("Files = %+v, want 3 downloaded", report.Files)
	}

	info, err := os.Stat(filepath.Join(dir, ".ulpi", "tools", "launch-chrome-debug.sh"))
	if err != nil {
		t.Fatalf("script should exist: %v", err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("script mode = %v, want executable", info.Mode().Perm())
	}
	info, _ = os.Stat(filepath.Join(dir, ".cursor", "rules", "nextjs.mdc"))
	if info.Mode().Perm()&0o111 != 0 {
		t.Errorf("rule file mode = %v, want not executable", info.Mode().Perm())
	}

	if !exists(fs, filepath.Join(dir, ".mcp.json")) {
		t.Error(".mcp.json should be written")
	}
	if !exists(fs, filepath.Join(home, ".cursor", "mcp.json")) {
		t.Error("global cursor MCP config should be written")
	}
	if exists(fs, filepath.Join(dir, ".ulpi", "mcp.json")) {
		t.Error(".ulpi/mcp.json is only written when ulpi is selected")
	}

	rec, err := config.LoadRecord(fs, dir)
	if err != nil {
		t.Fatalf("LoadRecord() error: %v", err)
	}
	if len(rec.Files) != 3 || rec.ManifestURL != "https://example.test/map.json" {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunDryRun(t *testing.T) {
	var hits atomic.Int32
	client := setupLibrary(t, &hits)
	e := newEnv(t, client, testManifest())

	sel := selection([]string{"cursor", "claude", "codex"})
	sel.DryRun = true
	sel.ClaudeSkills = []string{"start"}

	report, err := e.installer.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Files.Total != 5 || report.Files.Downloaded != 0 {
		t.Errorf("Files = %+v, want total 5 and nothing downloaded", report.Files)
	}
	if len(report.Planned) != 5 {
		t.Errorf("Planned = %d entries, want 5", len(report.Planned))
	}
	if hits.Load() != 0 {
		t.Errorf("requests = %d, want 0", hits.Load())
	}
	if exists(e.fs, "/project") || exists(e.fs, "/home/dev") {
		t.Error("dry run should not write anything")
	}
	if report.RecordSaved || len(report.MCP) != 0 {
		t.Errorf("dry run should not record or configure MCP: %+v", report)
	}
}

func TestRunClaudeAndCodex(t *testing.T) {
	client := setupLibrary(t, nil)
	e := newEnv(t, client, testManifest())

	sel := selection([]string{"claude", "codex"}, "nextjs", "devops-docker")
	sel.ClaudeSkills = []string{"start", "missing"}

	report, err := e.installer.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Files.Downloaded != 4 {
		t.Errorf("Files = %+v, want 4 downloaded", report.Files)
	}
	if !report.CodexAgent {
		t.Error("AGENTS.md should be created from the codex agent")
	}
	data, _ := afero.ReadFile(e.fs, "/project/AGENTS.md")
	if string(data) != "# Codex Next.js" {
		t.Errorf("AGENTS.md = %q", string(data))
	}

	if report.Skills.Success != 1 || report.Skills.Failed != 1 {
		t.Errorf("Skills = %+v, want 1 success 1 failure", report.Skills)
	}
	if report.Skills.Failures[0].Key != "missing" {
		t.Errorf("failed skill = %q", report.Skills.Failures[0].Key)
	}
	if !exists(e.fs, "/project/.claude/skills/start/SKILL.md") {
		t.Error("skill folder should be fetched")
	}

	if report.ClaudeMD.Downloaded != 2 {
		t.Errorf("ClaudeMD = %+v, want 2 downloaded", report.ClaudeMD)
	}
	if !exists(e.fs, "/project/CLAUDE.md") || !exists(e.fs, "/project/.claude/refs/routing.md") {
		t.Error("CLAUDE.md and refs should be written")
	}

	want := map[string]mcpconfig.Outcome{
		"/project/.mcp.json":           mcpconfig.Created,
		"/home/dev/.claude/mcp.json":   mcpconfig.Created,
		"/home/dev/.codex/config.toml": mcpconfig.Created,
	}
	if len(report.MCP) != len(want) {
		t.Fatalf("MCP = %+v", report.MCP)
	}
	for _, r := range report.MCP {
		if want[r.Path] != r.Outcome {
			t.Errorf("%s = %q, want %q", r.Path, r.Outcome, want[r.Path])
		}
	}

	rec, err := config.LoadRecord(e.fs, "/project")
	if err != nil {
		t.Fatalf("LoadRecord() error: %v", err)
	}
	for _, path := range []string{"AGENTS.md", "CLAUDE.md", ".claude/agents/devops-docker.md"} {
		if rec.Files[path] == "" {
			t.Errorf("record should hash %s", path)
		}
	}
	if rec.SkillDirs[".claude/skills/start"] == "" {
		t.Error("record should hash the skill folder")
	}
}

func TestRunSkillsFromLocalBundle(t *testing.T) {
	var hits atomic.Int32
	client := setupLibrary(t, &hits)
	e := newEnv(t, client, testManifest(), WithSkillsFrom("/checkout"))
	afero.WriteFile(e.fs, "/checkout/skills/start/SKILL.md", []byte("# Local start"), 0o644)
	afero.WriteFile(e.fs, "/checkout/skills/start/bin/run.sh", []byte("#!/bin/sh"), 0o755)

	sel := selection([]string{"claude"})
	sel.ClaudeSkills = []string{"start"}

	report, err := e.installer.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Skills.Success != 1 {
		t.Fatalf("Skills = %+v", report.Skills)
	}

	data, _ := afero.ReadFile(e.fs, "/project/.claude/skills/start/SKILL.md")
	if string(data) != "# Local start" {
		t.Errorf("SKILL.md = %q, want the local copy", string(data))
	}
	if !exists(e.fs, "/project/.claude/skills/start/bin/run.sh") {
		t.Error("nested skill files should be copied")
	}
}

func TestRunPartialFailure(t *testing.T) {
	client := setupLibrary(t, nil)
	m := testManifest()
	m.Files.Agents["cursor"]["nextjs"] = append(m.Files.Agents["cursor"]["nextjs"], entry("templates/cursor/missing.md", ".cursor/rules/missing.md"))
	e := newEnv(t, client, m)

	report, err := e.installer.Run(context.Background(), selection([]string{"cursor"}))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Files.Total != 4 || report.Files.Downloaded != 3 || report.Files.Failed != 1 {
		t.Fatalf("Files = %+v, want 3 of 4", report.Files)
	}
	if !exists(e.fs, "/project/app/AGENTS.md") {
		t.Error("other files should still be written")
	}

	rec, err := config.LoadRecord(e.fs, "/project")
	if err != nil {
		t.Fatalf("LoadRecord() error: %v", err)
	}
	if _, ok := rec.Files[".cursor/rules/missing.md"]; ok {
		t.Error("failed file should not be recorded")
	}
	if !report.RecordSaved {
		t.Error("record should be saved after a partial failure")
	}
}

func TestRunPrune(t *testing.T) {
	client := setupLibrary(t, nil)
	e := newEnv(t, client, testManifest(), WithPrune(true))

	if _, err := e.installer.Run(context.Background(), selection([]string{"cursor", "claude"})); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	afero.WriteFile(e.fs, "/project/.claude/agents/mine.md", []byte("user file"), 0o644)

	report, err := e.installer.Run(context.Background(), selection([]string{"cursor"}))
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if exists(e.fs, "/project/.claude/agents/nextjs.md") {
		t.Error("file from the dropped editor should be pruned")
	}
	if exists(e.fs, "/project/CLAUDE.md") {
		t.Error("CLAUDE.md from the dropped editor should be pruned")
	}
	if !exists(e.fs, "/project/.claude/agents/mine.md") {
		t.Error("unrecorded user files must never be pruned")
	}
	if !exists(e.fs, "/project/.cursor/rules/nextjs.mdc") {
		t.Error("files still selected should be kept")
	}
	if !strings.Contains(strings.Join(report.Pruned, ","), ".claude/agents/nextjs.md") {
		t.Errorf("Pruned = %v", report.Pruned)
	}
}

func TestRunUnwritableTarget(t *testing.T) {
	client := setupLibrary(t, nil)
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	files := filemanager.NewManager(client, "/project", filemanager.WithFs(fs))
	inst := New(testManifest(), files, mcpconfig.NewMerger("/home/dev", mcpconfig.WithFs(fs)))

	_, err := inst.Run(context.Background(), selection([]string{"cursor"}))
	if err == nil {
		t.Fatal("expected error for an unwritable target")
	}
}

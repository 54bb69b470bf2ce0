package mcpconfig

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

const home = "/home/dev"

func newTestMerger(t *testing.T, opts ...Option) (*Merger, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewMerger(home, append([]Option{WithFs(fs)}, opts...)...), fs
}

func TestNew(t *testing.T) {
	cfg := New(9333)

	if len(cfg.MCPServers) != 2 {
		t.Fatalf("servers = %d, want 2", len(cfg.MCPServers))
	}
	ctx7 := cfg.MCPServers[ServerContext7]
	if ctx7.Command != "npx" || strings.Join(ctx7.Args, " ") != "-y @upstash/context7-mcp" {
		t.Errorf("context7 = %+v", ctx7)
	}
	chrome := cfg.MCPServers[ServerChromeDevtools]
	want := "-y chrome-devtools-mcp@latest -u http://localhost:9333"
	if strings.Join(chrome.Args, " ") != want {
		t.Errorf("chrome-devtools args = %q, want %q", strings.Join(chrome.Args, " "), want)
	}
}

func TestMergeJSONCreatesMissingFile(t *testing.T) {
	m, fs := newTestMerger(t)
	path := home + "/.cursor/mcp.json"

	res, err := m.MergeJSON(path, New(9222))
	if err != nil {
		t.Fatalf("MergeJSON() error: %v", err)
	}
	if res.Outcome != Created {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Created)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if !hasServers(data) {
		t.Errorf("file should declare both servers:\n%s", data)
	}
}

func TestMergeJSONIdempotent(t *testing.T) {
	m, fs := newTestMerger(t)
	path := home + "/.claude/mcp.json"

	if _, err := m.MergeJSON(path, New(9222)); err != nil {
		t.Fatalf("first MergeJSON() error: %v", err)
	}
	first, _ := afero.ReadFile(fs, path)

	res, err := m.MergeJSON(path, New(9222))
	if err != nil {
		t.Fatalf("second MergeJSON() error: %v", err)
	}
	if res.Outcome != AlreadyConfigured {
		t.Errorf("Outcome = %q, want %q", res.Outcome, AlreadyConfigured)
	}

	second, _ := afero.ReadFile(fs, path)
	if !bytes.Equal(first, second) {
		t.Error("second merge should not change the file")
	}
	if ok, _ := afero.Exists(fs, path+".backup"); ok {
		t.Error("second merge should not create a backup")
	}
}

func TestMergeJSONBackupBeforeOverwrite(t *testing.T) {
	existing := []byte(`{
  "mcpServers": {
    "context7": {"command": "npx", "args": ["-y", "@upstash/context7-mcp"]},
    "github": {"command": "gh-mcp"}
  },
  "theme": "dark"
}`)

	tests := []struct {
		name       string
		policy     Policy
		keepsOther bool
	}{
		{name: "replace", policy: PolicyReplace, keepsOther: false},
		{name: "preserve", policy: PolicyPreserve, keepsOther: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fs := newTestMerger(t, WithPolicy(tt.policy))
			path := home + "/.aws/amazonq/mcp.json"
			afero.WriteFile(fs, path, existing, 0o644)

			res, err := m.MergeJSON(path, New(9444))
			if err != nil {
				t.Fatalf("MergeJSON() error: %v", err)
			}
			if res.Outcome != Updated || res.Backup != path+".backup" {
				t.Errorf("result = %+v", res)
			}

			backup, err := afero.ReadFile(fs, path+".backup")
			if err != nil {
				t.Fatalf("backup should exist: %v", err)
			}
			if !bytes.Equal(backup, existing) {
				t.Errorf("backup differs from the original:\n%s", backup)
			}

			live, _ := afero.ReadFile(fs, path)
			if !gjson.ValidBytes(live) {
				t.Fatalf("live file is not valid JSON:\n%s", live)
			}
			if !hasServers(live) {
				t.Errorf("live file should declare both servers:\n%s", live)
			}
			if !strings.Contains(string(live), "http://localhost:9444") {
				t.Errorf("live file should contain the port URL:\n%s", live)
			}

			kept := gjson.GetBytes(live, "mcpServers.github").Exists() && gjson.GetBytes(live, "theme").String() == "dark"
			if kept != tt.keepsOther {
				t.Errorf("unrelated keys kept = %v, want %v:\n%s", kept, tt.keepsOther, live)
			}
		})
	}
}

func TestMergeJSONInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax error", content: `{"mcpServers": `},
		{name: "array", content: `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fs := newTestMerger(t)
			path := home + "/.cursor/mcp.json"
			afero.WriteFile(fs, path, []byte(tt.content), 0o644)

			_, err := m.MergeJSON(path, New(9222))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want ParseError", err)
			}

			data, _ := afero.ReadFile(fs, path)
			if string(data) != tt.content {
				t.Error("unparsable file should be left untouched")
			}
			if ok, _ := afero.Exists(fs, path+".backup"); ok {
				t.Error("no backup should be written for an unparsable file")
			}
		})
	}
}

func TestMergeJSONEmptyFile(t *testing.T) {
	m, fs := newTestMerger(t, WithPolicy(PolicyPreserve))
	path := home + "/.cursor/mcp.json"
	afero.WriteFile(fs, path, nil, 0o644)

	res, err := m.MergeJSON(path, New(9222))
	if err != nil {
		t.Fatalf("MergeJSON() error: %v", err)
	}
	if res.Outcome != Updated {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Updated)
	}
	live, _ := afero.ReadFile(fs, path)
	if !hasServers(live) {
		t.Errorf("live file should declare both servers:\n%s", live)
	}
}

func TestMergeTOMLCreatesWithHeader(t *testing.T) {
	m, fs := newTestMerger(t)
	path := home + "/.codex/config.toml"

	res, err := m.MergeTOML(path, New(9222))
	if err != nil {
		t.Fatalf("MergeTOML() error: %v", err)
	}
	if res.Outcome != Created {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Created)
	}

	data, _ := afero.ReadFile(fs, path)
	if !strings.HasPrefix(string(data), "# Codex Configuration\n") {
		t.Errorf("file should start with the header comment:\n%s", data)
	}

	p, err := Inspect(fs, Target{Path: path, Dialect: DialectTOML})
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if !p.Configured() || p.ChromeURL != "http://localhost:9222" {
		t.Errorf("presence = %+v", p)
	}
}

func TestMergeTOMLAppendsOnce(t *testing.T) {
	m, fs := newTestMerger(t)
	path := home + "/.codex/config.toml"
	afero.WriteFile(fs, path, []byte("model = \"o3\"\n\n[profiles.fast]\nmodel = \"o4-mini\""), 0o644)

	for i := 0; i < 2; i++ {
		if _, err := m.MergeTOML(path, New(9222)); err != nil {
			t.Fatalf("MergeTOML() #%d error: %v", i+1, err)
		}
	}

	data, _ := afero.ReadFile(fs, path)
	text := string(data)
	for _, name := range ServerNames {
		if n := strings.Count(text, "["+tomlMarker(name)+"]"); n != 1 {
			t.Errorf("%s tables = %d, want 1:\n%s", name, n, text)
		}
	}
	if !strings.HasPrefix(text, "model = \"o3\"") {
		t.Error("existing content should be kept at the top")
	}

	p, err := Inspect(fs, Target{Path: path, Dialect: DialectTOML})
	if err != nil {
		t.Fatalf("appended file should parse: %v", err)
	}
	if !p.Configured() {
		t.Errorf("presence = %+v", p)
	}

	res, err := m.MergeTOML(path, New(9222))
	if err != nil || res.Outcome != AlreadyConfigured {
		t.Errorf("third merge = %+v, %v, want already configured", res, err)
	}
}

func TestMergeTOMLAppendsOnlyMissingServer(t *testing.T) {
	m, fs := newTestMerger(t)
	path := home + "/.codex/config.toml"
	afero.WriteFile(fs, path, []byte("[mcp_servers.context7]\ncommand = \"npx\"\nargs = [\"-y\", \"@upstash/context7-mcp\"]\n"), 0o644)

	res, err := m.MergeTOML(path, New(9555))
	if err != nil {
		t.Fatalf("MergeTOML() error: %v", err)
	}
	if res.Outcome != Updated {
		t.Errorf("Outcome = %q, want %q", res.Outcome, Updated)
	}

	data, _ := afero.ReadFile(fs, path)
	if n := strings.Count(string(data), "[mcp_servers.context7]"); n != 1 {
		t.Errorf("context7 tables = %d, want 1", n)
	}
	if !strings.Contains(string(data), "http://localhost:9555") {
		t.Errorf("chrome-devtools should be appended:\n%s", data)
	}
}

func TestSetup(t *testing.T) {
	m, fs := newTestMerger(t)
	afero.WriteFile(fs, home+"/.cursor/mcp.json", []byte("not json"), 0o644)

	results, err := m.Setup("/project", []string{"ulpi", "cursor", "codex", "claude"}, 9222)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	want := []struct {
		path    string
		outcome Outcome
	}{
		{"/project/.mcp.json", Created},
		{"/project/.ulpi/mcp.json", Created},
		{home + "/.cursor/mcp.json", Failed},
		{home + "/.codex/config.toml", Created},
		{home + "/.claude/mcp.json", Created},
	}
	if len(results) != len(want) {
		t.Fatalf("results = %+v, want %d entries", results, len(want))
	}
	for i, w := range want {
		if results[i].Path != w.path || results[i].Outcome != w.outcome {
			t.Errorf("results[%d] = %s %q, want %s %q", i, results[i].Path, results[i].Outcome, w.path, w.outcome)
		}
	}
	if results[2].Err == nil || results[2].Editor != "cursor" {
		t.Errorf("cursor failure should carry its error: %+v", results[2])
	}

	project, _ := afero.ReadFile(fs, "/project/.mcp.json")
	if !hasServers(project) {
		t.Errorf(".mcp.json should declare both servers:\n%s", project)
	}
}

func TestSetupProjectOnly(t *testing.T) {
	m, fs := newTestMerger(t)
	afero.WriteFile(fs, "/project/.mcp.json", []byte(`{"stale": true}`), 0o644)

	results, err := m.Setup("/project", []string{"cursor-unknown"}, 9222)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != Updated {
		t.Fatalf("results = %+v, want one updated project file", results)
	}
	data, _ := afero.ReadFile(fs, "/project/.mcp.json")
	if gjson.GetBytes(data, "stale").Exists() {
		t.Error("project file should be overwritten, not merged")
	}
	if ok, _ := afero.Exists(fs, "/project/.mcp.json.backup"); ok {
		t.Error("project file should not be backed up")
	}
}

func TestInspectJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	target, _ := GlobalTarget("cursor", home)

	p, err := Inspect(fs, target)
	if err != nil || p.Exists {
		t.Fatalf("missing file = %+v, %v", p, err)
	}

	afero.WriteFile(fs, target.Path, []byte(`{"mcpServers":{"chrome-devtools":{"command":"npx","args":["-y","chrome-devtools-mcp@latest","-u","http://localhost:9000"]}}}`), 0o644)
	p, err = Inspect(fs, target)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if p.Configured() {
		t.Error("context7 is missing; should not be configured")
	}
	if !p.Servers[ServerChromeDevtools] || p.ChromeURL != "http://localhost:9000" {
		t.Errorf("presence = %+v", p)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyReplace},
		{in: "replace", want: PolicyReplace},
		{in: " Preserve ", want: PolicyPreserve},
		{in: "merge", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

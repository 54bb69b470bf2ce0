package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/registry"
)

// DefaultPort is the Chrome remote debugging port used by the chrome-devtools MCP server.
const DefaultPort = 9222

// Selection is what the user asked to install.
type Selection struct {
	Framework    string
	Editors      []string
	Agents       []string
	ClaudeSkills []string
	Target       string
	Port         int
	DryRun       bool
}

// HasEditor reports whether editor is selected.
func (s *Selection) HasEditor(editor string) bool {
	for _, e := range s.Editors {
		if e == editor {
			return true
		}
	}
	return false
}

// InvalidSelectionError indicates an unrecognized or missing selection value.
type InvalidSelectionError struct {
	Kind    string
	Value   string
	Allowed []string
}

func (e *InvalidSelectionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("no %s selected", e.Kind)
	}
	msg := fmt.Sprintf("invalid %s: %s", e.Kind, e.Value)
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Allowed, ", "))
	}
	return msg
}

// ParseList splits a comma-separated flag value, dropping blanks.
func ParseList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandEditors parses an --editors value; "all" selects every manifest editor.
func ExpandEditors(csv string, m *registry.Manifest) []string {
	if strings.TrimSpace(csv) == registry.AllEditors {
		return append([]string(nil), m.EditorIDs()...)
	}
	return dedupe(ParseList(csv))
}

// BuildAgents returns the framework agent followed by the additional agents.
func BuildAgents(framework string, additional []string) []string {
	return dedupe(append([]string{framework}, additional...))
}

// Validate checks the selection against the manifest. It performs no I/O.
func (s *Selection) Validate(m *registry.Manifest) error {
	if s.Framework == "" {
		return &InvalidSelectionError{Kind: "framework"}
	}
	if !m.HasFramework(s.Framework) {
		return &InvalidSelectionError{Kind: "framework", Value: s.Framework, Allowed: m.FrameworkIDs()}
	}

	if len(s.Editors) == 0 {
		return &InvalidSelectionError{Kind: "editor"}
	}
	for _, e := range s.Editors {
		if !m.HasEditor(e) {
			return &InvalidSelectionError{Kind: "editor", Value: e, Allowed: m.EditorIDs()}
		}
	}

	for _, a := range s.Agents {
		if a != s.Framework && !catalog.IsAdditionalAgent(a) {
			return &InvalidSelectionError{Kind: "agent", Value: a, Allowed: catalog.AdditionalAgentIDs()}
		}
	}

	if s.Port <= 0 || s.Port > 65535 {
		return &InvalidSelectionError{Kind: "port", Value: fmt.Sprint(s.Port)}
	}

	if !filepath.IsAbs(s.Target) {
		return &InvalidSelectionError{Kind: "target directory", Value: s.Target}
	}

	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

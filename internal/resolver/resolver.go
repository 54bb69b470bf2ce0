package resolver

import (
	"github.com/ulpi-io/agent-library/internal/registry"
)

// Combination is an editor/agent pair that has no files in the manifest.
type Combination struct {
	Editor string
	Agent  string
}

// Resolution is the result of file resolution.
type Resolution struct {
	// Files is deduplicated by destination, in insertion order.
	Files []registry.FileEntry
	// Unmatched lists editor/agent pairs the manifest has no files for.
	Unmatched []Combination
}

// Resolver computes the files to install from a manifest.
type Resolver struct {
	manifest *registry.Manifest
}

// NewResolver creates a resolver over the given manifest.
func NewResolver(m *registry.Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// Resolve returns the tool files matching editors plus the agent files for
// every editor × agent pair. An empty result is valid: it means nothing is
// configured for this combination.
func (r *Resolver) Resolve(agents, editors []string) *Resolution {
	res := &Resolution{Files: []registry.FileEntry{}}
	seen := make(map[string]bool)

	add := func(e registry.FileEntry) {
		if seen[e.Destination] {
			return
		}
		seen[e.Destination] = true
		res.Files = append(res.Files, e)
	}

	for _, tool := range r.manifest.ToolFiles() {
		if tool.Editors.Matches(editors) {
			add(tool.FileEntry)
		}
	}

	for _, editor := range editors {
		for _, agent := range agents {
			files := r.manifest.AgentFiles(editor, agent)
			if len(files) == 0 {
				res.Unmatched = append(res.Unmatched, Combination{Editor: editor, Agent: agent})
				continue
			}
			for _, f := range files {
				add(f)
			}
		}
	}

	return res
}

// ResolveFiles is shorthand for NewResolver(m).Resolve(agents, editors).Files.
func ResolveFiles(m *registry.Manifest, agents, editors []string) []registry.FileEntry {
	return NewResolver(m).Resolve(agents, editors).Files
}

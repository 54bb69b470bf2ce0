package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AllEditors is the wildcard accepted in a tool entry's editors field.
const AllEditors = "all"

// Manifest is the installation map (templates/map.json). It is fetched once
// per run and treated as read-only.
type Manifest struct {
	Editors    []string `json:"editors"`
	Frameworks []string `json:"frameworks"`
	Files      Files    `json:"files"`
}

// Files groups every installable file kind in the manifest.
type Files struct {
	Tools        []ToolEntry                      `json:"tools"`
	Agents       map[string]map[string]AgentFiles `json:"agents"`
	ClaudeSkills []Skill                          `json:"claude-skills"`
	ClaudeMD     map[string]ClaudeMD              `json:"claude-md"`
}

// FileEntry maps a path in the agent library to a path in the user's project.
// Both paths are relative.
type FileEntry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// ToolEntry is a file installed regardless of framework when at least one of
// its editors is selected.
type ToolEntry struct {
	FileEntry
	Editors EditorSet `json:"editors"`
}

// EditorSet is either the wildcard "all" or a list of editor IDs. The manifest
// encodes it as a list (["all"] or ["cursor", "claude"]); a bare string is
// accepted too.
type EditorSet []string

// UnmarshalJSON accepts a string or a list of strings.
func (s *EditorSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = EditorSet{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("editors must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

// Matches reports whether the set is the wildcard or shares an editor with selected.
func (s EditorSet) Matches(selected []string) bool {
	for _, e := range s {
		if e == AllEditors {
			return true
		}
		for _, sel := range selected {
			if e == sel {
				return true
			}
		}
	}
	return false
}

// AgentFiles is the value of files.agents[editor][framework]: a single entry or
// an ordered list of entries.
type AgentFiles []FileEntry

// UnmarshalJSON accepts an object or a list of objects.
func (a *AgentFiles) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var one FileEntry
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*a = AgentFiles{one}
		return nil
	}
	var many []FileEntry
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("agent files must be an object or a list of objects: %w", err)
	}
	*a = many
	return nil
}

// Skill describes a multi-file Claude skill bundle.
type Skill struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// ClaudeMD is the CLAUDE.md project memory for a framework.
type ClaudeMD struct {
	Main *FileEntry  `json:"main"`
	Refs []FileEntry `json:"refs"`
}

// ContentItem is one entry of a directory listing from the contents API.
type ContentItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

// Content item types.
const (
	ContentFile = "file"
	ContentDir  = "dir"
)

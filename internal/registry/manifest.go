package registry

// Lookups on a Manifest never fail: unknown editors, frameworks or keys yield
// empty results so resolution installs nothing for that dimension.

// EditorIDs returns the editors declared by the manifest.
func (m *Manifest) EditorIDs() []string {
	if m == nil {
		return nil
	}
	return m.Editors
}

// FrameworkIDs returns the frameworks declared by the manifest.
func (m *Manifest) FrameworkIDs() []string {
	if m == nil {
		return nil
	}
	return m.Frameworks
}

// HasEditor reports whether id is a declared editor.
func (m *Manifest) HasEditor(id string) bool {
	return contains(m.EditorIDs(), id)
}

// HasFramework reports whether id is a declared framework.
func (m *Manifest) HasFramework(id string) bool {
	return contains(m.FrameworkIDs(), id)
}

// ToolFiles returns every tool entry.
func (m *Manifest) ToolFiles() []ToolEntry {
	if m == nil {
		return nil
	}
	return m.Files.Tools
}

// AgentFiles returns the files for agent (a framework or additional agent) on editor.
func (m *Manifest) AgentFiles(editor, agent string) []FileEntry {
	if m == nil {
		return nil
	}
	byAgent, ok := m.Files.Agents[editor]
	if !ok {
		return nil
	}
	return byAgent[agent]
}

// Skills returns every Claude skill descriptor.
func (m *Manifest) Skills() []Skill {
	if m == nil {
		return nil
	}
	return m.Files.ClaudeSkills
}

// Skill looks up a skill by key.
func (m *Manifest) Skill(key string) (Skill, bool) {
	for _, s := range m.Skills() {
		if s.Key == key {
			return s, true
		}
	}
	return Skill{}, false
}

// ClaudeMDFiles returns the main CLAUDE.md entry followed by its reference files.
func (m *Manifest) ClaudeMDFiles(framework string) []FileEntry {
	if m == nil {
		return nil
	}
	cm, ok := m.Files.ClaudeMD[framework]
	if !ok {
		return nil
	}
	var files []FileEntry
	if cm.Main != nil {
		files = append(files, *cm.Main)
	}
	return append(files, cm.Refs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

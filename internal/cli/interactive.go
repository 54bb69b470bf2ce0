package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/detect"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
	"github.com/ulpi-io/agent-library/internal/registry"
	"github.com/ulpi-io/agent-library/internal/resolver"
	"github.com/ulpi-io/agent-library/internal/ui"
)

// promptSelection asks for editors, framework, extra agents and, when Claude
// is selected, skills.
func (a *App) promptSelection(m *registry.Manifest, sel *resolver.Selection) error {
	editors, err := ui.SelectEditors(editorChoices(m))
	if err != nil {
		return err
	}
	sel.Editors = editors

	detected, err := detect.DetectFramework(afero.NewOsFs(), sel.Target)
	if err != nil {
		a.logger.Debug("framework detection failed", "err", err)
	}
	preselected := ""
	if detected.Found() && m.HasFramework(detected.Framework) {
		preselected = detected.Framework
		a.output.Dim("Detected %s from %s", catalog.FrameworkName(preselected), detected.Source)
	}

	framework, err := ui.SelectFramework(frameworkChoices(m), preselected)
	if err != nil {
		return err
	}
	sel.Framework = framework

	extra, err := ui.SelectAdditionalAgents(agentGroups())
	if err != nil {
		return err
	}
	sel.Agents = resolver.BuildAgents(framework, extra)

	if sel.HasEditor(catalog.EditorClaude) {
		skills, err := ui.SelectSkills(skillChoices(m))
		if err != nil {
			return err
		}
		sel.ClaudeSkills = skills
	}
	return nil
}

func editorChoices(m *registry.Manifest) []ui.Choice {
	choices := make([]ui.Choice, 0, len(m.Editors))
	for _, id := range m.EditorIDs() {
		choices = append(choices, ui.Choice{ID: id, Label: catalog.EditorName(id)})
	}
	return choices
}

func frameworkChoices(m *registry.Manifest) []ui.Choice {
	choices := make([]ui.Choice, 0, len(m.Frameworks))
	for _, id := range m.FrameworkIDs() {
		choices = append(choices, ui.Choice{ID: id, Label: catalog.FrameworkName(id)})
	}
	return choices
}

func agentGroups() []ui.ChoiceGroup {
	groups := make([]ui.ChoiceGroup, 0, len(catalog.AdditionalCategories))
	for _, c := range catalog.AdditionalCategories {
		g := ui.ChoiceGroup{Title: c.Name, Description: c.Description}
		for _, agent := range c.Agents {
			g.Choices = append(g.Choices, ui.Choice{ID: agent.ID, Label: agent.Label})
		}
		groups = append(groups, g)
	}
	return groups
}

func skillChoices(m *registry.Manifest) []ui.Choice {
	var choices []ui.Choice
	for _, s := range m.Skills() {
		label := s.Name
		if s.Description != "" {
			label = fmt.Sprintf("%s - %s", s.Name, s.Description)
		}
		choices = append(choices, ui.Choice{ID: s.Key, Label: label})
	}
	return choices
}

// printReview shows the selection before confirmation.
func (a *App) printReview(sel resolver.Selection, policy mcpconfig.Policy) {
	editorNames := make([]string, len(sel.Editors))
	for i, e := range sel.Editors {
		editorNames[i] = catalog.EditorName(e)
	}

	lines := []string{
		"Framework:  " + catalog.FrameworkName(sel.Framework),
		"Editors:    " + strings.Join(editorNames, ", "),
	}
	if extra := sel.Agents[1:]; len(extra) > 0 {
		lines = append(lines, "Agents:     "+strings.Join(extra, ", "))
	}
	if len(sel.ClaudeSkills) > 0 {
		lines = append(lines, "Skills:     "+strings.Join(sel.ClaudeSkills, ", "))
	}
	lines = append(lines,
		"Target:     "+sel.Target,
		fmt.Sprintf("Chrome:     http://localhost:%d", sel.Port),
		"MCP merge:  "+string(policy),
	)
	if sel.DryRun {
		lines = append(lines, "Mode:       dry run")
	}

	a.output.Title("Review")
	a.output.Box(lines)
}

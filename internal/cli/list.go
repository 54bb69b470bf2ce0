package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/registry"
)

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List frameworks, editors, agents and skills in the agent library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context())
		},
	}
}

func (a *App) runList(ctx context.Context) error {
	m, err := a.fetchManifest(ctx, a.newRegistryClient())
	if err != nil {
		return err
	}

	a.output.Title("Frameworks")
	var rows [][]string
	for _, id := range m.FrameworkIDs() {
		rows = append(rows, []string{id, catalog.FrameworkName(id), strings.Join(editorsFor(m, id), ", ")})
	}
	a.output.Table([]string{"ID", "NAME", "EDITORS"}, rows)

	a.output.Title("Editors")
	rows = nil
	for _, id := range m.EditorIDs() {
		rows = append(rows, []string{id, catalog.EditorName(id)})
	}
	a.output.Table([]string{"ID", "NAME"}, rows)

	a.output.Title("Additional agents")
	rows = nil
	for _, c := range catalog.AdditionalCategories {
		for _, agent := range c.Agents {
			rows = append(rows, []string{agent.ID, c.Name})
		}
	}
	a.output.Table([]string{"ID", "CATEGORY"}, rows)

	if skills := m.Skills(); len(skills) > 0 {
		a.output.Title("Claude skills")
		rows = nil
		for _, s := range skills {
			rows = append(rows, []string{s.Key, s.Name, s.Description})
		}
		a.output.Table([]string{"KEY", "NAME", "DESCRIPTION"}, rows)
	}
	return nil
}

// editorsFor returns the editors with agent files for a framework, sorted.
func editorsFor(m *registry.Manifest, framework string) []string {
	var out []string
	for _, e := range m.EditorIDs() {
		if len(m.AgentFiles(e, framework)) > 0 {
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}

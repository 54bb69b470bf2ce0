package cli

import (
	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/installer"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
	"github.com/ulpi-io/agent-library/internal/resolver"
)

func (a *App) printSummary(r *installer.Report, sel resolver.Selection, policy mcpconfig.Policy) {
	if r.DryRun {
		a.output.Info("Dry run: %d files would be installed into %s", r.Files.Total, sel.Target)
		for _, e := range r.Planned {
			a.output.Dim("  %s", e.Destination)
		}
		return
	}

	if r.Files.Failed == 0 {
		a.output.Success("Installed %d files", r.Files.Downloaded)
	} else {
		a.output.Warning("Installed %d of %d files (%d failed)", r.Files.Downloaded, r.Files.Total, r.Files.Failed)
		for _, f := range r.Files.Failures {
			a.output.Dim("  %s: %v", f.Entry.Destination, f.Err)
		}
	}

	if r.CodexAttempted {
		if r.CodexAgent {
			a.output.Success("AGENTS.md created from the %s Codex agent", catalog.FrameworkName(sel.Framework))
		} else {
			a.output.Warning("No Codex agent for %s, AGENTS.md not created", catalog.FrameworkName(sel.Framework))
		}
	}

	if r.Skills.Success > 0 || r.Skills.Failed > 0 {
		if r.Skills.Failed == 0 {
			a.output.Success("Installed %d Claude skills", r.Skills.Success)
		} else {
			a.output.Warning("Installed %d Claude skills, %d failed", r.Skills.Success, r.Skills.Failed)
			for _, f := range r.Skills.Failures {
				a.output.Dim("  %s: %v", f.Key, f.Err)
			}
		}
	}

	if r.ClaudeMDAttempted {
		if r.ClaudeMD.Downloaded > 0 {
			a.output.Success("CLAUDE.md installed (%d files)", r.ClaudeMD.Downloaded)
		} else {
			a.output.Warning("CLAUDE.md not available for %s", catalog.FrameworkName(sel.Framework))
		}
	}

	replaced := false
	for _, res := range r.MCP {
		switch res.Outcome {
		case mcpconfig.Created:
			a.output.Success("MCP servers written to %s", res.Path)
		case mcpconfig.Updated:
			if res.Backup != "" {
				a.output.Success("MCP servers written to %s (backup: %s)", res.Path, res.Backup)
				replaced = replaced || policy == mcpconfig.PolicyReplace
			} else {
				a.output.Success("MCP servers written to %s", res.Path)
			}
		case mcpconfig.AlreadyConfigured:
			a.output.Info("MCP servers already configured in %s", res.Path)
		case mcpconfig.Failed:
			a.output.Warning("Could not configure %s for %s: %v", res.Path, catalog.EditorName(res.Editor), res.Err)
		}
	}
	if replaced {
		a.output.Dim("Existing MCP files were replaced; rerun with --mcp-merge=preserve to keep their other servers.")
	}

	for _, p := range r.Pruned {
		a.output.Dim("Removed %s", p)
	}

	for _, c := range r.Unmatched {
		a.output.Dim("No %s agent for %s", catalog.EditorName(c.Editor), c.Agent)
	}
}

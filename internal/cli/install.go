package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ulpi-io/agent-library/internal/exitcodes"
	"github.com/ulpi-io/agent-library/internal/filemanager"
	"github.com/ulpi-io/agent-library/internal/installer"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
	"github.com/ulpi-io/agent-library/internal/registry"
	"github.com/ulpi-io/agent-library/internal/resolver"
	"github.com/ulpi-io/agent-library/internal/ui"
)

type installOptions struct {
	target     string
	port       int
	editors    string
	framework  string
	agents     string
	skills     string
	skillsFrom string
	mcpMerge   string
	dryRun     bool
	yes        bool
	prune      bool
}

func (o *installOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.target, "target", "", "project directory to install into (default: current directory)")
	fs.IntVar(&o.port, "port", resolver.DefaultPort, "Chrome remote debugging port for the chrome-devtools MCP server")
	fs.StringVar(&o.editors, "editors", "", "comma-separated editors, or \"all\"")
	fs.StringVar(&o.framework, "framework", "", "framework to install agents for")
	fs.StringVar(&o.agents, "agents", "", "comma-separated additional agents (e.g. devops-docker,devops-aws)")
	fs.StringVar(&o.skills, "skills", "", "comma-separated Claude skills to install")
	fs.StringVar(&o.skillsFrom, "skills-from", "", "copy Claude skills from a local checkout of the agent library instead of downloading")
	fs.StringVar(&o.mcpMerge, "mcp-merge", string(mcpconfig.PolicyReplace),
		"how an existing global MCP file is updated: \"replace\" backs it up and overwrites it, \"preserve\" backs it up and keeps its other servers")
	fs.BoolVar(&o.dryRun, "dry-run", false, "show what would be installed without writing anything")
	fs.BoolVarP(&o.yes, "yes", "y", false, "skip the confirmation prompt")
	fs.BoolVar(&o.prune, "prune", false, "remove files from a previous install that are no longer selected")
}

// flagMode reports whether the selection comes from flags rather than prompts.
func (o installOptions) flagMode() bool {
	return o.framework != "" || o.editors != ""
}

func (a *App) runInstall(ctx context.Context, opts installOptions) error {
	policy, err := mcpconfig.ParsePolicy(opts.mcpMerge)
	if err != nil {
		return &ExitError{Code: exitcodes.Failure, Message: err.Error()}
	}

	target, err := resolveTarget(opts.target)
	if err != nil {
		return err
	}

	if opts.skillsFrom != "" {
		if opts.skillsFrom, err = filepath.Abs(opts.skillsFrom); err != nil {
			return &ExitError{Code: exitcodes.Failure, Message: "invalid --skills-from: " + err.Error()}
		}
	}

	interactive := !opts.flagMode()
	if interactive && !a.interactive() {
		return &ExitError{
			Code:    exitcodes.Failure,
			Message: "no terminal for interactive setup: pass --framework and --editors",
		}
	}

	client := a.newRegistryClient()
	m, err := a.fetchManifest(ctx, client)
	if err != nil {
		return err
	}

	sel := resolver.Selection{
		Target: target,
		Port:   opts.port,
		DryRun: opts.dryRun,
	}

	if interactive {
		if err := a.promptSelection(m, &sel); err != nil {
			if ui.IsAbort(err) {
				a.output.Warning("Installation cancelled")
				return nil
			}
			return err
		}
	} else {
		sel.Framework = opts.framework
		sel.Editors = resolver.ExpandEditors(opts.editors, m)
		sel.Agents = resolver.BuildAgents(opts.framework, resolver.ParseList(opts.agents))
		sel.ClaudeSkills = resolver.ParseList(opts.skills)
	}

	if err := sel.Validate(m); err != nil {
		return &ExitError{Code: exitcodes.Failure, Message: err.Error()}
	}

	if interactive || (!opts.yes && a.interactive()) {
		a.printReview(sel, policy)
		ok, err := ui.Confirm("Proceed with installation?")
		if err != nil && !ui.IsAbort(err) {
			return err
		}
		if err != nil || !ok {
			a.output.Warning("Installation cancelled")
			return nil
		}
	}

	home, err := a.homeDir()
	if err != nil {
		return &ExitError{Code: exitcodes.Failure, Message: fmt.Sprintf("locating home directory: %v", err)}
	}

	inst := a.newInstaller(client, m, target, home, policy, opts)

	a.output.Title("Installing into %s", target)
	report, err := inst.Run(ctx, sel)
	if report != nil {
		a.printSummary(report, sel, policy)
	}
	if err != nil {
		return &ExitError{Code: exitcodes.Failure, Message: describeError(err)}
	}
	return nil
}

func (a *App) newInstaller(client *registry.Client, m *registry.Manifest, target, home string, policy mcpconfig.Policy, opts installOptions) *installer.Installer {
	files := filemanager.NewManager(client, target,
		filemanager.WithConcurrency(a.settings.Concurrency),
		filemanager.WithItemTimeout(a.settings.Timeout),
		filemanager.WithLogger(a.logger),
		filemanager.WithProgress(func(p filemanager.Progress) {
			if p.Err == nil {
				a.output.Dim("  %s", p.Entry.Destination)
			}
		}),
	)
	merger := mcpconfig.NewMerger(home,
		mcpconfig.WithPolicy(policy),
		mcpconfig.WithLogger(a.logger),
	)
	return installer.New(m, files, merger,
		installer.WithManifestURL(client.ManifestURL()),
		installer.WithSkillsFrom(opts.skillsFrom),
		installer.WithPrune(opts.prune),
		installer.WithLogger(a.logger),
	)
}

// describeError turns a fatal install error into a one-line message.
func describeError(err error) string {
	var ce *filemanager.CopyError
	if errors.As(err, &ce) {
		return fmt.Sprintf("cannot write to %s: %v", ce.Path, ce.Err)
	}
	var pe *mcpconfig.ParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("cannot update %s: %v", pe.Path, pe.Err)
	}
	return err.Error()
}

package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ulpi-io/agent-library/internal/catalog"
	"github.com/ulpi-io/agent-library/internal/config"
	"github.com/ulpi-io/agent-library/internal/exitcodes"
	"github.com/ulpi-io/agent-library/internal/mcpconfig"
)

func (a *App) newDoctorCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), target)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "project directory (default: current directory)")
	return cmd
}

func (a *App) runDoctor(ctx context.Context, targetFlag string) error {
	target, err := resolveTarget(targetFlag)
	if err != nil {
		return err
	}
	fs := afero.NewOsFs()
	allOK := true

	// 1. Manifest reachable, with a short timeout so doctor doesn't hang
	client := a.newRegistryClient()
	manifestCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.FetchManifest(manifestCtx); err != nil {
		a.output.Error("Agent library unreachable: %v", err)
		allOK = false
	} else {
		a.output.Success("Agent library reachable at %s", client.ManifestURL())
	}

	// 2. Install record
	var rec *config.Record
	if !config.RecordExists(fs, target) {
		a.output.Warning("%s not found in %s", config.RecordFile, target)
	} else if rec, err = config.LoadRecord(fs, target); err != nil {
		a.output.Error("Install record invalid: %v", err)
		allOK = false
	} else {
		a.output.Success("%s found: %s for %d editors", config.RecordFile, rec.Framework, len(rec.Editors))
	}

	// 3. MCP servers
	port := 0
	if rec != nil {
		port = rec.Port
	}
	mcpOK := a.checkMCP(fs, target, recordEditors(rec), port)
	allOK = allOK && mcpOK

	if !allOK {
		return &ExitError{Code: exitcodes.Failure, Message: "doctor found problems"}
	}
	a.output.Println("")
	a.output.Success("Everything looks good!")
	return nil
}

// recordEditors returns the recorded editors, or every editor with a global
// MCP file when there is no record.
func recordEditors(rec *config.Record) []string {
	if rec != nil {
		return rec.Editors
	}
	return []string{catalog.EditorAmazonQ, catalog.EditorCursor, catalog.EditorClaude, catalog.EditorCodex}
}

func (a *App) checkMCP(fs afero.Fs, target string, editors []string, port int) bool {
	home, err := a.homeDir()
	if err != nil {
		a.output.Error("Cannot locate home directory: %v", err)
		return false
	}

	targets := []mcpconfig.Target{{Path: filepath.Join(target, ".mcp.json"), Dialect: mcpconfig.DialectJSON}}
	for _, e := range editors {
		if t, ok := mcpconfig.GlobalTarget(e, home); ok {
			targets = append(targets, t)
		}
	}

	ok := true
	for _, t := range targets {
		p, err := mcpconfig.Inspect(fs, t)
		switch {
		case err != nil:
			a.output.Error("%s: %v", t.Path, err)
			ok = false
		case !p.Exists:
			a.output.Warning("%s not found", t.Path)
		case !p.Configured():
			a.output.Error("%s is missing MCP servers", t.Path)
			ok = false
		case port > 0 && p.ChromeURL != mcpconfig.ChromeURL(port):
			a.output.Warning("%s points chrome-devtools at %s, install used %s", t.Path, p.ChromeURL, mcpconfig.ChromeURL(port))
		default:
			a.output.Success("%s has MCP servers configured", t.Path)
		}
	}
	return ok
}

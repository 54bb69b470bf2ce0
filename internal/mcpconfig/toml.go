package mcpconfig

import (
	"fmt"
	"strings"
)

const tomlHeader = "# Codex Configuration\n"

// tomlMarker is the table name whose presence marks a server as configured.
func tomlMarker(name string) string {
	return "mcp_servers." + name
}

// MergeTOML brings the codex configuration file up to date with cfg.
//
// The file is treated as text: a server counts as configured when its table
// name appears anywhere in the file, and missing servers are appended as new
// tables. A missing file is created with a header comment.
func (m *Merger) MergeTOML(path string, cfg Config) (Result, error) {
	res := Result{Path: path}

	existing, ok, err := m.readExisting(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	if !ok {
		content := tomlHeader + formatTomlTables(ServerNames, cfg)
		if err := m.writeFile(path, []byte(content)); err != nil {
			return res, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Outcome = Created
		return res, nil
	}

	text := string(existing)
	var missing []string
	for _, name := range ServerNames {
		if !strings.Contains(text, tomlMarker(name)) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		m.logger.Debug("mcp servers already configured", "path", path)
		res.Outcome = AlreadyConfigured
		return res, nil
	}

	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	text += formatTomlTables(missing, cfg)

	if err := m.writeFile(path, []byte(text)); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	m.logger.Debug("appended mcp servers", "path", path, "servers", missing)
	res.Outcome = Updated
	return res, nil
}

func formatTomlTables(names []string, cfg Config) string {
	var b strings.Builder
	for _, name := range names {
		server := cfg.MCPServers[name]
		b.WriteString("\n")
		fmt.Fprintf(&b, "[%s]\n", tomlMarker(name))
		fmt.Fprintf(&b, "command = %q\n", server.Command)
		fmt.Fprintf(&b, "args = [%s]\n", joinTomlArray(server.Args))
	}
	return b.String()
}

func joinTomlArray(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, fmt.Sprintf("%q", value))
	}
	return strings.Join(quoted, ", ")
}

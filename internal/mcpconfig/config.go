// Package mcpconfig writes the MCP server entries the installed agents rely on
// into the project and into each selected editor's global configuration.
package mcpconfig

import (
	"encoding/json"
	"fmt"
)

// Managed server names.
const (
	ServerContext7       = "context7"
	ServerChromeDevtools = "chrome-devtools"
)

// ServerNames lists the managed servers in the order they are written.
var ServerNames = []string{ServerContext7, ServerChromeDevtools}

// Server is a stdio MCP server launched through a command.
type Server struct {
	Command string   `json:"command" toml:"command"`
	Args    []string `json:"args" toml:"args"`
}

// Config is the MCP configuration document shared by every JSON editor.
type Config struct {
	MCPServers map[string]Server `json:"mcpServers"`
}

// New builds the configuration for a Chrome remote-debugging port.
func New(port int) Config {
	return Config{MCPServers: map[string]Server{
		ServerContext7: {
			Command: "npx",
			Args:    []string{"-y", "@upstash/context7-mcp"},
		},
		ServerChromeDevtools: {
			Command: "npx",
			Args:    []string{"-y", "chrome-devtools-mcp@latest", "-u", ChromeURL(port)},
		},
	}}
}

// ChromeURL is the debugging endpoint chrome-devtools-mcp connects to.
func ChromeURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// JSON renders the document with two-space indentation and a trailing newline.
func (c Config) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ParseError is an existing configuration file that could not be parsed.
// The file is left untouched.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

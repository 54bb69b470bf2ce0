package mcpconfig

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Presence is what an existing configuration file declares about the managed
// servers.
type Presence struct {
	Exists    bool
	Servers   map[string]bool
	ChromeURL string
}

// Configured reports whether every managed server is declared.
func (p Presence) Configured() bool {
	for _, name := range ServerNames {
		if !p.Servers[name] {
			return false
		}
	}
	return true
}

type tomlDocument struct {
	MCPServers map[string]Server `toml:"mcp_servers"`
}

// Inspect parses a configuration file and reports the managed servers it
// declares. Unlike MergeTOML it parses TOML structurally.
func Inspect(fs afero.Fs, target Target) (Presence, error) {
	p := Presence{Servers: make(map[string]bool)}

	data, err := afero.ReadFile(fs, target.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, err
	}
	p.Exists = true

	switch target.Dialect {
	case DialectTOML:
		var doc tomlDocument
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return p, &ParseError{Path: target.Path, Err: err}
		}
		for _, name := range ServerNames {
			p.Servers[name] = md.IsDefined("mcp_servers", name)
		}
		p.ChromeURL = urlArg(doc.MCPServers[ServerChromeDevtools].Args)
	default:
		if !gjson.ValidBytes(data) {
			return p, &ParseError{Path: target.Path, Err: errors.New("invalid JSON")}
		}
		for _, name := range ServerNames {
			p.Servers[name] = gjson.GetBytes(data, serversKey+"."+name).Exists()
		}
		var args []string
		for _, a := range gjson.GetBytes(data, serversKey+"."+ServerChromeDevtools+".args").Array() {
			args = append(args, a.String())
		}
		p.ChromeURL = urlArg(args)
	}
	return p, nil
}

// urlArg returns the value following -u in a chrome-devtools-mcp argument list.
func urlArg(args []string) string {
	for i, a := range args {
		if a == "-u" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

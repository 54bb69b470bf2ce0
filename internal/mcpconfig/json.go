package mcpconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const serversKey = "mcpServers"

// MergeJSON brings a global JSON configuration file up to date with cfg.
//
// A missing file is created. A file that already declares both managed
// servers is left alone. Otherwise the file is copied byte for byte to a
// .backup sibling and rewritten according to the merger's policy.
func (m *Merger) MergeJSON(path string, cfg Config) (Result, error) {
	res := Result{Path: path}

	existing, ok, err := m.readExisting(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	fresh, err := cfg.JSON()
	if err != nil {
		return res, err
	}

	if !ok {
		if err := m.writeFile(path, fresh); err != nil {
			return res, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Outcome = Created
		return res, nil
	}

	doc := existing
	if len(bytes.TrimSpace(doc)) == 0 {
		doc = []byte("{}")
	}
	if !gjson.ValidBytes(doc) {
		return res, &ParseError{Path: path, Err: errors.New("invalid JSON")}
	}
	if !gjson.ParseBytes(doc).IsObject() {
		return res, &ParseError{Path: path, Err: errors.New("top-level value is not an object")}
	}

	if hasServers(doc) {
		m.logger.Debug("mcp servers already configured", "path", path)
		res.Outcome = AlreadyConfigured
		return res, nil
	}

	backup := path + backupSuffix
	if err := m.writeFile(backup, existing); err != nil {
		return res, fmt.Errorf("backing up %s: %w", path, err)
	}
	res.Backup = backup

	out := fresh
	if m.policy == PolicyPreserve {
		out, err = preserveMerge(doc, cfg)
		if err != nil {
			return res, &ParseError{Path: path, Err: err}
		}
	}

	if err := m.writeFile(path, out); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	m.logger.Debug("updated mcp config", "path", path, "policy", m.policy, "backup", backup)
	res.Outcome = Updated
	return res, nil
}

// hasServers reports whether doc declares every managed server.
func hasServers(doc []byte) bool {
	for _, name := range ServerNames {
		if !gjson.GetBytes(doc, serversKey+"."+name).Exists() {
			return false
		}
	}
	return true
}

// preserveMerge sets the managed servers inside doc and keeps every other key.
func preserveMerge(doc []byte, cfg Config) ([]byte, error) {
	out := doc
	if servers := gjson.GetBytes(out, serversKey); servers.Exists() && !servers.IsObject() {
		var err error
		if out, err = sjson.SetRawBytes(out, serversKey, []byte("{}")); err != nil {
			return nil, err
		}
	}

	for _, name := range ServerNames {
		raw, err := json.Marshal(cfg.MCPServers[name])
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, serversKey+"."+name, raw); err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return pretty.Pretty(out), nil
}

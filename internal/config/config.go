package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNoRecord is returned by LoadRecord when the target has no install record.
var ErrNoRecord = errors.New("no install record found: run 'agent-library' first")

const filesSeparator = "\n# Installed files: auto-generated, do not edit below this line\n"

// Record is the .agent-library.yml file written after a successful install.
type Record struct {
	Version     int      `yaml:"version"`
	ManifestURL string   `yaml:"manifest_url"`
	Framework   string   `yaml:"framework"`
	Editors     []string `yaml:"editors"`
	Agents      []string `yaml:"agents"`
	Skills      []string `yaml:"skills,omitempty"`
	Port        int      `yaml:"port"`

	// Files maps each installed destination to its content hash. Skill
	// folders are hashed as a whole and listed in SkillDirs.
	Files     map[string]string `yaml:"files,omitempty"`
	SkillDirs map[string]string `yaml:"skill_dirs,omitempty"`
}

// recordUserFields is the selection part of the record.
// Used for two-pass marshaling so the file hashes stay below a comment.
type recordUserFields struct {
	Version     int      `yaml:"version"`
	ManifestURL string   `yaml:"manifest_url"`
	Framework   string   `yaml:"framework"`
	Editors     []string `yaml:"editors"`
	Agents      []string `yaml:"agents"`
	Skills      []string `yaml:"skills,omitempty"`
	Port        int      `yaml:"port"`
}

// recordFileFields is the auto-generated portion of the record.
type recordFileFields struct {
	Files     map[string]string `yaml:"files,omitempty"`
	SkillDirs map[string]string `yaml:"skill_dirs,omitempty"`
}

// RecordExists checks whether the record file exists in the given directory.
func RecordExists(fs afero.Fs, dir string) bool {
	_, err := fs.Stat(filepath.Join(dir, RecordFile))
	return err == nil
}

// LoadRecord reads and parses the record file from the given directory.
func LoadRecord(fs afero.Fs, dir string) (*Record, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, RecordFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("reading install record: %w", err)
	}

	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing install record: %w", err)
	}

	if err := ValidateRecord(&r); err != nil {
		return nil, err
	}

	return &r, nil
}

// SaveRecord writes the record file to the given directory.
// It uses two-pass marshaling: selection fields first, then a comment
// separator, then the file hashes.
func SaveRecord(fs afero.Fs, dir string, r *Record) error {
	if r.Version == 0 {
		r.Version = RecordVersion
	}

	userPart := recordUserFields{
		Version:     r.Version,
		ManifestURL: r.ManifestURL,
		Framework:   r.Framework,
		Editors:     r.Editors,
		Agents:      r.Agents,
		Skills:      r.Skills,
		Port:        r.Port,
	}

	userBytes, err := yaml.Marshal(userPart)
	if err != nil {
		return fmt.Errorf("marshaling install record: %w", err)
	}

	var content []byte
	if len(r.Files) > 0 || len(r.SkillDirs) > 0 {
		filesPart := recordFileFields{Files: r.Files, SkillDirs: r.SkillDirs}
		filesBytes, marshalErr := yaml.Marshal(filesPart)
		if marshalErr != nil {
			return fmt.Errorf("marshaling installed files: %w", marshalErr)
		}
		content = append(userBytes, []byte(filesSeparator)...)
		content = append(content, filesBytes...)
	} else {
		content = userBytes
	}

	path := filepath.Join(dir, RecordFile)
	tmpPath := path + ".tmp"

	if err := afero.WriteFile(fs, tmpPath, content, 0644); err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("saving install record: %w", err)
	}

	return nil
}

// ValidateRecord checks that a Record has required fields.
func ValidateRecord(r *Record) error {
	if r.Version < 1 {
		return fmt.Errorf("invalid install record version: %d", r.Version)
	}
	if r.Framework == "" {
		return fmt.Errorf("install record has no framework")
	}
	if len(r.Editors) == 0 {
		return fmt.Errorf("install record has no editors")
	}
	return nil
}

// Paths returns every recorded file and skill folder, sorted.
func (r *Record) Paths() []string {
	paths := make([]string, 0, len(r.Files)+len(r.SkillDirs))
	for p := range r.Files {
		paths = append(paths, p)
	}
	for p := range r.SkillDirs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

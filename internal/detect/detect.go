// Package detect guesses a project's framework from its dependency manifests.
package detect

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DetectedFramework is a framework guess and the file it came from.
type DetectedFramework struct {
	Framework string
	Source    string
}

// Found reports whether a framework was detected.
func (d *DetectedFramework) Found() bool {
	return d != nil && d.Framework != ""
}

// composerRules map a required package to a framework, first match wins.
var composerRules = []struct{ pkg, framework string }{
	{"magento/framework", "magento"},
	{"magento/product-community-edition", "magento"},
	{"laravel/framework", "laravel"},
}

// npmRules are checked against dependencies and devDependencies in order.
var npmRules = []struct{ pkg, framework string }{
	{"next", "nextjs"},
	{"@remix-run/react", "remix"},
	{"expo", "expo-react-native"},
	{"@nestjs/core", "nestjs"},
	{"express", "express"},
}

var ignoredDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"build":        true,
	"dist":         true,
}

type detector func(fs afero.Fs, dir string) (string, error)

var detectors = []struct {
	file   string
	detect detector
}{
	{"composer.json", detectFromComposer},
	{"package.json", detectFromPackageJSON},
	{"pubspec.yaml", detectFromPubspec},
}

// DetectFramework inspects projectRoot, then its subdirectories, and returns
// the first framework found. The root always wins over nested projects.
func DetectFramework(fs afero.Fs, projectRoot string) (*DetectedFramework, error) {
	if d, err := detectDir(fs, projectRoot); err != nil || d.Found() {
		return d, err
	}

	var found *DetectedFramework
	errStop := errors.New("stop")
	err := afero.Walk(fs, projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if path == projectRoot || !info.IsDir() {
			return nil
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") || ignoredDirs[name] {
			return filepath.SkipDir
		}

		d, err := detectDir(fs, path)
		if err == nil && d.Found() {
			found = d
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	if found == nil {
		found = &DetectedFramework{}
	}
	return found, nil
}

func detectDir(fs afero.Fs, dir string) (*DetectedFramework, error) {
	for _, d := range detectors {
		framework, err := d.detect(fs, dir)
		if err != nil {
			return nil, err
		}
		if framework != "" {
			return &DetectedFramework{Framework: framework, Source: filepath.Join(dir, d.file)}, nil
		}
	}
	return &DetectedFramework{}, nil
}

// readOptional returns nil data for a missing file.
func readOptional(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func detectFromComposer(fs afero.Fs, dir string) (string, error) {
	data, err := readOptional(fs, filepath.Join(dir, "composer.json"))
	if err != nil || data == nil {
		return "", err
	}

	var composer struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &composer); err != nil {
		// a malformed manifest is not a detection failure
		return "", nil
	}

	for _, rule := range composerRules {
		if _, ok := composer.Require[rule.pkg]; ok {
			return rule.framework, nil
		}
	}
	return "", nil
}

func detectFromPackageJSON(fs afero.Fs, dir string) (string, error) {
	data, err := readOptional(fs, filepath.Join(dir, "package.json"))
	if err != nil || data == nil {
		return "", err
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", nil
	}

	for _, rule := range npmRules {
		if _, ok := pkg.Dependencies[rule.pkg]; ok {
			return rule.framework, nil
		}
		if _, ok := pkg.DevDependencies[rule.pkg]; ok {
			return rule.framework, nil
		}
	}
	return "", nil
}

func detectFromPubspec(fs afero.Fs, dir string) (string, error) {
	data, err := readOptional(fs, filepath.Join(dir, "pubspec.yaml"))
	if err != nil || data == nil {
		return "", err
	}

	var pubspec struct {
		Dependencies map[string]yaml.Node `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return "", nil
	}

	if _, ok := pubspec.Dependencies["flutter"]; ok {
		return "flutter", nil
	}
	return "", nil
}

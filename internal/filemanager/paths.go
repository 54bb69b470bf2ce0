package filemanager

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePathComponent rejects path components that could escape the intended directory.
func validatePathComponent(name, label string) error {
	if name == "" {
		return fmt.Errorf("empty %s", label)
	}
	cleaned := filepath.Clean(name)
	if cleaned != name || cleaned == "." || cleaned == ".." || strings.ContainsAny(cleaned, `/\`) {
		return fmt.Errorf("invalid %s: %q", label, name)
	}
	return nil
}

// validateInsideDir checks that resolved is a child of base after cleaning.
func validateInsideDir(base, resolved string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return err
	}
	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absResolved, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes base directory %q", resolved, base)
	}
	return nil
}

// ResolveInside joins a relative destination onto root and rejects absolute
// paths and paths that leave root.
func ResolveInside(root, rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("empty destination")
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("invalid destination: %q", rel)
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	if err := validateInsideDir(root, joined); err != nil {
		return "", fmt.Errorf("invalid destination: %w", err)
	}
	return joined, nil
}

package filemanager

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// RemoveStale deletes paths from a previous install that are not in keep.
// Only paths the installer recorded are ever considered, so user files are
// never touched.
func RemoveStale(fs afero.Fs, root string, previous []string, keep map[string]bool) ([]string, error) {
	var removed []string
	for _, rel := range previous {
		if keep[rel] {
			continue
		}
		path, err := ResolveInside(root, rel)
		if err != nil {
			return removed, err
		}
		if err := fs.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("removing stale file %s: %w", rel, err)
		}
		removed = append(removed, rel)
	}
	return removed, nil
}

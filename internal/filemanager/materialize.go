package filemanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyError is a filesystem failure while materializing files. Partially
// copied trees are left in place.
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// EnsureParentDir creates the parent directory of path. It is a no-op when the
// directory already exists.
func EnsureParentDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(filepath.Dir(path), 0o755)
}

// CopyTree recursively copies sourceDir into targetDir, preserving relative
// structure and file modes. It is used for skill bundles shipped on disk.
func CopyTree(fs afero.Fs, sourceDir, targetDir string) error {
	info, err := fs.Stat(sourceDir)
	if err != nil {
		return &CopyError{Path: sourceDir, Err: err}
	}
	if !info.IsDir() {
		return &CopyError{Path: sourceDir, Err: errors.New("not a directory")}
	}

	if err := fs.MkdirAll(targetDir, 0o755); err != nil {
		return &CopyError{Path: targetDir, Err: err}
	}

	entries, err := afero.ReadDir(fs, sourceDir)
	if err != nil {
		return &CopyError{Path: sourceDir, Err: err}
	}

	for _, entry := range entries {
		src := filepath.Join(sourceDir, entry.Name())
		dst := filepath.Join(targetDir, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(fs, src, dst); err != nil {
				return err
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			continue
		}
		if err := copyFile(fs, src, dst, entry.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

// InstallSpecialFile copies src to dst when src exists. A missing source is
// not an error: it returns false.
func InstallSpecialFile(fs afero.Fs, src, dst string) (bool, error) {
	info, err := fs.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &CopyError{Path: src, Err: err}
	}
	if info.IsDir() {
		return false, nil
	}

	if err := EnsureParentDir(fs, dst); err != nil {
		return false, &CopyError{Path: dst, Err: err}
	}
	if err := copyFile(fs, src, dst, filePerm); err != nil {
		return false, err
	}
	return true, nil
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return &CopyError{Path: src, Err: err}
	}
	if err := afero.WriteFile(fs, dst, data, perm); err != nil {
		return &CopyError{Path: dst, Err: err}
	}
	return nil
}

package filemanager

import (
	"errors"
	"os"
	"sort"

	"github.com/spf13/afero"
)

// Status is the verification outcome for one installed path.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMissing  Status = "missing"
	StatusModified Status = "modified"
)

// Expected is an installed path and the hash recorded when it was written.
// Dir marks skill folders, which are hashed as a whole.
type Expected struct {
	Path string
	Hash string
	Dir  bool
}

// VerifyResult is the verification outcome for one path.
type VerifyResult struct {
	Path   string
	Status Status
}

// Verify compares installed files under root against their recorded hashes.
// Results are sorted by path.
func Verify(fs afero.Fs, root string, expected []Expected) []VerifyResult {
	results := make([]VerifyResult, 0, len(expected))
	for _, e := range expected {
		results = append(results, VerifyResult{Path: e.Path, Status: verifyOne(fs, root, e)})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results
}

func verifyOne(fs afero.Fs, root string, e Expected) Status {
	path, err := ResolveInside(root, e.Path)
	if err != nil {
		return StatusMissing
	}

	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return StatusMissing
	}

	var actual string
	if e.Dir {
		actual, err = HashDir(fs, path)
	} else {
		actual, err = HashFile(fs, path)
	}
	if err != nil || actual != e.Hash {
		return StatusModified
	}
	return StatusOK
}

// AllOK reports whether every result is StatusOK.
func AllOK(results []VerifyResult) bool {
	for _, r := range results {
		if r.Status != StatusOK {
			return false
		}
	}
	return true
}

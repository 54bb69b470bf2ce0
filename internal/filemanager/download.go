package filemanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/ulpi-io/agent-library/internal/registry"
)

const (
	filePerm       os.FileMode = 0o644
	executablePerm os.FileMode = 0o755
	scriptExt                  = ".sh"
)

// Source is where library files come from. *registry.Client satisfies it.
type Source interface {
	DownloadFile(ctx context.Context, source string) ([]byte, error)
	Download(ctx context.Context, source, rawURL string) ([]byte, error)
	ListFolder(ctx context.Context, dir string) ([]registry.ContentItem, error)
}

// Progress is reported once per entry processed by FetchAll.
type Progress struct {
	Entry registry.FileEntry
	Path  string
	Err   error
}

// Failure is a single entry that could not be installed.
type Failure struct {
	Entry registry.FileEntry
	Err   error
}

// Result tallies a batch fetch. Total is the number of entries in the batch;
// on a dry run nothing is downloaded and Downloaded stays zero.
type Result struct {
	Total      int
	Downloaded int
	Failed     int
	Failures   []Failure
}

// Add accumulates another batch into r.
func (r *Result) Add(other Result) {
	r.Total += other.Total
	r.Downloaded += other.Downloaded
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}

// Option configures a Manager.
type Option func(*Manager)

// Manager downloads library files into a target directory.
type Manager struct {
	source      Source
	fs          afero.Fs
	targetDir   string
	concurrency int
	itemTimeout time.Duration
	logger      *log.Logger
	onProgress  func(Progress)
	progressMu  sync.Mutex
}

// NewManager creates a new file manager rooted at targetDir.
func NewManager(source Source, targetDir string, opts ...Option) *Manager {
	m := &Manager{
		source:      source,
		fs:          afero.NewOsFs(),
		targetDir:   targetDir,
		concurrency: 1,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithFs sets the filesystem files are written to.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithConcurrency sets how many downloads FetchAll runs at once. The default of
// one fetches entries sequentially in order.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithItemTimeout bounds each entry's download in FetchAll.
func WithItemTimeout(d time.Duration) Option {
	return func(m *Manager) { m.itemTimeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each FetchAll entry.
// Calls are serialized.
func WithProgress(fn func(Progress)) Option {
	return func(m *Manager) { m.onProgress = fn }
}

// TargetDir returns the directory files are installed into.
func (m *Manager) TargetDir() string {
	return m.targetDir
}

// Fs returns the filesystem the manager writes to.
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// FetchFile downloads one entry to its destination and returns the local path.
// Shell scripts are made executable.
func (m *Manager) FetchFile(ctx context.Context, entry registry.FileEntry) (string, error) {
	dst, err := ResolveInside(m.targetDir, entry.Destination)
	if err != nil {
		return "", err
	}

	data, err := m.source.DownloadFile(ctx, entry.Source)
	if err != nil {
		return "", err
	}

	if err := m.writeFile(dst, data, entry.Source); err != nil {
		return "", fmt.Errorf("writing %s: %w", entry.Destination, err)
	}
	return dst, nil
}

// FetchAll downloads every entry, recording failures without stopping.
// With dryRun set it performs no I/O and only reports the count.
func (m *Manager) FetchAll(ctx context.Context, entries []registry.FileEntry, dryRun bool) Result {
	result := Result{Total: len(entries)}
	if dryRun || len(entries) == 0 {
		return result
	}

	errs := make([]error, len(entries))
	p := pool.New().WithMaxGoroutines(m.concurrency)
	for i, entry := range entries {
		p.Go(func() {
			itemCtx := ctx
			if m.itemTimeout > 0 {
				var cancel context.CancelFunc
				itemCtx, cancel = context.WithTimeout(ctx, m.itemTimeout)
				defer cancel()
			}
			path, err := m.FetchFile(itemCtx, entry)
			errs[i] = err
			m.report(Progress{Entry: entry, Path: path, Err: err})
		})
	}
	p.Wait()

	for i, err := range errs {
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{Entry: entries[i], Err: err})
			continue
		}
		result.Downloaded++
	}
	return result
}

func (m *Manager) report(p Progress) {
	if p.Err != nil {
		m.logger.Debug("download failed", "destination", p.Entry.Destination, "err", p.Err)
	} else {
		m.logger.Debug("downloaded", "destination", p.Entry.Destination, "path", p.Path)
	}
	if m.onProgress == nil {
		return
	}
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	m.onProgress(p)
}

// FetchFolder recursively downloads a library directory into destination,
// which is relative to the target directory. A failed listing of sourceDir
// itself is returned immediately. Failures below it are collected and
// returned together after every sibling has been attempted.
func (m *Manager) FetchFolder(ctx context.Context, sourceDir, destination string) (int, error) {
	root, err := ResolveInside(m.targetDir, destination)
	if err != nil {
		return 0, err
	}
	return m.fetchFolder(ctx, sourceDir, root)
}

func (m *Manager) fetchFolder(ctx context.Context, sourceDir, dir string) (int, error) {
	items, err := m.source.ListFolder(ctx, sourceDir)
	if err != nil {
		return 0, err
	}

	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, &CopyError{Path: dir, Err: err}
	}

	written := 0
	var errs []error
	for _, item := range items {
		if err := validatePathComponent(item.Name, "file name"); err != nil {
			errs = append(errs, err)
			continue
		}
		target := filepath.Join(dir, item.Name)

		switch item.Type {
		case registry.ContentFile:
			data, err := m.source.Download(ctx, item.Path, item.DownloadURL)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := m.writeFile(target, data, item.Name); err != nil {
				errs = append(errs, fmt.Errorf("writing %s: %w", target, err))
				continue
			}
			written++
		case registry.ContentDir:
			n, err := m.fetchFolder(ctx, item.Path, target)
			written += n
			if err != nil {
				errs = append(errs, err)
			}
		default:
			m.logger.Debug("skipping folder item", "path", item.Path, "type", item.Type)
		}
	}

	return written, errors.Join(errs...)
}

// writeFile writes data to path via a temp file and rename, creating parent
// directories. name decides whether the result is executable.
func (m *Manager) writeFile(path string, data []byte, name string) error {
	if err := EnsureParentDir(m.fs, path); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(m.fs, tmpPath, data, filePerm); err != nil {
		return err
	}
	if err := m.fs.Rename(tmpPath, path); err != nil {
		m.fs.Remove(tmpPath)
		return err
	}

	if strings.HasSuffix(name, scriptExt) {
		return m.fs.Chmod(path, executablePerm)
	}
	return nil
}

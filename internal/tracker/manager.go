// Package tracker implements add, remove and pull over the registry of
// tracked files.
//
// Every operation is a single read-modify-write of the registry file. There
// is no locking: two invocations racing on the same registry may lose an
// update.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cbout22/git-file/internal/config"
	"github.com/cbout22/git-file/internal/injector"
	"github.com/cbout22/git-file/internal/logging"
	"github.com/cbout22/git-file/internal/manifest"
	"github.com/cbout22/git-file/internal/repo"
	"github.com/cbout22/git-file/internal/resolver"
)

// Options configures a Manager.
type Options struct {
	Root         string // repository root; holds the registry
	WorkDir      string // base for relative local paths; defaults to Root
	RegistryFile string // registry file name; defaults to .git-file
	Source       resolver.SourceRepository
	Files        injector.FileWriter
	Logger       *zap.Logger
}

// Manager orchestrates the registry, the fetcher and the local tree.
type Manager struct {
	root         string
	workDir      string
	registryPath string
	source       resolver.SourceRepository
	files        injector.FileWriter
	logger       *zap.Logger
}

// New creates a Manager.
func New(opts Options) *Manager {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = opts.Root
	}
	registryFile := opts.RegistryFile
	if registryFile == "" {
		registryFile = config.DefaultRegistryFile
	}
	files := opts.Files
	if files == nil {
		files = &injector.OSFileWriter{}
	}
	return &Manager{
		root:         opts.Root,
		workDir:      workDir,
		registryPath: repo.RegistryPath(opts.Root, registryFile),
		source:       opts.Source,
		files:        files,
		logger:       logging.OrNop(opts.Logger),
	}
}

// RegistryPath returns the path of the registry file.
func (m *Manager) RegistryPath() string {
	return m.registryPath
}

// AddRequest describes a file to start tracking.
type AddRequest struct {
	Remote    string
	FilePath  string
	Revision  string // empty or HEAD for the default branch tip
	LocalPath string // empty for the file stem of FilePath
}

// Add fetches a remote file into the local tree and records it.
//
// If the registry cannot be saved after the file was written, the file stays
// on disk untracked; the error says so and nothing is rolled back.
func (m *Manager) Add(ctx context.Context, req AddRequest) (manifest.Entry, error) {
	localPath := req.LocalPath
	if localPath == "" {
		localPath = config.DefaultLocalPath(req.FilePath)
	}
	key, abs, err := m.resolve(localPath)
	if err != nil {
		return manifest.Entry{}, err
	}
	if err := manifest.ValidateLocalPath(key); err != nil {
		return manifest.Entry{}, fmt.Errorf("cannot add %s: %w", key, err)
	}

	if m.files.Exists(abs) {
		return manifest.Entry{}, fmt.Errorf("cannot add %s: %w", key, ErrAlreadyExists)
	}

	reg := m.load()
	if _, ok := reg.Get(key); ok {
		return manifest.Entry{}, fmt.Errorf("cannot add %s: %w", key, ErrAlreadyTracked)
	}

	ref := config.FileRef{Remote: req.Remote, Path: req.FilePath, Revision: req.Revision}
	sha, err := m.source.Fetch(ctx, resolver.FetchRequest{Ref: ref, Destination: abs})
	if err != nil {
		return manifest.Entry{}, fmt.Errorf("adding %s: %w", key, err)
	}

	entry := manifest.Entry{LocalPath: key, Remote: req.Remote, FilePath: req.FilePath, SHA: sha}
	reg.Upsert(entry)
	if err := reg.Save(m.registryPath); err != nil {
		m.logger.Warn("file written but not tracked", zap.String("path", abs), zap.Error(err))
		return manifest.Entry{}, fmt.Errorf("saving registry (%s left untracked): %w", key, err)
	}

	m.logger.Info("added entry",
		zap.String("local_path", key),
		zap.String("remote", entry.Remote),
		zap.String("file_path", entry.FilePath),
		zap.String("sha", sha))
	return entry, nil
}

// Remove stops tracking localPath and deletes the local file if present.
func (m *Manager) Remove(localPath string) error {
	key, abs, err := m.resolve(localPath)
	if err != nil {
		return err
	}

	reg := m.load()
	if !reg.Delete(key) {
		return fmt.Errorf("cannot remove %s: %w", key, ErrNotTracked)
	}
	if err := reg.Save(m.registryPath); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}

	if err := m.files.Remove(abs); err != nil {
		return fmt.Errorf("deleting %s: %w", abs, err)
	}

	m.logger.Info("removed entry", zap.String("local_path", key))
	return nil
}

// Pull re-fetches one tracked file at the remote's default branch tip and
// records the new commit. Only the sha of the entry changes.
func (m *Manager) Pull(ctx context.Context, localPath string) (manifest.Entry, error) {
	key, _, err := m.resolve(localPath)
	if err != nil {
		return manifest.Entry{}, err
	}

	reg := m.load()
	entry, ok := reg.Get(key)
	if !ok {
		return manifest.Entry{}, fmt.Errorf("cannot pull %s: %w", key, ErrNotTracked)
	}

	updated, err := m.pullEntry(ctx, reg, entry)
	if err != nil {
		return manifest.Entry{}, &PullError{LocalPath: key, Err: err}
	}
	return updated, nil
}

// PullAll pulls every tracked file in registry order, saving the registry
// after each one. It stops at the first failure; entries pulled before it
// stay updated. The returned slice holds the entries that were updated.
func (m *Manager) PullAll(ctx context.Context) ([]manifest.Entry, error) {
	reg := m.load()

	var updated []manifest.Entry
	for _, entry := range reg.Entries() {
		if err := ctx.Err(); err != nil {
			return updated, &PullError{LocalPath: entry.LocalPath, Err: err}
		}
		e, err := m.pullEntry(ctx, reg, entry)
		if err != nil {
			return updated, &PullError{LocalPath: entry.LocalPath, Err: err}
		}
		updated = append(updated, e)
	}
	return updated, nil
}

// Entries returns the tracked entries in registry order.
func (m *Manager) Entries() []manifest.Entry {
	return m.load().Entries()
}

func (m *Manager) pullEntry(ctx context.Context, reg *manifest.Registry, entry manifest.Entry) (manifest.Entry, error) {
	ref := config.FileRef{Remote: entry.Remote, Path: entry.FilePath, Revision: config.HeadRevision}
	sha, err := m.source.Fetch(ctx, resolver.FetchRequest{Ref: ref, Destination: m.absPath(entry.LocalPath)})
	if err != nil {
		return manifest.Entry{}, err
	}

	previous := entry.SHA
	entry.SHA = sha
	reg.Upsert(entry)
	if err := reg.Save(m.registryPath); err != nil {
		return manifest.Entry{}, fmt.Errorf("saving registry: %w", err)
	}

	m.logger.Info("pulled entry",
		zap.String("local_path", entry.LocalPath),
		zap.String("previous_sha", previous),
		zap.String("sha", sha))
	return entry, nil
}

// load reads the registry. An unreadable registry is treated as empty.
func (m *Manager) load() *manifest.Registry {
	reg, err := manifest.Load(m.registryPath)
	if err != nil {
		m.logger.Warn("ignoring unreadable registry", zap.String("path", m.registryPath), zap.Error(err))
	}
	return reg
}

// resolve turns a user-supplied path into the registry key and the
// filesystem path. Relative paths are taken from the working directory.
// Keys are relative to the repository root, slash-separated, so the same
// file has one key whichever directory the tool runs from. Paths outside
// the root keep their absolute form.
func (m *Manager) resolve(localPath string) (key, abs string, err error) {
	if strings.TrimSpace(localPath) == "" {
		return "", "", errors.New("local path is empty")
	}

	abs = localPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(m.workDir, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs, abs, nil
	}
	if rel == "." {
		return "", "", fmt.Errorf("local path %s is the repository root", localPath)
	}
	return filepath.ToSlash(rel), abs, nil
}

// absPath maps a registry key back to the filesystem.
func (m *Manager) absPath(key string) string {
	p := filepath.FromSlash(key)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.root, p)
}

// Package resolver retrieves single files from remote git repositories.
//
// Every fetch performs a full clone into a scoped temporary directory that is
// removed before Fetch returns, whatever the outcome.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/cbout22/git-file/internal/injector"
	"github.com/cbout22/git-file/internal/logging"
)

const tempDirPattern = "git-file-*"

// GitFetcher implements SourceRepository with go-git.
type GitFetcher struct {
	tempRoot string
	files    injector.FileWriter
	logger   *zap.Logger
}

var _ SourceRepository = (*GitFetcher)(nil)

// New creates a GitFetcher. Clones go under tempRoot, or the OS temp
// directory when tempRoot is empty.
func New(tempRoot string, files injector.FileWriter, logger *zap.Logger) *GitFetcher {
	if files == nil {
		files = &injector.OSFileWriter{}
	}
	return &GitFetcher{
		tempRoot: tempRoot,
		files:    files,
		logger:   logging.OrNop(logger),
	}
}

// Fetch clones req.Ref.Remote, moves to the requested revision and copies the
// file to req.Destination. The returned hash is always a full commit hash.
func (f *GitFetcher) Fetch(ctx context.Context, req FetchRequest) (sha string, err error) {
	ref := req.Ref

	dir, err := os.MkdirTemp(f.tempRoot, tempDirPattern)
	if err != nil {
		return "", &ResourceError{Op: "creating clone directory", Path: f.tempRoot, Err: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			err = errors.Join(err, &ResourceError{Op: "removing clone directory", Path: dir, Err: rmErr})
			sha = ""
		}
	}()

	log := f.logger.With(zap.String("remote", ref.Remote), zap.String("path", ref.Path))
	log.Debug("cloning", zap.String("dir", dir))

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: ref.Remote})
	if err != nil {
		return "", &FetchError{Op: "clone", Ref: ref, Err: fmt.Errorf("%w: %w", ErrCloneFailed, err)}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", &FetchError{Op: "clone", Ref: ref, Err: fmt.Errorf("%w: opening worktree: %w", ErrCloneFailed, err)}
	}

	if ref.IsLatest() {
		sha, err = headCommit(repo)
	} else {
		sha, err = checkoutRevision(repo, wt, ref.Revision)
	}
	if err != nil {
		return "", &FetchError{Op: "resolve", Ref: ref, Err: err}
	}
	log.Debug("resolved revision", zap.String("sha", sha))

	data, perm, err := readTreeFile(wt.Filesystem, ref.TreePath())
	if err != nil {
		return "", &FetchError{Op: "read", Ref: ref, Err: err}
	}

	if err := f.files.Write(req.Destination, data, perm); err != nil {
		return "", &FetchError{Op: "copy", Ref: ref, Err: fmt.Errorf("%w: %w", ErrCopyFailed, err)}
	}
	log.Debug("copied file", zap.String("destination", req.Destination), zap.Int("bytes", len(data)))

	return sha, nil
}

// headCommit returns the commit the freshly cloned HEAD points at.
func headCommit(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: reading HEAD: %w", ErrUnresolvableRevision, err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("%w: HEAD is not a commit: %w", ErrUnresolvableRevision, err)
	}
	return commit.Hash.String(), nil
}

// checkoutRevision resolves rev to a commit and checks its tree out with a
// detached HEAD. Tags and branches are accepted and pinned to their commit.
func checkoutRevision(repo *git.Repository, wt *git.Worktree, rev string) (string, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(strings.TrimSpace(rev)))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrUnresolvableRevision, rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a commit: %w", ErrUnresolvableRevision, rev, err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{Hash: commit.Hash, Force: true}); err != nil {
		return "", fmt.Errorf("checking out %s: %w", commit.Hash, err)
	}
	return commit.Hash.String(), nil
}

// readTreeFile reads a regular file from the checked-out worktree together
// with its permission bits.
func readTreeFile(wfs billy.Filesystem, treePath string) ([]byte, os.FileMode, error) {
	if treePath == "" || treePath == "." || treePath == ".." || strings.HasPrefix(treePath, "../") {
		return nil, 0, fmt.Errorf("%w: %q is outside the repository", ErrFileNotFoundInRemote, treePath)
	}
	if treePath == git.GitDirName || strings.HasPrefix(treePath, git.GitDirName+"/") {
		return nil, 0, fmt.Errorf("%w: %q is repository metadata", ErrFileNotFoundInRemote, treePath)
	}

	info, err := wfs.Stat(treePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFoundInRemote, treePath)
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is a directory", ErrFileNotFoundInRemote, treePath)
	}

	data, err := util.ReadFile(wfs, treePath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}
	return data, info.Mode().Perm(), nil
}

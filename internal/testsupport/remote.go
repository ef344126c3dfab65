// Package testsupport builds throwaway git repositories for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Remote is a local repository that tests clone from by path.
type Remote struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
}

// NewRemote initialises an empty repository in a temporary directory.
func NewRemote(t testing.TB) *Remote {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init test repository: %v", err)
	}
	return &Remote{t: t, Dir: dir, Repo: repo}
}

// Commit writes files into the worktree, commits them and returns the hash.
func (r *Remote) Commit(msg string, files map[string]string) string {
	r.t.Helper()
	return r.commit(msg, files, 0600)
}

// CommitExecutable is Commit for files carrying the executable bit.
func (r *Remote) CommitExecutable(msg string, files map[string]string) string {
	r.t.Helper()
	return r.commit(msg, files, 0700)
}

func (r *Remote) commit(msg string, files map[string]string, perm os.FileMode) string {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("worktree: %v", err)
	}
	for name, content := range files {
		full := filepath.Join(r.Dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
			r.t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), perm); err != nil {
			r.t.Fatalf("write %s: %v", name, err)
		}
		if _, err := wt.Add(name); err != nil {
			r.t.Fatalf("add %s: %v", name, err)
		}
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

// Tag creates a lightweight tag pointing at hash.
func (r *Remote) Tag(name, hash string) {
	r.t.Helper()
	if _, err := r.Repo.CreateTag(name, plumbing.NewHash(hash), nil); err != nil {
		r.t.Fatalf("tag %s: %v", name, err)
	}
}

// NewWorkspace returns a directory that looks like the root of a checkout:
// it holds an empty .git directory and nothing else.
func NewWorkspace(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	return dir
}

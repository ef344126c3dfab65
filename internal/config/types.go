package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// HeadRevision is the revision token meaning "tip of the remote's default branch".
const HeadRevision = "HEAD"

// FileRef identifies one file inside a remote repository at a revision.
type FileRef struct {
	Remote   string // Repository URI (https, ssh, file or local path)
	Path     string // Path inside the repository tree
	Revision string // Commit hash, tag, branch, or empty/HEAD for latest
}

// IsLatest reports whether the revision refers to the default branch tip.
func (r FileRef) IsLatest() bool {
	return IsLatest(r.Revision)
}

// IsLatest reports whether rev is empty or the HEAD sentinel (any case).
func IsLatest(rev string) bool {
	rev = strings.TrimSpace(rev)
	return rev == "" || strings.EqualFold(rev, HeadRevision)
}

// ID returns the identifier used in error messages: "remote:path@revision".
func (r FileRef) ID() string {
	rev := r.Revision
	if r.IsLatest() {
		rev = HeadRevision
	}
	return fmt.Sprintf("%s:%s@%s", r.Remote, r.Path, rev)
}

// TreePath returns the slash-separated, cleaned path inside the repository.
// Leading slashes are dropped so "/README.md" and "README.md" are the same file.
func (r FileRef) TreePath() string {
	p := path.Clean(filepath.ToSlash(r.Path))
	return strings.TrimLeft(p, "/")
}

// DefaultLocalPath returns the local file name used when add is given no
// explicit destination: the file stem of the remote path.
// "docs/README.md" becomes "README"; a name without stem is returned as is.
func DefaultLocalPath(remoteFilePath string) string {
	base := path.Base(filepath.ToSlash(remoteFilePath))
	if base == "." || base == "/" {
		return remoteFilePath
	}
	// A leading dot is part of the stem, not an extension.
	if strings.HasPrefix(base, ".") && strings.Count(base, ".") == 1 {
		return base
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}

// IsFullHash reports whether s looks like a full SHA-1 or SHA-256 commit hash.
func IsFullHash(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

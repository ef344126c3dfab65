package tracker

import (
	"github.com/cbout22/git-file/internal/config"
	"github.com/cbout22/git-file/internal/injector"
	"github.com/cbout22/git-file/internal/manifest"
)

// CheckStatus describes the local state of a tracked file.
type CheckStatus int

const (
	CheckOK          CheckStatus = iota // File present, sha is a commit hash
	CheckFileMissing                    // Tracked but absent on disk
	CheckUnpinned                       // Stored sha is not a full commit hash
)

func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "ok"
	case CheckFileMissing:
		return "missing"
	case CheckUnpinned:
		return "unpinned"
	}
	return "unknown"
}

// CheckResult holds the outcome of checking one entry.
type CheckResult struct {
	Entry  manifest.Entry
	Path   string // filesystem path checked
	Status CheckStatus
}

// CheckEntries inspects entries without touching the network.
// locate maps a registry key to the filesystem path to look at.
func CheckEntries(entries []manifest.Entry, fs injector.FileWriter, locate func(string) string) []CheckResult {
	results := make([]CheckResult, 0, len(entries))

	for _, entry := range entries {
		path := locate(entry.LocalPath)

		status := CheckOK
		switch {
		case !fs.Exists(path):
			status = CheckFileMissing
		case !config.IsFullHash(entry.SHA):
			status = CheckUnpinned
		}

		results = append(results, CheckResult{Entry: entry, Path: path, Status: status})
	}

	return results
}

// Check reports the local state of every tracked file.
func (m *Manager) Check() []CheckResult {
	return CheckEntries(m.Entries(), m.files, m.absPath)
}

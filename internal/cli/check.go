package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/tracker"
)

// newCheckCmd creates the `check` command.
// Usage: git-file check [--strict]
func newCheckCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that tracked files are present and pinned",
		Long: `Validates, without touching the network, that every entry in the registry
has its local file and is pinned to a full commit hash. Useful in CI pipelines.

With --strict, the command exits with a non-zero code if any issue is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, out, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runCheckWith(m, out, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with error code if files are missing or unpinned")

	return cmd
}

// runCheckWith is the testable core of the check command.
func runCheckWith(m *tracker.Manager, out *printer, strict bool) error {
	results := m.Check()
	if len(results) == 0 {
		out.Info("📋 No tracked files, nothing to check.")
		return nil
	}

	out.Info("🔍 Checking %d file(s)...\n", len(results))

	var issues int
	for _, r := range results {
		switch r.Status {
		case tracker.CheckOK:
			out.Success("  ✅ %s — ok", r.Entry.LocalPath)
		case tracker.CheckFileMissing:
			out.Fail("  ❌ %s — missing (run 'git-file pull %s')", r.Entry.LocalPath, r.Entry.LocalPath)
			issues++
		case tracker.CheckUnpinned:
			out.Warn("  ⚠️  %s — sha %q is not a commit hash", r.Entry.LocalPath, r.Entry.SHA)
			issues++
		}
	}

	out.Info("")
	if issues > 0 {
		msg := fmt.Sprintf("Found %d issue(s).", issues)
		if strict {
			return fmt.Errorf("%s", msg)
		}
		out.Warn("⚠️  %s", msg)
	} else {
		out.Success("✅ All tracked files are present and pinned.")
	}
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/tracker"
)

// newPullCmd creates the `pull` command.
// Usage: git-file pull [local_file_path]
func newPullCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [local_file_path]",
		Short: "Update tracked files to the tip of their remote",
		Long: `Re-fetches tracked files from the tip of each remote's default branch and
records the new commit. Pinned revisions are not kept: pulling always moves
forward.

Without an argument every tracked file is pulled in registry order. The first
failure stops the run; files pulled before it stay updated.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: trackedPathCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, out, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return runPullOneWith(cmd.Context(), m, out, args[0])
			}
			return runPullAllWith(cmd.Context(), m, out)
		},
	}
}

// runPullOneWith is the testable core of `pull <path>`.
func runPullOneWith(ctx context.Context, m *tracker.Manager, out *printer, localPath string) error {
	entry, err := m.Pull(ctx, localPath)
	if err != nil {
		return err
	}
	out.Success("✅ %s updated to %s", entry.LocalPath, shortSHA(entry.SHA))
	return nil
}

// runPullAllWith is the testable core of `pull` without arguments.
func runPullAllWith(ctx context.Context, m *tracker.Manager, out *printer) error {
	total := len(m.Entries())
	if total == 0 {
		out.Info("📋 No tracked files, nothing to pull.")
		return nil
	}

	out.Info("🔄 Pulling %d file(s)...", total)
	updated, err := m.PullAll(ctx)
	for _, e := range updated {
		out.Success("  ✅ %s → %s", e.LocalPath, shortSHA(e.SHA))
	}
	if err != nil {
		out.Fail("  ❌ stopped after %d of %d file(s)", len(updated), total)
		return err
	}
	out.Success("All files up to date.")
	return nil
}

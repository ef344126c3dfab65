package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/tracker"
)

// newAddCmd creates the `add` command.
// Usage: git-file add <remote> <remote_file_path> [local_file_path] [revision]
func newAddCmd(opts *rootOptions) *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "add <remote> <remote_file_path> [local_file_path] [revision]",
		Short: "Start tracking a file from a remote repository",
		Long: `Clones the remote, copies one file into the working tree and records it in
the registry together with the commit it was taken from.

The local path defaults to the file name of the remote path without its last
extension. The revision may be a commit hash, a tag or a branch; it is stored
as the commit it resolves to. Without a revision, or with HEAD, the tip of the
remote's default branch is used.

Example:
  git-file add https://github.com/org/repo.git docs/guide.md docs/guide.md v1.2.0`,
		Args: cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := tracker.AddRequest{
				Remote:   args[0],
				FilePath: args[1],
				Revision: revision,
			}
			if len(args) > 2 {
				req.LocalPath = args[2]
			}
			if len(args) > 3 {
				if revision != "" && revision != args[3] {
					return fmt.Errorf("revision given twice: %q and %q", revision, args[3])
				}
				req.Revision = args[3]
			}

			m, out, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runAddWith(cmd.Context(), m, out, req)
		},
	}

	cmd.Flags().StringVarP(&revision, "revision", "r", "", "Commit, tag or branch to pin (default: remote HEAD)")

	return cmd
}

// runAddWith is the testable core of the add command.
func runAddWith(ctx context.Context, m *tracker.Manager, out *printer, req tracker.AddRequest) error {
	out.Info("📦 Adding %s from %s...", req.FilePath, req.Remote)

	entry, err := m.Add(ctx, req)
	if err != nil {
		return err
	}

	out.Success("✅ %s tracked at %s", entry.LocalPath, shortSHA(entry.SHA))
	return nil
}

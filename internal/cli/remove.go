package cli

import (
	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/tracker"
)

// newRemoveCmd creates the `remove` command.
// Usage: git-file remove <local_file_path>
func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <local_file_path>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking a file and delete it",
		Long: `Removes the entry from the registry and deletes the local file. A local file
that is already gone is not an error.

Example:
  git-file rm docs/guide.md`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: trackedPathCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, out, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runRemoveWith(m, out, args[0])
		},
	}
}

// runRemoveWith is the testable core of the remove command.
func runRemoveWith(m *tracker.Manager, out *printer, localPath string) error {
	if err := m.Remove(localPath); err != nil {
		return err
	}
	out.Success("🗑️  Removed %s", localPath)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/manifest"
	"github.com/cbout22/git-file/internal/tracker"
)

const (
	formatText = "text"
	formatTOML = "toml"
)

// newListCmd creates the `list` command.
// Usage: git-file list [--format text|toml]
func newListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, out, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runListWith(m, out, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or toml")

	return cmd
}

// runListWith is the testable core of the list command.
func runListWith(m *tracker.Manager, out *printer, format string) error {
	entries := m.Entries()

	switch format {
	case formatText:
		if len(entries) == 0 {
			out.Info("📋 No tracked files.")
			return nil
		}
		for _, e := range entries {
			out.Info("%s ← %s:%s@%s", e.LocalPath, e.Remote, e.FilePath, out.faint.Sprint(shortSHA(e.SHA)))
		}
		return nil
	case formatTOML:
		reg := manifest.New()
		for _, e := range entries {
			reg.Upsert(e)
		}
		return reg.EncodeTOML(out.w)
	default:
		return fmt.Errorf("unsupported format %q (want %s or %s)", format, formatText, formatTOML)
	}
}

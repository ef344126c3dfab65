package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// trackedPathCompletion completes the first argument with tracked local paths,
// written relative to the working directory so they resolve back to the same
// entries.
func trackedPathCompletion(opts *rootOptions) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		settings, err := loadSettings(opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		m, err := newManager(settings, nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var completions []string
		for _, r := range m.Check() {
			name := r.Path
			if rel, err := filepath.Rel(wd, r.Path); err == nil {
				name = rel
			}
			if strings.HasPrefix(name, toComplete) {
				completions = append(completions, name+"\t"+r.Entry.Remote+":"+r.Entry.FilePath)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cbout22/git-file/internal/resolver"
)

// version is set at build time via -ldflags.
var version = "dev"

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	ExitFatal = 2 // the scoped clone directory could not be created or removed
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool
}

// NewRootCmd creates the top-level `git-file` command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "git-file",
		Short: "Track single files from remote git repositories",
		Long: `git-file copies individual files out of remote git repositories into the
current repository and pins each one to the commit it came from. Tracked files
are recorded in a .git-file registry at the repository root.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a settings file (TOML)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: console, structured")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newRemoveCmd(opts))
	root.AddCommand(newPullCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newCheckCmd(opts))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	return reportError(err)
}

// reportError prints err to stderr and maps it to an exit code.
func reportError(err error) int {
	if err == nil {
		return ExitOK
	}
	red := color.New(color.FgRed, color.Bold)
	if resolver.IsResourceError(err) {
		red.Fprint(os.Stderr, "fatal: ")
		fmt.Fprintln(os.Stderr, err)
		return ExitFatal
	}
	red.Fprint(os.Stderr, "error: ")
	fmt.Fprintln(os.Stderr, err)
	return ExitError
}

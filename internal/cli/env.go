package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cbout22/git-file/internal/config"
	"github.com/cbout22/git-file/internal/injector"
	"github.com/cbout22/git-file/internal/logging"
	"github.com/cbout22/git-file/internal/repo"
	"github.com/cbout22/git-file/internal/resolver"
	"github.com/cbout22/git-file/internal/tracker"
)

// loadSettings reads the settings file and environment, then applies the
// persistent flags that were set explicitly.
func loadSettings(opts *rootOptions) (config.Settings, error) {
	settings, err := config.NewLoader().Load(opts.configFile)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.logLevel != "" {
		settings.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		settings.LogFormat = opts.logFormat
	}
	if opts.noColor {
		settings.Color = false
	}
	return settings, nil
}

// newManager locates the enclosing repository from the working directory and
// wires a Manager that fetches with go-git.
func newManager(settings config.Settings, logger *zap.Logger) (*tracker.Manager, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	root, err := repo.LocateRoot(wd, settings.MarkerDir)
	if err != nil {
		return nil, err
	}

	files := &injector.OSFileWriter{}
	return tracker.New(tracker.Options{
		Root:         root,
		WorkDir:      wd,
		RegistryFile: settings.RegistryFile,
		Source:       resolver.New(settings.TempDir, files, logger),
		Files:        files,
		Logger:       logger,
	}), nil
}

// setup prepares everything a subcommand needs.
func setup(cmd *cobra.Command, opts *rootOptions) (*tracker.Manager, *printer, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	if !settings.Color {
		color.NoColor = true
	}

	logger, err := logging.NewFactory().CreateLogger(logging.Level(settings.LogLevel), logging.Format(settings.LogFormat))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	m, err := newManager(settings, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using registry", zap.String("path", m.RegistryPath()))
	return m, newPrinter(cmd.OutOrStdout()), nil
}

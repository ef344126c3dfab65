package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultRegistryFile is the registry file name at the repository root.
	DefaultRegistryFile = ".git-file"
	// DefaultMarkerDir marks the root of the enclosing repository.
	DefaultMarkerDir = ".git"

	envPrefix     = "GIT_FILE"
	configName    = "config"
	configType    = "toml"
	configDirName = "git-file"
	defaultLevel  = "warn"
	defaultFormat = "console"
	keyLogLevel   = "log_level"
	keyLogFormat  = "log_format"
	keyRegistry   = "registry_file"
	keyMarkerDir  = "marker_dir"
	keyTempDir    = "temp_dir"
	keyColor      = "color"
)

// Settings holds the tool's own configuration. None of it is stored in the
// registry; it only shapes how the tool runs.
type Settings struct {
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	RegistryFile string `mapstructure:"registry_file"`
	MarkerDir    string `mapstructure:"marker_dir"`
	TempDir      string `mapstructure:"temp_dir"` // parent of scoped clone dirs; empty means os.TempDir
	Color        bool   `mapstructure:"color"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		LogLevel:     defaultLevel,
		LogFormat:    defaultFormat,
		RegistryFile: DefaultRegistryFile,
		MarkerDir:    DefaultMarkerDir,
		Color:        true,
	}
}

// Loader reads Settings from an optional TOML file and GIT_FILE_* variables.
type Loader struct {
	searchPaths []string
}

// NewLoader returns a Loader searching the given directories for config.toml.
// With no directories it uses the user config locations.
func NewLoader(searchPaths ...string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = defaultSearchPaths()
	}
	paths := make([]string, len(searchPaths))
	copy(paths, searchPaths)
	return &Loader{searchPaths: paths}
}

func defaultSearchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, configDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configDirName))
	}
	return paths
}

// Load resolves the settings. An explicit file path must exist; a missing file
// in the search paths is fine and yields defaults plus environment overrides.
func (l *Loader) Load(explicitFile string) (Settings, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	for _, p := range l.searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFormat, d.LogFormat)
	v.SetDefault(keyRegistry, d.RegistryFile)
	v.SetDefault(keyMarkerDir, d.MarkerDir)
	v.SetDefault(keyTempDir, d.TempDir)
	v.SetDefault(keyColor, d.Color)

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}

	if s.RegistryFile == "" {
		s.RegistryFile = DefaultRegistryFile
	}
	if s.MarkerDir == "" {
		s.MarkerDir = DefaultMarkerDir
	}
	return s, nil
}

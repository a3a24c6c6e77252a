// Package conf loads and holds the module configuration: where bundled
// catalog files and extension archives live on disk.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// EnvDataDir is the environment variable that points at the data root.
// Extension-archive paths stored in normalized tables reference it verbatim
// so they stay relocatable.
const EnvDataDir = "LATCAT_DATA_DIR"

// Settings holds the module configuration.
type Settings struct {
	Debug bool `mapstructure:"debug"`

	// DataRoot is the directory holding bundled catalog files and extended
	// source archives, laid out as <dataroot>/catalogs/<file>.
	DataRoot string `mapstructure:"dataroot"`

	// LogFile, when set, routes structured logs to a rotating file at this
	// path instead of stdout.
	LogFile string `mapstructure:"logfile"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "latcat"))
	}

	setDefaultConfig()
	bindEnvVars()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults and env vars apply.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings, loading them on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	s := settingsInstance
	settingsMutex.RUnlock()
	if s != nil {
		return s
	}
	s, err := Load()
	if err != nil {
		// Fall back to pure defaults rather than failing the caller.
		return &Settings{DataRoot: os.Getenv(EnvDataDir)}
	}
	return s
}

// CatalogPath resolves a bundled catalog file name against the data root.
// Absolute paths and paths to existing files are returned unchanged.
func (s *Settings) CatalogPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(s.DataRoot, "catalogs", name)
}

// ExpandDataDir substitutes the $LATCAT_DATA_DIR placeholder in a stored
// path with the configured data root.
func (s *Settings) ExpandDataDir(path string) string {
	return strings.ReplaceAll(path, "$"+EnvDataDir, s.DataRoot)
}

// Package config loads aipman settings from the config file, the
// environment and command flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/provide-io/aipman/internal/appdir"
	"github.com/provide-io/aipman/pkg/aip"
	"github.com/provide-io/aipman/pkg/utils/permissions"
)

// EnvPrefix is prepended to every environment override,
// e.g. AIPMAN_ARTIFACT_MODE for artifact.mode
const EnvPrefix = "AIPMAN"

// Config represents the complete aipman configuration
type Config struct {
	// AppDir holds installed bundles and the manifest. A leading "~" expands
	// to the home directory.
	AppDir string `mapstructure:"app_dir"`
	// ManifestFile is the manifest file name inside AppDir
	ManifestFile string `mapstructure:"manifest_file"`
	// Repo overrides the catalog location (URL, file:// URL or path)
	Repo string `mapstructure:"repo"`
	// Ask confirms every install, upgrade and removal interactively
	Ask bool `mapstructure:"ask"`
	// HTTPTimeout bounds every catalog and bundle download
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// LogLevel is used when neither --log-level nor AIPMAN_LOG_LEVEL is set
	LogLevel string `mapstructure:"log_level"`

	Artifact ArtifactConfig `mapstructure:"artifact"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// ArtifactConfig controls how installed bundles are named and found
type ArtifactConfig struct {
	// Extension of installed files (default: AppImage)
	Extension string `mapstructure:"extension"`
	// Pattern is the glob picked out of compressed bundles
	// (default: "*.<extension>")
	Pattern string `mapstructure:"pattern"`
	// Mode is the octal permission string applied to installed files
	Mode string `mapstructure:"mode"`
}

// BackupConfig controls the backup archive
type BackupConfig struct {
	// Path of the archive; its suffix selects the format
	Path string `mapstructure:"path"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		AppDir:       "~/" + appdir.DefaultDirName,
		ManifestFile: appdir.DefaultManifestFile,
		Repo:         "",
		Ask:          false,
		HTTPTimeout:  5 * time.Minute,
		LogLevel:     "warn",
		Artifact: ArtifactConfig{
			Extension: aip.DefaultArtifactExtension,
			Pattern:   "",
			Mode:      permissions.FormatOctal(permissions.DefaultExecutablePerms),
		},
		Backup: BackupConfig{
			Path: "~/" + appdir.DefaultBackupFile,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("app_dir", defaults.AppDir)
	viper.SetDefault("manifest_file", defaults.ManifestFile)
	viper.SetDefault("repo", defaults.Repo)
	viper.SetDefault("ask", defaults.Ask)
	viper.SetDefault("http_timeout", defaults.HTTPTimeout)
	viper.SetDefault("log_level", defaults.LogLevel)

	// Artifact defaults
	viper.SetDefault("artifact.extension", defaults.Artifact.Extension)
	viper.SetDefault("artifact.pattern", defaults.Artifact.Pattern)
	viper.SetDefault("artifact.mode", defaults.Artifact.Mode)

	// Backup defaults
	viper.SetDefault("backup.path", defaults.Backup.Path)
}

// readErr holds the failure of the last Init, reported by Load
var readErr error

// Init points viper at the config file and the environment. An explicit
// cfgFile wins over the default search path. Finding no config file on the
// search path is not an error; an unreadable or malformed file is reported
// by the next Load.
func Init(cfgFile string) {
	// Set defaults first so they're available even without a config file
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(ConfigDir())
	}

	viper.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			readErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	if readErr != nil {
		return nil, readErr
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aipman")
	}
	// Fall back to ~/.config/aipman
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aipman"
	}
	return filepath.Join(home, ".config", "aipman")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Paths resolves the application directory layout.
func (c *Config) Paths() (*appdir.Paths, error) {
	root, err := appdir.ExpandHome(c.AppDir)
	if err != nil {
		return nil, err
	}
	return appdir.NewPaths(root, c.ManifestFile, c.Artifact.Extension), nil
}

// BackupPath resolves the backup archive location.
func (c *Config) BackupPath() (string, error) {
	return appdir.ExpandHome(c.Backup.Path)
}

// ArtifactMode parses the configured artifact permissions.
func (c *Config) ArtifactMode() (os.FileMode, error) {
	return permissions.ParseOctalString(c.Artifact.Mode)
}

// ArtifactPattern returns the glob used to pick the artifact out of a
// compressed bundle.
func (c *Config) ArtifactPattern() string {
	if c.Artifact.Pattern != "" {
		return c.Artifact.Pattern
	}
	ext := c.Artifact.Extension
	if ext == "" {
		ext = aip.DefaultArtifactExtension
	}
	return "*." + strings.TrimPrefix(ext, ".")
}

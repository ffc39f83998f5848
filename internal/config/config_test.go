package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "~/Applications", cfg.AppDir)
	assert.Equal(t, "aip_man_pkg_list.json", cfg.ManifestFile)
	assert.Equal(t, 5*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "AppImage", cfg.Artifact.Extension)
	assert.Equal(t, "0755", cfg.Artifact.Mode)
	assert.Equal(t, "*.AppImage", cfg.ArtifactPattern())
	assert.Empty(t, cfg.Validate())

	mode, err := cfg.ArtifactMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), mode)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `app_dir: ` + filepath.Join(dir, "apps") + `
ask: true
http_timeout: 30s
artifact:
  pattern: "*-x86_64.AppImage"
backup:
  path: ` + filepath.Join(dir, "apps.tar.bz2") + `
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))
	t.Setenv("AIPMAN_ARTIFACT_MODE", "0700")
	t.Setenv("AIPMAN_REPO", "file:///srv/pkgs.json")

	Init(cfgFile)
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Ask)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "*-x86_64.AppImage", cfg.ArtifactPattern())
	assert.Equal(t, "0700", cfg.Artifact.Mode)
	assert.Equal(t, "file:///srv/pkgs.json", cfg.Repo)
	assert.Equal(t, "AppImage", cfg.Artifact.Extension)

	paths, err := cfg.Paths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "apps"), paths.Root())
	assert.Equal(t, filepath.Join(dir, "apps", "aip_man_pkg_list.json"), paths.Manifest())

	backup, err := cfg.BackupPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "apps.tar.bz2"), backup)
}

func TestLoadRejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("artifact.mode", "rwx")
	viper.Set("artifact.pattern", "[oops")

	_, err := Load()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestInitReportsUnreadableConfig(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("app_dir: [unclosed\n"), 0o644))

	testCases := []struct {
		name    string
		cfgFile string
		xdg     string
		wantErr bool
	}{
		{"no config on search path", "", t.TempDir(), false},
		{"malformed explicit file", malformed, t.TempDir(), true},
		{"missing explicit file", filepath.Join(dir, "absent.yaml"), t.TempDir(), true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(func() {
				viper.Reset()
				readErr = nil
			})
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)

			Init(tt.cfgFile)
			_, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "reading config")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInitReportsMalformedDefaultConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		readErr = nil
	})

	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "aipman"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "aipman", "config.yaml"), []byte("ask: [yes\n"), 0o644))
	t.Setenv("XDG_CONFIG_HOME", xdg)

	Init("")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty app dir", func(c *Config) { c.AppDir = " " }, "app_dir"},
		{"nested manifest", func(c *Config) { c.ManifestFile = "a/b.json" }, "manifest_file"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http_timeout"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty extension", func(c *Config) { c.Artifact.Extension = "." }, "artifact.extension"},
		{"bad glob", func(c *Config) { c.Artifact.Pattern = "[x" }, "artifact.pattern"},
		{"bad mode", func(c *Config) { c.Artifact.Mode = "999" }, "artifact.mode"},
		{"not executable", func(c *Config) { c.Artifact.Mode = "0644" }, "artifact.mode"},
		{"zip backup", func(c *Config) { c.Backup.Path = "~/apps.zip" }, "backup.path"},
		{"unknown backup", func(c *Config) { c.Backup.Path = "~/apps.bak" }, "backup.path"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, filepath.Join("/custom/config", "aipman"), ConfigDir())
		assert.Equal(t, filepath.Join("/custom/config", "aipman", "config.yaml"), ConfigFile())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "aipman"), ConfigDir())
	})
}

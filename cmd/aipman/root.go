package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/provide-io/aipman/internal/appdir"
	"github.com/provide-io/aipman/internal/config"
	"github.com/provide-io/aipman/pkg/aip/backup"
	"github.com/provide-io/aipman/pkg/aip/bundle"
	"github.com/provide-io/aipman/pkg/aip/catalog"
	"github.com/provide-io/aipman/pkg/aip/lifecycle"
	"github.com/provide-io/aipman/pkg/aip/manifest"
	"github.com/provide-io/aipman/pkg/logging"
)

// mutatingAnnotation marks commands that change the application directory.
// They honor --backup and clean up leftovers of interrupted runs first.
const mutatingAnnotation = "aipman/mutating"

var (
	cfgFile    string
	askFlag    bool
	backupFlag bool
	repoFlag   string
	logLevel   string

	application *app
)

var rootCmd = &cobra.Command{
	Use:   "aipman",
	Short: "AppImage package manager",
	Long: `aipman installs, upgrades, removes and runs AppImages listed in a
package catalog. Installed bundles live in ~/Applications next to a manifest
of what is installed.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

// app holds the components one command invocation works with
type app struct {
	cfg      *config.Config
	logger   hclog.Logger
	paths    *appdir.Paths
	bundles  *bundle.Materializer
	orch     *lifecycle.Orchestrator
	archiver *backup.Archiver
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/aipman/config.yaml)")
	flags.BoolVarP(&askFlag, "ask", "a", false, "Ask before changing package information")
	flags.BoolVarP(&backupFlag, "backup", "b", false, "Back up the application directory before changing it")
	flags.StringVarP(&repoFlag, "repo", "r", "", "Use a different package catalog (URL to pkgs.json, file:// URL or path)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	_ = viper.BindPFlag("ask", flags.Lookup("ask"))
	_ = viper.BindPFlag("repo", flags.Lookup("repo"))

	rootCmd.AddCommand(installCmd, removeCmd, upgradeCmd, listCmd, runCmd, backupCmd, restoreCmd, versionCmd)
}

func initConfig() {
	config.Init(cfgFile)
}

func isMutating(cmd *cobra.Command) bool {
	return cmd.Annotations[mutatingAnnotation] == "true"
}

// prepare loads the configuration and wires the components for cmd.
func prepare(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	application = a

	if !isMutating(cmd) {
		return nil
	}

	if backupFlag {
		if err := a.snapshot(); err != nil {
			return err
		}
	}
	if a.paths.Exists() {
		a.bundles.CleanupStale()
	}
	return nil
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.NewLogger("aipman", logging.ResolveLevel(logLevel, cfg.LogLevel), os.Stderr)

	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.ArtifactMode()
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	bundles, err := bundle.NewMaterializer(paths, bundle.Options{
		Pattern: cfg.ArtifactPattern(),
		Mode:    mode,
		Client:  client,
	}, logger.Named("bundle"))
	if err != nil {
		return nil, err
	}

	var confirm lifecycle.Confirmer = lifecycle.AlwaysYes{}
	if cfg.Ask {
		confirm = lifecycle.NewPrompter(os.Stdin, os.Stdout)
	}

	store := manifest.NewStore(paths, logger.Named("manifest"))
	source := catalog.NewSource(catalog.DefaultURL, client, logger.Named("catalog"))
	orch := lifecycle.NewOrchestrator(source, bundles, store, confirm, logger.Named("lifecycle")).WithRepo(cfg.Repo)

	logger.Debug("🔧 Configuration loaded", "app_dir", paths.Root(), "ask", cfg.Ask, "repo", cfg.Repo)

	return &app{
		cfg:      cfg,
		logger:   logger,
		paths:    paths,
		bundles:  bundles,
		orch:     orch,
		archiver: backup.NewArchiver(logger.Named("backup")),
	}, nil
}

// snapshot backs up the application directory when it exists.
func (a *app) snapshot() error {
	if !a.paths.Exists() {
		a.logger.Warn("⚠️ Nothing to back up", "dir", a.paths.Root())
		return nil
	}
	archive, err := a.cfg.BackupPath()
	if err != nil {
		return err
	}
	if err := a.archiver.Create(a.paths.Root(), archive); err != nil {
		return fmt.Errorf("backing up %s: %w", a.paths.Root(), err)
	}
	return nil
}

// Package bundle turns catalog entries into runnable files inside the
// application directory and runs them.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/aipman/internal/appdir"
	"github.com/provide-io/aipman/pkg/aip"
	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
	"github.com/provide-io/aipman/pkg/aip/operations"
	"github.com/provide-io/aipman/pkg/utils/permissions"

	// Register the archive and codec operations used by compressed bundles.
	_ "github.com/provide-io/aipman/pkg/aip/operations/archive"
	_ "github.com/provide-io/aipman/pkg/aip/operations/compress"
)

// Options tunes a Materializer. Zero values select the defaults.
type Options struct {
	// Pattern is the glob matched against file names inside compressed
	// bundles. Defaults to "*.<extension>".
	Pattern string

	// Mode is applied to every installed artifact.
	Mode os.FileMode

	// Client downloads remote bundles.
	Client *http.Client
}

// Materializer downloads, extracts, places and runs bundle artifacts.
type Materializer struct {
	paths   *appdir.Paths
	pattern glob.Glob
	mode    os.FileMode
	client  *http.Client
	logger  hclog.Logger
}

// NewMaterializer creates a Materializer for one application directory.
func NewMaterializer(paths *appdir.Paths, opts Options, logger hclog.Logger) (*Materializer, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*." + paths.Extension()
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact pattern %q: %w", pattern, err)
	}

	mode := opts.Mode
	if mode == 0 {
		mode = permissions.DefaultExecutablePerms
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &Materializer{
		paths:   paths,
		pattern: g,
		mode:    mode,
		client:  client,
		logger:  logger,
	}, nil
}

// Path returns where the artifact for pkg lives.
func (m *Materializer) Path(pkg aip.Package) string {
	return m.paths.Artifact(pkg)
}

// Install fetches pkg and places its artifact at Path(pkg).
func (m *Materializer) Install(ctx context.Context, pkg aip.Package) (string, error) {
	if err := pkg.Validate(); err != nil {
		return "", err
	}
	if err := m.paths.Ensure(); err != nil {
		return "", err
	}

	var chain []uint8
	if pkg.Compressed {
		var err error
		chain, err = operations.ChainForName(pkg.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %v", aiperrors.ErrUnsupportedArchive, err)
		}
	}

	target := m.Path(pkg)
	id := uuid.NewString()

	m.logger.Info("📥 Downloading bundle", "package", pkg.String(), "url", pkg.URL)
	download, err := m.download(ctx, pkg.URL, id)
	if err != nil {
		return "", err
	}

	if !pkg.Compressed {
		if err := m.place(download, target); err != nil {
			os.Remove(download)
			return "", err
		}
		m.logger.Info("✅ Bundle installed", "package", pkg.String(), "path", target)
		return target, nil
	}

	defer m.removeQuietly(download)

	scratch := m.paths.Scratch(id)
	defer m.removeQuietly(scratch)

	if err := m.checkDiskSpace(download); err != nil {
		return "", err
	}

	m.logger.Debug("📂 Extracting bundle", "archive", download, "chain", operations.OperationsToString(chain))
	if err := operations.UnpackFile(download, chain, scratch); err != nil {
		return "", fmt.Errorf("%w: %s: %v", aiperrors.ErrExtractionFailed, pkg.String(), err)
	}

	found, err := m.findArtifact(scratch)
	if err != nil {
		return "", fmt.Errorf("%s: %w", pkg.String(), err)
	}
	m.logger.Debug("🔍 Artifact located", "path", found)

	if err := m.place(found, target); err != nil {
		return "", err
	}

	m.logger.Info("✅ Bundle installed", "package", pkg.String(), "path", target)
	return target, nil
}

// Remove deletes the artifact of pkg. A missing artifact only warns.
func (m *Materializer) Remove(pkg aip.Package) error {
	target := m.Path(pkg)
	err := os.Remove(target)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("⚠️ Artifact already absent", "package", pkg.String(), "path", target)
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing %s: %w", target, err)
	}
	m.logger.Info("🗑️ Bundle removed", "package", pkg.String(), "path", target)
	return nil
}

// place relocates src to target and applies the artifact mode.
func (m *Materializer) place(src, target string) error {
	if err := moveFile(src, target); err != nil {
		return fmt.Errorf("placing artifact at %s: %w", target, err)
	}
	if err := os.Chmod(target, m.mode); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", target, err)
	}
	return nil
}

func (m *Materializer) removeQuietly(path string) {
	if err := os.RemoveAll(path); err != nil {
		m.logger.Warn("⚠️ Failed to clean up", "path", path, "error", err)
	}
}

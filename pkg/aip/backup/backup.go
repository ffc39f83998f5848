// Package backup snapshots the application directory into a compressed
// tarball and restores it.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
	"github.com/provide-io/aipman/pkg/aip/operations"

	_ "github.com/provide-io/aipman/pkg/aip/operations/archive"
	_ "github.com/provide-io/aipman/pkg/aip/operations/compress"
)

// Archiver creates and restores application directory backups.
type Archiver struct {
	logger hclog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(logger hclog.Logger) *Archiver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Archiver{logger: logger}
}

// Create writes appDir as a compressed tarball to archivePath. The format
// follows the archive suffix (".tar.gz" by default). The archive is written
// next to its destination and renamed into place.
func (a *Archiver) Create(appDir, archivePath string) error {
	if info, err := os.Stat(appDir); err != nil || !info.IsDir() {
		return fmt.Errorf("application directory %s not found", appDir)
	}

	ops, err := operations.ChainForName(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrUnsupportedArchive, err)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	tmpPath := filepath.Join(filepath.Dir(archivePath), "."+filepath.Base(archivePath)+"."+uuid.NewString()+".tmp")
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}

	a.logger.Debug("💾 Packing application directory", "dir", appDir, "chain", operations.OperationsToString(ops))
	if err := operations.PackDir(appDir, ops, out); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing backup: %w", err)
	}

	a.logger.Info("💾 Backup created", "dir", appDir, "archive", archivePath)
	return nil
}

// Restore replaces appDir with the contents of archivePath. The archive must
// exist; the current directory is deleted before unpacking.
func (a *Archiver) Restore(appDir, archivePath string) error {
	info, err := os.Stat(archivePath)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return fmt.Errorf("%w: %s", aiperrors.ErrBackupMissing, archivePath)
	}
	if err != nil {
		return fmt.Errorf("checking backup: %w", err)
	}

	ops, err := operations.ChainForName(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrUnsupportedArchive, err)
	}

	a.logger.Debug("🗑️ Removing application directory", "dir", appDir)
	if err := os.RemoveAll(appDir); err != nil {
		return fmt.Errorf("removing %s: %w", appDir, err)
	}

	if err := operations.UnpackFile(archivePath, ops, appDir); err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrExtractionFailed, err)
	}

	a.logger.Info("♻️ Backup restored", "dir", appDir, "archive", archivePath)
	return nil
}

package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/aipman/internal/appdir"
	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

// FilePerms is the mode of the manifest file
const FilePerms = 0o644

// Store reads and writes the manifest file of one application directory.
type Store struct {
	paths  *appdir.Paths
	logger hclog.Logger
}

// NewStore creates a Store for paths.
func NewStore(paths *appdir.Paths, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{paths: paths, logger: logger}
}

// Path returns the manifest file location.
func (s *Store) Path() string {
	return s.paths.Manifest()
}

// Load returns the installed packages. The application directory and an
// empty manifest are created on first access.
func (s *Store) Load() (Manifest, error) {
	path := s.paths.Manifest()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Debug("📋 Manifest not found, initializing", "path", path)
		if err := s.paths.Ensure(); err != nil {
			return nil, fmt.Errorf("%w: %v", aiperrors.ErrManifestWrite, err)
		}
		if err := os.WriteFile(path, []byte("[]"), FilePerms); err != nil {
			return nil, fmt.Errorf("%w: %v", aiperrors.ErrManifestWrite, err)
		}
		return Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", aiperrors.ErrManifestCorrupt, path, err)
	}
	if m == nil {
		m = Manifest{}
	}
	for i, pkg := range m {
		if err := pkg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", aiperrors.ErrManifestCorrupt, i, err)
		}
	}

	s.logger.Trace("📋 Manifest loaded", "path", path, "packages", len(m))
	return m, nil
}

// Save replaces the manifest file with m. The new content is written to a
// temporary file next to the manifest and renamed over it.
func (s *Store) Save(m Manifest) error {
	if name, dup := m.duplicate(); dup {
		return fmt.Errorf("%w: %s", aiperrors.ErrDuplicatePackage, name)
	}
	if m == nil {
		m = Manifest{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling: %v", aiperrors.ErrManifestWrite, err)
	}
	data = append(data, '\n')

	if err := s.paths.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrManifestWrite, err)
	}

	path := s.paths.Manifest()
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, FilePerms); err != nil {
		return fmt.Errorf("%w: writing temp file: %v", aiperrors.ErrManifestWrite, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file: %v", aiperrors.ErrManifestWrite, err)
	}

	s.logger.Debug("💾 Manifest saved", "path", path, "packages", len(m))
	return nil
}

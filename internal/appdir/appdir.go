// Package appdir resolves the application directory and every path derived
// from it: the installed manifest, bundle artifacts and scratch space.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provide-io/aipman/pkg/aip"
)

const (
	// DefaultDirName is the directory under $HOME holding installed bundles
	DefaultDirName = "Applications"

	// DefaultManifestFile is the installed manifest inside the app directory
	DefaultManifestFile = "aip_man_pkg_list.json"

	// DefaultBackupFile is the backup archive under $HOME
	DefaultBackupFile = "Applications.bak.tar.gz"

	ScratchPrefix  = ".extract-"
	DownloadPrefix = ".download-"

	DirPerms = 0o755
)

// DefaultRoot returns ~/Applications.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// DefaultBackupPath returns ~/Applications.bak.tar.gz.
func DefaultBackupPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultBackupFile), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Paths manages all paths under one application directory
type Paths struct {
	root         string
	manifestFile string
	extension    string
}

// NewPaths creates Paths rooted at root. Empty manifestFile and extension
// fall back to the defaults.
func NewPaths(root, manifestFile, extension string) *Paths {
	if manifestFile == "" {
		manifestFile = DefaultManifestFile
	}
	if extension == "" {
		extension = aip.DefaultArtifactExtension
	}
	return &Paths{
		root:         filepath.Clean(root),
		manifestFile: manifestFile,
		extension:    extension,
	}
}

// Root returns the application directory
func (p *Paths) Root() string {
	return p.root
}

// Manifest returns the installed manifest path
func (p *Paths) Manifest() string {
	return filepath.Join(p.root, p.manifestFile)
}

// Extension returns the artifact file extension
func (p *Paths) Extension() string {
	return p.extension
}

// Artifact returns the deterministic location of an installed bundle
func (p *Paths) Artifact(pkg aip.Package) string {
	return filepath.Join(p.root, aip.ArtifactName(pkg, p.extension))
}

// Scratch returns a scratch extraction directory for id
func (p *Paths) Scratch(id string) string {
	return filepath.Join(p.root, ScratchPrefix+id)
}

// Download returns a temporary download path for id, keeping suffix so the
// archive format can still be recognized
func (p *Paths) Download(id, suffix string) string {
	return filepath.Join(p.root, DownloadPrefix+id+suffix)
}

// Ensure creates the application directory if it doesn't exist
func (p *Paths) Ensure() error {
	if err := os.MkdirAll(p.root, DirPerms); err != nil {
		return fmt.Errorf("failed to create application directory: %w", err)
	}
	return nil
}

// Exists checks if the application directory exists
func (p *Paths) Exists() bool {
	info, err := os.Stat(p.root)
	return err == nil && info.IsDir()
}

// ListLeftovers returns scratch directories and partial downloads left behind
// by an interrupted run
func (p *Paths) ListLeftovers() ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var leftovers []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ScratchPrefix) || strings.HasPrefix(name, DownloadPrefix) {
			leftovers = append(leftovers, filepath.Join(p.root, name))
		}
	}
	return leftovers, nil
}

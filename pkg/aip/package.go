// Package aip defines the package record shared by the catalog, the installed
// manifest and the bundle materializer.
package aip

import (
	"fmt"
	"strings"
)

// DefaultArtifactExtension is the file extension given to installed bundles.
const DefaultArtifactExtension = "AppImage"

// Package is one entry of the catalog or of the installed manifest.
type Package struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Compressed  bool   `json:"compressed,omitempty" yaml:"compressed,omitempty"`
}

// ArtifactName returns the deterministic file name of the installed bundle
// for pkg. The location of an artifact is never stored; it is always
// reconstructed from name and version.
func ArtifactName(pkg Package, ext string) string {
	if ext == "" {
		ext = DefaultArtifactExtension
	}
	return fmt.Sprintf("%s-%s.%s", pkg.Name, pkg.Version, strings.TrimPrefix(ext, "."))
}

// String formats a package as name@version.
func (p Package) String() string {
	return p.Name + "@" + p.Version
}

// Validate checks the fields every record must carry.
func (p Package) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("package missing required 'name' field")
	}
	if strings.ContainsAny(p.Name, `/\`) {
		return fmt.Errorf("package name %q must not contain path separators", p.Name)
	}
	if p.Version == "" {
		return fmt.Errorf("package %s missing required 'version' field", p.Name)
	}
	if strings.ContainsAny(p.Version, `/\`) {
		return fmt.Errorf("package %s version %q must not contain path separators", p.Name, p.Version)
	}
	return nil
}

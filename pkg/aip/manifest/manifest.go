// Package manifest persists the list of installed packages.
package manifest

import (
	"github.com/provide-io/aipman/pkg/aip"
)

// Manifest is the ordered list of installed packages. Names are unique.
type Manifest []aip.Package

// Find returns the entry for name.
func (m Manifest) Find(name string) (aip.Package, bool) {
	for _, pkg := range m {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return aip.Package{}, false
}

// Replace returns a copy of m with the entry named pkg.Name swapped for pkg,
// keeping its position. When no entry has that name pkg is appended.
func (m Manifest) Replace(pkg aip.Package) Manifest {
	out := make(Manifest, 0, len(m)+1)
	replaced := false
	for _, existing := range m {
		if existing.Name == pkg.Name && !replaced {
			out = append(out, pkg)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, pkg)
	}
	return out
}

// Without returns a copy of m minus the entry for name.
func (m Manifest) Without(name string) Manifest {
	out := make(Manifest, 0, len(m))
	for _, pkg := range m {
		if pkg.Name != name {
			out = append(out, pkg)
		}
	}
	return out
}

// Names lists the installed package names in manifest order.
func (m Manifest) Names() []string {
	names := make([]string, len(m))
	for i, pkg := range m {
		names[i] = pkg.Name
	}
	return names
}

// duplicate returns the first name that appears more than once.
func (m Manifest) duplicate() (string, bool) {
	seen := make(map[string]struct{}, len(m))
	for _, pkg := range m {
		if _, ok := seen[pkg.Name]; ok {
			return pkg.Name, true
		}
		seen[pkg.Name] = struct{}{}
	}
	return "", false
}

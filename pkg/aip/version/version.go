// Package version orders package version strings segment by segment.
package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/provide-io/aipman/pkg/aip"
	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

// Parse parses a dotted version string such as "1.10", "v2.0.1" or "3.1-rc1".
func Parse(raw string) (*goversion.Version, error) {
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", aiperrors.ErrInvalidVersion, raw, err)
	}
	return v, nil
}

// Compare returns -1, 0 or 1 depending on whether a orders before, equal to
// or after b. Missing trailing segments count as zero, so "1.0" equals "1.0.0".
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsUpgradableTo reports whether candidate is a strictly newer release of the
// same package as current. Packages with different names are never
// upgradable. When either version cannot be parsed the result is false and
// the returned error wraps ErrInvalidVersion; callers treat that as a warning.
func IsUpgradableTo(current, candidate aip.Package) (bool, error) {
	if current.Name != candidate.Name {
		return false, nil
	}
	cmp, err := Compare(current.Version, candidate.Version)
	if err != nil {
		return false, fmt.Errorf("comparing %s to %s: %w", current, candidate.Version, err)
	}
	return cmp < 0, nil
}

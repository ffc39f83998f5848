// Package permissions parses and formats the file modes given to installed
// bundles and application directories
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default permission constants
const (
	DefaultFilePerms       = 0o644 // Manifest and other plain files
	DefaultExecutablePerms = 0o755 // Installed bundles, runnable by everyone
	DefaultDirPerms        = 0o755 // Application directory
)

// ParseOctalString parses an octal permission string.
// Handles formats like "755", "0755", "0o755"; empty means executable default
func ParseOctalString(s string) (os.FileMode, error) {
	if s == "" {
		return DefaultExecutablePerms, nil
	}

	raw := s
	s = strings.TrimPrefix(s, "0o")
	s = strings.TrimPrefix(s, "0O")
	if len(s) > 1 {
		s = strings.TrimPrefix(s, "0")
	}

	val, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return DefaultExecutablePerms, fmt.Errorf("invalid permission string %q: %w", raw, err)
	}
	if val > 0o777 {
		return DefaultExecutablePerms, fmt.Errorf("invalid permission string %q: only permission bits are allowed", raw)
	}

	return os.FileMode(val), nil
}

// FormatOctal formats a permission value as an octal string
func FormatOctal(perm os.FileMode) string {
	return fmt.Sprintf("0%o", perm.Perm())
}

// IsExecutable checks if permissions include execute bit for owner
func IsExecutable(perm os.FileMode) bool {
	return perm&0o100 != 0
}

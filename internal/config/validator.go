package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/provide-io/aipman/pkg/aip/operations"
	"github.com/provide-io/aipman/pkg/utils/permissions"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "artifact.mode")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"trace", "debug", "info", "warn", "error", "off"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.AppDir) == "" {
		errors = append(errors, ValidationError{Field: "app_dir", Value: c.AppDir, Message: "must not be empty"})
	}
	if c.ManifestFile == "" || strings.ContainsAny(c.ManifestFile, `/\`) {
		errors = append(errors, ValidationError{Field: "manifest_file", Value: c.ManifestFile, Message: "must be a plain file name"})
	}
	if c.HTTPTimeout <= 0 {
		errors = append(errors, ValidationError{Field: "http_timeout", Value: c.HTTPTimeout, Message: "must be positive"})
	}
	if c.LogLevel != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.LogLevel)) {
		errors = append(errors, ValidationError{
			Field:   "log_level",
			Value:   c.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	errors = append(errors, c.validateArtifact()...)
	errors = append(errors, c.validateBackup()...)

	return errors
}

func (c *Config) validateArtifact() []ValidationError {
	var errors []ValidationError

	ext := strings.TrimPrefix(c.Artifact.Extension, ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		errors = append(errors, ValidationError{Field: "artifact.extension", Value: c.Artifact.Extension, Message: "must be a non-empty file extension"})
	}

	if _, err := glob.Compile(c.ArtifactPattern()); err != nil {
		errors = append(errors, ValidationError{Field: "artifact.pattern", Value: c.Artifact.Pattern, Message: "invalid glob: " + err.Error()})
	}

	if mode, err := permissions.ParseOctalString(c.Artifact.Mode); err != nil {
		errors = append(errors, ValidationError{Field: "artifact.mode", Value: c.Artifact.Mode, Message: "must be an octal permission string like 0755"})
	} else if !permissions.IsExecutable(mode) {
		errors = append(errors, ValidationError{Field: "artifact.mode", Value: c.Artifact.Mode, Message: "must grant the owner execute permission"})
	}

	return errors
}

func (c *Config) validateBackup() []ValidationError {
	ops, err := operations.ChainForName(c.Backup.Path)
	if err != nil || ops[0] != operations.OP_TAR {
		return []ValidationError{{
			Field:   "backup.path",
			Value:   c.Backup.Path,
			Message: "must end in .tar, .tar.gz, .tgz, .tar.bz2 or .tbz2",
		}}
	}
	return nil
}

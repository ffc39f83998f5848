package errors

import "errors"

var (
	// Catalog errors 📚
	ErrCatalogFetch = errors.New("❌ failed to fetch package catalog")
	ErrCatalogParse = errors.New("❌ failed to parse package catalog")

	// Manifest errors 📋
	ErrManifestCorrupt  = errors.New("❌ installed manifest is corrupt")
	ErrManifestWrite    = errors.New("❌ failed to write installed manifest")
	ErrDuplicatePackage = errors.New("❌ duplicate package in manifest")

	// Version errors 🔢
	ErrInvalidVersion = errors.New("❌ invalid version string")

	// Bundle errors 📦
	ErrDownloadFailed     = errors.New("❌ bundle download failed")
	ErrUnsupportedArchive = errors.New("❌ unsupported archive format")
	ErrExtractionFailed   = errors.New("❌ bundle extraction failed")
	ErrArtifactNotFound   = errors.New("❌ no runnable artifact found in bundle")
	ErrArtifactMissing    = errors.New("❌ installed artifact is missing")
	ErrInsufficientSpace  = errors.New("❌ insufficient disk space")

	// Execution errors 🚀
	ErrExecutionFailed = errors.New("❌ execution failed")

	// Backup errors 💾
	ErrBackupMissing = errors.New("❌ backup archive not found")
)

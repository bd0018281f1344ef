package main

import (
	"errors"
	"os"

	skills "github.com/prettyhe/baoyu-skills"
	"github.com/prettyhe/baoyu-skills/internal/assets"
	"github.com/prettyhe/baoyu-skills/internal/config"
)

// Exit codes for the baoyu CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Operation completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, fetch failure
	ExitAuth    = 4 // Credential or token errors
	ExitPublish = 5 // Platform rejected an upload or a draft
	ExitBrowser = 6 // Browser attach or compose errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 6)
	if errors.Is(err, skills.ErrBrowserConnect) ||
		errors.Is(err, skills.ErrPageCreate) ||
		errors.Is(err, skills.ErrPageLoad) ||
		errors.Is(err, skills.ErrElementFind) ||
		errors.Is(err, skills.ErrNoSession) {
		return ExitBrowser
	}

	// Platform rejections (exit 5)
	var uploadErr *skills.UploadError
	var publishErr *skills.PublishError
	if errors.As(err, &uploadErr) ||
		errors.As(err, &publishErr) ||
		errors.Is(err, skills.ErrCoverRequired) ||
		errors.Is(err, skills.ErrCoverUnavailable) {
		return ExitPublish
	}

	// Credential errors (exit 4)
	if errors.Is(err, skills.ErrAuth) {
		return ExitAuth
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, skills.ErrResourceNotFound) ||
		errors.Is(err, skills.ErrResourceFetch) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, skills.ErrEmptyDocument) ||
		errors.Is(err, skills.ErrEmptyTitle) ||
		errors.Is(err, skills.ErrInvalidArticleType) ||
		errors.Is(err, skills.ErrNoAlbumImages) ||
		errors.Is(err, skills.ErrUnknownPreviewMode) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	return ExitGeneral
}

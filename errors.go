package skills

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrEmptyDocument = errors.New("document body cannot be empty")

	// Image resolution errors.
	ErrResourceNotFound = errors.New("local resource not found")
	ErrResourceFetch    = errors.New("remote resource fetch failed")

	// Browser driver errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("browser page load failed")
	ErrElementFind    = errors.New("compose element not found")
	ErrNoSession      = errors.New("no logged-in platform tab found in browser")

	// Publisher errors.
	ErrAuth = errors.New("access token fetch failed")

	// Cover errors.
	ErrCoverUnavailable = errors.New("cover source unavailable")
	ErrCoverRequired    = errors.New("article requires a cover image")

	// Draft validation errors.
	ErrEmptyTitle         = errors.New("draft title cannot be empty")
	ErrInvalidArticleType = errors.New("invalid article type")
	ErrNoAlbumImages      = errors.New("album draft requires at least one image")

	// Preview errors.
	ErrUnknownPreviewMode = errors.New("unknown preview mode")
)

// CodeUnsupportedFileType is the platform error code for a rejected image
// payload. An upload failing with this code is retried exactly once after
// forced metadata sanitation.
const CodeUnsupportedFileType = 40113

// UploadError reports a rejected image upload with the platform's raw error
// code and message, for user-facing troubleshooting.
type UploadError struct {
	Code int
	Msg  string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload rejected (errcode %d): %s", e.Code, e.Msg)
}

// PublishError reports a rejected draft submission with the platform's raw
// error code and message.
type PublishError struct {
	Code int
	Msg  string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("draft publish rejected (errcode %d): %s", e.Code, e.Msg)
}

// retryableUpload reports whether err is the one upload failure class that
// warrants a single forced-sanitation retry.
func retryableUpload(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue) && ue.Code == CodeUnsupportedFileType
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	skills "github.com/prettyhe/baoyu-skills"
	"github.com/prettyhe/baoyu-skills/internal/assets"
	"github.com/prettyhe/baoyu-skills/internal/config"
	"github.com/prettyhe/baoyu-skills/internal/hints"
)

// errorHint returns an actionable hint for err, or "" when there is nothing
// useful to add. controlURL is the browser address the command targeted, if
// one was resolved before the failure.
func errorHint(err error, controlURL string) string {
	var uploadErr *skills.UploadError
	switch {
	case errors.Is(err, skills.ErrBrowserConnect):
		return hints.ForBrowserConnect(controlURL)
	case errors.Is(err, skills.ErrNoSession):
		return hints.ForNoSession()
	case errors.Is(err, skills.ErrAuth):
		return hints.ForAuth()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths())
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.ListStyles())
	case errors.Is(err, skills.ErrResourceNotFound), errors.Is(err, skills.ErrResourceFetch):
		return hints.ForResource()
	case errors.Is(err, skills.ErrCoverRequired), errors.Is(err, skills.ErrCoverUnavailable):
		return hints.ForCover()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.As(err, &uploadErr):
		return hints.ForUploadRejected()
	default:
		return ""
	}
}

// printError writes err to w with any hint appended on its own line.
func printError(w io.Writer, err error, controlURL string) {
	fmt.Fprintln(w, err.Error()+errorHint(err, controlURL))
}

// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import "strings"

// ForBrowserConnect returns hints for browser attach errors.
func ForBrowserConnect(controlURL string) string {
	hints := []string{"start Chrome with --remote-debugging-port=9222"}
	if controlURL != "" {
		hints = append(hints, "or check that "+controlURL+" is the right address")
	}
	return formatHints(hints)
}

// ForNoSession returns a hint for a browser without a logged-in platform tab.
func ForNoSession() string {
	return format("open the platform and log in, in a tab of the connected browser")
}

// ForAuth returns hints for credential and token errors.
func ForAuth() string {
	return formatHints([]string{
		"check WECHAT_APP_ID and WECHAT_APP_SECRET",
		"the account's IP allowlist must include this machine",
	})
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/baoyu.yaml"

	// Find a user config path to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "baoyu") && strings.Contains(p, "config") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForResource returns a hint for unresolvable images.
func ForResource() string {
	return format("relative image paths resolve against the markdown file's directory")
}

// ForCover returns hints when no usable cover could be produced.
func ForCover() string {
	return formatHints([]string{
		"pass --cover or add cover: to the frontmatter",
		"a reachable browser enables generated covers",
	})
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for documents with many remote images, use --timeout")
}

// ForUploadRejected returns a hint for image uploads the platform refused.
func ForUploadRejected() string {
	return format("the platform accepts JPEG, PNG, and GIF images under 10MB")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

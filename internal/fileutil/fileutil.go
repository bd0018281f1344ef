// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"path"
	"strings"
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "wechat" -> false (name)
//   - "./custom.css" -> true (relative path)
//   - "../shared/style.css" -> true (parent path)
//   - "/absolute/path.css" -> true (absolute)
//   - "C:\windows\path.css" -> true (Windows)
//   - "my-style" -> false (hyphenated name)
//   - "sub/dir" -> true (contains separator)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like a URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsCSS returns true if the string looks like raw CSS content rather than a
// style name or file path. A brace is the discriminator: selectors and
// declarations need one, names and paths never contain one.
func IsCSS(s string) bool {
	return strings.Contains(s, "{")
}

// ImageExt returns the lowercased image extension of a URL or path, with any
// query string or fragment stripped first. Unknown or missing extensions fall
// back to ".png".
func ImageExt(uri string) string {
	s := uri
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	ext := strings.ToLower(path.Ext(s))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return ext
	}
	return ".png"
}


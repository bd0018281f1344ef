// Package assets provides the embedded publication stylesheets and the
// cover page template.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed templates/cover.html
var templates embed.FS

// Sentinel errors for asset operations.
var (
	// ErrStyleNotFound indicates the requested style does not exist.
	ErrStyleNotFound = errors.New("style not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// DefaultStyle is the stylesheet used when none is configured.
const DefaultStyle = "wechat"

var coverTemplate = template.Must(template.ParseFS(templates, "templates/cover.html"))

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path
// separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// LoadStyle returns the embedded stylesheet with the given name.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// ListStyles returns the embedded style names in sorted order.
func ListStyles() []string {
	entries, err := fs.ReadDir(styles, "styles")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

// CoverData fills the cover page template.
type CoverData struct {
	Title  string
	Author string
}

// RenderCover renders the self-contained cover page used for screenshot
// covers. Title and author are HTML-escaped by the template engine.
func RenderCover(data CoverData) (string, error) {
	var sb strings.Builder
	if err := coverTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering cover template: %w", err)
	}
	return sb.String(), nil
}

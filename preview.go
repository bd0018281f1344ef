package skills

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// PreviewMode selects how a document is rendered for local inspection.
type PreviewMode string

// Preview modes.
const (
	// PreviewRich is a full-fidelity GFM render with syntax highlighting,
	// for reading the document as authored.
	PreviewRich PreviewMode = "rich"
	// PreviewPlatform runs the exact publishing pipeline, showing the
	// degraded HTML the platform will receive.
	PreviewPlatform PreviewMode = "platform"
)

// chromaStyle is the highlighting theme used in rich previews.
const chromaStyle = "github"

// previewPage wraps rendered content in a self-contained HTML5 document:
// title, page chrome plus mode-specific CSS, body.
const previewPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
%s
</body>
</html>`

// previewChrome centers the content at a readable width.
const previewChrome = `body { max-width: 780px; margin: 0 auto; padding: 24px 16px; font-family: -apple-system, "PingFang SC", "Microsoft YaHei", sans-serif; }`

// Preview renders doc to a standalone HTML page. An empty mode defaults to
// PreviewRich.
func Preview(ctx context.Context, doc Document, mode PreviewMode, style string) (string, error) {
	switch mode {
	case PreviewRich, "":
		return previewRich(ctx, doc, style)
	case PreviewPlatform:
		return previewPlatform(ctx, doc, style)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPreviewMode, mode)
	}
}

// previewRich renders the body with GFM extensions and class-based syntax
// highlighting; the page carries the highlight CSS and the selected
// stylesheet as a regular style block.
func previewRich(ctx context.Context, doc Document, style string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Body) == "" {
		return "", ErrEmptyDocument
	}

	css, err := resolveStyle(style)
	if err != nil {
		return "", err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes, styled by the emitted stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // ids for in-page anchor links
		),
		goldmark.WithRendererOptions(
			ghtml.WithHardWraps(),
			ghtml.WithXHTML(),
		),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(doc.Body), &body); err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}

	var highlight bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&highlight, styles.Get(chromaStyle)); err != nil {
		return "", fmt.Errorf("writing highlight styles: %w", err)
	}

	title := doc.Title
	if title == "" {
		title = "Preview"
	}
	pageCSS := previewChrome + "\n" + highlight.String() + "\n" + css
	return fmt.Sprintf(previewPage, html.EscapeString(title), pageCSS, body.String()), nil
}

// previewPlatform runs the publishing conversion and inlines the stylesheet
// the way the platform flows do. Placeholder tokens are swapped for the
// authored image sources so the preview still shows images.
func previewPlatform(ctx context.Context, doc Document, style string) (string, error) {
	conv, err := ConvertDocument(ctx, doc)
	if err != nil {
		return "", err
	}

	css, err := resolveStyle(style)
	if err != nil {
		return "", err
	}

	content := conv.HTML
	for _, ref := range conv.Images {
		img := `<img src="` + html.EscapeString(ref.SourceURI) + `"/>`
		content = strings.Replace(content, ref.Placeholder, img, 1)
	}

	title := html.EscapeString(conv.Title)
	content = "<h1>" + title + "</h1>" + InlineStylesheet(content, css)
	return fmt.Sprintf(previewPage, title, previewChrome, content), nil
}

package skills

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder for cover preparation
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/prettyhe/baoyu-skills/internal/assets"
)

// CoverSpec carries the fields a cover source may render.
type CoverSpec struct {
	Title  string
	Author string
}

// CoverSource produces a local cover image for a document that declared
// none. A source that cannot produce one reports ErrCoverUnavailable so the
// next source in the chain gets a try; any other error is final.
type CoverSource interface {
	Cover(ctx context.Context, run *Run, spec CoverSpec) (string, error)
}

// Compile-time interface implementation checks.
var (
	_ CoverSource = (*screenshotCover)(nil)
	_ CoverSource = (*drawnCover)(nil)
)

// Cover card dimensions matching the platform's 2.35:1 cover ratio.
const (
	coverWidth  = 900
	coverHeight = 383
)

// resolveCoverChain walks sources in order. Only ErrCoverUnavailable moves
// on to the next source; a real failure surfaces immediately instead of
// being papered over with a different cover.
func resolveCoverChain(ctx context.Context, run *Run, sources []CoverSource, spec CoverSpec) (string, error) {
	for _, src := range sources {
		path, err := src.Cover(ctx, run, spec)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, ErrCoverUnavailable) {
			return "", err
		}
	}
	return "", ErrCoverUnavailable
}

// screenshotCover renders the embedded cover template in the attached
// browser and screenshots it. Browser layout handles long and CJK titles,
// which the drawn fallback cannot.
type screenshotCover struct {
	driver *rodDriver
	logger *slog.Logger
}

func (s *screenshotCover) Cover(ctx context.Context, run *Run, spec CoverSpec) (string, error) {
	if s.driver == nil {
		return "", ErrCoverUnavailable
	}

	page, err := assets.RenderCover(assets.CoverData{Title: spec.Title, Author: spec.Author})
	if err != nil {
		return "", err
	}

	data, err := s.driver.renderHTMLToPNG(ctx, page, coverWidth, coverHeight)
	if err != nil {
		// No reachable browser is routine for the API flow; hand over to the
		// drawn fallback.
		if errors.Is(err, ErrBrowserConnect) {
			if s.logger != nil {
				s.logger.Debug("browser unreachable for cover render", "err", err)
			}
			return "", ErrCoverUnavailable
		}
		return "", err
	}

	dest := run.ScratchPath("cover_render.png")
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", fmt.Errorf("writing rendered cover: %w", err)
	}
	return dest, nil
}

// drawnCover paints a plain title card with the bundled Go fonts. Pure
// fallback: needs no browser and no network. Glyph coverage is Latin only.
type drawnCover struct{}

func (drawnCover) Cover(ctx context.Context, run *Run, spec CoverSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := drawCoverPNG(spec)
	if err != nil {
		return "", fmt.Errorf("drawing cover: %w", err)
	}

	dest := run.ScratchPath("cover_drawn.png")
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", fmt.Errorf("writing drawn cover: %w", err)
	}
	return dest, nil
}

// Drawn cover palette.
var (
	coverBG     = color.RGBA{0x1F, 0x2A, 0x44, 0xFF}
	coverFG     = color.RGBA{0xF5, 0xF7, 0xFA, 0xFF}
	coverAccent = color.RGBA{0x8A, 0x9B, 0xC4, 0xFF}
)

const (
	coverMargin        = 64
	coverTitleSize     = 44
	coverAuthorSize    = 22
	maxCoverTitleLines = 3
)

func drawCoverPNG(spec CoverSpec) ([]byte, error) {
	titleFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	authorFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(coverBG), image.Point{}, draw.Src)

	dc := freetype.NewContext()
	dc.SetDPI(96)
	dc.SetClip(img.Bounds())
	dc.SetDst(img)

	title := spec.Title
	if title == "" {
		title = defaultTitle
	}

	y := drawWrapped(dc, titleFont, coverTitleSize, coverFG, title, coverMargin, coverHeight/3)
	if spec.Author != "" {
		drawWrapped(dc, authorFont, coverAuthorSize, coverAccent, spec.Author, coverMargin, y+24)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawWrapped word-wraps text into the cover width and draws it starting at
// top, returning the y position below the last line.
func drawWrapped(dc *freetype.Context, fnt *truetype.Font, size float64, col color.Color, text string, left, top int) int {
	dc.SetFont(fnt)
	dc.SetFontSize(size)
	dc.SetSrc(image.NewUniform(col))

	face := truetype.NewFace(fnt, &truetype.Options{Size: size, DPI: 96})
	defer func() { _ = face.Close() }()
	measure := font.Drawer{Face: face}

	maxWidth := coverWidth - 2*left
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := strings.TrimSpace(line + " " + word)
		if line == "" || measure.MeasureString(candidate).Round() <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) > maxCoverTitleLines {
		lines = lines[:maxCoverTitleLines]
	}

	lineHeight := int(size * 1.4)
	y := top
	for _, ln := range lines {
		pt := freetype.Pt(left, y+int(size))
		_, _ = dc.DrawString(ln, pt)
		y += lineHeight
	}
	return y
}

// Upload size limits for covers.
const (
	maxUploadWidth = 1600
	jpegQuality    = 80
)

// PrepareCover downscales an oversized cover and re-encodes it as JPEG for
// upload. Covers at or under the width cap pass through untouched, bytes and
// format intact.
func PrepareCover(run *Run, path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-resolved cover path
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResourceNotFound, path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Unknown format: let the platform judge the original bytes.
		return path, nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxUploadWidth {
		return path, nil
	}

	newH := h * maxUploadWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encoding scaled cover: %w", err)
	}

	dest := run.ScratchPath("cover_scaled.jpg")
	if err := os.WriteFile(dest, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("writing scaled cover: %w", err)
	}
	return dest, nil
}

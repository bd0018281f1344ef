package assets_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prettyhe/baoyu-skills/internal/assets"
)

// ---------------------------------------------------------------------------
// TestLoadStyle - Embedded stylesheet loading
// ---------------------------------------------------------------------------

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		style   string
		wantErr error
	}{
		{
			name:  "default style exists",
			style: assets.DefaultStyle,
		},
		{
			name:  "plain style exists",
			style: "plain",
		},
		{
			name:    "unknown style",
			style:   "nonexistent",
			wantErr: assets.ErrStyleNotFound,
		},
		{
			name:    "empty name rejected",
			style:   "",
			wantErr: assets.ErrInvalidAssetName,
		},
		{
			name:    "path traversal rejected",
			style:   "../secrets",
			wantErr: assets.ErrInvalidAssetName,
		},
		{
			name:    "extension in name rejected",
			style:   "wechat.css",
			wantErr: assets.ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := assets.LoadStyle(tt.style)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadStyle(%q) error = %v, want %v", tt.style, err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.Contains(css, "{") {
				t.Errorf("LoadStyle(%q) returned non-CSS content", tt.style)
			}
		})
	}
}

func TestListStyles(t *testing.T) {
	t.Parallel()

	names := assets.ListStyles()
	if len(names) == 0 {
		t.Fatal("ListStyles() returned no styles")
	}

	found := false
	for _, name := range names {
		if name == assets.DefaultStyle {
			found = true
		}
		if strings.Contains(name, ".") {
			t.Errorf("style name %q still carries an extension", name)
		}
	}
	if !found {
		t.Errorf("ListStyles() = %v, missing default style %q", names, assets.DefaultStyle)
	}
}

// ---------------------------------------------------------------------------
// TestRenderCover - Cover template rendering
// ---------------------------------------------------------------------------

func TestRenderCover(t *testing.T) {
	t.Parallel()

	t.Run("title and author rendered", func(t *testing.T) {
		t.Parallel()

		html, err := assets.RenderCover(assets.CoverData{Title: "My Article", Author: "bao"})
		if err != nil {
			t.Fatalf("RenderCover() error = %v", err)
		}
		for _, want := range []string{"My Article", "bao", "class=\"cover\""} {
			if !strings.Contains(html, want) {
				t.Errorf("rendered cover missing %q", want)
			}
		}
	})

	t.Run("empty author omits the author line", func(t *testing.T) {
		t.Parallel()

		html, err := assets.RenderCover(assets.CoverData{Title: "Solo"})
		if err != nil {
			t.Fatalf("RenderCover() error = %v", err)
		}
		if strings.Contains(html, "class=\"author\"") {
			t.Errorf("author element rendered for empty author")
		}
	})

	t.Run("title is html escaped", func(t *testing.T) {
		t.Parallel()

		html, err := assets.RenderCover(assets.CoverData{Title: `<script>alert("x")</script>`})
		if err != nil {
			t.Fatalf("RenderCover() error = %v", err)
		}
		if strings.Contains(html, "<script>alert") {
			t.Errorf("title was not escaped: %s", html)
		}
	})
}

package skills

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// testRun returns a Run whose scratch directory is cleaned up by the test
// framework.
func testRun(t *testing.T) *Run {
	t.Helper()
	return &Run{ScratchDir: t.TempDir()}
}

// ---------------------------------------------------------------------------
// TestResolveLocalFiles - Local reference verification
// ---------------------------------------------------------------------------

func TestResolveLocalFiles(t *testing.T) {
	t.Parallel()

	docDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(docDir, "a.png"), []byte("local-bytes"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Run("relative path resolves against document directory", func(t *testing.T) {
		t.Parallel()

		r := newHTTPResolver(nil, 2, nil)
		refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: "./a.png"}}

		if err := r.Resolve(context.Background(), testRun(t), docDir, refs); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := filepath.Join(docDir, "a.png")
		if refs[0].LocalPath != want {
			t.Errorf("LocalPath = %q, want %q", refs[0].LocalPath, want)
		}
	})

	t.Run("absolute path kept as is", func(t *testing.T) {
		t.Parallel()

		abs := filepath.Join(docDir, "a.png")
		r := newHTTPResolver(nil, 2, nil)
		refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: abs}}

		if err := r.Resolve(context.Background(), testRun(t), "elsewhere", refs); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if refs[0].LocalPath != abs {
			t.Errorf("LocalPath = %q, want %q", refs[0].LocalPath, abs)
		}
	})

	t.Run("missing file reports resource not found", func(t *testing.T) {
		t.Parallel()

		r := newHTTPResolver(nil, 2, nil)
		refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: "./missing.png"}}

		err := r.Resolve(context.Background(), testRun(t), docDir, refs)
		if !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrResourceNotFound", err)
		}
		if !strings.Contains(err.Error(), "./missing.png") {
			t.Errorf("error %q does not name the failing reference", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveRemoteImages - Remote fetch into scratch
// ---------------------------------------------------------------------------

func TestResolveRemoteImages(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/one.png", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "png-bytes")
	})
	mux.HandleFunc("/two.jpg", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "jpg-bytes")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	run := testRun(t)
	r := newHTTPResolver(srv.Client(), 2, nil)
	refs := []ImageReference{
		{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: srv.URL + "/one.png"},
		{Placeholder: "[[IMAGE_PLACEHOLDER_2]]", SourceURI: srv.URL + "/two.jpg"},
	}

	if err := r.Resolve(context.Background(), run, "", refs); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	wantNames := []string{"image_001.png", "image_002.jpg"}
	wantContent := []string{"png-bytes", "jpg-bytes"}
	for i, ref := range refs {
		if got := filepath.Base(ref.LocalPath); got != wantNames[i] {
			t.Errorf("ref %d scratch name = %q, want %q", i, got, wantNames[i])
		}
		data, err := os.ReadFile(ref.LocalPath)
		if err != nil {
			t.Fatalf("reading fetched file: %v", err)
		}
		if string(data) != wantContent[i] {
			t.Errorf("ref %d content = %q, want %q", i, data, wantContent[i])
		}
	}
}

func TestResolveRemoteFetchFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := newHTTPResolver(srv.Client(), 2, nil)
	refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: srv.URL + "/gone.png"}}

	err := r.Resolve(context.Background(), testRun(t), "", refs)
	if !errors.Is(err, ErrResourceFetch) {
		t.Fatalf("Resolve() error = %v, want ErrResourceFetch", err)
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error %q does not report the HTTP status", err)
	}
	if !strings.Contains(err.Error(), "/gone.png") {
		t.Errorf("error %q does not name the failing URI", err)
	}
}

func TestResolveReusesScratchFile(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "fresh-bytes")
	}))
	defer srv.Close()

	run := testRun(t)
	if err := os.WriteFile(run.ScratchPath("image_001.png"), []byte("cached-bytes"), 0600); err != nil {
		t.Fatalf("seeding scratch file: %v", err)
	}

	r := newHTTPResolver(srv.Client(), 2, nil)
	refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: srv.URL + "/pic.png"}}

	if err := r.Resolve(context.Background(), run, "", refs); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0 (scratch file should be reused)", hits.Load())
	}
	data, err := os.ReadFile(refs[0].LocalPath)
	if err != nil {
		t.Fatalf("reading scratch file: %v", err)
	}
	if string(data) != "cached-bytes" {
		t.Errorf("scratch content = %q, want the pre-existing bytes", data)
	}
}

// ---------------------------------------------------------------------------
// TestResolveManifestOrder - Concurrency keeps positions stable
// ---------------------------------------------------------------------------

func TestResolveManifestOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "payload-%s", strings.TrimPrefix(req.URL.Path, "/img/"))
	}))
	defer srv.Close()

	const n = 8
	refs := make([]ImageReference, n)
	for i := range refs {
		refs[i] = ImageReference{
			Placeholder: fmt.Sprintf("[[IMAGE_PLACEHOLDER_%d]]", i+1),
			SourceURI:   fmt.Sprintf("%s/img/%d", srv.URL, i+1),
		}
	}

	r := newHTTPResolver(srv.Client(), 4, nil)
	if err := r.Resolve(context.Background(), testRun(t), "", refs); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	for i, ref := range refs {
		wantName := fmt.Sprintf("image_%03d.png", i+1)
		if got := filepath.Base(ref.LocalPath); got != wantName {
			t.Errorf("ref %d scratch name = %q, want %q", i, got, wantName)
		}
		data, err := os.ReadFile(ref.LocalPath)
		if err != nil {
			t.Fatalf("reading fetched file: %v", err)
		}
		if want := fmt.Sprintf("payload-%d", i+1); string(data) != want {
			t.Errorf("ref %d content = %q, want %q", i, data, want)
		}
	}
}

func TestResolveEmptyManifest(t *testing.T) {
	t.Parallel()

	r := newHTTPResolver(nil, 4, nil)
	if err := r.Resolve(context.Background(), testRun(t), "", nil); err != nil {
		t.Errorf("Resolve() with empty manifest error = %v", err)
	}
}

func TestResolveContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newHTTPResolver(nil, 2, nil)
	refs := []ImageReference{{Placeholder: "[[IMAGE_PLACEHOLDER_1]]", SourceURI: "http://127.0.0.1:0/never.png"}}

	err := r.Resolve(ctx, testRun(t), "", refs)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveCover - Cover stays out of the manifest
// ---------------------------------------------------------------------------

func TestResolveCover(t *testing.T) {
	t.Parallel()

	t.Run("remote cover lands as scratch cover file", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "cover-bytes")
		}))
		defer srv.Close()

		run := testRun(t)
		r := newHTTPResolver(srv.Client(), 2, nil)

		local, err := r.ResolveCover(context.Background(), run, "", srv.URL+"/cover.jpg")
		if err != nil {
			t.Fatalf("ResolveCover() error = %v", err)
		}
		if got := filepath.Base(local); got != "cover.jpg" {
			t.Errorf("cover scratch name = %q, want %q", got, "cover.jpg")
		}
		data, err := os.ReadFile(local)
		if err != nil {
			t.Fatalf("reading cover: %v", err)
		}
		if string(data) != "cover-bytes" {
			t.Errorf("cover content = %q, want %q", data, "cover-bytes")
		}
	})

	t.Run("local cover verified in place", func(t *testing.T) {
		t.Parallel()

		docDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(docDir, "cover.png"), []byte("x"), 0600); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}

		r := newHTTPResolver(nil, 2, nil)
		local, err := r.ResolveCover(context.Background(), testRun(t), docDir, "cover.png")
		if err != nil {
			t.Fatalf("ResolveCover() error = %v", err)
		}
		if want := filepath.Join(docDir, "cover.png"); local != want {
			t.Errorf("ResolveCover() = %q, want %q", local, want)
		}
	})

	t.Run("missing local cover reports resource not found", func(t *testing.T) {
		t.Parallel()

		r := newHTTPResolver(nil, 2, nil)
		_, err := r.ResolveCover(context.Background(), testRun(t), t.TempDir(), "absent.png")
		if !errors.Is(err, ErrResourceNotFound) {
			t.Errorf("ResolveCover() error = %v, want ErrResourceNotFound", err)
		}
	})
}

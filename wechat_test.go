package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFetchToken - Credential exchange
// ---------------------------------------------------------------------------

func TestFetchToken(t *testing.T) {
	t.Parallel()

	t.Run("success returns the token", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/cgi-bin/token" {
				t.Errorf("path = %q, want /cgi-bin/token", req.URL.Path)
			}
			q := req.URL.Query()
			if q.Get("grant_type") != "client_credential" {
				t.Errorf("grant_type = %q, want client_credential", q.Get("grant_type"))
			}
			if q.Get("appid") != "wx123" || q.Get("secret") != "s3cret" {
				t.Errorf("credentials = %q/%q, want wx123/s3cret", q.Get("appid"), q.Get("secret"))
			}
			fmt.Fprint(w, `{"access_token":"TOKEN_A","expires_in":7200}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		token, err := c.FetchToken(context.Background(), "wx123", "s3cret")
		if err != nil {
			t.Fatalf("FetchToken() error = %v", err)
		}
		if token != "TOKEN_A" {
			t.Errorf("FetchToken() = %q, want %q", token, "TOKEN_A")
		}
	})

	t.Run("platform rejection maps to ErrAuth", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"errcode":40013,"errmsg":"invalid appid"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, err := c.FetchToken(context.Background(), "bad", "bad")
		if !errors.Is(err, ErrAuth) {
			t.Fatalf("FetchToken() error = %v, want ErrAuth", err)
		}
		for _, want := range []string{"40013", "invalid appid"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q missing %q", err, want)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestUploadImage - Permanent material upload
// ---------------------------------------------------------------------------

func TestUploadImage(t *testing.T) {
	t.Parallel()

	t.Run("multipart form carries the image", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/cgi-bin/material/add_material" {
				t.Errorf("path = %q, want /cgi-bin/material/add_material", req.URL.Path)
			}
			if got := req.URL.Query().Get("type"); got != "image" {
				t.Errorf("type = %q, want image", got)
			}
			if got := req.URL.Query().Get("access_token"); got != "TOKEN_A" {
				t.Errorf("access_token = %q, want TOKEN_A", got)
			}

			file, header, err := req.FormFile("media")
			if err != nil {
				t.Fatalf("FormFile(media) error = %v", err)
			}
			defer file.Close()

			if header.Filename != "image_001.jpg" {
				t.Errorf("filename = %q, want image_001.jpg", header.Filename)
			}
			if got := header.Header.Get("Content-Type"); got != "image/jpeg" {
				t.Errorf("part content type = %q, want image/jpeg", got)
			}
			data, err := io.ReadAll(file)
			if err != nil {
				t.Fatalf("reading part: %v", err)
			}
			if string(data) != "jpeg-bytes" {
				t.Errorf("part data = %q, want jpeg-bytes", data)
			}

			fmt.Fprint(w, `{"media_id":"MEDIA_1","url":"https://mmbiz.example/pic"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		mediaID, mediaURL, err := c.UploadImage(context.Background(), "TOKEN_A", []byte("jpeg-bytes"), "image_001.jpg", "image/jpeg")
		if err != nil {
			t.Fatalf("UploadImage() error = %v", err)
		}
		if mediaID != "MEDIA_1" {
			t.Errorf("mediaID = %q, want MEDIA_1", mediaID)
		}
		if mediaURL != "https://mmbiz.example/pic" {
			t.Errorf("mediaURL = %q, want the hosted URL", mediaURL)
		}
	})

	t.Run("unsupported file type is a retryable UploadError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"errcode":40113,"errmsg":"unsupported file type"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, _, err := c.UploadImage(context.Background(), "T", []byte("x"), "a.jpg", "image/jpeg")

		var ue *UploadError
		if !errors.As(err, &ue) {
			t.Fatalf("UploadImage() error = %T, want *UploadError", err)
		}
		if ue.Code != CodeUnsupportedFileType {
			t.Errorf("Code = %d, want %d", ue.Code, CodeUnsupportedFileType)
		}
		if !retryableUpload(err) {
			t.Errorf("retryableUpload() = false, want true for errcode 40113")
		}
	})

	t.Run("other rejection is not retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"errcode":45009,"errmsg":"reach max api daily quota limit"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, _, err := c.UploadImage(context.Background(), "T", []byte("x"), "a.jpg", "image/jpeg")

		var ue *UploadError
		if !errors.As(err, &ue) {
			t.Fatalf("UploadImage() error = %T, want *UploadError", err)
		}
		if retryableUpload(err) {
			t.Errorf("retryableUpload() = true, want false for errcode 45009")
		}
	})
}

// ---------------------------------------------------------------------------
// TestPublishDraft - Draft submission
// ---------------------------------------------------------------------------

func TestPublishDraft(t *testing.T) {
	t.Parallel()

	type wireArticle struct {
		ArticleType  string `json:"article_type"`
		Title        string `json:"title"`
		Author       string `json:"author"`
		Digest       string `json:"digest"`
		Content      string `json:"content"`
		ThumbMediaID string `json:"thumb_media_id"`
		ImageInfo    *struct {
			ImageList []struct {
				ImageMediaID string `json:"image_media_id"`
			} `json:"image_list"`
		} `json:"image_info"`
	}
	type wirePayload struct {
		Articles []wireArticle `json:"articles"`
	}

	t.Run("single cover article", func(t *testing.T) {
		t.Parallel()

		var got wirePayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/cgi-bin/draft/add" {
				t.Errorf("path = %q, want /cgi-bin/draft/add", req.URL.Path)
			}
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Fatalf("decoding request: %v", err)
			}
			fmt.Fprint(w, `{"media_id":"DRAFT_1"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		mediaID, err := c.PublishDraft(context.Background(), "TOKEN_A", &Draft{
			Title:        "Hello",
			Author:       "bao",
			Digest:       "short summary",
			Content:      `<p style="margin: 0">hi</p>`,
			ThumbMediaID: "THUMB_1",
			ArticleType:  ArticleTypeSingle,
		})
		if err != nil {
			t.Fatalf("PublishDraft() error = %v", err)
		}
		if mediaID != "DRAFT_1" {
			t.Errorf("mediaID = %q, want DRAFT_1", mediaID)
		}

		if len(got.Articles) != 1 {
			t.Fatalf("articles = %d, want 1", len(got.Articles))
		}
		a := got.Articles[0]
		if a.ArticleType != "news" {
			t.Errorf("article_type = %q, want news", a.ArticleType)
		}
		if a.Title != "Hello" || a.Author != "bao" || a.Digest != "short summary" {
			t.Errorf("metadata = %q/%q/%q, want Hello/bao/short summary", a.Title, a.Author, a.Digest)
		}
		if a.ThumbMediaID != "THUMB_1" {
			t.Errorf("thumb_media_id = %q, want THUMB_1", a.ThumbMediaID)
		}
		if a.ImageInfo != nil {
			t.Errorf("image_info present on a news article")
		}
	})

	t.Run("multi image album", func(t *testing.T) {
		t.Parallel()

		var got wirePayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Fatalf("decoding request: %v", err)
			}
			fmt.Fprint(w, `{"media_id":"DRAFT_2"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, err := c.PublishDraft(context.Background(), "TOKEN_A", &Draft{
			Title:         "Album",
			Content:       "<p>pics</p>",
			ArticleType:   ArticleTypeAlbum,
			ImageMediaIDs: []string{"M1", "M2", "M3"},
		})
		if err != nil {
			t.Fatalf("PublishDraft() error = %v", err)
		}

		a := got.Articles[0]
		if a.ArticleType != "newspic" {
			t.Errorf("article_type = %q, want newspic", a.ArticleType)
		}
		if a.ImageInfo == nil || len(a.ImageInfo.ImageList) != 3 {
			t.Fatalf("image_info missing or wrong length: %+v", a.ImageInfo)
		}
		if a.ImageInfo.ImageList[0].ImageMediaID != "M1" {
			t.Errorf("first image id = %q, want M1", a.ImageInfo.ImageList[0].ImageMediaID)
		}
	})

	t.Run("platform rejection maps to PublishError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"errcode":45110,"errmsg":"author too long"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, err := c.PublishDraft(context.Background(), "TOKEN_A", &Draft{
			Title:        "Hello",
			Content:      "<p>hi</p>",
			ThumbMediaID: "THUMB_1",
			ArticleType:  ArticleTypeSingle,
		})

		var pe *PublishError
		if !errors.As(err, &pe) {
			t.Fatalf("PublishDraft() error = %T, want *PublishError", err)
		}
		if pe.Code != 45110 {
			t.Errorf("Code = %d, want 45110", pe.Code)
		}
	})

	t.Run("invalid draft never reaches the API", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, `{"media_id":"X"}`)
		}))
		defer srv.Close()

		c := newWeChatClient(srv.URL, srv.Client(), nil)
		_, err := c.PublishDraft(context.Background(), "TOKEN_A", &Draft{
			Title:       "No cover",
			Content:     "<p>hi</p>",
			ArticleType: ArticleTypeSingle,
		})
		if !errors.Is(err, ErrCoverRequired) {
			t.Fatalf("PublishDraft() error = %v, want ErrCoverRequired", err)
		}
		if hits.Load() != 0 {
			t.Errorf("API hit %d times for an invalid draft, want 0", hits.Load())
		}
	})
}

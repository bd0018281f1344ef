package skills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prettyhe/baoyu-skills/internal/assets"
	"github.com/prettyhe/baoyu-skills/internal/fileutil"
)

// Composer orchestrates the browser flow: convert a document, resolve its
// images, and fill the platform's web editor through the user's own
// logged-in browser session.
type Composer struct {
	cfg       config
	converter docConverter
	resolver  imageResolver
	driver    UIDriver
}

// NewComposer creates a Composer with default configuration.
// Use options to customize behavior (e.g., WithBrowserURL).
func NewComposer(opts ...Option) *Composer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}

	// Create the browser driver if not injected (e.g., by tests). The
	// screenshot cover source shares it so generated covers render in the
	// same browser.
	driver := cfg.driver
	var rodd *rodDriver
	if driver == nil {
		rodd = newRodDriver(cfg.browserURL, cfg.timeout, cfg.logger)
		driver = rodd
	}
	if cfg.coverSources == nil {
		cfg.coverSources = defaultCoverSources(rodd, cfg.logger)
	}

	return &Composer{
		cfg:       cfg,
		converter: newGoldmarkConverter(),
		resolver:  newHTTPResolver(cfg.client, cfg.workers, cfg.logger),
		driver:    driver,
	}
}

// Post converts doc into a short-form post and fills the post editor with
// it. When submit is false the tab is left open for the user to review and
// send.
func (c *Composer) Post(ctx context.Context, doc Document, submit bool) error {
	conv, err := c.converter.Convert(ctx, doc)
	if err != nil {
		return err
	}

	run, err := NewRun()
	if err != nil {
		return err
	}
	if err := c.resolver.Resolve(ctx, run, doc.Dir, conv.Images); err != nil {
		return err
	}

	paths := make([]string, 0, len(conv.Images))
	for _, ref := range conv.Images {
		paths = append(paths, ref.LocalPath)
	}
	if len(paths) > maxPostImages {
		c.cfg.logger.Warn("dropping images over the post limit",
			"total", len(paths), "kept", maxPostImages)
		paths = paths[:maxPostImages]
	}

	post := Post{Text: PostText(conv.Blocks), ImagePaths: paths}
	return c.driver.ComposePost(ctx, post, submit)
}

// Article converts doc into a long-form article, resolves its cover, and
// fills the article editor with the styled HTML and content images.
func (c *Composer) Article(ctx context.Context, doc Document, submit bool) error {
	conv, err := c.converter.Convert(ctx, doc)
	if err != nil {
		return err
	}

	run, err := NewRun()
	if err != nil {
		return err
	}
	if err := c.resolver.Resolve(ctx, run, doc.Dir, conv.Images); err != nil {
		return err
	}

	coverPath, err := c.coverFor(ctx, run, doc, conv.Title)
	if err != nil {
		return err
	}

	css, err := resolveStyle(c.cfg.styleCSS)
	if err != nil {
		return err
	}

	article := Article{
		Title:     conv.Title,
		CoverPath: coverPath,
		HTML:      InlineStylesheet(conv.HTML, css),
		Images:    conv.Images,
	}
	return c.driver.ComposeArticle(ctx, article, submit)
}

// coverFor resolves the article cover. A declared cover that fails to
// resolve is an error, never silently replaced. The generated-cover chain
// serves only documents that declare none; exhausting it leaves the cover
// slot empty for the user to fill in the editor.
func (c *Composer) coverFor(ctx context.Context, run *Run, doc Document, title string) (string, error) {
	if doc.Cover != "" {
		return c.resolver.ResolveCover(ctx, run, doc.Dir, doc.Cover)
	}

	spec := CoverSpec{Title: title, Author: doc.Author}
	path, err := resolveCoverChain(ctx, run, c.cfg.coverSources, spec)
	if errors.Is(err, ErrCoverUnavailable) {
		c.cfg.logger.Warn("no cover generated, cover left for the editor")
		return "", nil
	}
	return path, err
}

// Close releases the browser handle. The attached browser itself stays
// running; it belongs to the user.
func (c *Composer) Close() error {
	return c.driver.Close()
}

// DraftService orchestrates the API flow: convert a document, upload its
// images as platform material, and file the result as a draft.
type DraftService struct {
	cfg       config
	converter docConverter
	resolver  imageResolver
	publisher Publisher
}

// NewDraftService creates a DraftService with default configuration.
// Use options to customize behavior (e.g., WithArticleType).
func NewDraftService(opts ...Option) *DraftService {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}

	publisher := cfg.publisher
	if publisher == nil {
		publisher = newWeChatClient(defaultAPIBase, cfg.client, cfg.logger)
	}
	if cfg.coverSources == nil {
		// A reachable browser renders nicer covers; without one the drawn
		// fallback takes over.
		cfg.coverSources = defaultCoverSources(
			newRodDriver(cfg.browserURL, cfg.timeout, cfg.logger), cfg.logger)
	}

	return &DraftService{
		cfg:       cfg,
		converter: newGoldmarkConverter(),
		resolver:  newHTTPResolver(cfg.client, cfg.workers, cfg.logger),
		publisher: publisher,
	}
}

// Publish runs the full draft pipeline and returns the created draft's
// media id. The context is used for cancellation and timeout.
func (s *DraftService) Publish(ctx context.Context, doc Document, appID, appSecret string) (string, error) {
	if appID == "" || appSecret == "" {
		return "", fmt.Errorf("%w: app credentials not set", ErrAuth)
	}

	conv, err := s.converter.Convert(ctx, doc)
	if err != nil {
		return "", err
	}

	run, err := NewRun()
	if err != nil {
		return "", err
	}
	if err := s.resolver.Resolve(ctx, run, doc.Dir, conv.Images); err != nil {
		return "", err
	}

	token, err := run.Token(ctx, func(ctx context.Context) (string, error) {
		return s.publisher.FetchToken(ctx, appID, appSecret)
	})
	if err != nil {
		return "", err
	}

	// Upload content images in document order, swapping each placeholder
	// token for the hosted URL the platform assigns.
	html := conv.HTML
	mediaIDs := make([]string, 0, len(conv.Images))
	for _, ref := range conv.Images {
		mediaID, mediaURL, err := s.uploadImage(ctx, token, ref.LocalPath)
		if err != nil {
			return "", err
		}
		mediaIDs = append(mediaIDs, mediaID)
		html = strings.Replace(html, ref.Placeholder, `<img src="`+mediaURL+`"/>`, 1)
	}

	css, err := resolveStyle(s.cfg.styleCSS)
	if err != nil {
		return "", err
	}
	content := InlineStylesheet(html, css)

	draft := &Draft{
		Title:       conv.Title,
		Author:      doc.Author,
		Digest:      doc.Digest,
		Content:     content,
		ArticleType: s.cfg.articleType,
	}
	if draft.Digest == "" {
		draft.Digest = DigestFromHTML(content)
	}

	switch s.cfg.articleType {
	case ArticleTypeAlbum:
		draft.ImageMediaIDs = mediaIDs
	default:
		thumbID, err := s.uploadCover(ctx, run, token, doc, conv.Title)
		if err != nil {
			return "", err
		}
		draft.ThumbMediaID = thumbID
	}

	mediaID, err := s.publisher.PublishDraft(ctx, token, draft)
	if err != nil {
		return "", err
	}
	s.cfg.logger.Info("draft created", "media_id", mediaID, "title", draft.Title)
	return mediaID, nil
}

// uploadImage reads, sanitizes, and uploads one image. A rejected upload is
// retried exactly once with forced metadata stripping, and only when the
// forced pass actually changes the payload.
func (s *DraftService) uploadImage(ctx context.Context, token, path string) (string, string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- resolver-produced path
	if err != nil {
		return "", "", fmt.Errorf("reading image %s: %w", path, err)
	}

	cleaned, stripped := SanitizeJPEG(data, false)
	if stripped {
		s.cfg.logger.Debug("stripped image metadata before upload", "path", path)
	}

	name := filepath.Base(path)
	ctype := imageContentType(name)
	mediaID, mediaURL, err := s.publisher.UploadImage(ctx, token, cleaned, name, ctype)
	if err == nil || !retryableUpload(err) || stripped {
		return mediaID, mediaURL, err
	}

	forced, changed := SanitizeJPEG(data, true)
	if !changed {
		return "", "", err
	}
	s.cfg.logger.Warn("image upload rejected, retrying with stripped metadata", "path", path)
	return s.publisher.UploadImage(ctx, token, forced, name, ctype)
}

// uploadCover produces the thumb material for a single-cover draft.
// Declared covers must resolve; documents without one fall through the
// generated chain, which must yield something because the draft API rejects
// coverless articles.
func (s *DraftService) uploadCover(ctx context.Context, run *Run, token string, doc Document, title string) (string, error) {
	var path string
	var err error
	if doc.Cover != "" {
		path, err = s.resolver.ResolveCover(ctx, run, doc.Dir, doc.Cover)
	} else {
		path, err = resolveCoverChain(ctx, run, s.cfg.coverSources,
			CoverSpec{Title: title, Author: doc.Author})
	}
	if err != nil {
		return "", err
	}

	path, err = PrepareCover(run, path)
	if err != nil {
		return "", err
	}

	mediaID, _, err := s.uploadImage(ctx, token, path)
	return mediaID, err
}

// defaultCoverSources is the generated-cover chain: browser screenshot of
// the bundled template first, drawn card as the no-browser fallback. A nil
// driver disables the screenshot source.
func defaultCoverSources(d *rodDriver, logger *slog.Logger) []CoverSource {
	return []CoverSource{
		&screenshotCover{driver: d, logger: logger},
		drawnCover{},
	}
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. Empty selects the default bundled style.
func resolveStyle(input string) (string, error) {
	if input == "" {
		return assets.LoadStyle(assets.DefaultStyle)
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		return input, nil
	}

	// Style name -> bundled asset.
	css, err := assets.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// imageContentType maps an image filename to the MIME type sent with its
// upload.
func imageContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

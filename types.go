package skills

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// BlockKind identifies the kind of a converted content block.
type BlockKind string

// Block kinds emitted by the Markdown converter.
const (
	KindParagraph   BlockKind = "paragraph"
	KindHeading     BlockKind = "heading"
	KindList        BlockKind = "list"
	KindBlockquote  BlockKind = "blockquote"
	KindPlaceholder BlockKind = "image-placeholder"
	KindRawHTML     BlockKind = "raw-html"
)

// ContentBlock is one ordered unit of converted output. Blocks are immutable
// once emitted; the image manifest refers to them by Index, never mutates
// them.
type ContentBlock struct {
	Kind    BlockKind
	Level   int    // heading level (2-6)
	Ordered bool   // list blocks only
	HTML    string // rendered fragment, or the bare placeholder token
	Index   int    // dense, zero-based position among all blocks
}

// ImageReference maps a placeholder token to its image source. LocalPath is
// written exactly once during resolution and read-only afterwards.
// BlockIndex points back at the block the placeholder stands in for.
type ImageReference struct {
	Placeholder string
	SourceURI   string
	LocalPath   string
	BlockIndex  int
}

// Document is the parsed source: frontmatter fields plus the Markdown body.
// Title may still be empty here; final title resolution happens at
// conversion time (CLI override > frontmatter > first heading > generated).
type Document struct {
	Title  string
	Author string
	Digest string
	Cover  string            // path or URL, empty when none declared
	Meta   map[string]string // full frontmatter map
	Body   string            // raw Markdown body
	Dir    string            // source directory for relative image paths, "" = cwd
}

// Overrides carries caller-supplied values that take priority over anything
// found in the document itself.
type Overrides struct {
	Title  string
	Author string
	Digest string
	Cover  string
}

// Conversion is the converter's output: the resolved title, ordered blocks,
// the image manifest in document order, and the concatenated body HTML.
type Conversion struct {
	Title  string
	Blocks []ContentBlock
	Images []ImageReference
	HTML   string
}

// Post is short-form content handed to the UI driver.
type Post struct {
	Text       string
	ImagePaths []string // document order, at most maxPostImages entries
}

// Article is long-form content handed to the UI driver. HTML still contains
// placeholder tokens; the driver substitutes Images in reverse index order
// so earlier token positions stay valid while it edits.
type Article struct {
	Title     string
	CoverPath string
	HTML      string
	Images    []ImageReference
}

// Draft article types.
const (
	ArticleTypeSingle = "single-cover-article"
	ArticleTypeAlbum  = "multi-image-album"
)

// Draft is the fully resolved payload for the publisher capability: no
// unresolved placeholders, no remote URIs needing a further fetch.
type Draft struct {
	Title         string
	Author        string
	Digest        string
	Content       string   // final HTML, stylesheet inlined
	ThumbMediaID  string   // uploaded cover media id
	ArticleType   string   // ArticleTypeSingle or ArticleTypeAlbum
	ImageMediaIDs []string // album drafts: uploaded content image ids
}

// Validate checks that required draft fields are present and consistent.
//
// This is a trust boundary for direct library users who build a Draft by
// hand; the orchestrator always produces valid drafts.
func (d *Draft) Validate() error {
	if d.Title == "" {
		return ErrEmptyTitle
	}
	switch d.ArticleType {
	case ArticleTypeSingle:
		if d.ThumbMediaID == "" {
			return ErrCoverRequired
		}
	case ArticleTypeAlbum:
		if len(d.ImageMediaIDs) == 0 {
			return ErrNoAlbumImages
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidArticleType, d.ArticleType)
	}
	return nil
}

// Platform limits.
const (
	maxPostImages  = 4   // images accepted on a single short-form post
	maxDigestRunes = 120 // digest length accepted by the draft API
)

// defaultTimeout bounds each network call when no timeout is specified.
const defaultTimeout = 30 * time.Second

// defaultWorkers bounds concurrent image resolution.
const defaultWorkers = 4

// Option configures a Composer or a DraftService.
type Option func(*config)

// config holds shared service configuration.
type config struct {
	timeout      time.Duration
	workers      int
	styleCSS     string
	browserURL   string
	articleType  string
	logger       *slog.Logger
	client       *http.Client
	driver       UIDriver
	publisher    Publisher
	coverSources []CoverSource
}

func defaultConfig() config {
	return config{
		timeout:     defaultTimeout,
		workers:     defaultWorkers,
		articleType: ArticleTypeSingle,
		logger:      slog.Default(),
	}
}

// WithTimeout sets the per-call network timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("skills: WithTimeout duration must be positive")
	}
	return func(c *config) {
		c.timeout = d
	}
}

// WithWorkers sets the number of concurrent image resolution workers.
// Panics if n <= 0.
func WithWorkers(n int) Option {
	if n <= 0 {
		panic("skills: WithWorkers count must be positive")
	}
	return func(c *config) {
		c.workers = n
	}
}

// WithStylesheet sets the stylesheet inlined into article content: the
// name of a bundled style, a path to a CSS file, or raw CSS text. Empty
// selects the bundled default.
func WithStylesheet(style string) Option {
	return func(c *config) {
		c.styleCSS = style
	}
}

// WithBrowserURL sets the remote-debugging address the UI driver attaches
// to, e.g. "127.0.0.1:9222".
func WithBrowserURL(u string) Option {
	return func(c *config) {
		c.browserURL = u
	}
}

// WithArticleType sets the draft article type.
func WithArticleType(t string) Option {
	return func(c *config) {
		c.articleType = t
	}
}

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithHTTPClient sets the HTTP client used for image fetches and API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithUIDriver injects a UI driver, replacing the default browser driver.
func WithUIDriver(d UIDriver) Option {
	return func(c *config) {
		c.driver = d
	}
}

// WithPublisher injects a publisher, replacing the default API client.
func WithPublisher(p Publisher) Option {
	return func(c *config) {
		c.publisher = p
	}
}

// WithCoverSources sets the ordered cover fallback chain tried when a
// document declares no cover.
func WithCoverSources(sources ...CoverSource) Option {
	return func(c *config) {
		c.coverSources = sources
	}
}

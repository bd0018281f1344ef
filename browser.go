package skills

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// UIDriver automates the platform's web editors inside the user's own
// logged-in browser. When submit is false the compose tab is filled in and
// left open so the user reviews and sends it themselves.
type UIDriver interface {
	ComposePost(ctx context.Context, post Post, submit bool) error
	ComposeArticle(ctx context.Context, article Article, submit bool) error
	Close() error
}

// Compile-time interface implementation check.
var _ UIDriver = (*rodDriver)(nil)

// mpHost is the platform host a logged-in tab must be on.
const mpHost = "mp.weixin.qq.com"

// Editor entry URLs. The session token is harvested from an already open
// platform tab and appended.
const (
	articleEditFormat = "https://mp.weixin.qq.com/cgi-bin/appmsg?t=media/appmsg_edit_v2&action=edit&isNew=1&type=10&createType=0&lang=zh_CN&token=%s"
	postEditFormat    = "https://mp.weixin.qq.com/cgi-bin/appmsg?t=media/appmsg_edit_v2&action=edit&isNew=1&type=77&createType=8&lang=zh_CN&token=%s"
)

// Editor selectors, tracked against the platform's current markup.
const (
	selectorTitle          = `#title`
	selectorEditor         = `.ProseMirror`
	selectorCoverInput     = `.js_cover_area input[type="file"]`
	selectorImageInput     = `#js_editor_insertimg input[type="file"]`
	selectorPostText       = `#js_description`
	selectorPostImageInput = `.js_upload_area input[type="file"]`
	selectorPostThumbs     = `.js_upload_area .img-item`
	selectorSubmit         = `#js_submit`
	selectorConfirm        = `.weui-desktop-dialog .weui-desktop-btn_primary`
)

// setContentJS writes the prepared HTML into the rich-text editor and fires
// an input event so the editor registers the change.
const setContentJS = `(selector, html) => {
	const editor = document.querySelector(selector)
	if (!editor) return false
	editor.innerHTML = html
	editor.dispatchEvent(new Event('input', {bubbles: true}))
	return true
}`

// selectTokenJS selects a placeholder token inside the editor so the next
// image insertion replaces it in place.
const selectTokenJS = `(token) => {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT)
	while (walker.nextNode()) {
		const i = walker.currentNode.data.indexOf(token)
		if (i >= 0) {
			const range = document.createRange()
			range.setStart(walker.currentNode, i)
			range.setEnd(walker.currentNode, i + token.length)
			const sel = window.getSelection()
			sel.removeAllRanges()
			sel.addRange(range)
			return true
		}
	}
	return false
}`

// tokenGoneJS reports whether a placeholder token has been replaced.
const tokenGoneJS = `(token) => !document.body.innerText.includes(token)`

// thumbCountJS reports whether at least n upload thumbnails are present.
const thumbCountJS = `(selector, n) => document.querySelectorAll(selector).length >= n`

// rodDriver drives the platform editors over the Chrome DevTools Protocol.
// It attaches to an existing browser via its remote-debugging address and
// relies on the login session already present there; it never launches or
// terminates a browser of its own.
type rodDriver struct {
	controlURL string
	timeout    time.Duration
	logger     *slog.Logger
	browser    *rod.Browser
}

// newRodDriver creates a driver attaching to controlURL, e.g.
// "127.0.0.1:9222". An empty controlURL uses the default debugging port.
func newRodDriver(controlURL string, timeout time.Duration, logger *slog.Logger) *rodDriver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &rodDriver{controlURL: controlURL, timeout: timeout, logger: logger}
}

// ensureBrowser lazily attaches to the user's browser.
func (d *rodDriver) ensureBrowser() error {
	if d.browser != nil {
		return nil
	}

	u, err := launcher.ResolveURL(d.controlURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	d.browser = browser

	d.logger.Debug("attached to browser", "control_url", u)
	return nil
}

// Close drops the browser handle. The browser is the user's own session, so
// it must never be closed or killed from here.
func (d *rodDriver) Close() error {
	d.browser = nil
	return nil
}

// sessionToken scans open tabs for a logged-in platform page and extracts
// the session token from its URL.
func (d *rodDriver) sessionToken() (string, error) {
	pages, err := d.browser.Pages()
	if err != nil {
		return "", fmt.Errorf("%w: listing pages: %v", ErrBrowserConnect, err)
	}

	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		u, err := url.Parse(info.URL)
		if err != nil || u.Host != mpHost {
			continue
		}
		if token := u.Query().Get("token"); token != "" {
			return token, nil
		}
	}
	return "", ErrNoSession
}

// pageTimeout bounds page operations by the driver timeout or the context
// deadline, whichever is sooner.
func (d *rodDriver) pageTimeout(ctx context.Context) time.Duration {
	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// openEditor opens a fresh editor tab and waits for it to load. The tab is
// intentionally not closed afterwards: it is the user's review surface.
func (d *rodDriver) openEditor(ctx context.Context, format, token string) (*rod.Page, error) {
	page, err := d.browser.Page(proto.TargetCreateTarget{URL: fmt.Sprintf(format, token)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	page = page.Timeout(d.pageTimeout(ctx))
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page, nil
}

// ComposePost fills the short-form post editor with text and image
// attachments.
func (d *rodDriver) ComposePost(ctx context.Context, post Post, submit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.ensureBrowser(); err != nil {
		return err
	}

	token, err := d.sessionToken()
	if err != nil {
		return err
	}
	page, err := d.openEditor(ctx, postEditFormat, token)
	if err != nil {
		return err
	}

	if post.Text != "" {
		if err := d.fillInput(page, selectorPostText, post.Text); err != nil {
			return err
		}
	}

	if len(post.ImagePaths) > 0 {
		input, err := page.Element(selectorPostImageInput)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorPostImageInput, err)
		}
		if err := input.SetFiles(post.ImagePaths); err != nil {
			return fmt.Errorf("attaching post images: %w", err)
		}
		if err := page.Wait(rod.Eval(thumbCountJS, selectorPostThumbs, len(post.ImagePaths))); err != nil {
			return fmt.Errorf("%w: waiting for image uploads: %v", ErrPageLoad, err)
		}
	}

	if submit {
		return d.clickSubmit(page)
	}
	d.logger.Info("post composed, tab left open for review", "images", len(post.ImagePaths))
	return nil
}

// ComposeArticle fills the long-form article editor: title, cover, body
// HTML, then the content images. Images are inserted in reverse manifest
// order so the remaining placeholder positions stay untouched while earlier
// ones are still pending.
func (d *rodDriver) ComposeArticle(ctx context.Context, article Article, submit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.ensureBrowser(); err != nil {
		return err
	}

	token, err := d.sessionToken()
	if err != nil {
		return err
	}
	page, err := d.openEditor(ctx, articleEditFormat, token)
	if err != nil {
		return err
	}

	if err := d.fillInput(page, selectorTitle, article.Title); err != nil {
		return err
	}

	res, err := page.Eval(setContentJS, selectorEditor, article.HTML)
	if err != nil {
		return fmt.Errorf("%w: writing editor content: %v", ErrElementFind, err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: %s", ErrElementFind, selectorEditor)
	}

	if err := d.insertImages(page, article.Images); err != nil {
		return err
	}

	if article.CoverPath != "" {
		input, err := page.Element(selectorCoverInput)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorCoverInput, err)
		}
		if err := input.SetFiles([]string{article.CoverPath}); err != nil {
			return fmt.Errorf("setting cover image: %w", err)
		}
	}

	if submit {
		return d.clickSubmit(page)
	}
	d.logger.Info("article composed, tab left open for review",
		"title", article.Title, "images", len(article.Images))
	return nil
}

// fillInput types value into the element at selector.
func (d *rodDriver) fillInput(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selector, err)
	}
	return nil
}

// insertImages replaces placeholder tokens with uploaded images, last token
// first.
func (d *rodDriver) insertImages(page *rod.Page, images []ImageReference) error {
	for i := len(images) - 1; i >= 0; i-- {
		ref := images[i]

		res, err := page.Eval(selectTokenJS, ref.Placeholder)
		if err != nil {
			return fmt.Errorf("%w: selecting %s: %v", ErrElementFind, ref.Placeholder, err)
		}
		if !res.Value.Bool() {
			return fmt.Errorf("%w: placeholder %s not present in editor", ErrElementFind, ref.Placeholder)
		}

		input, err := page.Element(selectorImageInput)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorImageInput, err)
		}
		if err := input.SetFiles([]string{ref.LocalPath}); err != nil {
			return fmt.Errorf("inserting image %s: %w", ref.Placeholder, err)
		}

		// The editor swaps the selection for the uploaded image; wait until
		// the token is gone before touching the next one.
		if err := page.Wait(rod.Eval(tokenGoneJS, ref.Placeholder)); err != nil {
			return fmt.Errorf("%w: waiting for %s upload: %v", ErrPageLoad, ref.Placeholder, err)
		}
	}
	return nil
}

// clickSubmit presses the publish button and confirms the dialog.
func (d *rodDriver) clickSubmit(page *rod.Page) error {
	btn, err := page.Element(selectorSubmit)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorSubmit, err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorSubmit, err)
	}

	confirm, err := page.Element(selectorConfirm)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorConfirm, err)
	}
	if err := confirm.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementFind, selectorConfirm, err)
	}

	d.logger.Info("submitted via editor")
	return nil
}

// renderHTMLToPNG renders self-contained HTML in a fresh tab at the given
// viewport and screenshots it. Used for generated covers. The scratch tab is
// ours, so closing it is safe.
func (d *rodDriver) renderHTMLToPNG(ctx context.Context, html string, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := d.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	page = page.Timeout(d.pageTimeout(ctx))
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 2,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	bin, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrPageLoad, err)
	}
	return bin, nil
}

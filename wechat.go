package skills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// Publisher is the capability surface of the draft publishing flow: token
// fetch, image upload, draft submission. The default implementation talks to
// the WeChat Official Account HTTP API; tests substitute their own.
type Publisher interface {
	FetchToken(ctx context.Context, appID, appSecret string) (string, error)
	UploadImage(ctx context.Context, token string, data []byte, filename, contentType string) (mediaID, mediaURL string, err error)
	PublishDraft(ctx context.Context, token string, draft *Draft) (mediaID string, err error)
}

// defaultAPIBase is the production API endpoint root.
const defaultAPIBase = "https://api.weixin.qq.com"

// weChatClient implements Publisher against the platform HTTP API. The base
// URL is injectable so tests can point it at a local server.
type weChatClient struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

// Compile-time interface implementation check.
var _ Publisher = (*weChatClient)(nil)

func newWeChatClient(base string, client *http.Client, logger *slog.Logger) *weChatClient {
	if base == "" {
		base = defaultAPIBase
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &weChatClient{base: base, client: client, logger: logger}
}

// FetchToken exchanges the app credentials for an access token. The token is
// never logged.
func (c *weChatClient) FetchToken(ctx context.Context, appID, appSecret string) (string, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", appID)
	q.Set("secret", appSecret)
	endpoint := c.base + "/cgi-bin/token?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAuth, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: errcode %d: %s", ErrAuth, payload.ErrCode, payload.ErrMsg)
	}

	c.logger.Debug("access token fetched", "expires_in", payload.ExpiresIn)
	return payload.AccessToken, nil
}

// UploadImage sends image bytes as permanent material and returns the media
// id and the platform-hosted URL. Platform rejections come back as an
// *UploadError carrying the raw errcode.
func (c *weChatClient) UploadImage(ctx context.Context, token string, data []byte, filename, contentType string) (string, string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", "", fmt.Errorf("building upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", "", fmt.Errorf("building upload form: %w", err)
	}

	endpoint := c.base + "/cgi-bin/material/add_material?access_token=" + url.QueryEscape(token) + "&type=image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", "", fmt.Errorf("uploading image: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("uploading image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("uploading image: decoding response: %w", err)
	}
	if payload.MediaID == "" {
		return "", "", &UploadError{Code: payload.ErrCode, Msg: payload.ErrMsg}
	}

	c.logger.Debug("image uploaded", "filename", filename, "media_id", payload.MediaID)
	return payload.MediaID, payload.URL, nil
}

// Wire-format article types accepted by the draft API.
const (
	wireTypeNews    = "news"
	wireTypeNewsPic = "newspic"
)

type draftArticle struct {
	ArticleType     string     `json:"article_type"`
	Title           string     `json:"title"`
	Author          string     `json:"author,omitempty"`
	Digest          string     `json:"digest,omitempty"`
	Content         string     `json:"content"`
	ThumbMediaID    string     `json:"thumb_media_id,omitempty"`
	NeedOpenComment int        `json:"need_open_comment"`
	ImageInfo       *imageInfo `json:"image_info,omitempty"`
}

type imageInfo struct {
	ImageList []imageItem `json:"image_list"`
}

type imageItem struct {
	ImageMediaID string `json:"image_media_id"`
}

// PublishDraft validates the draft and submits it, returning the draft media
// id. Platform rejections come back as a *PublishError.
func (c *weChatClient) PublishDraft(ctx context.Context, token string, draft *Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	article := draftArticle{
		Title:   draft.Title,
		Author:  draft.Author,
		Digest:  draft.Digest,
		Content: draft.Content,
	}
	switch draft.ArticleType {
	case ArticleTypeAlbum:
		article.ArticleType = wireTypeNewsPic
		items := make([]imageItem, len(draft.ImageMediaIDs))
		for i, id := range draft.ImageMediaIDs {
			items[i] = imageItem{ImageMediaID: id}
		}
		article.ImageInfo = &imageInfo{ImageList: items}
	default:
		article.ArticleType = wireTypeNews
		article.ThumbMediaID = draft.ThumbMediaID
	}

	body, err := json.Marshal(struct {
		Articles []draftArticle `json:"articles"`
	}{Articles: []draftArticle{article}})
	if err != nil {
		return "", fmt.Errorf("encoding draft: %w", err)
	}

	endpoint := c.base + "/cgi-bin/draft/add?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("publishing draft: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("publishing draft: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		MediaID string `json:"media_id"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("publishing draft: decoding response: %w", err)
	}
	if payload.MediaID == "" {
		return "", &PublishError{Code: payload.ErrCode, Msg: payload.ErrMsg}
	}

	c.logger.Debug("draft published", "media_id", payload.MediaID, "article_type", article.ArticleType)
	return payload.MediaID, nil
}

// Package skills publishes Markdown documents to the WeChat Official
// Account platform, either by driving the platform's web editors inside the
// user's own logged-in browser or by filing drafts through the platform
// API.
//
// # Quick Start
//
// Parse a document, then hand it to the flow you want. The browser flow
// fills an editor tab and leaves it open for review:
//
//	doc := skills.ParseDocument(markdown, skills.Overrides{})
//	doc.Dir = filepath.Dir(sourcePath) // resolve relative image paths
//
//	composer := skills.NewComposer(skills.WithBrowserURL("127.0.0.1:9222"))
//	defer composer.Close()
//	if err := composer.Article(ctx, doc, false); err != nil {
//	    log.Fatal(err)
//	}
//
// The API flow needs platform credentials and returns the draft media id:
//
//	svc := skills.NewDraftService(skills.WithArticleType(skills.ArticleTypeSingle))
//	mediaID, err := svc.Publish(ctx, doc, appID, appSecret)
//
// # Publishing Pipeline
//
// Both flows share the same front half:
//
//  1. Frontmatter parsing (title, author, digest, cover declarations)
//  2. Markdown conversion to ordered blocks with image placeholder tokens
//  3. Image resolution (local paths verified, remote URLs fetched concurrently)
//  4. Stylesheet inlining, because the platform strips style blocks
//
// They diverge at delivery: the Composer types content into the editor and
// swaps placeholder tokens for uploaded images in place, while the
// DraftService uploads images as material, substitutes the hosted URLs, and
// files the draft.
//
// # Configuration
//
// Use functional options to customize either flow:
//
//	svc := skills.NewDraftService(
//	    skills.WithTimeout(time.Minute),
//	    skills.WithStylesheet("wechat"),
//	    skills.WithWorkers(8),
//	)
//
// WithStylesheet accepts a bundled style name, a path to a CSS file, or raw
// CSS text.
//
// # Covers
//
// A cover declared in frontmatter (cover, image) or by override must
// resolve, or the run fails. Documents without one fall back to a generated
// cover: a browser-rendered title card when a browser is reachable, a drawn
// card otherwise. Inject your own chain with WithCoverSources.
//
// # Browser Requirements
//
// The browser flows attach to an already running Chrome with remote
// debugging enabled (start it with --remote-debugging-port=9222) and reuse
// the login session found there. No browser is ever launched or closed by
// this package.
package skills

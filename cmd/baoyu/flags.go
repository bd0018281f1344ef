package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	style   string
	timeout string
	quiet   bool
	verbose bool
}

// contentFlags holds document metadata overrides. Non-empty values win over
// frontmatter fields of the same name.
type contentFlags struct {
	title  string
	author string
	digest string
	cover  string
}

// composeFlags holds flags for the browser compose commands.
type composeFlags struct {
	submit     bool
	workers    int
	browserURL string
}

// wechatFlags holds WeChat credential and draft flags.
type wechatFlags struct {
	appID       string
	appSecret   string
	articleType string
}

// previewFlags holds preview output flags.
type previewFlags struct {
	output   string
	platform bool
}

// postCmdFlags holds all flags for the post command.
type postCmdFlags struct {
	common  commonFlags
	content contentFlags
	compose composeFlags
}

// articleCmdFlags holds all flags for the article command.
type articleCmdFlags struct {
	common  commonFlags
	content contentFlags
	compose composeFlags
}

// wechatCmdFlags holds all flags for the wechat command. The draft API
// creates the draft unconditionally, so there is no submit flag here.
type wechatCmdFlags struct {
	common     commonFlags
	content    contentFlags
	wechat     wechatFlags
	workers    int
	browserURL string
}

// previewCmdFlags holds all flags for the preview command.
type previewCmdFlags struct {
	common  commonFlags
	content contentFlags
	preview previewFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.style, "style", "s", "", "stylesheet name, CSS file path, or raw CSS")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "network timeout (e.g., 30s, 2m)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addContentFlags adds document override flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringVar(&f.title, "title", "", "title override (\"\" = frontmatter or first heading)")
	fs.StringVar(&f.author, "author", "", "author byline override")
	fs.StringVar(&f.digest, "digest", "", "summary override (\"\" = frontmatter or auto)")
	fs.StringVar(&f.cover, "cover", "", "cover image path or URL")
}

// addComposeFlags adds browser compose flags to a FlagSet.
func addComposeFlags(fs *flag.FlagSet, f *composeFlags) {
	fs.BoolVar(&f.submit, "submit", false, "submit instead of leaving the compose window open")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel image fetches (0 = auto)")
	fs.StringVar(&f.browserURL, "browser-url", "", "browser remote debugging address")
}

// addWeChatFlags adds WeChat credential flags to a FlagSet.
func addWeChatFlags(fs *flag.FlagSet, f *wechatFlags) {
	fs.StringVar(&f.appID, "app-id", "", "official account app id")
	fs.StringVar(&f.appSecret, "app-secret", "", "official account app secret")
	fs.StringVar(&f.articleType, "type", "", "draft type: article, album")
}

// addPreviewFlags adds preview flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (\"\" = stdout)")
	fs.BoolVar(&f.platform, "platform", false, "emit pipeline-exact HTML instead of the proofing render")
}

// parsePostFlags parses post command flags and returns positional args.
func parsePostFlags(args []string) (*postCmdFlags, []string, error) {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	f := &postCmdFlags{}

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addComposeFlags(fs, &f.compose)

	fs.Usage = func() { printPostUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseArticleFlags parses article command flags and returns positional args.
func parseArticleFlags(args []string) (*articleCmdFlags, []string, error) {
	fs := flag.NewFlagSet("article", flag.ContinueOnError)
	f := &articleCmdFlags{}

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addComposeFlags(fs, &f.compose)

	fs.Usage = func() { printArticleUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseWeChatFlags parses wechat command flags and returns positional args.
func parseWeChatFlags(args []string) (*wechatCmdFlags, []string, error) {
	fs := flag.NewFlagSet("wechat", flag.ContinueOnError)
	f := &wechatCmdFlags{}

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addWeChatFlags(fs, &f.wechat)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel image fetches (0 = auto)")
	fs.StringVar(&f.browserURL, "browser-url", "", "browser address for screenshot covers")

	fs.Usage = func() { printWeChatUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string) (*previewCmdFlags, []string, error) {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	f := &previewCmdFlags{}

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addPreviewFlags(fs, &f.preview)

	fs.Usage = func() { printPreviewUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

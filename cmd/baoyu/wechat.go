package main

import (
	"context"
	"fmt"
	"time"

	skills "github.com/prettyhe/baoyu-skills"
)

// runWeChat creates a draft on the official account through the HTTP API.
func runWeChat(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseWeChatFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := resolveConfig(&flags.common, env)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	if flags.wechat.appID != "" {
		cfg.WeChat.AppID = flags.wechat.appID
	}
	if flags.wechat.appSecret != "" {
		cfg.WeChat.AppSecret = flags.wechat.appSecret
	}

	articleType, err := draftArticleType(flags.wechat.articleType, cfg.WeChat.ArticleType)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	doc, err := readDocument(positional, &flags.content, cfg)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	logger := newLogger(&flags.common, env.Stderr)
	controlURL := effectiveBrowserURL(cfg, flags.browserURL)
	opts := serviceOptions(cfg, flags.workers, controlURL, logger)
	opts = append(opts, skills.WithArticleType(articleType))
	svc := skills.NewDraftService(opts...)

	start := env.Now()
	mediaID, err := svc.Publish(ctx, doc, cfg.WeChat.AppID, cfg.WeChat.AppSecret)
	if err != nil {
		printError(env.Stderr, err, controlURL)
		return exitCodeFor(err)
	}

	fmt.Fprintf(env.Stdout, "Draft created: %s\n", mediaID)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Completed in %s\n", env.Now().Sub(start).Round(time.Millisecond))
	}
	return ExitSuccess
}

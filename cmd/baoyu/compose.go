package main

import (
	"context"
	"fmt"
	"time"

	skills "github.com/prettyhe/baoyu-skills"
)

// runPost composes a short post in the user's browser from a markdown file.
func runPost(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parsePostFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := resolveConfig(&flags.common, env)
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
	controlURL := effectiveBrowserURL(cfg, flags.compose.browserURL)
	composer := skills.NewComposer(serviceOptions(cfg, flags.compose.workers, controlURL, logger)...)
	defer func() { _ = composer.Close() }()

	start := env.Now()
	if err := composer.Post(ctx, doc, flags.compose.submit); err != nil {
		printError(env.Stderr, err, controlURL)
		return exitCodeFor(err)
	}

	if flags.compose.submit {
		fmt.Fprintln(env.Stdout, "Post submitted.")
	} else {
		fmt.Fprintln(env.Stdout, "Post composed; review and send it in the browser window.")
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Completed in %s\n", env.Now().Sub(start).Round(time.Millisecond))
	}
	return ExitSuccess
}

// runArticle composes a long-form article in the user's browser.
func runArticle(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseArticleFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := resolveConfig(&flags.common, env)
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
	controlURL := effectiveBrowserURL(cfg, flags.compose.browserURL)
	composer := skills.NewComposer(serviceOptions(cfg, flags.compose.workers, controlURL, logger)...)
	defer func() { _ = composer.Close() }()

	start := env.Now()
	if err := composer.Article(ctx, doc, flags.compose.submit); err != nil {
		printError(env.Stderr, err, controlURL)
		return exitCodeFor(err)
	}

	if flags.compose.submit {
		fmt.Fprintln(env.Stdout, "Article submitted.")
	} else {
		fmt.Fprintln(env.Stdout, "Article composed; review and publish it in the browser window.")
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Completed in %s\n", env.Now().Sub(start).Round(time.Millisecond))
	}
	return ExitSuccess
}

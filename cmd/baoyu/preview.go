package main

import (
	"context"
	"fmt"
	"os"

	skills "github.com/prettyhe/baoyu-skills"
)

// runPreview renders a local HTML proof of the markdown file without
// touching any platform.
func runPreview(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parsePreviewFlags(args)
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

	mode := skills.PreviewRich
	if flags.preview.platform {
		mode = skills.PreviewPlatform
	}
	page, err := skills.Preview(ctx, doc, mode, cfg.Style)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	if flags.preview.output == "" {
		fmt.Fprintln(env.Stdout, page)
		return ExitSuccess
	}
	if err := os.WriteFile(flags.preview.output, []byte(page), 0600); err != nil {
		err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	fmt.Fprintf(env.Stdout, "Preview written to %s\n", flags.preview.output)
	return ExitSuccess
}

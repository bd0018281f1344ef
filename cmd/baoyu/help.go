package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu <command> [flags] <file.md>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  post       Compose a short post from markdown in the browser")
	fmt.Fprintln(w, "  article    Compose a long-form article from markdown in the browser")
	fmt.Fprintln(w, "  wechat     Create an Official Account draft via the WeChat API")
	fmt.Fprintln(w, "  preview    Render a local HTML preview")
	fmt.Fprintln(w, "  doctor     Check browser, credentials, and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'baoyu help <command>' for details on a specific command.")
}

// printCommonUsage prints the flag block shared by every content command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file name or path")
	fmt.Fprintln(w, "  -s, --style <name>        Stylesheet name, CSS file path, or raw CSS")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Network timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content overrides:")
	fmt.Fprintln(w, "      --title <s>           Title (\"\" = frontmatter or first heading)")
	fmt.Fprintln(w, "      --author <s>          Author byline")
	fmt.Fprintln(w, "      --digest <s>          Summary (\"\" = frontmatter or auto)")
	fmt.Fprintln(w, "      --cover <path>        Cover image path or URL")
}

// printPostUsage prints usage for the post command.
func printPostUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu post <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose a short post in a logged-in browser tab. Without --submit")
	fmt.Fprintln(w, "the filled compose window is left open for review.")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose:")
	fmt.Fprintln(w, "      --submit              Send instead of leaving the window open")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel image fetches (0 = auto)")
	fmt.Fprintln(w, "      --browser-url <addr>  Remote debugging address (host:port or ws URL)")
}

// printArticleUsage prints usage for the article command.
func printArticleUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu article <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose a long-form article in a logged-in browser tab, with styled")
	fmt.Fprintln(w, "HTML pasted into the editor and images uploaded in place.")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose:")
	fmt.Fprintln(w, "      --submit              Publish instead of leaving the draft open")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel image fetches (0 = auto)")
	fmt.Fprintln(w, "      --browser-url <addr>  Remote debugging address (host:port or ws URL)")
}

// printWeChatUsage prints usage for the wechat command.
func printWeChatUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu wechat <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Create an Official Account draft through the WeChat draft API.")
	fmt.Fprintln(w, "Credentials come from flags, WECHAT_APP_ID/WECHAT_APP_SECRET, or config.")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "WeChat:")
	fmt.Fprintln(w, "      --app-id <s>          Official account app id")
	fmt.Fprintln(w, "      --app-secret <s>      Official account app secret")
	fmt.Fprintln(w, "      --type <s>            Draft type: article (default), album")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel image fetches (0 = auto)")
	fmt.Fprintln(w, "      --browser-url <addr>  Browser address for screenshot covers")
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu preview <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the document to standalone HTML for local proofing.")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (\"\" = stdout)")
	fmt.Fprintln(w, "      --platform            Emit pipeline-exact HTML instead of the proofing render")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: baoyu doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check browser reachability, credential presence, and environment.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "post":
		printPostUsage(env.Stdout)
	case "article":
		printArticleUsage(env.Stdout)
	case "wechat":
		printWeChatUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: baoyu version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: baoyu help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

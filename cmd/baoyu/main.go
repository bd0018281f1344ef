package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Credentials may live in a .env next to the invocation; absence is fine.
	_ = godotenv.Load()

	// Respect container CPU quotas when sizing worker pools.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	os.Exit(run(ctx, os.Args[1:], DefaultEnv()))
}

// run dispatches the subcommand and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "post":
		return runPost(ctx, rest, env)
	case "article":
		return runArticle(ctx, rest, env)
	case "wechat":
		return runWeChat(ctx, rest, env)
	case "preview":
		return runPreview(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "version":
		printVersion(env.Stdout)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// printVersion prints build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "baoyu %s (commit %s, built %s)\n", version, commit, date)
}

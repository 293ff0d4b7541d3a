package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrazmi/routegen/app/generators/commands"
	"github.com/jrazmi/routegen/app/generators/config"
	"github.com/jrazmi/routegen/app/generators/orchestrator"
	"github.com/jrazmi/routegen/sdk/logger"
)

const (
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	command := args[0]

	switch command {
	case "generate":
		return runGenerate(args[1:], stdout, stderr, false)
	case "watch":
		return runGenerate(args[1:], stdout, stderr, true)
	case "migrate":
		return runMigrate(args[1:], stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return exitUsage
	}
}

func runGenerate(args []string, stdout, stderr io.Writer, watch bool) int {
	name := "generate"
	if watch {
		name = "watch"
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %v\n", fs.Args())
		fs.PrintDefaults()
		return exitUsage
	}

	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	log, err := logger.NewFromEnv(config.EnvPrefix)
	if err != nil {
		fmt.Fprintf(stderr, "Error: configure logger: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := orchestrator.New(cfg, log)

	if watch {
		fmt.Fprintln(stdout, "👀 Watching schema and templates (Ctrl+C to stop)...")
		if err := o.Watch(ctx); err != nil {
			fmt.Fprintf(stderr, "\n❌ Watch failed: %v\n", err)
			return orchestrator.ExitCode(err)
		}
		return 0
	}

	fmt.Fprintln(stdout, "🚀 Starting route generation...")
	result, err := o.Run(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "\n❌ Generation failed: %v\n", err)
		return orchestrator.ExitCode(err)
	}

	orchestrator.PrintSummary(stdout, result)
	return 0
}

func runMigrate(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}

	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if cfg.ManifestDSN == "" {
		fmt.Fprintf(stderr, "Error: %v\n", commands.ErrNoDatabase)
		return exitUsage
	}

	log, err := logger.NewFromEnv(config.EnvPrefix)
	if err != nil {
		fmt.Fprintf(stderr, "Error: configure logger: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.MigrateDSN(ctx, orchestrator.DBEnvPrefix, cfg.ManifestDSN, log.Logger); err != nil {
		fmt.Fprintf(stderr, "\n❌ Migration failed: %v\n", err)
		return orchestrator.ExitCode(err)
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "routegen - Generate list/create/update/delete/search views from a schema")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  routegen <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available Commands:")
	fmt.Fprintln(w, "  generate       🚀 Render every view of every model, writing only what changed")
	fmt.Fprintln(w, "  watch          👀 Generate, then regenerate whenever the schema or a template changes")
	fmt.Fprintln(w, "  migrate        🗄️  Create or upgrade the manifest tables of -manifest-db")
	fmt.Fprintln(w, "  help           Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from routegen.yaml, then ROUTEGEN_* environment variables")
	fmt.Fprintln(w, "(and .env), then flags. The schema file and app root are auto-discovered when omitted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  # Discover prisma/schema.prisma and the app's src/ directory")
	fmt.Fprintln(w, "  routegen generate")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Explicit paths")
	fmt.Fprintln(w, "  routegen generate -schema=prisma/schema.prisma -output=web/src -templates=templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # See what would change without touching any file")
	fmt.Fprintln(w, "  routegen generate -dry-run")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Keep the manifest in Postgres, shared by every checkout")
	fmt.Fprintln(w, "  routegen generate -manifest-db=postgres://localhost:5432/routegen")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "For command-specific help:")
	fmt.Fprintln(w, "  routegen <command> -h")
}

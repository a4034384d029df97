// Package main is the entry point for the wordcount editor plugin.
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

	"golang.org/x/term"

	"github.com/dshills/wordcount/internal/app"
	"github.com/dshills/wordcount/internal/tokenize"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type cliOptions struct {
	app.Options
	stat        bool
	showVersion bool
	showHelp    bool
	files       []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	opts, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.showHelp {
		fs.Usage()
		return exitOK
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "wordcount %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}
	if !opts.stat && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(stderr, "Error: %v\n\n", app.ErrInteractive)
		fs.Usage()
		return exitUsage
	}

	opts.Stderr = stderr
	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitError
	}
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.stat {
		return runStat(ctx, application, opts.files, stdout, stderr)
	}

	if err := application.RunStdio(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func runStat(ctx context.Context, application *app.Application, files []string, stdout, stderr io.Writer) int {
	results, err := application.Stat(ctx, files)
	if werr := app.WriteCounts(stdout, results); werr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", werr)
		return exitError
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, app.ErrNoFiles) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func newFlagSet(stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("wordcount", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "wordcount - live word, line and character counts for editors\n\n")
		fmt.Fprintf(stderr, "Usage: wordcount [options]\n")
		fmt.Fprintf(stderr, "       wordcount -stat [options] files...\n\n")
		fmt.Fprintf(stderr, "Without -stat, wordcount speaks JSON-RPC on stdin and stdout and is\n")
		fmt.Fprintf(stderr, "meant to be spawned by an editor.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  wordcount -stat README.md          Count one file\n")
		fmt.Fprintf(stderr, "  wordcount -stat -tokenizer segment *.txt\n")
		fmt.Fprintf(stderr, "  wordcount -c ~/.config/wordcount.toml\n")
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) (cliOptions, error) {
	var opts cliOptions

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.Tokenizer, "tokenizer", "", "Word tokenizer (word, segment, lua)")
	fs.BoolVar(&opts.stat, "stat", false, "Print counts for the given files and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help message")
	fs.BoolVar(&opts.showHelp, "h", false, "Show help message (shorthand)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}
	if opts.Tokenizer != "" && !validTokenizer(opts.Tokenizer) {
		return opts, fmt.Errorf("invalid tokenizer %q (must be one of %v)", opts.Tokenizer, tokenize.Names())
	}

	opts.files = fs.Args()
	if !opts.stat && len(opts.files) > 0 {
		return opts, fmt.Errorf("unexpected arguments %v (use -stat to count files)", opts.files)
	}
	return opts, nil
}

func validTokenizer(name string) bool {
	for _, n := range tokenize.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Package main provides the habrscan command: fetch the article listing,
// extract its snippets and print the ones matching the search words.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"habrscan/internal/config"
	"habrscan/internal/crawler"
	"habrscan/internal/extractor"
	"habrscan/internal/formatter"
	"habrscan/internal/logger"
	"habrscan/internal/matcher"
	"habrscan/pkg/headers"

	"github.com/google/uuid"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitTransport  = 1
	ExitExtraction = 2
	ExitConfig     = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

type options struct {
	configFile string
	words      string
	browser    string
	os         string
	file       string
	format     string
	logLevel   string
	timeoutSec int
	strict     bool
	help       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	opts := &options{}

	fs := flag.NewFlagSet("habrscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "Path to YAML configuration file")
	fs.StringVar(&opts.words, "words", "", "Comma separated search words (used as given, lower-case them for case-insensitive matching)")
	fs.StringVar(&opts.browser, "browser", "", "Browser to impersonate: "+strings.Join(headers.Browsers(), ", "))
	fs.StringVar(&opts.os, "os", "", "Operating system to impersonate: "+strings.Join(headers.OperatingSystems(), ", "))
	fs.StringVar(&opts.file, "file", "", "Read a saved listing page instead of fetching it")
	fs.StringVar(&opts.format, "format", "", "Output format: text, table, json")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.IntVar(&opts.timeoutSec, "timeout", 0, "Request timeout in seconds")
	fs.BoolVar(&opts.strict, "strict", false, "Fail the run when a snippet lacks a field")
	fs.BoolVar(&opts.help, "help", false, "Show usage information")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if opts.help {
		fs.Usage()

		return nil, nil, flag.ErrHelp
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	return opts, set, nil
}

// loadConfig layers defaults, the YAML file, .env/environment and flags.
func loadConfig(opts *options, set map[string]bool) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()

	if opts.configFile != "" {
		loaded, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	sc := &cfg.Scanner
	if set["words"] {
		sc.Search.Words = config.SplitWords(opts.words)
	}

	if set["browser"] {
		sc.Request.Browser = opts.browser
	}

	if set["os"] {
		sc.Request.OS = opts.os
	}

	if set["format"] {
		sc.Output.Format = opts.format
	}

	if set["log-level"] {
		sc.Logging.Level = strings.ToLower(opts.logLevel)
	}

	if set["timeout"] {
		sc.Request.TimeoutSec = opts.timeoutSec
	}

	if opts.strict {
		sc.Extraction.OnMissingField = config.PolicyFail
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}

		return ExitConfig
	}

	cfg, err := loadConfig(opts, set)
	if err != nil {
		fmt.Fprintf(stderr, "❌ Failed to load config: %v\n", err)

		return ExitConfig
	}

	sc := cfg.Scanner
	log := logger.NewLoggerTo(stderr, sc.Logging.Level).With("run_id", uuid.NewString())
	log.Debug("configuration loaded", "config", cfg.String())

	policy, err := extractor.ParsePolicy(sc.Extraction.OnMissingField)
	if err != nil {
		log.Error("invalid extraction policy", "error", err)

		return ExitConfig
	}

	schema := extractor.DefaultSchema().WithOrigin(sc.Source.Origin)
	client := crawler.NewClientWithDeps(
		crawler.NewScraperWithConfig(&sc.Request),
		extractor.New(schema, policy, log),
		log,
	)

	startTime := time.Now()

	var report *extractor.Report

	if opts.file != "" {
		log.Info("reading saved listing", "file", opts.file)
		report, err = client.CrawlListingFromFile(opts.file)
	} else {
		h, hdrErr := headers.NewGenerator().Generate(sc.Request.Browser, sc.Request.OS)
		if hdrErr != nil {
			log.Error("cannot build request headers", "error", hdrErr)

			return ExitConfig
		}

		log.Info("fetching listing", "url", sc.Source.URL, "browser", sc.Request.Browser, "os", sc.Request.OS)
		report, err = client.CrawlListing(ctx, sc.Source.URL, h)
	}

	if err != nil {
		return exitCodeFor(log, err)
	}

	m := matcher.New(matcher.Options{CaseSensitiveAuthor: sc.Search.CaseSensitiveAuthor})
	results := m.Match(sc.Search.Words, report.Records)

	if err := formatter.Write(stdout, sc.Output.Format, results); err != nil {
		log.Error("failed to print results", "error", err)

		return ExitTransport
	}

	log.Info("scan complete",
		"snippets", report.Snippets,
		"articles", len(report.Records),
		"skipped", len(report.Skipped),
		"words", len(sc.Search.Words),
		"matches", len(results),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)

	return ExitOK
}

// exitCodeFor maps a pipeline failure onto the process exit code.
func exitCodeFor(log *logger.Logger, err error) int {
	var te *crawler.TransportError
	if errors.As(err, &te) {
		log.Error("fetch failed", "url", te.URL, "status", te.StatusCode, "error", te.Err)

		return ExitTransport
	}

	if errors.Is(err, extractor.ErrMissingField) || errors.Is(err, extractor.ErrParseMarkup) {
		log.Error("page structure mismatch", "error", err)

		return ExitExtraction
	}

	log.Error("scan failed", "error", err)

	return ExitTransport
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: habrscan [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fetches https://habr.com/ru/articles/ and prints articles whose title,")
	fmt.Fprintln(w, "hubs, lead text or author match one of the search words.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s, %s, %s, %s, %s, %s (also read from .env)\n",
		config.EnvSearchWords, config.EnvBrowser, config.EnvOS, config.EnvLogLevel, config.EnvTimeoutSec, config.EnvURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 fetch failure, 2 page structure mismatch, 3 configuration error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  habrscan -words rust,go")
	fmt.Fprintln(w, "  habrscan -config configs/habrscan.yaml -format table")
	fmt.Fprintln(w, "  habrscan -file saved/articles.html -words python -strict")
}

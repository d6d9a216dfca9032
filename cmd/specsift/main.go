// Package main is the specsift CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/specsift/specsift/internal/cli"
	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/pipeline"
	"github.com/specsift/specsift/internal/watcher"
	"github.com/specsift/specsift/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/specsift/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "specsift run" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "run":
		runOnce()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("specsift version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds the logger and runner shared by run and watch.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *zap.Logger, *pipeline.Runner, cli.OutputFormat) {
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (model calls, cache hits, mapping decisions)")
	inputDir := fs.String("input", "", "override input directory")
	templateFile := fs.String("template", "", "override template file")
	outputDir := fs.String("out", "", "override output directory")
	output := fs.String("output", "text", "summary output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Printf("Invalid flag: %v\n", err)
		os.Exit(1)
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *inputDir != "" {
		cfg.Paths.InputDir = *inputDir
	}
	if *templateFile != "" {
		cfg.Paths.TemplateFile = *templateFile
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}

	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("input", cfg.Paths.InputDir),
		zap.String("template", cfg.Paths.TemplateFile),
		zap.Bool("debug", debugMode),
	)

	runner, err := pipeline.NewRunner(cfg, pipeline.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	return cfg, logger, runner, format
}

func runOnce() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	_, logger, runner, format := setup(fs, os.Args[2:])
	defer logger.Sync()
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
	if err := cli.WriteRunSummary(os.Stdout, summary, format); err != nil {
		logger.Fatal("Failed to write summary", zap.Error(err))
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfg, logger, runner, format := setup(fs, os.Args[2:])
	defer logger.Sync()
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Runs never overlap; a change arriving mid-run queues the next one
	// behind the mutex. Outputs are timestamped so reruns never clobber
	// earlier results.
	var runMu sync.Mutex
	runPipeline := func() {
		runMu.Lock()
		defer runMu.Unlock()
		summary, err := runner.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Run failed", zap.Error(err))
			return
		}
		if err := cli.WriteRunSummary(os.Stdout, summary, format); err != nil {
			logger.Error("Failed to write summary", zap.Error(err))
		}
	}

	opts := []watcher.Option{watcher.WithLogger(logger)}
	if cfg.Watch.DebounceMS > 0 {
		opts = append(opts, watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
	}
	w := watcher.New(
		cfg.Paths.InputDir,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func() { go runPipeline() },
		opts...,
	)
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()

	logger.Info("watching for supplier documents",
		zap.String("input", cfg.Paths.InputDir),
		zap.Strings("extensions", cfg.Watch.Extensions))

	// Process whatever is already in the input directory.
	runPipeline()

	<-ctx.Done()
	logger.Info("shutting down")
}

func printUsage() {
	fmt.Println(`specsift - supplier spec extraction into Excel templates

Usage:
  specsift run [flags]      Process the input directory once
  specsift watch [flags]    Re-run automatically when documents change
  specsift version          Show version
  specsift help             Show this help

Flags (run and watch):
  --config string     Config file path (default: /usr/local/etc/specsift/config.yaml)
  --input string      Override paths.input_dir from the config
  --template string   Override paths.template_file from the config
  --out string        Override paths.output_dir from the config
  --output string     Summary output format: text or json (default: text)
  --debug             Enable debug logging (model calls, cache hits, mapping decisions)

The API key is read from gemini.api_key or the environment variable named by
gemini.api_key_env (default: GOOGLE_API_KEY).

Examples:
  specsift run
  specsift run --input ./docs/rfq-2026 --output json
  specsift watch --debug`)
}

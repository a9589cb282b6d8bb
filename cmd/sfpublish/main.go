package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/systemstart/sfpublish/pkg/logging"
	"github.com/systemstart/sfpublish/pkg/processing"
)

var version = "dev"

const (
	_ = iota
	exitUsage
	exitDotenvError
	exitLoggingSetupFailed
	exitConfigNotFound
	exitLoadConfigurationFileFailed
	exitConfigurationError
	exitAuthenticationFailed
	exitPublishFailed
	exitToolErrors
)

var (
	configFile  string
	rootDir     string
	debug       bool
	timeout     time.Duration
	loggingType string
	logLevel    string
	showVersion bool
)

func parseFlags(args []string) error {
	flags := pflag.NewFlagSet("sfpublish", pflag.ContinueOnError)
	flags.StringVarP(&configFile, "config", "c", "",
		"configuration file (default: sfpublish.{yaml,yml,jsonc,json} in the working directory or a parent)")
	flags.StringVar(&rootDir, "dir", "",
		"directory glob patterns are resolved against (default: the configuration file's directory)")
	flags.BoolVar(&debug, "debug", false,
		"write each archive to tmp/<resource>.zip and log every packaged file")
	flags.DurationVar(&timeout, "timeout", 0,
		"abort the login and upload after this long (0 = no limit)")
	flags.StringVar(&loggingType, "logging-type", logging.Tint,
		"logging type: json, text or tint")
	flags.StringVar(&logLevel, "log-level", "info",
		"logging level: debug, info, warn, error")
	flags.BoolVar(&showVersion, "version", false,
		"print version and exit")
	return flags.Parse(args)
}

func main() {
	if err := parseFlags(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Initialize(logging.Options{Type: loggingType, Level: logLevel}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoggingSetupFailed)
	}

	includeEnv()
	cfg := loadConfig()

	var opts []processing.Option
	if rootDir != "" {
		opts = append(opts, processing.WithRoot(rootDir))
	}
	if debug {
		opts = append(opts, processing.WithDebug(true))
	}

	pipeline, err := processing.NewPipeline(cfg, opts...)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(exitConfigurationError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	code := 0
	pipeline.AfterBuild(ctx, func(err error) {
		if err != nil {
			slog.Error("publish failed", "error", err)
			code = exitCode(err)
		}
	})
	if code != 0 {
		stop()
		os.Exit(code)
	}

	slog.Info("done")
}

func exitCode(err error) int {
	switch {
	case api.IsConfigurationError(err):
		return exitConfigurationError
	case api.IsAuthenticationError(err):
		return exitAuthenticationFailed
	case api.IsPublishError(err):
		return exitPublishFailed
	default:
		return exitToolErrors
	}
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

func loadConfig() *api.Config {
	filename := configFile
	if filename == "" {
		start := rootDir
		if start == "" {
			start = "."
		}
		found, err := processing.DiscoverConfig(start)
		if err != nil {
			slog.Error("failed to find configuration file", "error", err)
			os.Exit(exitConfigNotFound)
		}
		filename = found
	}

	cfg, err := api.LoadConfig(filename)
	if err != nil {
		slog.Error("failed to load configuration file", "filename", filename, "error", err)
		if api.IsConfigurationError(err) {
			os.Exit(exitConfigurationError)
		}
		os.Exit(exitLoadConfigurationFileFailed)
	}
	slog.Debug("loaded configuration", "filename", cfg.FilePath, "resources", len(cfg.Resources))
	return cfg
}

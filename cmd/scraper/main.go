package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-scrape-shopee/config"
	"github.com/aluiziolira/go-scrape-shopee/pipeline"
	"github.com/aluiziolira/go-scrape-shopee/schema"
	"github.com/aluiziolira/go-scrape-shopee/scraper"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 1
	}

	extraction := schema.Products()
	if cfg.SchemaFile != "" {
		extraction, err = schema.Load(cfg.SchemaFile)
		if err != nil {
			slog.Error("loading schema", slog.String("path", cfg.SchemaFile), slog.Any("error", err))
			return 1
		}
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("close browser", slog.Any("error", err))
		}
		if err := s.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("metrics export failed", slog.Any("error", err))
		}
	}()

	p, err := pipeline.NewPipeline(s, os.Stdout, cfg, extraction)
	if err != nil {
		slog.Error("creating pipeline", slog.Any("error", err))
		return 1
	}

	slog.Info("starting scrape",
		slog.String("url", cfg.TargetURL),
		slog.String("schema", extraction.Name),
		slog.Duration("timeout", cfg.Timeout),
	)

	if err := p.Run(context.Background()); err != nil {
		if errors.Is(err, pipeline.ErrFetchFailed) {
			return 1
		}
		slog.Error("scrape failed", slog.Any("error", err))
		return 1
	}
	return 0
}

// newLogger writes to stderr; stdout carries only the report.
func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

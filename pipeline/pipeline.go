// Package pipeline runs one fetch-and-report cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aluiziolira/go-scrape-shopee/config"
	"github.com/aluiziolira/go-scrape-shopee/models"
	"github.com/aluiziolira/go-scrape-shopee/parser"
	"github.com/aluiziolira/go-scrape-shopee/schema"
	"github.com/aluiziolira/go-scrape-shopee/scraper"
)

var (
	// ErrFetchFailed is returned after the failure line has been printed.
	ErrFetchFailed = errors.New("pipeline: fetch failed")
)

// Fetcher renders a page and applies an extraction schema to it.
type Fetcher interface {
	Fetch(ctx context.Context, target string, rc scraper.RunConfig) (*models.FetchResult, error)
}

// Pipeline fetches the target once and reports the first products found.
type Pipeline struct {
	fetcher Fetcher
	report  ReportWriter
	out     io.Writer
	cfg     *config.Config
	schema  schema.Schema
}

// NewPipeline wires a fetcher to a report writer chosen by cfg.OutputFormat.
// The schema must declare every field the product report prints.
func NewPipeline(fetcher Fetcher, out io.Writer, cfg *config.Config, s schema.Schema) (*Pipeline, error) {
	if err := s.Require(schema.ProductFields...); err != nil {
		return nil, err
	}
	report, err := NewReportWriter(cfg.OutputFormat, out)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		fetcher: fetcher,
		report:  report,
		out:     out,
		cfg:     cfg,
		schema:  s,
	}, nil
}

// Run performs a single fetch. A reported fetch failure prints
// "Falha na coleta: <message>" and returns ErrFetchFailed; a payload that
// cannot be decoded is returned as is, with nothing printed.
func (p *Pipeline) Run(ctx context.Context) error {
	rc := scraper.RunConfig{
		Schema:    p.schema,
		WaitFor:   p.cfg.WaitFor,
		CacheMode: scraper.CacheMode(p.cfg.CacheMode),
		Timeout:   p.cfg.Timeout,
	}

	result, err := p.fetcher.Fetch(ctx, p.cfg.TargetURL, rc)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", p.cfg.TargetURL, err)
	}
	if !result.Success {
		if _, err := fmt.Fprintf(p.out, "Falha na coleta: %s\n", result.ErrorMessage); err != nil {
			return fmt.Errorf("write failure line: %w", err)
		}
		return fmt.Errorf("%w: %s", ErrFetchFailed, result.ErrorMessage)
	}

	products, err := parser.DecodeProducts(result.ExtractedContent)
	if err != nil {
		return err
	}

	top := Top(products, p.cfg.Limit)
	for i := range top {
		top[i] = parser.CleanProduct(top[i])
	}

	slog.Debug("reporting products",
		slog.Int("extracted", len(products)),
		slog.Int("reported", len(top)),
	)

	if err := p.report.Write(top); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Top returns a copy of the first n products in their original order.
func Top(products []models.Product, n int) []models.Product {
	if n < 0 {
		n = 0
	}
	if n > len(products) {
		n = len(products)
	}
	out := make([]models.Product, n)
	copy(out, products[:n])
	return out
}

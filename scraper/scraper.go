// Package scraper renders pages in a headless browser and applies an
// extraction schema to them.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-shopee/config"
	"github.com/aluiziolira/go-scrape-shopee/models"
	"github.com/aluiziolira/go-scrape-shopee/schema"
)

// requestTimeoutSlack keeps colly's client deadline behind the render deadline.
const requestTimeoutSlack = 5 * time.Second

// RunConfig describes one fetch.
type RunConfig struct {
	Schema    schema.Schema
	WaitFor   string
	CacheMode CacheMode
	Timeout   time.Duration
}

// Scraper wraps a colly collector whose transport is a headless browser.
type Scraper struct {
	cfg     *config.Config
	session *browserSession
	Metrics *Metrics

	// renderer produces the page behind the render transport; defaults to session.
	renderer pageRenderer
	// transport replaces the whole render path when set.
	transport http.RoundTripper
}

// NewScraper builds a scraper instance configured from cfg. The browser is
// not started until the first fetch.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	session := newBrowserSession(cfg)
	return &Scraper{
		cfg:      cfg,
		session:  session,
		Metrics:  NewMetrics(),
		renderer: session,
	}, nil
}

// Fetch renders target and extracts records with rc.Schema. Fetch failures
// are reported through the result; the error return is reserved for an
// unusable RunConfig.
func (s *Scraper) Fetch(ctx context.Context, target string, rc RunConfig) (*models.FetchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := rc.Schema.Validate(); err != nil {
		return nil, err
	}
	cond, err := parseReadiness(rc.WaitFor)
	if err != nil {
		return nil, fmt.Errorf("parse wait condition: %w", err)
	}
	mode, err := ParseCacheMode(string(rc.CacheMode))
	if err != nil {
		return nil, err
	}
	timeout := rc.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	result := &models.FetchResult{URL: target, StartTime: time.Now()}
	s.Metrics.IncFetch("started")

	collector := colly.NewCollector(
		colly.UserAgent(s.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.MaxBodySize = 0
	collector.SetRequestTimeout(timeout + requestTimeoutSlack)
	collector.WithTransport(s.nextTransport(ctx, cond, timeout, mode))

	records := make([]models.Record, 0)
	collector.OnHTML(rc.Schema.BaseSelector, func(e *colly.HTMLElement) {
		records = append(records, rc.Schema.ExtractOne(e.DOM))
	})

	collector.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		slog.Debug("page received",
			slog.String("url", r.Request.URL.String()),
			slog.Int("status", r.StatusCode),
			slog.Int("bytes", len(r.Body)),
		)
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
			result.StatusCode = statusCode
		}
		fetchErr = classifyError(err, statusCode)
	})

	visitErr := collector.Visit(target)
	result.EndTime = time.Now()
	if fetchErr == nil && visitErr != nil {
		fetchErr = classifyError(visitErr, 0)
	}
	if fetchErr != nil {
		return s.fail(result, fetchErr), nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return s.fail(result, fmt.Errorf("encode records: %w", err)), nil
	}

	result.Success = true
	result.ExtractedContent = string(payload)
	result.RecordCount = len(records)
	s.Metrics.IncFetch("succeeded")
	s.Metrics.AddRecords(len(records))

	slog.Info("page extracted",
		slog.String("url", target),
		slog.String("schema", rc.Schema.Name),
		slog.Int("records", len(records)),
		slog.Duration("duration", result.Duration()),
	)
	return result, nil
}

// Close releases the browser. It is safe to call more than once.
func (s *Scraper) Close() error {
	return s.session.Close()
}

func (s *Scraper) nextTransport(ctx context.Context, cond readiness, timeout time.Duration, mode CacheMode) http.RoundTripper {
	if s.transport != nil {
		return s.transport
	}
	return &renderTransport{
		ctx:      ctx,
		renderer: s.renderer,
		cond:     cond,
		timeout:  timeout,
		fresh:    mode.Fresh(),
		metrics:  s.Metrics,
	}
}

func (s *Scraper) fail(result *models.FetchResult, err error) *models.FetchResult {
	category := errorTypeLabel(err)
	s.Metrics.IncFetch("failed")
	s.Metrics.IncError(category)

	slog.Error("fetch failed",
		slog.String("url", result.URL),
		slog.String("category", category),
		slog.Any("error", err),
	)

	result.Success = false
	result.ErrorMessage = err.Error()
	return result
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	// drop the "Get <url>:" prefix added by http.Client
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var notReady ErrNotReady
	var navigation ErrNavigation
	if errors.As(err, &notReady) || errors.As(err, &navigation) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}

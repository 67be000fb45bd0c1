package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aluiziolira/go-scrape-shopee/config"
)

var errBrowserClosed = errors.New("browser: closed")

// readiness is the condition a rendered page must satisfy before extraction.
type readiness struct {
	kind string // css or js
	expr string
}

// parseReadiness accepts "css=<selector>", "js=<predicate>" or a bare selector.
func parseReadiness(s string) (readiness, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "css="):
		s = strings.TrimSpace(strings.TrimPrefix(s, "css="))
	case strings.HasPrefix(s, "js="):
		expr := strings.TrimSpace(strings.TrimPrefix(s, "js="))
		if expr == "" {
			return readiness{}, fmt.Errorf("empty js wait condition")
		}
		return readiness{kind: "js", expr: expr}, nil
	}
	if s == "" {
		return readiness{}, fmt.Errorf("empty wait condition")
	}
	return readiness{kind: "css", expr: s}, nil
}

func (r readiness) String() string {
	return r.kind + "=" + r.expr
}

func (r readiness) wait(page *rod.Page) error {
	if r.kind == "js" {
		return page.Wait(rod.Eval(r.expr))
	}
	// Element retries until the selector matches or the page context expires.
	_, err := page.Element(r.expr)
	return err
}

// renderedPage is the document status and HTML after rendering.
type renderedPage struct {
	status int
	html   string
}

type pageRenderer interface {
	render(ctx context.Context, target string, cond readiness, fresh bool) (renderedPage, error)
}

// documentStatusJS reads the HTTP status of the main document. Chromium
// reports 0 when the status is unknown.
const documentStatusJS = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch (e) {}
	return 0;
}`

// browserSession owns one headless Chromium, launched on first use.
type browserSession struct {
	cfg *config.Config

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

func newBrowserSession(cfg *config.Config) *browserSession {
	return &browserSession{cfg: cfg}
}

func (b *browserSession) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errBrowserClosed
	}
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().
		Headless(b.cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox")
	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, ErrConnection{Err: fmt.Errorf("launch browser: %w", err)}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, ErrConnection{Err: fmt.Errorf("connect browser: %w", err)}
	}

	slog.Debug("browser launched",
		slog.Bool("headless", b.cfg.Headless),
		slog.String("bin", b.cfg.BrowserBin),
	)

	b.launcher = l
	b.browser = browser
	return browser, nil
}

// render loads target, waits for cond and returns the page HTML. Error
// statuses skip the readiness wait; their page is returned as is.
func (b *browserSession) render(ctx context.Context, target string, cond readiness, fresh bool) (renderedPage, error) {
	browser, err := b.connect()
	if err != nil {
		return renderedPage{}, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return renderedPage{}, fmt.Errorf("open page: %w", err)
	}
	// page, not p: the cleanup must not inherit the expired render context
	defer func() {
		if err := page.Close(); err != nil {
			slog.Debug("close page", slog.Any("error", err))
		}
	}()

	p := page.Context(ctx)

	if fresh {
		if err := (proto.NetworkEnable{}).Call(p); err != nil {
			return renderedPage{}, fmt.Errorf("enable network domain: %w", err)
		}
		if err := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(p); err != nil {
			return renderedPage{}, fmt.Errorf("disable browser cache: %w", err)
		}
	}
	if b.cfg.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
			slog.Warn("failed to set user agent", slog.Any("error", err))
		}
	}

	if err := p.Navigate(target); err != nil {
		return renderedPage{}, ErrNavigation{Err: err}
	}
	if err := p.WaitLoad(); err != nil {
		slog.Warn("page load event not observed, continuing",
			slog.String("url", target),
			slog.Any("error", err),
		)
	}

	status := 0
	if res, err := p.Eval(documentStatusJS); err == nil {
		status = res.Value.Int()
	} else {
		slog.Debug("document status unavailable", slog.Any("error", err))
	}

	if status < http.StatusBadRequest {
		if err := cond.wait(p); err != nil {
			return renderedPage{}, ErrNotReady{Condition: cond.String(), Err: err}
		}
	}

	html, err := p.HTML()
	if err != nil {
		return renderedPage{}, fmt.Errorf("read page html: %w", err)
	}
	return renderedPage{status: status, html: html}, nil
}

// Close shuts the browser down and removes its profile directory.
func (b *browserSession) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
	return err
}

// renderTransport answers colly's HTTP requests with browser-rendered HTML.
type renderTransport struct {
	ctx      context.Context
	renderer pageRenderer
	cond     readiness
	timeout  time.Duration
	fresh    bool
	metrics  *Metrics
}

func (t *renderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		req.Body.Close()
	}

	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()
	stop := context.AfterFunc(req.Context(), cancel)
	defer stop()

	start := time.Now()
	page, err := t.renderer.render(ctx, req.URL.String(), t.cond, t.fresh)
	t.metrics.ObserveRender(time.Since(start))
	if err != nil {
		return nil, err
	}
	return page.response(req), nil
}

// response wraps the rendered page; an unknown status is reported as 200.
func (p renderedPage) response(req *http.Request) *http.Response {
	status := p.status
	if status <= 0 {
		status = http.StatusOK
	}

	header := make(http.Header)
	header.Set("Content-Type", "text/html; charset=utf-8")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(p.html)),
		ContentLength: int64(len(p.html)),
		Request:       req,
	}
}

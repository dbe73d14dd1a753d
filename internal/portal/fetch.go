package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"tender-scout/config"
)

const maxResponseBytes = 4 * 1024 * 1024

// Fetcher is shared across all portal sessions of a cycle. It owns the
// per-host politeness limiters so concurrent portal workers hitting the same
// host still respect the minimum request spacing.
type Fetcher struct {
	userAgent string
	timeout   time.Duration
	delay     time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(cfg config.CrawlConfig) *Fetcher {
	delay := time.Duration(cfg.DelaySeconds) * time.Second
	return &Fetcher{
		userAgent: cfg.UserAgent,
		timeout:   20 * time.Second,
		delay:     delay,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	var l *rate.Limiter
	if f.delay <= 0 {
		l = rate.NewLimiter(rate.Inf, 1)
	} else {
		l = rate.NewLimiter(rate.Every(f.delay), 1)
	}
	f.limiters[host] = l
	return l
}

// NewSession returns a client with its own cookie jar, so login state never
// leaks between portals, while the host limiters stay shared.
func (f *Fetcher) NewSession() *SessionClient {
	jar, _ := cookiejar.New(nil)
	return &SessionClient{
		f: f,
		hc: &http.Client{
			Jar:     jar,
			Timeout: f.timeout,
		},
	}
}

// SessionClient issues rate-limited, cookie-carrying requests for one portal.
type SessionClient struct {
	f  *Fetcher
	hc *http.Client
}

// Document fetches rawURL and parses the response body.
func (c *SessionClient) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NavigationError{URL: rawURL, Err: err}
	}
	return c.do(req)
}

// SubmitForm posts values to action and parses the resulting page.
func (c *SessionClient) SubmitForm(ctx context.Context, action string, values url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, &NavigationError{URL: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *SessionClient) do(req *http.Request) (*goquery.Document, error) {
	req.Header.Set("User-Agent", c.f.userAgent)

	if err := c.f.limiter(req.URL.Hostname()).Wait(req.Context()); err != nil {
		return nil, &NavigationError{URL: req.URL.String(), Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &NavigationError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return nil, &NavigationError{
			URL: req.URL.String(),
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(http.MaxBytesReader(nil, resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NavigationError{URL: req.URL.String(), Err: fmt.Errorf("parse document: %w", err)}
	}
	return doc, nil
}

// ResolveLink turns a scraped href into an absolute URL: absolute hrefs pass
// through, root-relative ones attach to the portal root, anything else falls
// back to the portal root itself.
func ResolveLink(portalRoot, href string) string {
	href = strings.TrimSpace(href)
	root := strings.TrimRight(strings.TrimSpace(portalRoot), "/")
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return root + href
	default:
		return root
	}
}

package portal

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/lexicon"
	"tender-scout/internal/tender"
)

// genericDeadlineDays is the synthetic deadline offset when the portal config
// does not pin its own.
const genericDeadlineDays = 21

// candidateCap bounds how many listing elements one page may contribute.
const candidateCap = 20

// minCandidateRunes rejects listing elements too short to be announcements.
const minCandidateRunes = 15

// selectorThreshold is the minimum match count for a structural selector to
// be accepted. A lone match is most likely a stray link, not a listing.
const selectorThreshold = 3

// candidateTextMax bounds the text captured per listing element.
const candidateTextMax = 500

// listingPaths are tried in order, appended to the portal root; the first
// path yielding candidates wins.
var listingPaths = []string{
	"",
	"/ausschreibungen",
	"/tenders",
	"/vergaben",
	"/public",
	"/search",
	"/suche",
	"/bekanntmachungen",
}

// listingSelectors are tried in priority order on each listing page.
var listingSelectors = []string{
	`a[href*="ausschreibung"]`,
	`a[href*="tender"]`,
	`a[href*="vergabe"]`,
	`a[href*="projekt"]`,
	`table tr`,
	`.tender-item`,
	`.ausschreibung`,
	`article`,
	`.list-item`,
	`.result-item`,
}

// GenericAdapter crawls portals without site-specific knowledge. Every step
// degrades to "produce nothing": its failure mode is silence, never an error
// that aborts the cycle.
type GenericAdapter struct {
	fetcher *Fetcher
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewGenericAdapter(fetcher *Fetcher, logger *zap.SugaredLogger) *GenericAdapter {
	return &GenericAdapter{fetcher: fetcher, logger: logger, now: time.Now}
}

func (a *GenericAdapter) Name() string { return "generic" }

func (a *GenericAdapter) Open(ctx context.Context, cfg config.PortalConfig) (Session, error) {
	client := a.fetcher.NewSession()

	if _, err := client.Document(ctx, cfg.URL); err != nil {
		return nil, &AdapterError{Portal: cfg.Name, Err: err}
	}

	s := &genericSession{
		client: client,
		cfg:    cfg,
		logger: a.logger,
		now:    a.now,
	}

	if cfg.Username != "" && cfg.Password != "" {
		if err := s.tryLogin(ctx); err != nil {
			// Login is best-effort; public listings may still be readable.
			a.logger.Warnw("portal_login_not_confirmed",
				"portal", cfg.Name,
				"err", err,
			)
		}
	}

	return s, nil
}

type genericSession struct {
	client *SessionClient
	cfg    config.PortalConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

func (s *genericSession) Close() error { return nil }

func (s *genericSession) DiscoverCandidates(ctx context.Context) []Candidate {
	for _, path := range listingPaths {
		pageURL := strings.TrimRight(s.cfg.URL, "/") + path

		doc, err := s.client.Document(ctx, pageURL)
		if err != nil {
			s.logger.Debugw("portal_listing_path_skipped",
				"portal", s.cfg.Name,
				"url", pageURL,
				"err", err,
			)
			continue
		}

		if found := s.candidatesFromPage(doc); len(found) > 0 {
			s.logger.Infow("portal_listing_found",
				"portal", s.cfg.Name,
				"url", pageURL,
				"candidates", len(found),
			)
			return found
		}
	}
	return nil
}

func (s *genericSession) candidatesFromPage(doc *goquery.Document) []Candidate {
	elements := s.selectElements(doc)
	if elements == nil {
		return nil
	}

	var out []Candidate
	elements.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(out) >= candidateCap {
			return false
		}

		text := strings.TrimSpace(sel.Text())
		if len([]rune(text)) < minCandidateRunes {
			return true
		}
		clean := tender.Truncate(tender.NormalizeWhitespace(text), candidateTextMax)

		link := s.cfg.URL
		if href, ok := sel.Find("a").First().Attr("href"); ok && href != "" {
			link = ResolveLink(s.cfg.URL, href)
		} else if href, ok := sel.Attr("href"); ok && href != "" {
			link = ResolveLink(s.cfg.URL, href)
		}

		out = append(out, Candidate{URL: link, Text: clean})
		return true
	})
	return out
}

// selectElements walks the selector priority list and accepts the first one
// matching at least selectorThreshold elements. An explicit override in the
// portal config bypasses the search and the threshold.
func (s *genericSession) selectElements(doc *goquery.Document) *goquery.Selection {
	if override := strings.TrimSpace(s.cfg.Selectors.TenderList); override != "" {
		if found := doc.Find(override); found.Length() > 0 {
			return found
		}
		return nil
	}

	for _, selector := range listingSelectors {
		if found := doc.Find(selector); found.Length() >= selectorThreshold {
			return found
		}
	}
	return nil
}

func (s *genericSession) Extract(_ context.Context, c Candidate) (*tender.Raw, error) {
	if c.Text == "" {
		return nil, &ExtractionError{URL: c.URL, Reason: "empty candidate text"}
	}

	title := tender.Truncate(c.Text, 150)

	location := s.cfg.Region
	if city := lexicon.City(c.Text); city != "" {
		if s.cfg.Region != "" {
			location = city + ", " + s.cfg.Region
		} else {
			location = city
		}
	}
	if location == "" {
		location = "Unbekannt"
	}

	offset := s.cfg.FallbackDeadlineDays
	if offset <= 0 {
		offset = genericDeadlineDays
	}
	publishedAt, deadline := tender.FallbackDates(s.now(), offset)

	return &tender.Raw{
		Title:        title,
		Authority:    s.cfg.Name,
		Location:     location,
		Deadline:     deadline,
		PublishedAt:  publishedAt,
		Description:  c.Text,
		SourceURL:    c.URL,
		SourcePortal: s.cfg.Name,
		HashText:     c.Text,
	}, nil
}

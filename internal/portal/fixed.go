package portal

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/lexicon"
	"tender-scout/internal/tender"
)

// fixedDeadlineDays is the synthetic deadline offset for fixed adapters when
// the source deadline cannot be parsed and the portal config pins nothing.
const fixedDeadlineDays = 14

// siteSpec carries the pre-tuned selectors for one known portal. Comma-joined
// selectors are alternatives tried left to right.
type siteSpec struct {
	key            string
	listingPath    string
	itemSelector   string
	titleSel       string
	authoritySel   string
	descriptionSel string
	deadlineSel    string
	budgetSel      string
	locationSel    string
}

var siteSpecs = map[string]siteSpec{
	"ausschreibung_at": {
		key:            "ausschreibung_at",
		listingPath:    "/Ausschreibungskarte",
		itemSelector:   `a[href*="/Ausschreibung/"]`,
		titleSel:       "h1, .tender-title, .ausschreibung-titel, .detail-title",
		authoritySel:   ".auftraggeber, .vergabestelle, .authority, .contracting-authority",
		descriptionSel: ".beschreibung, .description, .tender-description, .leistungsbeschreibung",
		deadlineSel:    ".frist, .deadline, .abgabefrist, .submission-deadline",
		budgetSel:      ".budget, .auftragswert, .contract-value, .schaetzwert",
		locationSel:    ".ort, .location, .ausfuehrungsort, .place",
	},
	"staatsanzeiger": {
		key:            "staatsanzeiger",
		listingPath:    "/aJs/vergabe",
		itemSelector:   `a[href*="/vergabe/"], a[href*="/ausschreibung"]`,
		titleSel:       "h1, .bekanntmachung-titel",
		authoritySel:   ".vergabestelle, .auftraggeber",
		descriptionSel: ".beschreibung, .bekanntmachung-text",
		deadlineSel:    ".frist, .angebotsfrist",
		budgetSel:      ".auftragswert",
		locationSel:    ".erfuellungsort, .ort",
	},
	"deutsche_evergabe": {
		key:            "deutsche_evergabe",
		listingPath:    "/Satellite/public/company/project",
		itemSelector:   `a[href*="/project/"], tr.project-row a`,
		titleSel:       "h1, .project-title",
		authoritySel:   ".awarding-authority, .auftraggeber",
		descriptionSel: ".project-description, .beschreibung",
		deadlineSel:    ".deadline, .abgabefrist",
		budgetSel:      ".budget",
		locationSel:    ".place-of-performance, .ort",
	},
	"rib": {
		key:            "rib",
		listingPath:    "/public/publications",
		itemSelector:   `a[href*="/publication"], .publication-item a`,
		titleSel:       "h1, .publication-title",
		authoritySel:   ".client, .auftraggeber",
		descriptionSel: ".description, .leistungsumfang",
		deadlineSel:    ".submission-deadline, .frist",
		budgetSel:      ".contract-value",
		locationSel:    ".location, .ausfuehrungsort",
	},
	"tender24": {
		key:            "tender24",
		listingPath:    "/ausschreibungen",
		itemSelector:   `a[href*="/ausschreibung/"], a[href*="/tender/"], .ausschreibung-link`,
		titleSel:       "h1, .ausschreibung-title",
		authoritySel:   ".vergabestelle, .auftraggeber",
		descriptionSel: ".beschreibung, .leistung",
		deadlineSel:    ".frist, .abgabefrist",
		budgetSel:      ".budget, .wert",
		locationSel:    ".ort, .region",
	},
}

// FixedKeys lists the known fixed-adapter identifiers.
func FixedKeys() []string {
	keys := make([]string, 0, len(siteSpecs))
	for k := range siteSpecs {
		keys = append(keys, k)
	}
	return keys
}

// FixedAdapter crawls one known portal with its pre-tuned selectors. Field
// mapping is mechanical; all heuristics live in the generic adapter.
type FixedAdapter struct {
	spec    siteSpec
	fetcher *Fetcher
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewFixedAdapter(key string, fetcher *Fetcher, logger *zap.SugaredLogger) (*FixedAdapter, bool) {
	spec, ok := siteSpecs[key]
	if !ok {
		return nil, false
	}
	return &FixedAdapter{spec: spec, fetcher: fetcher, logger: logger, now: time.Now}, true
}

func (a *FixedAdapter) Name() string { return a.spec.key }

func (a *FixedAdapter) Open(ctx context.Context, cfg config.PortalConfig) (Session, error) {
	client := a.fetcher.NewSession()

	if _, err := client.Document(ctx, cfg.URL); err != nil {
		return nil, &AdapterError{Portal: cfg.Name, Err: err}
	}

	s := &fixedSession{
		spec:   a.spec,
		client: client,
		cfg:    cfg,
		logger: a.logger,
		now:    a.now,
	}

	if cfg.Username != "" && cfg.Password != "" {
		gs := &genericSession{client: client, cfg: cfg, logger: a.logger, now: a.now}
		if err := gs.tryLogin(ctx); err != nil {
			a.logger.Warnw("portal_login_not_confirmed", "portal", cfg.Name, "err", err)
		}
	}

	return s, nil
}

type fixedSession struct {
	spec   siteSpec
	client *SessionClient
	cfg    config.PortalConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

func (s *fixedSession) Close() error { return nil }

func (s *fixedSession) DiscoverCandidates(ctx context.Context) []Candidate {
	listURL := strings.TrimRight(s.cfg.URL, "/") + s.spec.listingPath

	doc, err := s.client.Document(ctx, listURL)
	if err != nil {
		s.logger.Warnw("portal_listing_failed",
			"portal", s.cfg.Name,
			"url", listURL,
			"err", err,
		)
		return nil
	}

	seen := map[string]struct{}{}
	var out []Candidate
	doc.Find(s.spec.itemSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		link := ResolveLink(s.cfg.URL, href)
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		out = append(out, Candidate{URL: link})
	})

	s.logger.Infow("portal_listing_found",
		"portal", s.cfg.Name,
		"url", listURL,
		"candidates", len(out),
	)
	return out
}

func (s *fixedSession) Extract(ctx context.Context, c Candidate) (*tender.Raw, error) {
	doc, err := s.client.Document(ctx, c.URL)
	if err != nil {
		return nil, err
	}

	title := firstText(doc, s.spec.titleSel)
	if title == "" {
		return nil, &ExtractionError{URL: c.URL, Reason: "title missing"}
	}

	authority := firstText(doc, s.spec.authoritySel)
	if authority == "" {
		authority = s.cfg.Name
	}
	description := firstText(doc, s.spec.descriptionSel)
	if description == "" {
		description = title
	}
	location := firstText(doc, s.spec.locationSel)
	if location == "" {
		if city := lexicon.City(description); city != "" {
			location = city
		} else {
			location = s.cfg.Region
		}
	}

	offset := s.cfg.FallbackDeadlineDays
	if offset <= 0 {
		offset = fixedDeadlineDays
	}
	fallbackPublished, fallbackDeadline := tender.FallbackDates(s.now(), offset)

	deadline := fallbackDeadline
	if d, ok := CanonicalDate(firstText(doc, s.spec.deadlineSel)); ok {
		deadline = d
	}

	var budget *string
	if b := firstText(doc, s.spec.budgetSel); b != "" {
		budget = &b
	}

	return &tender.Raw{
		Title:        tender.NormalizeWhitespace(title),
		Authority:    tender.NormalizeWhitespace(authority),
		Location:     tender.NormalizeWhitespace(location),
		Deadline:     deadline,
		PublishedAt:  fallbackPublished,
		Budget:       budget,
		Description:  tender.NormalizeWhitespace(description),
		SourceURL:    c.URL,
		SourcePortal: s.cfg.Name,
	}, nil
}

// firstText tries each comma-separated selector and returns the first
// non-empty trimmed text.
func firstText(doc *goquery.Document, selectors string) string {
	for _, sel := range strings.Split(selectors, ",") {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

var dateDigits = regexp.MustCompile(`\d{1,4}[.\-/]\d{1,2}[.\-/]\d{1,4}`)

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
}

// CanonicalDate extracts the first date-looking token from raw and converts
// it to YYYY-MM-DD. Unparseable input reports ok=false so callers fall back
// to the synthetic extraction-time dates.
func CanonicalDate(raw string) (string, bool) {
	token := dateDigits.FindString(raw)
	if token == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format(tender.DateLayout), true
		}
	}
	return "", false
}

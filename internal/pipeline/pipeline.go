package pipeline

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/categorize"
	"tender-scout/internal/portal"
	"tender-scout/internal/tender"
)

// Result is the outcome of crawling one portal. Records carry no status; the
// reconciler owns that field.
type Result struct {
	Portal     string
	Records    []tender.Record
	Discovered int
	Failed     int
}

// Pipeline turns one portal config into normalized tender records. A broken
// candidate is dropped and counted; only a failed session open is an error.
type Pipeline struct {
	registry *portal.Registry
	validate *validator.Validate
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func New(registry *portal.Registry, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		registry: registry,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

func (p *Pipeline) CrawlPortal(ctx context.Context, cfg config.PortalConfig) (Result, error) {
	res := Result{Portal: cfg.Name}

	adapter := p.registry.ForConfig(cfg)
	session, err := adapter.Open(ctx, cfg)
	if err != nil {
		return res, err
	}
	defer session.Close()

	candidates := session.DiscoverCandidates(ctx)
	res.Discovered = len(candidates)

	seen := map[string]struct{}{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		raw, err := session.Extract(ctx, c)
		if err != nil {
			res.Failed++
			p.logger.Warnw("tender_extract_failed",
				"portal", cfg.Name,
				"url", c.URL,
				"err", err,
			)
			continue
		}

		rec, err := p.build(raw)
		if err != nil {
			res.Failed++
			p.logger.Warnw("tender_record_invalid",
				"portal", cfg.Name,
				"url", c.URL,
				"err", err,
			)
			continue
		}

		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		res.Records = append(res.Records, rec)
	}

	p.logger.Infow("portal_crawled",
		"portal", cfg.Name,
		"adapter", adapter.Name(),
		"discovered", res.Discovered,
		"extracted", len(res.Records),
		"failed", res.Failed,
	)
	return res, nil
}

// build normalizes one adapter yield into a storable record. The id is
// derived from the source URL, or from the normalized content when the
// adapter marked the URL as unstable.
func (p *Pipeline) build(raw *tender.Raw) (tender.Record, error) {
	if err := p.validate.Struct(raw); err != nil {
		return tender.Record{}, err
	}

	id := tender.IDFromURL(raw.SourceURL)
	if raw.HashText != "" {
		id = tender.IDFromText(raw.HashText)
	}

	return tender.Record{
		ID:           id,
		Title:        raw.Title,
		Authority:    raw.Authority,
		Location:     raw.Location,
		Deadline:     raw.Deadline,
		PublishedAt:  raw.PublishedAt,
		Budget:       raw.Budget,
		Category:     categorize.Categorize(raw.Title, raw.Description),
		Description:  tender.Truncate(raw.Description, tender.MaxDescriptionRunes),
		SourceURL:    raw.SourceURL,
		SourcePortal: raw.SourcePortal,
		CrawledAt:    p.now(),
	}, nil
}

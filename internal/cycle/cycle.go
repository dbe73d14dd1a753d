package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/cache"
	"tender-scout/config"
	"tender-scout/internal/notify"
	"tender-scout/internal/pipeline"
	"tender-scout/internal/reconcile"
	"tender-scout/internal/tender"
)

// ErrCycleRunning is returned when another instance holds the cycle lock.
var ErrCycleRunning = errors.New("a crawl cycle is already running")

// lockTTL bounds how long a crashed instance can block the next cycle.
const lockTTL = 30 * time.Minute

// Summary is what one full crawl cycle produced.
type Summary struct {
	StartedAt     time.Time       `json:"startedAt"`
	Duration      time.Duration   `json:"-"`
	DurationMS    int64           `json:"durationMs"`
	Portals       int             `json:"portals"`
	PortalsFailed int             `json:"portalsFailed"`
	Found         int             `json:"found"`
	New           int             `json:"new"`
	Updated       int             `json:"updated"`
	NewRecords    []tender.Record `json:"newRecords"`
}

// Orchestrator runs one crawl cycle: every enabled portal is crawled with a
// bounded worker pool, one failed portal never stops the others, and the
// merged batch goes through the reconciler in a single transaction.
type Orchestrator struct {
	cfg        *config.Config
	pipeline   *pipeline.Pipeline
	reconciler *reconcile.Reconciler
	notifier   *notify.Notifier
	lock       *cache.CycleLock
	summaries  *cache.SummaryCache
	logger     *zap.SugaredLogger

	loadPortals func(path string) ([]config.PortalConfig, error)
}

type NewOrchestratorParams struct {
	fx.In

	Cfg        *config.Config
	Pipeline   *pipeline.Pipeline
	Reconciler *reconcile.Reconciler
	Notifier   *notify.Notifier
	Lock       *cache.CycleLock
	Summaries  *cache.SummaryCache
	Logger     *zap.SugaredLogger
}

func NewOrchestrator(p NewOrchestratorParams) *Orchestrator {
	return &Orchestrator{
		cfg:         p.Cfg,
		pipeline:    p.Pipeline,
		reconciler:  p.Reconciler,
		notifier:    p.Notifier,
		lock:        p.Lock,
		summaries:   p.Summaries,
		logger:      p.Logger,
		loadPortals: config.LoadPortals,
	}
}

// Run executes a full cycle over every enabled portal.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	return o.RunPortals(ctx)
}

// RunPortals restricts the cycle to the named portal keys; no keys means all.
func (o *Orchestrator) RunPortals(ctx context.Context, keys ...string) (Summary, error) {
	release, ok, err := o.lock.Acquire(ctx, lockTTL)
	if err != nil {
		return Summary{}, err
	}
	if !ok {
		return Summary{}, ErrCycleRunning
	}
	defer release()

	started := time.Now()
	summary := Summary{StartedAt: started}

	portals, err := o.loadPortals(o.cfg.Crawl.PortalsFile)
	if err != nil {
		return Summary{}, err
	}

	wanted := map[string]struct{}{}
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	var enabled []config.PortalConfig
	for _, p := range portals {
		if !p.IsEnabled() {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[p.Key]; !ok {
				continue
			}
		}
		enabled = append(enabled, p)
	}
	if len(wanted) > 0 && len(enabled) == 0 {
		return Summary{}, fmt.Errorf("no enabled portal matches %v", keys)
	}
	summary.Portals = len(enabled)

	o.logger.Infow("cycle_started", "portals", len(enabled))

	results := o.crawlAll(ctx, enabled)

	var batch []tender.Record
	seen := map[string]struct{}{}
	for _, res := range results {
		if res.err != nil {
			summary.PortalsFailed++
			o.logger.Errorw("portal_failed",
				"portal", res.portal,
				"err", res.err,
			)
			continue
		}
		for _, rec := range res.records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			batch = append(batch, rec)
		}
	}

	outcome, err := o.reconciler.Reconcile(ctx, batch)
	if err != nil {
		return Summary{}, err
	}
	summary.Found = outcome.Found
	summary.New = outcome.New
	summary.Updated = outcome.Updated
	summary.NewRecords = outcome.NewRecords

	if err := o.notifier.NotifyNewTenders(outcome.NewRecords); err != nil {
		o.logger.Warnw("tender_digest_failed", "err", err)
	}

	summary.Duration = time.Since(started)
	summary.DurationMS = summary.Duration.Milliseconds()

	if payload, err := json.Marshal(summary); err == nil {
		if err := o.summaries.Put(ctx, payload, 24*time.Hour); err != nil {
			o.logger.Warnw("cycle_summary_cache_failed", "err", err)
		}
	}

	o.logger.Infow("cycle_done",
		"portals", summary.Portals,
		"portals_failed", summary.PortalsFailed,
		"found", summary.Found,
		"new", summary.New,
		"updated", summary.Updated,
		"duration", summary.Duration,
	)
	return summary, nil
}

type portalResult struct {
	portal  string
	records []tender.Record
	err     error
}

func (o *Orchestrator) crawlAll(ctx context.Context, portals []config.PortalConfig) []portalResult {
	workers := o.cfg.Crawl.Workers
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	results := make([]portalResult, len(portals))

	var wg sync.WaitGroup
	for i, p := range portals {
		wg.Add(1)
		go func(i int, p config.PortalConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := o.pipeline.CrawlPortal(ctx, p)
			results[i] = portalResult{portal: p.Name, records: res.Records, err: err}
		}(i, p)
	}
	wg.Wait()

	return results
}

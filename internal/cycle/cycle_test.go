package cycle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"

	"tender-scout/cache"
	"tender-scout/config"
	"tender-scout/db"
	"tender-scout/internal/notify"
	"tender-scout/internal/pipeline"
	"tender-scout/internal/portal"
	"tender-scout/internal/reconcile"
	"tender-scout/internal/tender"
)

type recordingSender struct {
	messages []*mail.Message
}

func (s *recordingSender) DialAndSend(m ...*mail.Message) error {
	s.messages = append(s.messages, m...)
	return nil
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenders.db")
	conn, err := sqlx.Open("sqlite", db.SQLiteDSN(path))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return conn
}

func portalServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ausschreibungen", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/ausschreibung/1">Dachsanierung</a>
			<a href="/ausschreibung/2">Kanalbau</a>
		</body></html>`)
	})
	mux.HandleFunc("/ausschreibung/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Dachsanierung Volksschule</h1>
			<div class="beschreibung">Erneuerung der Dachhaut</div></body></html>`)
	})
	mux.HandleFunc("/ausschreibung/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Kanalbau Bauabschnitt 3</h1>
			<div class="beschreibung">Entwässerung Ortskern</div></body></html>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>Portal</body></html>")
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestOrchestrator(t *testing.T, conn *sqlx.DB, sender *recordingSender, portals []config.PortalConfig) *Orchestrator {
	t.Helper()
	logger := zap.NewNop().Sugar()

	registry := portal.NewRegistry(portal.NewFetcher(config.CrawlConfig{UserAgent: "test-agent"}), logger)
	reconciler := reconcile.NewReconciler(reconcile.NewReconcilerParams{DB: conn, Logger: logger})
	notifier := notify.NewWithSender(config.SMTPConfig{From: "noreply@test", To: "ops@test"}, sender, logger)

	cfg := &config.Config{}
	cfg.Crawl.Workers = 2

	return &Orchestrator{
		cfg:        cfg,
		pipeline:   pipeline.New(registry, logger),
		reconciler: reconciler,
		notifier:   notifier,
		lock:       cache.NewCycleLock(nil, logger),
		summaries:  cache.NewSummaryCache(nil),
		logger:     logger,
		loadPortals: func(string) ([]config.PortalConfig, error) {
			return portals, nil
		},
	}
}

func TestRun_OneDeadPortalDoesNotAbortTheCycle(t *testing.T) {
	ts := portalServer(t)
	conn := newTestDB(t)
	sender := &recordingSender{}

	disabled := false
	o := newTestOrchestrator(t, conn, sender, []config.PortalConfig{
		{Key: "ok", Name: "Tender24", URL: ts.URL, Adapter: "tender24"},
		{Key: "dead", Name: "Totportal", URL: "http://127.0.0.1:1", Adapter: "generic"},
		{Key: "off", Name: "Abgeschaltet", URL: "http://ignored.test", Enabled: &disabled},
	})

	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, summary.Portals) // disabled portal never counted
	require.Equal(t, 1, summary.PortalsFailed)
	require.Equal(t, 2, summary.Found)
	require.Equal(t, 2, summary.New)
	require.Equal(t, 0, summary.Updated)
	require.Len(t, summary.NewRecords, 2)

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM tenders WHERE status = 'NEW'`))
	require.Equal(t, 2, n)

	// One digest for the batch of new tenders.
	require.Len(t, sender.messages, 1)
}

func TestRun_SecondCycleUpdatesInsteadOfInserting(t *testing.T) {
	ts := portalServer(t)
	conn := newTestDB(t)
	sender := &recordingSender{}

	o := newTestOrchestrator(t, conn, sender, []config.PortalConfig{
		{Key: "ok", Name: "Tender24", URL: ts.URL, Adapter: "tender24"},
	})

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	summary, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, summary.New)
	require.Equal(t, 2, summary.Updated)
	require.Empty(t, summary.NewRecords)

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM tenders WHERE status = 'INTERESTING'`))
	require.Equal(t, 2, n)

	// No new records, no second digest.
	require.Len(t, sender.messages, 1)
}

func TestRunPortals_FiltersByKey(t *testing.T) {
	ts := portalServer(t)
	conn := newTestDB(t)

	o := newTestOrchestrator(t, conn, &recordingSender{}, []config.PortalConfig{
		{Key: "ok", Name: "Tender24", URL: ts.URL, Adapter: "tender24"},
		{Key: "dead", Name: "Totportal", URL: "http://127.0.0.1:1", Adapter: "generic"},
	})

	summary, err := o.RunPortals(context.Background(), "ok")
	require.NoError(t, err)
	require.Equal(t, 1, summary.Portals)
	require.Equal(t, 0, summary.PortalsFailed)
	require.Equal(t, 2, summary.New)

	_, err = o.RunPortals(context.Background(), "unbekannt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no enabled portal matches")
}

func TestRun_CachesLastSummary(t *testing.T) {
	ts := portalServer(t)
	conn := newTestDB(t)

	o := newTestOrchestrator(t, conn, &recordingSender{}, []config.PortalConfig{
		{Key: "ok", Name: "Tender24", URL: ts.URL, Adapter: "tender24"},
	})

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	payload, ok, err := o.summaries.Last(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	var cached Summary
	require.NoError(t, json.Unmarshal(payload, &cached))
	require.Equal(t, 2, cached.New)
	require.Equal(t, 1, cached.Portals)
}

func TestRun_AllRecordsEndUpCategorized(t *testing.T) {
	ts := portalServer(t)
	conn := newTestDB(t)

	o := newTestOrchestrator(t, conn, &recordingSender{}, []config.PortalConfig{
		{Key: "ok", Name: "Tender24", URL: ts.URL, Adapter: "tender24"},
	})

	summary, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, summary.NewRecords)
	for _, rec := range summary.NewRecords {
		require.NotEmpty(t, rec.Category)
		require.Equal(t, tender.StatusNew, rec.Status)
	}
}

package tenders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tender-scout/db"
	"tender-scout/internal/tender"
	"tender-scout/internal/tender/dao"
)

func newTestRouter(t *testing.T) (*chi.Mux, *sqlx.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenders.db")
	conn, err := sqlx.Open("sqlite", db.SQLiteDSN(path))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))

	logger := zap.NewNop().Sugar()
	store := dao.NewStore(dao.NewStoreParams{DB: conn, Logger: logger})

	r := chi.NewRouter()
	NewListHandler(NewListHandlerParams{Store: store, Logger: logger}).RegisterRoute(r)
	NewGetByIDHandler(NewGetByIDHandlerParams{Store: store, Logger: logger}).RegisterRoute(r)
	NewStatsHandler(NewStatsHandlerParams{Store: store, Logger: logger}).RegisterRoute(r)
	NewUpdateStatusHandler(NewUpdateStatusHandlerParams{Store: store, Logger: logger}).RegisterRoute(r)
	NewUpdateAnalysisHandler(NewUpdateAnalysisHandlerParams{Store: store, Logger: logger}).RegisterRoute(r)
	return r, conn
}

func seedTender(t *testing.T, conn *sqlx.DB, id string, status tender.Status, crawledAt time.Time) {
	t.Helper()
	_, err := conn.ExecContext(context.Background(), conn.Rebind(`
INSERT INTO tenders (id, title, source_url, source_portal, status, crawled_at)
VALUES (?, ?, ?, ?, ?, ?)`),
		id, "Tender "+id, "https://portal.test/"+id, "Test Portal", status, crawledAt)
	require.NoError(t, err)
}

func TestListTenders(t *testing.T) {
	r, conn := newTestRouter(t)
	now := time.Now().UTC()
	seedTender(t, conn, "t-aaa", tender.StatusNew, now)
	seedTender(t, conn, "t-bbb", tender.StatusInteresting, now.Add(-time.Hour))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tenders []tender.Record `json:"tenders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tenders, 2)
	require.Equal(t, "t-aaa", body.Tenders[0].ID) // newest first

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders?status=INTERESTING", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tenders, 1)
	require.Equal(t, "t-bbb", body.Tenders[0].ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders?status=SHINY", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders?limit=0", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTenderByID(t *testing.T) {
	r, conn := newTestRouter(t)
	seedTender(t, conn, "t-aaa", tender.StatusNew, time.Now().UTC())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders/t-aaa", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got tender.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "t-aaa", got.ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders/t-nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTenderStatus(t *testing.T) {
	r, conn := newTestRouter(t)
	seedTender(t, conn, "t-aaa", tender.StatusInteresting, time.Now().UTC())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/tenders/t-aaa/status",
		strings.NewReader(`{"status":"applied"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var status string
	require.NoError(t, conn.Get(&status, `SELECT status FROM tenders WHERE id = 't-aaa'`))
	require.Equal(t, "APPLIED", status)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/tenders/t-aaa/status",
		strings.NewReader(`{"status":"MAYBE"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/tenders/t-nope/status",
		strings.NewReader(`{"status":"REJECTED"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTenderAnalysis(t *testing.T) {
	r, conn := newTestRouter(t)
	seedTender(t, conn, "t-aaa", tender.StatusInteresting, time.Now().UTC())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/tenders/t-aaa/analysis",
		strings.NewReader(`{"summary":"Passt gut","relevanceScore":80,"keyRisks":["knappe Frist"],"recommendation":"bewerben"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	// The stored analysis comes back on the single-tender read.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders/t-aaa", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		ID       string           `json:"id"`
		Analysis *tender.Analysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Analysis)
	require.Equal(t, "Passt gut", got.Analysis.Summary)
	require.Equal(t, 80, got.Analysis.RelevanceScore)
	require.Equal(t, []string{"knappe Frist"}, got.Analysis.KeyRisks)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/tenders/t-aaa/analysis",
		strings.NewReader(`not json`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/tenders/t-nope/analysis",
		strings.NewReader(`{"summary":"x"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTenders_IncludesStoredAnalysis(t *testing.T) {
	r, conn := newTestRouter(t)
	now := time.Now().UTC()
	seedTender(t, conn, "t-aaa", tender.StatusNew, now)
	seedTender(t, conn, "t-bbb", tender.StatusNew, now.Add(-time.Hour))
	_, err := conn.ExecContext(context.Background(), conn.Rebind(
		`UPDATE tenders SET analysis = ? WHERE id = ?`),
		`{"summary":"Interessant","relevanceScore":60,"keyRisks":[],"recommendation":"prüfen"}`, "t-bbb")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tenders []struct {
			ID       string           `json:"id"`
			Analysis *tender.Analysis `json:"analysis"`
		} `json:"tenders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tenders, 2)
	require.Nil(t, body.Tenders[0].Analysis)
	require.NotNil(t, body.Tenders[1].Analysis)
	require.Equal(t, "Interessant", body.Tenders[1].Analysis.Summary)
}

func TestTenderStats(t *testing.T) {
	r, conn := newTestRouter(t)
	now := time.Now().UTC()
	seedTender(t, conn, "t-aaa", tender.StatusNew, now)
	seedTender(t, conn, "t-bbb", tender.StatusNew, now)
	seedTender(t, conn, "t-ccc", tender.StatusApplied, now)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tenders/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dao.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 3, stats.Total)

	counts := map[tender.Status]int{}
	for _, sc := range stats.ByStatus {
		counts[sc.Status] = sc.Count
	}
	require.Equal(t, 2, counts[tender.StatusNew])
	require.Equal(t, 1, counts[tender.StatusApplied])
}

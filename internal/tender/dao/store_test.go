package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tender-scout/db"
	"tender-scout/internal/tender"
)

func newTestStore(t *testing.T) (*Store, *sqlx.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenders.db")
	conn, err := sqlx.Open("sqlite", db.SQLiteDSN(path))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))

	return &Store{db: conn, logger: zap.NewNop().Sugar()}, conn
}

func seed(t *testing.T, conn *sqlx.DB, id string, status tender.Status, crawledAt time.Time) {
	t.Helper()
	_, err := conn.Exec(`
INSERT INTO tenders (id, title, authority, location, deadline, published_at,
  category, description, status, source_url, source_portal, crawled_at)
VALUES (?, 'Titel', 'Amt', 'Graz', '2026-04-01', '2026-03-01',
  'Dacharbeiten', 'Text', ?, 'https://p.test/'||?, 'Testportal', ?)`,
		id, status, id, crawledAt)
	require.NoError(t, err)
}

func TestStore_ListFiltersByStatus(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seed(t, conn, "t-new001", tender.StatusNew, base.Add(2*time.Hour))
	seed(t, conn, "t-int001", tender.StatusInteresting, base.Add(time.Hour))
	seed(t, conn, "t-app001", tender.StatusApplied, base)

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest crawl first.
	require.Equal(t, "t-new001", all[0].ID)

	interesting, err := store.List(ctx, tender.StatusInteresting, 0)
	require.NoError(t, err)
	require.Len(t, interesting, 1)
	require.Equal(t, "t-int001", interesting[0].ID)

	limited, err := store.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestStore_GetByID(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	seed(t, conn, "t-abc123", tender.StatusNew, time.Now().UTC())

	rec, err := store.GetByID(ctx, "t-abc123")
	require.NoError(t, err)
	require.Equal(t, "Titel", rec.Title)

	_, err = store.GetByID(ctx, "t-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateStatus(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	seed(t, conn, "t-abc123", tender.StatusInteresting, time.Now().UTC())

	require.NoError(t, store.UpdateStatus(ctx, "t-abc123", tender.StatusApplied))

	rec, err := store.GetByID(ctx, "t-abc123")
	require.NoError(t, err)
	require.Equal(t, tender.StatusApplied, rec.Status)

	require.ErrorIs(t, store.UpdateStatus(ctx, "t-missing", tender.StatusRejected), ErrNotFound)
}

func TestStore_Stats(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seed(t, conn, "t-a", tender.StatusNew, now)
	seed(t, conn, "t-b", tender.StatusNew, now)
	seed(t, conn, "t-c", tender.StatusApplied, now)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Len(t, stats.ByStatus, 2)

	byStatus := map[tender.Status]int{}
	for _, sc := range stats.ByStatus {
		byStatus[sc.Status] = sc.Count
	}
	require.Equal(t, 2, byStatus[tender.StatusNew])
	require.Equal(t, 1, byStatus[tender.StatusApplied])
}

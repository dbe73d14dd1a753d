package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/tender"
)

var ErrNotFound = errors.New("tender not found")

// Store is the read and operator-write side of the tenders table. The crawl
// pipeline writes through the reconciler, never through here.
type Store struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

type NewStoreParams struct {
	fx.In

	DB     *sqlx.DB `name:"tenders"`
	Logger *zap.SugaredLogger
}

func NewStore(p NewStoreParams) *Store {
	return &Store{db: p.DB, logger: p.Logger}
}

// List returns tenders newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, status tender.Status, limit int) ([]tender.Record, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT * FROM tenders ORDER BY crawled_at DESC, id LIMIT ?`
	args := []any{limit}
	if status != "" {
		q = `SELECT * FROM tenders WHERE status = ? ORDER BY crawled_at DESC, id LIMIT ?`
		args = []any{status, limit}
	}

	records := []tender.Record{}
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	return records, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (tender.Record, error) {
	var rec tender.Record
	err := s.db.GetContext(ctx, &rec,
		s.db.Rebind(`SELECT * FROM tenders WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return tender.Record{}, ErrNotFound
	}
	if err != nil {
		return tender.Record{}, fmt.Errorf("get tender %s: %w", id, err)
	}
	return rec, nil
}

// UpdateStatus records an operator decision.
func (s *Store) UpdateStatus(ctx context.Context, id string, status tender.Status) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE tenders SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("update tender %s status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tender %s status rows: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Infow("tender_status_updated", "id", id, "status", status)
	return nil
}

// UpdateAnalysis attaches or replaces the annotation for one tender. The
// reconciler leaves this column alone, so it survives re-crawls.
func (s *Store) UpdateAnalysis(ctx context.Context, id string, a tender.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis for %s: %w", id, err)
	}

	res, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE tenders SET analysis = ? WHERE id = ?`), string(payload), id)
	if err != nil {
		return fmt.Errorf("update tender %s analysis: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tender %s analysis rows: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Infow("tender_analysis_updated", "id", id)
	return nil
}

type StatusCount struct {
	Status tender.Status `db:"status" json:"status"`
	Count  int           `db:"n" json:"count"`
}

type Stats struct {
	Total    int           `json:"total"`
	ByStatus []StatusCount `json:"byStatus"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := s.db.GetContext(ctx, &out.Total, `SELECT COUNT(*) FROM tenders`); err != nil {
		return Stats{}, fmt.Errorf("count tenders: %w", err)
	}
	out.ByStatus = []StatusCount{}
	err := s.db.SelectContext(ctx, &out.ByStatus,
		`SELECT status, COUNT(*) AS n FROM tenders GROUP BY status ORDER BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("count tenders by status: %w", err)
	}
	return out, nil
}

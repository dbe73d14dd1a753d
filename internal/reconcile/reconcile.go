package reconcile

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/db"
	"tender-scout/internal/tender"
)

// Error wraps any failure inside the reconciliation transaction. Callers see
// this one type; the transaction either applied completely or not at all.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("reconciliation failed: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Outcome summarizes one reconciliation run.
type Outcome struct {
	Found      int
	New        int
	Updated    int
	NewRecords []tender.Record
}

// Reconciler merges one cycle's crawled records into the store. All three
// steps run in a single transaction: demote every NEW survivor from the
// previous cycle to INTERESTING, then upsert the fresh batch. Status and
// analysis of existing rows are never written; operator decisions survive
// every crawl.
type Reconciler struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

type NewReconcilerParams struct {
	fx.In

	DB     *sqlx.DB `name:"tenders"`
	Logger *zap.SugaredLogger
}

func NewReconciler(p NewReconcilerParams) *Reconciler {
	return &Reconciler{db: p.DB, logger: p.Logger}
}

func (r *Reconciler) Reconcile(ctx context.Context, records []tender.Record) (Outcome, error) {
	out, err := db.Tx(ctx, r.db, func(tx *sqlx.Tx) (Outcome, error) {
		out := Outcome{Found: len(records)}

		demoted, err := demoteNew(ctx, tx)
		if err != nil {
			return out, err
		}

		for _, rec := range records {
			fresh, err := mergeRecord(ctx, tx, rec)
			if err != nil {
				return out, err
			}
			if fresh {
				out.New++
				rec.Status = tender.StatusNew
				out.NewRecords = append(out.NewRecords, rec)
			} else {
				out.Updated++
			}
		}

		r.logger.Infow("reconcile_done",
			"found", out.Found,
			"new", out.New,
			"updated", out.Updated,
			"demoted", demoted,
		)
		return out, nil
	})
	if err != nil {
		return Outcome{}, &Error{Err: err}
	}
	return out, nil
}

// demoteNew moves every record the previous cycle left in NEW to INTERESTING.
// APPLIED and REJECTED are untouched.
func demoteNew(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE tenders SET status = ? WHERE status = ?`),
		tender.StatusInteresting, tender.StatusNew)
	if err != nil {
		return 0, fmt.Errorf("demote new: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("demote new rows: %w", err)
	}
	return n, nil
}

// mergeRecord updates the mutable fields of an existing row or inserts the
// record as NEW. It reports whether the record was fresh.
func mergeRecord(ctx context.Context, tx *sqlx.Tx, rec tender.Record) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
UPDATE tenders SET
  title = ?,
  authority = ?,
  location = ?,
  deadline = ?,
  published_at = ?,
  budget = ?,
  category = ?,
  description = ?,
  source_url = ?,
  source_portal = ?,
  crawled_at = ?
WHERE id = ?`),
		rec.Title, rec.Authority, rec.Location, rec.Deadline, rec.PublishedAt,
		rec.Budget, rec.Category, rec.Description, rec.SourceURL,
		rec.SourcePortal, rec.CrawledAt, rec.ID)
	if err != nil {
		return false, fmt.Errorf("update tender %s: %w", rec.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("update tender %s rows: %w", rec.ID, err)
	} else if n > 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO tenders (
  id, title, authority, location, deadline, published_at,
  budget, category, description, status, source_url, source_portal, crawled_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Title, rec.Authority, rec.Location, rec.Deadline,
		rec.PublishedAt, rec.Budget, rec.Category, rec.Description,
		tender.StatusNew, rec.SourceURL, rec.SourcePortal, rec.CrawledAt)
	if err != nil {
		return false, fmt.Errorf("insert tender %s: %w", rec.ID, err)
	}
	return true, nil
}

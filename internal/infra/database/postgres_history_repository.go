package database

import (
	"context"
	"database/sql"
	"fmt"

	"eara_connect_portal/internal/domain/report"

	"github.com/lib/pq"
)

type PostgresReviewHistoryRepository struct {
	db *sql.DB
}

func NewPostgresReviewHistoryRepository(db *sql.DB) *PostgresReviewHistoryRepository {
	return &PostgresReviewHistoryRepository{db: db}
}

// Append stores entries in one transaction. An entry already recorded for the same
// report, stage and review time is skipped.
func (r *PostgresReviewHistoryRepository) Append(ctx context.Context, entries []report.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for history append: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_review_history
               (report_id, stage, status, comments, reviewer_id, reviewed_at)
               VALUES ($1, $2, $3, $4, $5, $6)
               ON CONFLICT (report_id, stage, reviewed_at) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		reviewer := sql.NullInt64{Int64: e.ReviewerID, Valid: e.ReviewerID != 0}
		if _, err := stmt.ExecContext(ctx, e.ReportID, string(e.Stage), string(e.Status), e.Comments, reviewer, e.ReviewedAt); err != nil {
			return fmt.Errorf("error inserting history for report %d: %w", e.ReportID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history append: %w", err)
	}
	return nil
}

const historyColumns = `id, report_id, stage, status, comments, reviewer_id, reviewed_at, recorded_at`

func (r *PostgresReviewHistoryRepository) ListByReport(ctx context.Context, reportID int64) ([]report.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM report_review_history
               WHERE report_id = $1 ORDER BY reviewed_at, id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("error listing history for report %d: %w", reportID, err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *PostgresReviewHistoryRepository) ListByReports(ctx context.Context, reportIDs []int64) (map[int64][]report.HistoryEntry, error) {
	out := make(map[int64][]report.HistoryEntry)
	if len(reportIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM report_review_history
               WHERE report_id = ANY($1) ORDER BY report_id, reviewed_at, id`, pq.Array(reportIDs))
	if err != nil {
		return nil, fmt.Errorf("error listing history for reports: %w", err)
	}
	defer rows.Close()

	entries, err := scanHistory(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.ReportID] = append(out[e.ReportID], e)
	}
	return out, nil
}

func scanHistory(rows *sql.Rows) ([]report.HistoryEntry, error) {
	entries := make([]report.HistoryEntry, 0)
	for rows.Next() {
		var (
			e        report.HistoryEntry
			stage    string
			status   string
			reviewer sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.ReportID, &stage, &status, &e.Comments, &reviewer, &e.ReviewedAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		e.Stage = report.Stage(stage)
		e.Status = report.Status(status)
		e.ReviewerID = reviewer.Int64
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

package report

import (
	"context"
	"time"
)

// HistoryEntry is one review outcome kept after the live report has moved on.
type HistoryEntry struct {
	ID         int64
	ReportID   int64
	Stage      Stage
	Status     Status
	Comments   string
	ReviewerID int64
	ReviewedAt time.Time
	RecordedAt time.Time
}

// HistoryRepository persists review outcomes the backend overwrites on resubmission.
type HistoryRepository interface {
	Append(ctx context.Context, entries []HistoryEntry) error
	ListByReport(ctx context.Context, reportID int64) ([]HistoryEntry, error)
	ListByReports(ctx context.Context, reportIDs []int64) (map[int64][]HistoryEntry, error)
}

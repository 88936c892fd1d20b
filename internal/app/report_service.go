package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/cache"
	"eara_connect_portal/internal/infra/export"
	"eara_connect_portal/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const (
	reportsPrefix = "reports:"
	statsPrefix   = "stats:"
)

// ReportDetail is a report together with every review outcome it has been through.
type ReportDetail struct {
	Report  report.Report
	History []report.HistoryEntry
}

// ListQuery is the filter and ordering applied to a report list.
type ListQuery struct {
	Filter report.Filter
	Sort   report.SortField
	Dir    report.Direction
}

type ReportService struct {
	backend ReportBackend
	history report.HistoryRepository // nil when no database is configured
	cache   *cache.QueryCache
	log     *logrus.Entry
	now     func() time.Time
}

func NewReportService(b ReportBackend, history report.HistoryRepository, c *cache.QueryCache, log *logrus.Entry) *ReportService {
	return &ReportService{backend: b, history: history, cache: c, log: log, now: time.Now}
}

func isChair(u user.SessionUser) bool {
	return u.Role == user.RoleChair || u.Role == user.RoleViceChair
}

func (s *ReportService) ChairReports(ctx context.Context, u user.SessionUser) ([]report.Report, error) {
	if !isChair(u) {
		return nil, ErrForbidden
	}
	return cache.Fetch(ctx, s.cache, cache.Key("reports", "chair", u.ID), func(ctx context.Context) ([]report.Report, error) {
		return s.backend.ChairReports(ctx, u.ID)
	})
}

func (s *ReportService) ChairResolutions(ctx context.Context, u user.SessionUser) ([]resolution.Resolution, error) {
	if !isChair(u) {
		return nil, ErrForbidden
	}
	return cache.Fetch(ctx, s.cache, cache.Key("resolutions", "chair", u.ID), func(ctx context.Context) ([]resolution.Resolution, error) {
		return s.backend.ChairResolutions(ctx, u.ID)
	})
}

// Submit files a new report. The resolution must be one assigned to the chair's subcommittee.
func (s *ReportService) Submit(ctx context.Context, u user.SessionUser, d report.Draft) (*backend.Submission, error) {
	if !isChair(u) {
		return nil, ErrForbidden
	}
	if d.SubcommitteeID == 0 {
		d.SubcommitteeID = u.SubcommitteeID
	}
	if errs := d.ValidateNew(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	assigned, err := s.ChairResolutions(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to load assigned resolutions: %w", err)
	}
	if !slices.ContainsFunc(assigned, func(r resolution.Resolution) bool { return r.ID == d.ResolutionID }) {
		return nil, ErrNotAssigned
	}

	sub, err := s.backend.SubmitReport(ctx, u.ID, d)
	if err != nil {
		logger.LogError(s.log, "ReportService", "Submit", err, logrus.Fields{"user_id": u.ID, "resolution_id": d.ResolutionID})
		return nil, err
	}
	s.invalidate()
	s.log.WithFields(logrus.Fields{"report_id": sub.ID, "user_id": u.ID}).Info("Report submitted")
	return sub, nil
}

// Resubmit sends a corrected draft for a rejected report. The review comments the backend
// clears on resubmission are kept in the local history first.
func (s *ReportService) Resubmit(ctx context.Context, u user.SessionUser, reportID int64, d report.Draft) (*report.Report, error) {
	if !isChair(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	prev, err := s.backend.Report(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !ownsReport(u, *prev) {
		return nil, ErrForbidden
	}
	next, lost, err := report.Resubmit(*prev, d, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.ResubmitReport(ctx, u.ID, reportID, d)
	if err != nil {
		logger.LogError(s.log, "ReportService", "Resubmit", err, logrus.Fields{"report_id": reportID})
		return nil, err
	}
	s.record(ctx, lost)
	s.invalidate()

	if updated == nil || updated.ID == 0 {
		updated = &next
	}
	return updated, nil
}

func ownsReport(u user.SessionUser, r report.Report) bool {
	if r.SubmittedBy != nil && r.SubmittedBy.ID == u.ID {
		return true
	}
	return u.SubcommitteeID != 0 && r.SubcommitteeID() == u.SubcommitteeID
}

func (s *ReportService) HODQueue(ctx context.Context, u user.SessionUser) ([]report.Report, error) {
	if !user.HasHODPrivileges(u) {
		return nil, ErrForbidden
	}
	return s.byStatus(ctx, report.StatusSubmitted)
}

func (s *ReportService) CommissionerQueue(ctx context.Context, u user.SessionUser) ([]report.Report, error) {
	if u.Role != user.RoleCommissionerGeneral {
		return nil, ErrForbidden
	}
	return s.byStatus(ctx, report.StatusApprovedByHOD)
}

func (s *ReportService) byStatus(ctx context.Context, status report.Status) ([]report.Report, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("reports", "status", status), func(ctx context.Context) ([]report.Report, error) {
		return s.backend.ReportsByStatus(ctx, status)
	})
}

func (s *ReportService) All(ctx context.Context) ([]report.Report, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("reports", "all"), s.backend.Reports)
}

// RefreshQueues drops and re-fetches the reviewer queues so the next dashboard poll is served from cache.
func (s *ReportService) RefreshQueues(ctx context.Context) error {
	s.cache.Invalidate(reportsPrefix)
	for _, status := range []report.Status{report.StatusSubmitted, report.StatusApprovedByHOD} {
		if _, err := s.byStatus(ctx, status); err != nil {
			return fmt.Errorf("failed to refresh %s queue: %w", status, err)
		}
	}
	_, err := s.All(ctx)
	return err
}

// List returns the reports visible on u's dashboard, filtered and sorted.
func (s *ReportService) List(ctx context.Context, u user.SessionUser, q ListQuery) ([]report.Report, error) {
	var (
		reports []report.Report
		err     error
	)
	switch user.DashboardFor(u) {
	case user.DashboardChair:
		reports, err = s.ChairReports(ctx, u)
	case user.DashboardMember:
		if u.SubcommitteeID == 0 {
			return []report.Report{}, nil
		}
		q.Filter.SubcommitteeID = u.SubcommitteeID
		reports, err = s.All(ctx)
	default:
		reports, err = s.All(ctx)
	}
	if err != nil {
		return nil, err
	}
	field, dir := q.Sort, q.Dir
	if field == "" || dir == "" {
		field, dir = report.ParseSort(string(field), string(dir))
	}
	return report.Sort(report.ApplyFilter(reports, q.Filter), field, dir), nil
}

// Get returns the report with its review history, oldest first.
func (s *ReportService) Get(ctx context.Context, u user.SessionUser, id int64) (*ReportDetail, error) {
	r, err := s.backend.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	switch user.DashboardFor(u) {
	case user.DashboardChair:
		if !ownsReport(u, *r) {
			return nil, ErrForbidden
		}
	case user.DashboardMember:
		// members read only what List shows them
		if u.SubcommitteeID == 0 || r.SubcommitteeID() != u.SubcommitteeID {
			return nil, ErrForbidden
		}
	}

	var stored []report.HistoryEntry
	if s.history != nil {
		stored, err = s.history.ListByReport(ctx, id)
		if err != nil {
			logger.LogError(s.log, "ReportService", "Get", err, logrus.Fields{"report_id": id})
		}
	}
	return &ReportDetail{Report: *r, History: mergeHistory(stored, report.ReviewHistory(*r))}, nil
}

// mergeHistory joins stored and live entries. An entry for the same stage and review time is kept once.
func mergeHistory(stored, live []report.HistoryEntry) []report.HistoryEntry {
	type key struct {
		stage report.Stage
		at    int64
	}
	seen := make(map[key]bool, len(stored)+len(live))
	out := make([]report.HistoryEntry, 0, len(stored)+len(live))
	for _, e := range append(slices.Clone(stored), live...) {
		k := key{e.Stage, e.ReviewedAt.Unix()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b report.HistoryEntry) int {
		return a.ReviewedAt.Compare(b.ReviewedAt)
	})
	return out
}

// Review applies a reviewer decision at stage. The decision and the transition are checked
// before the backend is called; on failure the report is left as it was.
func (s *ReportService) Review(ctx context.Context, u user.SessionUser, reportID int64, stage report.Stage, rv report.Review) (*report.Report, error) {
	switch stage {
	case report.StageHOD:
		if !user.HasHODPrivileges(u) {
			return nil, ErrForbidden
		}
	case report.StageCommissioner:
		if u.Role != user.RoleCommissionerGeneral {
			return nil, ErrForbidden
		}
	default:
		return nil, fmt.Errorf("%w: unknown stage %q", report.ErrInvalidTransition, stage)
	}
	if errs := rv.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	current, err := s.backend.Report(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := report.NextStatus(current.Status, stage, rv.Approved)
	if err != nil {
		return nil, err
	}

	var updated *report.Report
	if stage == report.StageHOD {
		updated, err = s.backend.HODReview(ctx, reportID, u.ID, rv)
	} else {
		updated, err = s.backend.CommissionerReview(ctx, reportID, u.ID, rv)
	}
	if err != nil {
		logger.LogError(s.log, "ReportService", "Review", err, logrus.Fields{"report_id": reportID, "stage": stage})
		return nil, err
	}

	s.record(ctx, []report.HistoryEntry{{
		ReportID:   reportID,
		Stage:      stage,
		Status:     next,
		Comments:   rv.Comments,
		ReviewerID: u.ID,
		ReviewedAt: s.now().Truncate(time.Second),
	}})
	s.invalidate()
	s.log.WithFields(logrus.Fields{"report_id": reportID, "stage": stage, "status": next, "reviewer_id": u.ID}).Info("Report reviewed")

	if updated == nil || updated.ID == 0 {
		current.Status = next
		updated = current
	}
	return updated, nil
}

// Export writes the reports visible to u as an xlsx workbook.
func (s *ReportService) Export(ctx context.Context, u user.SessionUser, q ListQuery, w io.Writer) error {
	reports, err := s.List(ctx, u, q)
	if err != nil {
		return err
	}
	history := map[int64][]report.HistoryEntry{}
	if s.history != nil {
		ids := make([]int64, len(reports))
		for i, r := range reports {
			ids[i] = r.ID
		}
		if history, err = s.history.ListByReports(ctx, ids); err != nil {
			return fmt.Errorf("failed to load review history for export: %w", err)
		}
	}
	for _, r := range reports {
		history[r.ID] = mergeHistory(history[r.ID], report.ReviewHistory(r))
	}

	f, err := export.ReportsWorkbook(reports, history)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func (s *ReportService) record(ctx context.Context, entries []report.HistoryEntry) {
	if s.history == nil || len(entries) == 0 {
		return
	}
	if err := s.history.Append(ctx, entries); err != nil {
		logger.LogError(s.log, "ReportService", "record", err, logrus.Fields{"report_id": entries[0].ReportID})
	}
}

func (s *ReportService) invalidate() {
	s.cache.Invalidate(reportsPrefix)
	s.cache.Invalidate(statsPrefix)
}

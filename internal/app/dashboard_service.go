package app

import (
	"context"
	"errors"
	"slices"
	"time"

	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/dashboard"
	"eara_connect_portal/internal/domain/deadline"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/cache"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeFilter = "3months"
	trendMonths       = 6
	snapshotPrefix    = "snapshot:"
	snapshotTTL       = 30 * time.Minute
)

// Section is one independently loaded part of a dashboard. A failed section keeps its error
// so the view can tell "could not load" apart from "nothing to show".
type Section[T any] struct {
	Data T
	Err  error
}

func (s Section[T]) Failed() bool {
	return s.Err != nil
}

// DeadlineItem is a resolution annotated with how close its deadline is.
type DeadlineItem struct {
	Resolution resolution.Resolution
	Days       int
	Urgency    deadline.Urgency
	Label      string
}

type ChairDashboard struct {
	Reports       Section[[]report.Report]
	Resolutions   Section[[]resolution.Resolution]
	Notifications Section[[]notification.Notification]
	Summary       report.Summary
	Rejected      []report.Report
	Deadlines     []DeadlineItem
}

type HODDashboard struct {
	Queue         Section[[]report.Report]
	Reports       Section[[]report.Report]
	Stats         Section[*dashboard.Stats]
	Notifications Section[[]notification.Notification]
}

type CommissionerDashboard struct {
	Queue         Section[[]report.Report]
	Reports       Section[[]report.Report]
	Stats         Section[*dashboard.Stats]
	Performance   Section[*dashboard.Performance]
	Years         Section[[]int]
	Notifications Section[[]notification.Notification]
}

type MemberDashboard struct {
	Resolutions   Section[[]resolution.Resolution]
	Meetings      Section[[]meeting.Meeting]
	Notifications Section[[]notification.Notification]
	Upcoming      []meeting.Meeting
	Deadlines     []DeadlineItem
}

type SecretaryDashboard struct {
	Meetings      Section[[]meeting.Meeting]
	Resolutions   Section[[]resolution.Resolution]
	Countries     Section[[]country.Country]
	Performance   Section[*dashboard.Performance]
	Subcommittees Section[[]dashboard.SubcommitteePerformance]
	Progress      Section[[]dashboard.ResolutionProgress]
	Trend         Section[*dashboard.MonthlyTrend]
	Notifications Section[[]notification.Notification]
}

// StatsSnapshot is the polled stats payload; which parts are set depends on the dashboard.
type StatsSnapshot struct {
	Dashboard   user.Dashboard         `json:"dashboard"`
	Summary     *report.Summary        `json:"summary,omitempty"`
	Reviewer    *dashboard.Stats       `json:"reviewer,omitempty"`
	Performance *dashboard.Performance `json:"performance,omitempty"`
}

// SnapshotStore keeps the last good performance payload for when the backend is unreachable.
type SnapshotStore interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
}

type DashboardService struct {
	backend       DashboardBackend
	reports       *ReportService
	resolutions   *ResolutionService
	meetings      *MeetingService
	countries     *CountryService
	notifications *NotificationService
	cache         *cache.QueryCache
	snapshots     SnapshotStore // nil without Redis
	log           *logrus.Entry
	now           func() time.Time
}

func NewDashboardService(
	b DashboardBackend,
	reports *ReportService,
	resolutions *ResolutionService,
	meetings *MeetingService,
	countries *CountryService,
	notifications *NotificationService,
	c *cache.QueryCache,
	snapshots SnapshotStore,
	log *logrus.Entry,
) *DashboardService {
	return &DashboardService{
		backend:       b,
		reports:       reports,
		resolutions:   resolutions,
		meetings:      meetings,
		countries:     countries,
		notifications: notifications,
		cache:         c,
		snapshots:     snapshots,
		log:           log,
		now:           time.Now,
	}
}

// load runs fn on g and stores its outcome in dst. It never fails the group, so one broken
// section leaves the others intact.
func load[T any](ctx context.Context, g *errgroup.Group, dst *Section[T], fn func(context.Context) (T, error)) {
	g.Go(func() error {
		v, err := fn(ctx)
		*dst = Section[T]{Data: v, Err: err}
		return nil
	})
}

func (s *DashboardService) ForChair(ctx context.Context, u user.SessionUser) *ChairDashboard {
	d := &ChairDashboard{}
	var g errgroup.Group
	load(ctx, &g, &d.Reports, func(ctx context.Context) ([]report.Report, error) { return s.reports.ChairReports(ctx, u) })
	load(ctx, &g, &d.Resolutions, func(ctx context.Context) ([]resolution.Resolution, error) { return s.reports.ChairResolutions(ctx, u) })
	load(ctx, &g, &d.Notifications, func(ctx context.Context) ([]notification.Notification, error) { return s.notifications.Unread(ctx, u) })
	_ = g.Wait()

	d.Summary = report.Summarize(d.Reports.Data)
	for _, r := range d.Reports.Data {
		if report.CanResubmit(r.Status) {
			d.Rejected = append(d.Rejected, r)
		}
	}
	d.Deadlines = s.deadlines(d.Resolutions.Data)
	s.logFailures(u, "chair", d.Reports.Err, d.Resolutions.Err, d.Notifications.Err)
	return d
}

func (s *DashboardService) ForHOD(ctx context.Context, u user.SessionUser) *HODDashboard {
	d := &HODDashboard{}
	var g errgroup.Group
	load(ctx, &g, &d.Queue, func(ctx context.Context) ([]report.Report, error) { return s.reports.HODQueue(ctx, u) })
	load(ctx, &g, &d.Reports, s.reports.All)
	load(ctx, &g, &d.Stats, func(ctx context.Context) (*dashboard.Stats, error) {
		return s.stats(ctx, dashboard.StatsScope{HODID: u.ID})
	})
	load(ctx, &g, &d.Notifications, func(ctx context.Context) ([]notification.Notification, error) { return s.notifications.Unread(ctx, u) })
	_ = g.Wait()

	s.logFailures(u, "hod", d.Queue.Err, d.Reports.Err, d.Stats.Err, d.Notifications.Err)
	return d
}

func (s *DashboardService) ForCommissioner(ctx context.Context, u user.SessionUser, timeFilter string) *CommissionerDashboard {
	if timeFilter == "" {
		timeFilter = DefaultTimeFilter
	}
	d := &CommissionerDashboard{}
	var g errgroup.Group
	load(ctx, &g, &d.Queue, func(ctx context.Context) ([]report.Report, error) { return s.reports.CommissionerQueue(ctx, u) })
	load(ctx, &g, &d.Reports, s.reports.All)
	load(ctx, &g, &d.Stats, func(ctx context.Context) (*dashboard.Stats, error) {
		return s.stats(ctx, dashboard.StatsScope{CommissionerID: u.ID})
	})
	load(ctx, &g, &d.Performance, func(ctx context.Context) (*dashboard.Performance, error) { return s.performance(ctx, timeFilter) })
	load(ctx, &g, &d.Years, func(ctx context.Context) ([]int, error) {
		return cache.Fetch(ctx, s.cache, cache.Key("stats", "years"), s.backend.AvailableYears)
	})
	load(ctx, &g, &d.Notifications, func(ctx context.Context) ([]notification.Notification, error) { return s.notifications.Unread(ctx, u) })
	_ = g.Wait()

	s.logFailures(u, "commissioner", d.Queue.Err, d.Reports.Err, d.Stats.Err, d.Performance.Err, d.Years.Err, d.Notifications.Err)
	return d
}

func (s *DashboardService) ForMember(ctx context.Context, u user.SessionUser) *MemberDashboard {
	d := &MemberDashboard{}
	var g errgroup.Group
	load(ctx, &g, &d.Resolutions, func(ctx context.Context) ([]resolution.Resolution, error) {
		return s.resolutions.ForSubcommittee(ctx, u.SubcommitteeID)
	})
	load(ctx, &g, &d.Meetings, s.meetings.List)
	load(ctx, &g, &d.Notifications, func(ctx context.Context) ([]notification.Notification, error) { return s.notifications.Unread(ctx, u) })
	_ = g.Wait()

	d.Upcoming = upcoming(d.Meetings.Data, s.now())
	d.Deadlines = s.deadlines(d.Resolutions.Data)
	s.logFailures(u, "member", d.Resolutions.Err, d.Meetings.Err, d.Notifications.Err)
	return d
}

func (s *DashboardService) ForSecretary(ctx context.Context, u user.SessionUser) *SecretaryDashboard {
	d := &SecretaryDashboard{}
	var g errgroup.Group
	load(ctx, &g, &d.Meetings, s.meetings.List)
	load(ctx, &g, &d.Resolutions, s.resolutions.List)
	load(ctx, &g, &d.Countries, s.countries.List)
	load(ctx, &g, &d.Performance, func(ctx context.Context) (*dashboard.Performance, error) { return s.performance(ctx, DefaultTimeFilter) })
	load(ctx, &g, &d.Subcommittees, func(ctx context.Context) ([]dashboard.SubcommitteePerformance, error) {
		return cache.Fetch(ctx, s.cache, cache.Key("stats", "subcommittees"), s.backend.SubcommitteePerformance)
	})
	load(ctx, &g, &d.Progress, func(ctx context.Context) ([]dashboard.ResolutionProgress, error) {
		return cache.Fetch(ctx, s.cache, cache.Key("stats", "progress"), s.backend.ResolutionProgress)
	})
	load(ctx, &g, &d.Trend, func(ctx context.Context) (*dashboard.MonthlyTrend, error) {
		return cache.Fetch(ctx, s.cache, cache.Key("stats", "trend", trendMonths), func(ctx context.Context) (*dashboard.MonthlyTrend, error) {
			return s.backend.MonthlyTrends(ctx, trendMonths)
		})
	})
	load(ctx, &g, &d.Notifications, func(ctx context.Context) ([]notification.Notification, error) { return s.notifications.Unread(ctx, u) })
	_ = g.Wait()

	s.logFailures(u, "secretary", d.Meetings.Err, d.Resolutions.Err, d.Countries.Err, d.Performance.Err,
		d.Subcommittees.Err, d.Progress.Err, d.Trend.Err, d.Notifications.Err)
	return d
}

// Stats is the payload the dashboards poll for their headline numbers.
func (s *DashboardService) Stats(ctx context.Context, u user.SessionUser) (*StatsSnapshot, error) {
	out := &StatsSnapshot{Dashboard: user.DashboardFor(u)}
	switch out.Dashboard {
	case user.DashboardHOD:
		st, err := s.stats(ctx, dashboard.StatsScope{HODID: u.ID})
		if err != nil {
			return nil, err
		}
		out.Reviewer = st
	case user.DashboardCommissioner:
		st, err := s.stats(ctx, dashboard.StatsScope{CommissionerID: u.ID})
		if err != nil {
			return nil, err
		}
		out.Reviewer = st
	case user.DashboardSecretary:
		p, err := s.performance(ctx, DefaultTimeFilter)
		if err != nil {
			return nil, err
		}
		out.Performance = p
	default:
		reports, err := s.reports.List(ctx, u, ListQuery{})
		if err != nil {
			return nil, err
		}
		sum := report.Summarize(reports)
		out.Summary = &sum
	}
	return out, nil
}

func (s *DashboardService) stats(ctx context.Context, scope dashboard.StatsScope) (*dashboard.Stats, error) {
	key := cache.Key("stats", "reviewer", scope.HODID, scope.CommissionerID)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*dashboard.Stats, error) {
		return s.backend.PerformanceStats(ctx, scope)
	})
}

// performance serves the comprehensive dashboard. When the backend cannot be reached the
// last snapshot stored in Redis is used instead.
func (s *DashboardService) performance(ctx context.Context, timeFilter string) (*dashboard.Performance, error) {
	key := cache.Key("stats", "performance", timeFilter)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*dashboard.Performance, error) {
		p, err := s.backend.Performance(ctx, timeFilter)
		if err == nil {
			if s.snapshots != nil {
				if serr := s.snapshots.SetJSON(ctx, snapshotPrefix+key, p, snapshotTTL); serr != nil {
					s.log.WithError(serr).Warn("Could not store performance snapshot")
				}
			}
			return p, nil
		}
		if s.snapshots == nil || !errors.Is(err, backend.ErrUnavailable) {
			return nil, err
		}
		var snap dashboard.Performance
		found, serr := s.snapshots.GetJSON(ctx, snapshotPrefix+key, &snap)
		if serr != nil || !found {
			return nil, err
		}
		s.log.WithField("time_filter", timeFilter).Warn("Backend unavailable, serving last performance snapshot")
		return &snap, nil
	})
}

// RefreshQueues and RefreshStats are run by the scheduler to keep polled data warm.
func (s *DashboardService) RefreshQueues(ctx context.Context) error {
	return s.reports.RefreshQueues(ctx)
}

func (s *DashboardService) RefreshStats(ctx context.Context) error {
	s.cache.Invalidate(statsPrefix)
	_, err := s.performance(ctx, DefaultTimeFilter)
	return err
}

func (s *DashboardService) deadlines(list []resolution.Resolution) []DeadlineItem {
	now := s.now()
	items := make([]DeadlineItem, 0, len(list))
	for _, r := range list {
		if r.Deadline == nil || r.Deadline.IsZero() || r.Status == resolution.StatusCompleted || r.Status == resolution.StatusCancelled {
			continue
		}
		items = append(items, DeadlineItem{
			Resolution: r,
			Days:       deadline.DaysUntil(r.Deadline.Time, now),
			Urgency:    deadline.Classify(r.Deadline.Time, now),
			Label:      deadline.Label(r.Deadline.Time, now),
		})
	}
	slices.SortStableFunc(items, func(a, b DeadlineItem) int { return a.Days - b.Days })
	return items
}

func upcoming(list []meeting.Meeting, now time.Time) []meeting.Meeting {
	out := make([]meeting.Meeting, 0, len(list))
	for _, m := range list {
		if m.Status == meeting.StatusScheduled && m.MeetingDate.After(now) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b meeting.Meeting) int { return a.MeetingDate.Compare(b.MeetingDate.Time) })
	return out
}

func (s *DashboardService) logFailures(u user.SessionUser, view string, errs ...error) {
	if err := errors.Join(errs...); err != nil {
		s.log.WithFields(logrus.Fields{"user_id": u.ID, "dashboard": view}).WithError(err).Warn("Dashboard loaded with failed sections")
	}
}

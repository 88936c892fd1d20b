package app

import (
	"context"
	"io"
	"sync"
	"time"

	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/dashboard"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	domainTelegram "eara_connect_portal/internal/domain/telegram"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/cache"
	idb "eara_connect_portal/internal/infra/database"
	"eara_connect_portal/internal/infra/redisstore"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newCache() *cache.QueryCache {
	return cache.New(64, time.Minute, time.Second, quietLog())
}

var (
	chair        = user.SessionUser{ID: 11, Email: "chair@eara.org", Role: user.RoleChair, SubcommitteeID: 2, SubcommitteeName: "Customs"}
	hod          = user.SessionUser{ID: 21, Email: "hod@eara.org", Role: user.RoleHOD}
	commissioner = user.SessionUser{ID: 31, Email: "cg@eara.org", Role: user.RoleCommissionerGeneral}
	secretary    = user.SessionUser{ID: 41, Email: "sec@eara.org", Role: user.RoleSecretary}
	member       = user.SessionUser{ID: 51, Email: "member@eara.org", Role: user.RoleSubcommitteeMember, SubcommitteeID: 2}
)

// fakeBackend is an in-memory stand-in for *backend.Client that records every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	err   map[string]error

	users         map[string]*user.User
	reports       map[int64]*report.Report
	resolutions   map[int64]*resolution.Resolution
	meetings      map[int64]*meeting.Meeting
	countries     map[int64]*country.Country
	notifications map[int64][]notification.Notification
	invitations   map[int64]*meeting.Invitation
	invitees      []meeting.Invitee
	stats         *dashboard.Stats
	performance   *dashboard.Performance

	assigned    []resolution.Row
	lastReview  report.Review
	uploaded    []byte
	uploadType  string
	readMarked  []int64
	nextCountry int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		err:           map[string]error{},
		users:         map[string]*user.User{},
		reports:       map[int64]*report.Report{},
		resolutions:   map[int64]*resolution.Resolution{},
		meetings:      map[int64]*meeting.Meeting{},
		countries:     map[int64]*country.Country{},
		notifications: map[int64][]notification.Notification{},
		invitations:   map[int64]*meeting.Invitation{},
		nextCountry:   100,
	}
}

func (f *fakeBackend) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err[name]
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*backend.LoginResult, error) {
	if err := f.call("Login"); err != nil {
		return nil, err
	}
	u, ok := f.users[email]
	if !ok || password != "secret1" {
		return nil, &backend.APIError{StatusCode: 401, Message: "Invalid credentials"}
	}
	return &backend.LoginResult{User: *u, SessionCookie: "JSESSIONID=abc"}, nil
}

func (f *fakeBackend) Logout(context.Context) error { return f.call("Logout") }

func (f *fakeBackend) reportList(match func(report.Report) bool) []report.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []report.Report{}
	for _, r := range f.reports {
		if match(*r) {
			out = append(out, *r)
		}
	}
	return out
}

func (f *fakeBackend) ChairReports(_ context.Context, chairID int64) ([]report.Report, error) {
	if err := f.call("ChairReports"); err != nil {
		return nil, err
	}
	return f.reportList(func(r report.Report) bool { return r.SubmittedBy != nil && r.SubmittedBy.ID == chairID }), nil
}

func (f *fakeBackend) ChairResolutions(context.Context, int64) ([]resolution.Resolution, error) {
	if err := f.call("ChairResolutions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []resolution.Resolution{}
	for _, r := range f.resolutions {
		if r.AssignedTo(chair.SubcommitteeID) > 0 {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeBackend) SubmitReport(_ context.Context, chairID int64, d report.Draft) (*backend.Submission, error) {
	if err := f.call("SubmitReport"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.reports) + 1000)
	f.reports[id] = &report.Report{
		ID:                    id,
		Resolution:            &report.ResolutionRef{ID: d.ResolutionID},
		Subcommittee:          &report.SubcommitteeRef{ID: d.SubcommitteeID},
		SubmittedBy:           &report.UserRef{ID: chairID},
		ProgressDetails:       d.ProgressDetails,
		PerformancePercentage: d.PerformancePercentage,
		Status:                report.StatusSubmitted,
	}
	return &backend.Submission{ID: id, Status: report.StatusSubmitted}, nil
}

func (f *fakeBackend) ResubmitReport(_ context.Context, _, reportID int64, d report.Draft) (*report.Report, error) {
	if err := f.call("ResubmitReport"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reports[reportID]
	r.ProgressDetails = d.ProgressDetails
	r.PerformancePercentage = d.PerformancePercentage
	r.Status = report.StatusSubmitted
	r.HODComments, r.CommissionerComments = "", ""
	r.HODReviewedAt, r.CommissionerReviewedAt = nil, nil
	out := *r
	return &out, nil
}

func (f *fakeBackend) Reports(context.Context) ([]report.Report, error) {
	if err := f.call("Reports"); err != nil {
		return nil, err
	}
	return f.reportList(func(report.Report) bool { return true }), nil
}

func (f *fakeBackend) ReportsByStatus(_ context.Context, status report.Status) ([]report.Report, error) {
	if err := f.call("ReportsByStatus"); err != nil {
		return nil, err
	}
	return f.reportList(func(r report.Report) bool { return r.Status == status }), nil
}

func (f *fakeBackend) Report(_ context.Context, id int64) (*report.Report, error) {
	if err := f.call("Report"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "Report not found"}
	}
	out := *r
	return &out, nil
}

func (f *fakeBackend) review(name string, reportID int64, rv report.Review, approved, rejected report.Status) (*report.Report, error) {
	if err := f.call(name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReview = rv
	r := f.reports[reportID]
	r.Status = rejected
	if rv.Approved {
		r.Status = approved
	}
	out := *r
	return &out, nil
}

func (f *fakeBackend) HODReview(_ context.Context, reportID, _ int64, rv report.Review) (*report.Report, error) {
	r, err := f.review("HODReview", reportID, rv, report.StatusApprovedByHOD, report.StatusRejectedByHOD)
	if err == nil {
		f.mu.Lock()
		f.reports[reportID].HODComments = rv.Comments
		f.mu.Unlock()
	}
	return r, err
}

func (f *fakeBackend) CommissionerReview(_ context.Context, reportID, _ int64, rv report.Review) (*report.Report, error) {
	return f.review("CommissionerReview", reportID, rv, report.StatusApprovedByCommissioner, report.StatusRejectedByCommissioner)
}

func (f *fakeBackend) Resolutions(context.Context) ([]resolution.Resolution, error) {
	if err := f.call("Resolutions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []resolution.Resolution{}
	for _, r := range f.resolutions {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeBackend) Resolution(_ context.Context, id int64) (*resolution.Resolution, error) {
	if err := f.call("Resolution"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resolutions[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "Resolution not found"}
	}
	out := *r
	return &out, nil
}

func (f *fakeBackend) ResolutionsByMeeting(context.Context, int64) ([]resolution.Resolution, error) {
	return nil, f.call("ResolutionsByMeeting")
}

func (f *fakeBackend) ResolutionsBySubcommittee(_ context.Context, subcommitteeID int64) ([]resolution.Resolution, error) {
	if err := f.call("ResolutionsBySubcommittee"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []resolution.Resolution{}
	for _, r := range f.resolutions {
		if r.AssignedTo(subcommitteeID) > 0 {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateResolution(_ context.Context, meetingID int64, d resolution.Draft) error {
	if err := f.call("CreateResolution"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.resolutions) + 1)
	f.resolutions[id] = &resolution.Resolution{
		ID: id, Title: d.Title, Description: d.Description, Status: resolution.StatusAssigned,
		Meeting: &resolution.MeetingRef{ID: meetingID},
	}
	return nil
}

func (f *fakeBackend) UpdateResolution(_ context.Context, id int64, d resolution.Draft) (*resolution.Resolution, error) {
	if err := f.call("UpdateResolution"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resolutions[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "Resolution not found"}
	}
	r.Title, r.Description = d.Title, d.Description
	if d.Status != "" {
		r.Status = d.Status
	}
	out := *r
	return &out, nil
}

func (f *fakeBackend) DeleteResolution(_ context.Context, id int64) error {
	if err := f.call("DeleteResolution"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.resolutions, id)
	return nil
}

func (f *fakeBackend) AssignResolution(_ context.Context, _ int64, rows []resolution.Row) error {
	if err := f.call("AssignResolution"); err != nil {
		return err
	}
	f.mu.Lock()
	f.assigned = rows
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) UpdateResolutionStatus(_ context.Context, id int64, status resolution.Status) (*resolution.Resolution, error) {
	if err := f.call("UpdateResolutionStatus"); err != nil {
		return nil, err
	}
	return &resolution.Resolution{ID: id, Status: status}, nil
}

func (f *fakeBackend) Subcommittees(context.Context) ([]resolution.SubcommitteeRef, error) {
	return []resolution.SubcommitteeRef{{ID: 2, Name: "Customs"}}, f.call("Subcommittees")
}

func (f *fakeBackend) Meetings(context.Context) ([]meeting.Meeting, error) {
	if err := f.call("Meetings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []meeting.Meeting{}
	for _, m := range f.meetings {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeBackend) Meeting(_ context.Context, id int64) (*meeting.Meeting, error) {
	if err := f.call("Meeting"); err != nil {
		return nil, err
	}
	m, ok := f.meetings[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "Meeting not found"}
	}
	out := *m
	return &out, nil
}

func (f *fakeBackend) invitationList(match func(meeting.Invitation) bool) []meeting.Invitation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []meeting.Invitation{}
	for _, inv := range f.invitations {
		if match(*inv) {
			out = append(out, *inv)
		}
	}
	return out
}

func (f *fakeBackend) MeetingInvitations(_ context.Context, meetingID int64) ([]meeting.Invitation, error) {
	if err := f.call("MeetingInvitations"); err != nil {
		return nil, err
	}
	return f.invitationList(func(inv meeting.Invitation) bool { return inv.MeetingID() == meetingID }), nil
}

func (f *fakeBackend) UserInvitations(_ context.Context, userID int64) ([]meeting.Invitation, error) {
	if err := f.call("UserInvitations"); err != nil {
		return nil, err
	}
	return f.invitationList(func(inv meeting.Invitation) bool { return inv.UserID() == userID }), nil
}

func (f *fakeBackend) PotentialInvitees(context.Context, int64) ([]meeting.Invitee, error) {
	return append([]meeting.Invitee(nil), f.invitees...), f.call("PotentialInvitees")
}

func (f *fakeBackend) CreateInvitation(_ context.Context, meetingID, userID int64) (*meeting.Invitation, error) {
	if err := f.call("CreateInvitation"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := &meeting.Invitation{
		ID: int64(len(f.invitations) + 100), Status: meeting.InvitationPending,
		Meeting: &meeting.MeetingRef{ID: meetingID}, User: &meeting.Invitee{ID: userID},
	}
	f.invitations[inv.ID] = inv
	out := *inv
	return &out, nil
}

func (f *fakeBackend) DeleteInvitation(_ context.Context, id int64) error {
	if err := f.call("DeleteInvitation"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.invitations, id)
	return nil
}

func (f *fakeBackend) RespondToInvitation(_ context.Context, id int64, r meeting.Response) (*meeting.Invitation, error) {
	if err := f.call("RespondToInvitation"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "Invitation not found"}
	}
	inv.Status, inv.ResponseComment = r.Status, r.Comment
	out := *inv
	return &out, nil
}

func (f *fakeBackend) CreateMeeting(_ context.Context, d meeting.Draft) (*meeting.Meeting, error) {
	if err := f.call("CreateMeeting"); err != nil {
		return nil, err
	}
	at, _ := d.At()
	m := &meeting.Meeting{ID: int64(len(f.meetings) + 1), Title: d.Title, MeetingType: d.MeetingType, Status: meeting.StatusScheduled}
	m.MeetingDate.Time = at
	f.meetings[m.ID] = m
	return m, nil
}

func (f *fakeBackend) UpdateMeeting(_ context.Context, id int64, d meeting.Draft) (*meeting.Meeting, error) {
	if err := f.call("UpdateMeeting"); err != nil {
		return nil, err
	}
	return &meeting.Meeting{ID: id, Title: d.Title}, nil
}

func (f *fakeBackend) DeleteMeeting(_ context.Context, id int64) error {
	if err := f.call("DeleteMeeting"); err != nil {
		return err
	}
	delete(f.meetings, id)
	return nil
}

func (f *fakeBackend) UpdateMeetingStatus(_ context.Context, id int64, status meeting.Status) (*meeting.Meeting, error) {
	if err := f.call("UpdateMeetingStatus"); err != nil {
		return nil, err
	}
	f.meetings[id].Status = status
	out := *f.meetings[id]
	return &out, nil
}

func (f *fakeBackend) Countries(context.Context) ([]country.Country, error) {
	if err := f.call("Countries"); err != nil {
		return nil, err
	}
	out := []country.Country{}
	for _, c := range f.countries {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeBackend) Country(_ context.Context, id int64) (*country.Country, error) {
	if err := f.call("Country"); err != nil {
		return nil, err
	}
	return f.countries[id], nil
}

func (f *fakeBackend) CreateCountry(_ context.Context, d country.Draft) (*country.Country, error) {
	if err := f.call("CreateCountry"); err != nil {
		return nil, err
	}
	f.nextCountry++
	c := &country.Country{ID: f.nextCountry, Name: d.Name, IsoCode: d.IsoCode, Email: d.Email}
	f.countries[c.ID] = c
	return c, nil
}

func (f *fakeBackend) UpdateCountry(_ context.Context, id int64, d country.Draft) (*country.Country, error) {
	if err := f.call("UpdateCountry"); err != nil {
		return nil, err
	}
	return &country.Country{ID: id, Name: d.Name, IsoCode: d.IsoCode}, nil
}

func (f *fakeBackend) DeleteCountry(_ context.Context, id int64) error {
	if err := f.call("DeleteCountry"); err != nil {
		return err
	}
	delete(f.countries, id)
	return nil
}

func (f *fakeBackend) CountryMembers(_ context.Context, countryID int64) (*country.Members, error) {
	if err := f.call("CountryMembers"); err != nil {
		return nil, err
	}
	return &country.Members{Country: country.Country{ID: countryID}}, nil
}

func (f *fakeBackend) RevenueAuthorities(context.Context) ([]country.RevenueAuthority, error) {
	return []country.RevenueAuthority{{ID: 1, Name: "TRA"}, {ID: 2, Name: "KRA"}}, f.call("RevenueAuthorities")
}

func (f *fakeBackend) RevenueAuthoritiesByCountry(context.Context, int64) ([]country.RevenueAuthority, error) {
	return []country.RevenueAuthority{{ID: 1, Name: "TRA"}}, f.call("RevenueAuthoritiesByCountry")
}

func (f *fakeBackend) CreateRevenueAuthority(_ context.Context, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	return &country.RevenueAuthority{ID: 3, Name: d.Name}, f.call("CreateRevenueAuthority")
}

func (f *fakeBackend) UpdateRevenueAuthority(_ context.Context, id int64, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error) {
	return &country.RevenueAuthority{ID: id, Name: d.Name}, f.call("UpdateRevenueAuthority")
}

func (f *fakeBackend) DeleteRevenueAuthority(context.Context, int64) error {
	return f.call("DeleteRevenueAuthority")
}

func (f *fakeBackend) Notifications(_ context.Context, userID int64) ([]notification.Notification, error) {
	if err := f.call("Notifications"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.Notification(nil), f.notifications[userID]...), nil
}

func (f *fakeBackend) UnreadNotifications(_ context.Context, userID int64) ([]notification.Notification, error) {
	if err := f.call("UnreadNotifications"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return notification.Unread(f.notifications[userID]), nil
}

func (f *fakeBackend) UnreadCount(_ context.Context, userID int64) (int, error) {
	if err := f.call("UnreadCount"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(notification.Unread(f.notifications[userID])), nil
}

func (f *fakeBackend) MarkNotificationRead(_ context.Context, id int64) error {
	if err := f.call("MarkNotificationRead"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readMarked = append(f.readMarked, id)
	for uid, list := range f.notifications {
		f.notifications[uid] = notification.MarkRead(list, id)
	}
	return nil
}

func (f *fakeBackend) MarkAllNotificationsRead(_ context.Context, userID int64) error {
	if err := f.call("MarkAllNotificationsRead"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications[userID] {
		f.notifications[userID] = notification.MarkRead(f.notifications[userID], n.ID)
	}
	return nil
}

func (f *fakeBackend) DeleteNotification(context.Context, int64) error {
	return f.call("DeleteNotification")
}

func (f *fakeBackend) ProfileByEmail(_ context.Context, email string) (*user.User, error) {
	if err := f.call("ProfileByEmail"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Message: "User not found"}
	}
	out := *u
	return &out, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, userID int64, p user.ProfileUpdate) (*user.User, error) {
	if err := f.call("UpdateProfile"); err != nil {
		return nil, err
	}
	return &user.User{ID: userID, Name: p.Name, Email: p.Email, Phone: p.Phone, ProfilePicture: "/uploads/p.jpg"}, nil
}

func (f *fakeBackend) ChangePassword(context.Context, int64, user.PasswordChange) error {
	return f.call("ChangePassword")
}

func (f *fakeBackend) UploadPicture(_ context.Context, userID int64, _, contentType string, content io.Reader) (string, error) {
	if err := f.call("UploadPicture"); err != nil {
		return "", err
	}
	data, _ := io.ReadAll(content)
	f.mu.Lock()
	f.uploaded, f.uploadType = data, contentType
	f.mu.Unlock()
	return "/uploads/profile-pictures/11.jpg", nil
}

func (f *fakeBackend) DeletePicture(context.Context, int64) error {
	return f.call("DeletePicture")
}

func (f *fakeBackend) PerformanceStats(context.Context, dashboard.StatsScope) (*dashboard.Stats, error) {
	if err := f.call("PerformanceStats"); err != nil {
		return nil, err
	}
	return f.stats, nil
}

func (f *fakeBackend) Performance(context.Context, string) (*dashboard.Performance, error) {
	if err := f.call("Performance"); err != nil {
		return nil, err
	}
	return f.performance, nil
}

func (f *fakeBackend) SubcommitteePerformance(context.Context) ([]dashboard.SubcommitteePerformance, error) {
	return []dashboard.SubcommitteePerformance{{Name: "Customs", AvgPerformance: 82}}, f.call("SubcommitteePerformance")
}

func (f *fakeBackend) AvailableYears(context.Context) ([]int, error) {
	return []int{2024, 2025}, f.call("AvailableYears")
}

func (f *fakeBackend) ResolutionProgress(context.Context) ([]dashboard.ResolutionProgress, error) {
	return []dashboard.ResolutionProgress{{Resolution: "Harmonise customs data", Progress: 60}}, f.call("ResolutionProgress")
}

func (f *fakeBackend) MonthlyTrends(context.Context, int) (*dashboard.MonthlyTrend, error) {
	if err := f.call("MonthlyTrends"); err != nil {
		return nil, err
	}
	return &dashboard.MonthlyTrend{Labels: []string{"Jan"}, Approved: []int{3}, Rejected: []int{1}}, nil
}

// fakeHistory keeps review history in memory.
type fakeHistory struct {
	mu      sync.Mutex
	entries []report.HistoryEntry
}

func (h *fakeHistory) Append(_ context.Context, entries []report.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entries...)
	return nil
}

func (h *fakeHistory) ListByReport(_ context.Context, reportID int64) ([]report.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []report.HistoryEntry
	for _, e := range h.entries {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (h *fakeHistory) ListByReports(ctx context.Context, ids []int64) (map[int64][]report.HistoryEntry, error) {
	out := map[int64][]report.HistoryEntry{}
	for _, id := range ids {
		entries, _ := h.ListByReport(ctx, id)
		if len(entries) > 0 {
			out[id] = entries
		}
	}
	return out, nil
}

// fakeSubscriptions mimics the Postgres repository, including its sentinel errors.
type fakeSubscriptions struct {
	mu        sync.Mutex
	byID      map[int64]*notification.Subscription
	forwarded map[[2]int64]bool
	nextID    int64
}

func newFakeSubscriptions(subs ...notification.Subscription) *fakeSubscriptions {
	f := &fakeSubscriptions{byID: map[int64]*notification.Subscription{}, forwarded: map[[2]int64]bool{}}
	for _, s := range subs {
		s := s
		f.byID[s.ID] = &s
		if s.ID > f.nextID {
			f.nextID = s.ID
		}
	}
	return f
}

func (f *fakeSubscriptions) find(match func(*notification.Subscription) bool) (*notification.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if match(s) {
			out := *s
			return &out, nil
		}
	}
	return nil, idb.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) Create(ctx context.Context, s *notification.Subscription) error {
	if _, err := f.GetByChatID(ctx, s.ChatID); err == nil {
		return idb.ErrDuplicateSubscription
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	stored := *s
	f.byID[s.ID] = &stored
	return nil
}

func (f *fakeSubscriptions) GetByChatID(_ context.Context, chatID int64) (*notification.Subscription, error) {
	return f.find(func(s *notification.Subscription) bool { return s.ChatID == chatID })
}

func (f *fakeSubscriptions) GetByUserID(_ context.Context, userID int64) (*notification.Subscription, error) {
	return f.find(func(s *notification.Subscription) bool { return s.UserID == userID })
}

func (f *fakeSubscriptions) Update(_ context.Context, s *notification.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, other := range f.byID {
		if id != s.ID && other.ChatID == s.ChatID {
			return idb.ErrDuplicateSubscription
		}
	}
	stored := *s
	f.byID[s.ID] = &stored
	return nil
}

func (f *fakeSubscriptions) list(activeOnly bool) []*notification.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Subscription
	for id := int64(1); id <= f.nextID; id++ {
		if s, ok := f.byID[id]; ok && (!activeOnly || s.Active) {
			c := *s
			out = append(out, &c)
		}
	}
	return out
}

func (f *fakeSubscriptions) ListActive(context.Context) ([]*notification.Subscription, error) {
	return f.list(true), nil
}

func (f *fakeSubscriptions) ListAll(context.Context) ([]*notification.Subscription, error) {
	return f.list(false), nil
}

func (f *fakeSubscriptions) WasForwarded(_ context.Context, subID int64, ids []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range ids {
		if f.forwarded[[2]int64{subID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) MarkForwarded(_ context.Context, subID, notificationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwarded[[2]int64{subID, notificationID}] = true
	return nil
}

type fakeCodes struct {
	mu    sync.Mutex
	codes map[string]redisstore.LinkRequest
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: map[string]redisstore.LinkRequest{}}
}

func (f *fakeCodes) SaveLinkCode(_ context.Context, code string, req redisstore.LinkRequest, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[code] = req
	return nil
}

func (f *fakeCodes) ConsumeLinkCode(_ context.Context, code string) (*redisstore.LinkRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.codes[code]
	if !ok {
		return nil, redisstore.ErrLinkCodeNotFound
	}
	delete(f.codes, code)
	return &req, nil
}

type fakeTelegram struct {
	mu   sync.Mutex
	sent []domainTelegram.Message
	err  error
}

func (f *fakeTelegram) Send(_ context.Context, msg domainTelegram.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

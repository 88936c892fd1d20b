package app

import (
	"context"
	"io"

	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/dashboard"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
)

// The interfaces below are the slices of *backend.Client each service depends on.

type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	Logout(ctx context.Context) error
}

type ReportBackend interface {
	ChairReports(ctx context.Context, chairID int64) ([]report.Report, error)
	ChairResolutions(ctx context.Context, chairID int64) ([]resolution.Resolution, error)
	SubmitReport(ctx context.Context, chairID int64, d report.Draft) (*backend.Submission, error)
	ResubmitReport(ctx context.Context, chairID, reportID int64, d report.Draft) (*report.Report, error)
	Reports(ctx context.Context) ([]report.Report, error)
	ReportsByStatus(ctx context.Context, status report.Status) ([]report.Report, error)
	Report(ctx context.Context, id int64) (*report.Report, error)
	HODReview(ctx context.Context, reportID, hodID int64, r report.Review) (*report.Report, error)
	CommissionerReview(ctx context.Context, reportID, commissionerID int64, r report.Review) (*report.Report, error)
}

type ResolutionBackend interface {
	Resolutions(ctx context.Context) ([]resolution.Resolution, error)
	Resolution(ctx context.Context, id int64) (*resolution.Resolution, error)
	ResolutionsByMeeting(ctx context.Context, meetingID int64) ([]resolution.Resolution, error)
	ResolutionsBySubcommittee(ctx context.Context, subcommitteeID int64) ([]resolution.Resolution, error)
	CreateResolution(ctx context.Context, meetingID int64, d resolution.Draft) error
	UpdateResolution(ctx context.Context, id int64, d resolution.Draft) (*resolution.Resolution, error)
	DeleteResolution(ctx context.Context, id int64) error
	AssignResolution(ctx context.Context, id int64, rows []resolution.Row) error
	UpdateResolutionStatus(ctx context.Context, id int64, status resolution.Status) (*resolution.Resolution, error)
	Subcommittees(ctx context.Context) ([]resolution.SubcommitteeRef, error)
}

type MeetingBackend interface {
	Meetings(ctx context.Context) ([]meeting.Meeting, error)
	Meeting(ctx context.Context, id int64) (*meeting.Meeting, error)
	CreateMeeting(ctx context.Context, d meeting.Draft) (*meeting.Meeting, error)
	UpdateMeeting(ctx context.Context, id int64, d meeting.Draft) (*meeting.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
	UpdateMeetingStatus(ctx context.Context, id int64, status meeting.Status) (*meeting.Meeting, error)
}

type InvitationBackend interface {
	Meeting(ctx context.Context, id int64) (*meeting.Meeting, error)
	MeetingInvitations(ctx context.Context, meetingID int64) ([]meeting.Invitation, error)
	UserInvitations(ctx context.Context, userID int64) ([]meeting.Invitation, error)
	PotentialInvitees(ctx context.Context, meetingID int64) ([]meeting.Invitee, error)
	CreateInvitation(ctx context.Context, meetingID, userID int64) (*meeting.Invitation, error)
	DeleteInvitation(ctx context.Context, id int64) error
	RespondToInvitation(ctx context.Context, id int64, r meeting.Response) (*meeting.Invitation, error)
}

type CountryBackend interface {
	Countries(ctx context.Context) ([]country.Country, error)
	Country(ctx context.Context, id int64) (*country.Country, error)
	CreateCountry(ctx context.Context, d country.Draft) (*country.Country, error)
	UpdateCountry(ctx context.Context, id int64, d country.Draft) (*country.Country, error)
	DeleteCountry(ctx context.Context, id int64) error
	CountryMembers(ctx context.Context, countryID int64) (*country.Members, error)
	RevenueAuthorities(ctx context.Context) ([]country.RevenueAuthority, error)
	RevenueAuthoritiesByCountry(ctx context.Context, countryID int64) ([]country.RevenueAuthority, error)
	CreateRevenueAuthority(ctx context.Context, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error)
	UpdateRevenueAuthority(ctx context.Context, id int64, d country.RevenueAuthorityDraft) (*country.RevenueAuthority, error)
	DeleteRevenueAuthority(ctx context.Context, id int64) error
}

type NotificationBackend interface {
	Notifications(ctx context.Context, userID int64) ([]notification.Notification, error)
	UnreadNotifications(ctx context.Context, userID int64) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, id int64) error
}

type ProfileBackend interface {
	ProfileByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateProfile(ctx context.Context, userID int64, p user.ProfileUpdate) (*user.User, error)
	ChangePassword(ctx context.Context, userID int64, p user.PasswordChange) error
	UploadPicture(ctx context.Context, userID int64, filename, contentType string, content io.Reader) (string, error)
	DeletePicture(ctx context.Context, userID int64) error
}

type DashboardBackend interface {
	PerformanceStats(ctx context.Context, scope dashboard.StatsScope) (*dashboard.Stats, error)
	Performance(ctx context.Context, timeFilter string) (*dashboard.Performance, error)
	SubcommitteePerformance(ctx context.Context) ([]dashboard.SubcommitteePerformance, error)
	AvailableYears(ctx context.Context) ([]int, error)
	ResolutionProgress(ctx context.Context) ([]dashboard.ResolutionProgress, error)
	MonthlyTrends(ctx context.Context, months int) (*dashboard.MonthlyTrend, error)
}

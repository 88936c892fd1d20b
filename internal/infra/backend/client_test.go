package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eara_connect_portal/internal/domain/dashboard"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(Options{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second, Logger: logrus.NewEntry(l)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chair@eara.org", body["email"])

		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user": map[string]interface{}{
				"id": 7, "email": "chair@eara.org", "name": "Amina", "role": "CHAIR",
				"subcommittee": map[string]interface{}{"id": 3, "name": "Customs"},
			},
		})
	})

	res, err := c.Login(context.Background(), " chair@eara.org ", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, user.RoleChair, res.User.Role)
	assert.Equal(t, "JSESSIONID=abc123", res.SessionCookie)
}

func TestLoginRejectedCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "x@eara.org", "bad")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestSessionCookieIsForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("JSESSIONID")
		require.NoError(t, err)
		assert.Equal(t, "abc123", ck.Value)
		writeJSON(w, http.StatusOK, map[string]int{"count": 4})
	})

	ctx := WithSession(context.Background(), "JSESSIONID=abc123")
	n, err := c.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Report not found"}`, "Report not found"},
		{"error", `{"error":"Cannot update this report"}`, "Cannot update this report"},
		{"empty", ``, "Request failed with status 500"},
		{"html", `<html>oops</html>`, "Request failed with status 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.Report(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestNotFoundAndUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.Meeting(context.Background(), 9)
	assert.True(t, IsNotFound(err))

	dead := New(Options{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	_, err = dead.Countries(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestInvalidPayloadIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// second report is missing its id and status
		_, _ = io.WriteString(w, `[{"id":1,"status":"SUBMITTED","performancePercentage":50},{"performancePercentage":40}]`)
	})
	_, err := c.Reports(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPayload)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"status":"SUBMITTED","performancePercentage":140}`)
	})
	_, err = c.Report(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSubmitAndResubmitReport(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"id": float64(11)}, body["resolution"])
		assert.Equal(t, float64(75), body["performancePercentage"])

		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 90, "status": "SUBMITTED", "successMessage": "sent"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 90, "status": "SUBMITTED", "performancePercentage": 75})
	})

	d := report.Draft{ResolutionID: 11, SubcommitteeID: 3, ProgressDetails: "Drafted the customs annex", PerformancePercentage: 75}
	sub, err := c.SubmitReport(context.Background(), 7, d)
	require.NoError(t, err)
	assert.Equal(t, int64(90), sub.ID)

	rep, err := c.ResubmitReport(context.Background(), 7, 90, d)
	require.NoError(t, err)
	assert.Equal(t, report.StatusSubmitted, rep.Status)

	assert.Equal(t, []string{
		"POST /api/chair/reports?chairId=7",
		"PUT /api/chair/reports/90?chairId=7",
	}, calls)
}

func TestReviewBodies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/reports/5/hod-review":
			assert.Equal(t, float64(21), body["hodId"])
			assert.Equal(t, true, body["approved"])
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 5, "status": "APPROVED_BY_HOD"})
		case "/api/reports/5/commissioner-review":
			assert.Equal(t, float64(31), body["commissionerId"])
			assert.Equal(t, "Incomplete figures", body["comments"])
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 5, "status": "REJECTED_BY_COMMISSIONER"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	rep, err := c.HODReview(context.Background(), 5, 21, report.Review{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, report.StatusApprovedByHOD, rep.Status)

	rep, err = c.CommissionerReview(context.Background(), 5, 31, report.Review{Comments: "Incomplete figures"})
	require.NoError(t, err)
	assert.Equal(t, report.StatusRejectedByCommissioner, rep.Status)
}

func TestAssignResolutionPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resolutions/4/assignments", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"assignments":[{"subcommitteeId":1,"contributionPercentage":60},{"subcommitteeId":2,"contributionPercentage":40}]}`, string(raw))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	err := c.AssignResolution(context.Background(), 4, []resolution.Row{
		{SubcommitteeID: 1, ContributionPercentage: 60},
		{SubcommitteeID: 2, ContributionPercentage: 40},
	})
	assert.NoError(t, err)
}

func TestResolutionCRUD(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		switch r.Method + " " + r.URL.Path {
		case "POST /api/meetings/3/resolutions":
			assert.JSONEq(t, `{"resolutions":[{"title":"Harmonise transit fees","description":"Align fees"}]}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]string{"message": "Resolutions created successfully"})
		case "PUT /api/resolutions/4":
			assert.JSONEq(t, `{"title":"Harmonise transit fees","status":"IN_PROGRESS"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 4, "title": "Harmonise transit fees", "status": "IN_PROGRESS"})
		case "DELETE /api/resolutions/4":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Resolution deleted successfully"})
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	require.NoError(t, c.CreateResolution(ctx, 3, resolution.Draft{Title: "Harmonise transit fees", Description: "Align fees"}))

	updated, err := c.UpdateResolution(ctx, 4, resolution.Draft{Title: "Harmonise transit fees", Status: resolution.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, resolution.StatusInProgress, updated.Status)

	assert.NoError(t, c.DeleteResolution(ctx, 4))
}

func TestMeetingInvitations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		switch r.Method + " " + r.URL.Path {
		case "GET /api/meeting-invitations/meeting/3":
			writeJSON(w, http.StatusOK, []map[string]interface{}{{
				"id": 40, "status": "ACCEPTED", "sentAt": "2025-03-01T09:00:00",
				"user": map[string]interface{}{"id": 7, "name": "Amina", "email": "chair@eara.org"},
			}})
		case "GET /api/meetings/3/potential-invitees":
			writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": 7, "name": "Amina", "role": "CHAIR"}, {"id": 8, "name": "Baraka", "role": "HOD"}})
		case "POST /api/meeting-invitations":
			assert.JSONEq(t, `{"meeting":{"id":3},"user":{"id":8}}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 41, "status": "PENDING", "user": map[string]interface{}{"id": 8}})
		case "PUT /api/meeting-invitations/41/respond":
			assert.JSONEq(t, `{"status":"DECLINED","comment":"Travelling"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 41, "status": "DECLINED", "responseComment": "Travelling"})
		case "DELETE /api/meeting-invitations/41":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation deleted successfully"})
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	list, err := c.MeetingInvitations(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].UserID())
	assert.Equal(t, 2025, list[0].SentAt.Year())

	invitees, err := c.PotentialInvitees(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, invitees, 2)

	inv, err := c.CreateInvitation(ctx, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, meeting.InvitationPending, inv.Status)

	inv, err = c.RespondToInvitation(ctx, 41, meeting.Response{Status: meeting.InvitationDeclined, Comment: "Travelling"})
	require.NoError(t, err)
	assert.Equal(t, "Travelling", inv.ResponseComment)

	assert.NoError(t, c.DeleteInvitation(ctx, 41))
}

func TestCreateMeetingSendsLocalDateTime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2031-05-14T09:30:00", body["meetingDate"])
		assert.Equal(t, map[string]interface{}{"id": float64(2)}, body["hostingCountry"])
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 12, "title": body["title"], "meetingDate": body["meetingDate"]})
	})

	m, err := c.CreateMeeting(context.Background(), meeting.Draft{
		Title: "Technical sync", Date: "2031-05-14", Time: "09:30",
		MeetingType: meeting.TypeTechnical, HostingCountryID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.ID)
	assert.Equal(t, 9, m.MeetingDate.Hour())
}

func TestUploadPictureMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("profilePicture")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "pixels", string(data))
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "profilePictureUrl": "/uploads/7.png"})
	})

	u, err := c.UploadPicture(context.Background(), 7, "me.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/7.png", u)
}

func TestChangePasswordFailureEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Current password is incorrect"})
	})
	err := c.ChangePassword(context.Background(), 7, user.PasswordChange{CurrentPassword: "a", NewPassword: "bbbbbb"})
	assert.EqualError(t, err, "Current password is incorrect")
}

func TestDashboardEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/performance/stats":
			assert.Equal(t, "21", r.URL.Query().Get("hodId"))
			assert.Empty(t, r.URL.Query().Get("commissionerId"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"pendingReports": 2, "averagePerformance": 82.5})
		case "/api/dashboard/monthly-trends":
			assert.Equal(t, "6", r.URL.Query().Get("months"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"monthlyTrend": map[string]interface{}{
				"labels": []string{"Jan", "Feb"}, "approved": []int{1, 2}, "rejected": []int{0, 1},
			}})
		case "/api/dashboard/available-years":
			writeJSON(w, http.StatusOK, []int{2024, 2025})
		}
	})

	stats, err := c.PerformanceStats(context.Background(), dashboard.StatsScope{HODID: 21})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingReports)
	assert.Equal(t, 82.5, stats.AveragePerformance)

	trend, err := c.MonthlyTrends(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan", "Feb"}, trend.Labels)

	years, err := c.AvailableYears(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, years)
}

func TestCountryMembersSplitsSecretaries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/countries/3":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 3, "name": "Kenya", "isCode": "KE"})
		case "/api/commissioner-generals/by-country/3":
			writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": 1, "name": "CG"}})
		case "/api/country-committee-members/country/3":
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"id": 2, "name": "Member"},
				{"id": 4, "name": "Secretary", "committeeSecretary": true},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	m, err := c.CountryMembers(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Kenya", m.Country.Name)
	assert.Len(t, m.CommissionerGenerals, 1)
	assert.Len(t, m.CommitteeMembers, 1)
	assert.Len(t, m.DelegationSecretaries, 1)
	assert.Equal(t, 3, m.Count())
}

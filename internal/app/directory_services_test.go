package app

import (
	"context"
	"testing"
	"time"

	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/resolution"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignValidAllocation(t *testing.T) {
	f := newFakeBackend()
	f.resolutions[1] = &resolution.Resolution{ID: 1, Title: "Harmonise customs data", Status: resolution.StatusAssigned}
	s := NewResolutionService(f, newCache(), quietLog())

	rows := []resolution.Row{{SubcommitteeID: 2, ContributionPercentage: 60}, {SubcommitteeID: 3, ContributionPercentage: 40}}
	require.NoError(t, s.Assign(context.Background(), secretary, 1, rows))
	assert.Equal(t, rows, f.assigned)
}

func TestAssignDuplicateSubcommitteeNeverReachesBackend(t *testing.T) {
	f := newFakeBackend()
	s := NewResolutionService(f, newCache(), quietLog())

	rows := []resolution.Row{{SubcommitteeID: 2, ContributionPercentage: 60}, {SubcommitteeID: 2, ContributionPercentage: 40}}
	err := s.Assign(context.Background(), secretary, 1, rows)
	assert.NotEmpty(t, ValidationMessages(err))
	assert.Zero(t, f.total())
}

func TestAssignClosedResolution(t *testing.T) {
	f := newFakeBackend()
	f.resolutions[1] = &resolution.Resolution{ID: 1, Title: "Done", Status: resolution.StatusCompleted}
	s := NewResolutionService(f, newCache(), quietLog())

	err := s.Assign(context.Background(), secretary, 1, []resolution.Row{{SubcommitteeID: 4, ContributionPercentage: 100}})
	assert.ErrorIs(t, err, resolution.ErrNotAssignable)
	assert.Zero(t, f.count("AssignResolution"))
}

func TestAssignForbiddenForChair(t *testing.T) {
	s := NewResolutionService(newFakeBackend(), newCache(), quietLog())
	err := s.Assign(context.Background(), chair, 1, []resolution.Row{{SubcommitteeID: 4, ContributionPercentage: 100}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssignInvalidatesResolutionLists(t *testing.T) {
	f := newFakeBackend()
	f.resolutions[1] = &resolution.Resolution{ID: 1, Title: "Harmonise customs data", Status: resolution.StatusInProgress}
	s := NewResolutionService(f, newCache(), quietLog())
	ctx := context.Background()

	_, err := s.List(ctx)
	require.NoError(t, err)
	_, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("Resolutions"))

	require.NoError(t, s.Assign(ctx, secretary, 1, []resolution.Row{{SubcommitteeID: 4, ContributionPercentage: 100}}))
	_, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("Resolutions"))
}

func TestResolutionStatusMustBeKnown(t *testing.T) {
	f := newFakeBackend()
	s := NewResolutionService(f, newCache(), quietLog())

	_, err := s.UpdateStatus(context.Background(), secretary, 1, resolution.Status("DONE"))
	assert.Equal(t, []string{"Status is invalid"}, ValidationMessages(err))

	updated, err := s.UpdateStatus(context.Background(), secretary, 1, resolution.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, resolution.StatusCompleted, updated.Status)
}

func TestResolutionStatusIsNormalized(t *testing.T) {
	f := newFakeBackend()
	s := NewResolutionService(f, newCache(), quietLog())

	_, err := s.UpdateStatus(context.Background(), secretary, 1, resolution.Status(""))
	assert.Equal(t, []string{"Status is required"}, ValidationMessages(err))
	assert.Zero(t, f.count("UpdateResolutionStatus"))

	updated, err := s.UpdateStatus(context.Background(), secretary, 1, resolution.Status(" cancelled "))
	require.NoError(t, err)
	assert.Equal(t, resolution.StatusCancelled, updated.Status)
}

func TestCreateResolutionUnderMeeting(t *testing.T) {
	f := newFakeBackend()
	s := NewResolutionService(f, newCache(), quietLog())
	ctx := context.Background()

	err := s.Create(ctx, secretary, 3, resolution.Draft{Title: "  "})
	assert.Equal(t, []string{"Resolution title is required"}, ValidationMessages(err))
	assert.Zero(t, f.total())

	err = s.Create(ctx, chair, 3, resolution.Draft{Title: "Harmonise transit fees"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.List(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, secretary, 3, resolution.Draft{Title: "Harmonise transit fees", Status: resolution.StatusCompleted}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resolution.StatusAssigned, list[0].Status)
	assert.Equal(t, int64(3), list[0].Meeting.ID)
	assert.Equal(t, 2, f.count("Resolutions"))
}

func TestUpdateAndDeleteResolution(t *testing.T) {
	f := newFakeBackend()
	f.resolutions[1] = &resolution.Resolution{ID: 1, Title: "Harmonise customs data", Status: resolution.StatusAssigned}
	s := NewResolutionService(f, newCache(), quietLog())
	ctx := context.Background()

	_, err := s.Update(ctx, secretary, 1, resolution.Draft{Title: "Harmonise customs data", Status: "DONE"})
	assert.Equal(t, []string{"Status is invalid"}, ValidationMessages(err))
	assert.Zero(t, f.count("UpdateResolution"))

	updated, err := s.Update(ctx, secretary, 1, resolution.Draft{Title: "Harmonise customs declarations", Status: resolution.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "Harmonise customs declarations", updated.Title)
	assert.Equal(t, resolution.StatusInProgress, updated.Status)

	assert.ErrorIs(t, s.Delete(ctx, member, 1), ErrForbidden)
	require.NoError(t, s.Delete(ctx, secretary, 1))
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func newMeetingService(f *fakeBackend) *MeetingService {
	s := NewMeetingService(f, newCache(), quietLog())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local) }
	return s
}

func TestCreateMeetingMustBeInFuture(t *testing.T) {
	f := newFakeBackend()
	s := newMeetingService(f)

	d := meeting.Draft{Title: "Technical meeting", Date: "2025-02-20", Time: "10:00", MeetingType: meeting.TypeTechnical, HostingCountryID: 1}
	_, err := s.Create(context.Background(), secretary, d)
	assert.Contains(t, ValidationMessages(err), "Meeting date must be in the future")
	assert.Zero(t, f.total())

	d.Date = "2025-04-20"
	m, err := s.Create(context.Background(), secretary, d)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusScheduled, m.Status)

	// Editing a past meeting is allowed.
	d.Date = "2025-02-20"
	_, err = s.Update(context.Background(), secretary, m.ID, d)
	assert.NoError(t, err)
}

func TestMeetingStatusTransitions(t *testing.T) {
	f := newFakeBackend()
	f.meetings[1] = &meeting.Meeting{ID: 1, Title: "Technical meeting", Status: meeting.StatusScheduled}
	s := newMeetingService(f)
	ctx := context.Background()

	_, err := s.UpdateStatus(ctx, secretary, 1, meeting.StatusCompleted)
	assert.ErrorIs(t, err, meeting.ErrInvalidTransition)
	assert.Zero(t, f.count("UpdateMeetingStatus"))

	m, err := s.UpdateStatus(ctx, secretary, 1, meeting.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusInProgress, m.Status)

	_, err = s.UpdateStatus(ctx, member, 1, meeting.StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteMeetingInvalidatesList(t *testing.T) {
	f := newFakeBackend()
	f.meetings[1] = &meeting.Meeting{ID: 1, Title: "Technical meeting", Status: meeting.StatusScheduled}
	s := newMeetingService(f)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, secretary, 1))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCountryValidation(t *testing.T) {
	f := newFakeBackend()
	s := NewCountryService(f, newCache(), quietLog())
	ctx := context.Background()

	_, err := s.Create(ctx, secretary, country.Draft{Name: " ", IsoCode: "T1", Email: "nope"})
	msgs := ValidationMessages(err)
	assert.Contains(t, msgs, "Country name is required")
	assert.Contains(t, msgs, "ISO code must be 2 or 3 letters")
	assert.Contains(t, msgs, "Email is invalid")
	assert.Zero(t, f.total())

	c, err := s.Create(ctx, secretary, country.Draft{Name: "Tanzania", IsoCode: "tz"})
	require.NoError(t, err)
	assert.Equal(t, "TZ", c.IsoCode)

	_, err = s.Create(ctx, chair, country.Draft{Name: "Kenya", IsoCode: "KE"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRevenueAuthorities(t *testing.T) {
	f := newFakeBackend()
	s := NewCountryService(f, newCache(), quietLog())
	ctx := context.Background()

	all, err := s.RevenueAuthorities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	byCountry, err := s.RevenueAuthorities(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byCountry, 1)

	_, err = s.CreateRevenueAuthority(ctx, secretary, country.RevenueAuthorityDraft{Name: "ZRA"})
	assert.Equal(t, []string{"Country is required"}, ValidationMessages(err))

	_, err = s.CreateRevenueAuthority(ctx, secretary, country.RevenueAuthorityDraft{Name: "ZRA", CountryID: 4})
	require.NoError(t, err)
	_, err = s.RevenueAuthorities(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("RevenueAuthorities"))
}

package app

import (
	"context"
	"fmt"
	"slices"

	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"
	"eara_connect_portal/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const invitationsPrefix = "invitations:"

// InvitationService sends meeting invitations for the secretariat and records the answers of invitees.
type InvitationService struct {
	backend InvitationBackend
	cache   *cache.QueryCache
	log     *logrus.Entry
}

func NewInvitationService(b InvitationBackend, c *cache.QueryCache, log *logrus.Entry) *InvitationService {
	return &InvitationService{backend: b, cache: c, log: log}
}

func (s *InvitationService) ForMeeting(ctx context.Context, u user.SessionUser, meetingID int64) ([]meeting.Invitation, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	return cache.Fetch(ctx, s.cache, cache.Key("invitations", "meeting", meetingID), func(ctx context.Context) ([]meeting.Invitation, error) {
		return s.backend.MeetingInvitations(ctx, meetingID)
	})
}

// Invitees lists the eligible users who have not been invited to the meeting yet.
func (s *InvitationService) Invitees(ctx context.Context, u user.SessionUser, meetingID int64) ([]meeting.Invitee, error) {
	invited, err := s.ForMeeting(ctx, u, meetingID)
	if err != nil {
		return nil, err
	}
	eligible, err := s.backend.PotentialInvitees(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return meeting.Uninvited(eligible, invited), nil
}

// Invite sends one invitation per user and returns how many were sent. Users already invited
// are skipped. Sending stops at the first backend failure.
func (s *InvitationService) Invite(ctx context.Context, u user.SessionUser, meetingID int64, userIDs []int64) (int, error) {
	if !user.CanManageDirectory(u) {
		return 0, ErrForbidden
	}
	if len(userIDs) == 0 {
		return 0, invalid("Select at least one person to invite")
	}
	m, err := s.backend.Meeting(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if !meeting.OpenForInvitations(m.Status) {
		return 0, fmt.Errorf("%w: meeting %d is %s", meeting.ErrClosedForInvitations, meetingID, m.Status)
	}
	existing, err := s.backend.MeetingInvitations(ctx, meetingID)
	if err != nil {
		return 0, err
	}

	sent := 0
	defer func() {
		if sent > 0 {
			s.cache.Invalidate(invitationsPrefix)
		}
	}()
	for _, id := range slices.Compact(slices.Sorted(slices.Values(userIDs))) {
		if id <= 0 || slices.ContainsFunc(existing, func(inv meeting.Invitation) bool { return inv.UserID() == id }) {
			continue
		}
		if _, err := s.backend.CreateInvitation(ctx, meetingID, id); err != nil {
			logger.LogError(s.log, "InvitationService", "Invite", err, logrus.Fields{"meeting_id": meetingID, "invitee_id": id})
			return sent, err
		}
		sent++
	}
	s.log.WithFields(logrus.Fields{"meeting_id": meetingID, "sent": sent, "user_id": u.ID}).Info("Meeting invitations sent")
	return sent, nil
}

func (s *InvitationService) Revoke(ctx context.Context, u user.SessionUser, invitationID int64) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if err := s.backend.DeleteInvitation(ctx, invitationID); err != nil {
		return err
	}
	s.cache.Invalidate(invitationsPrefix)
	return nil
}

// Mine lists the invitations addressed to u.
func (s *InvitationService) Mine(ctx context.Context, u user.SessionUser) ([]meeting.Invitation, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("invitations", "user", u.ID), func(ctx context.Context) ([]meeting.Invitation, error) {
		return s.backend.UserInvitations(ctx, u.ID)
	})
}

// Respond records u's answer. Only an invitation addressed to u can be answered.
func (s *InvitationService) Respond(ctx context.Context, u user.SessionUser, invitationID int64, r meeting.Response) (*meeting.Invitation, error) {
	if errs := r.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	mine, err := s.Mine(ctx, u)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(mine, func(inv meeting.Invitation) bool { return inv.ID == invitationID }) {
		return nil, ErrForbidden
	}
	updated, err := s.backend.RespondToInvitation(ctx, invitationID, r)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(invitationsPrefix)
	s.log.WithFields(logrus.Fields{"invitation_id": invitationID, "status": r.Status, "user_id": u.ID}).Info("Invitation answered")
	return updated, nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"

	"github.com/sirupsen/logrus"
)

const meetingsPrefix = "meetings:"

type MeetingService struct {
	backend MeetingBackend
	cache   *cache.QueryCache
	log     *logrus.Entry
	now     func() time.Time
}

func NewMeetingService(b MeetingBackend, c *cache.QueryCache, log *logrus.Entry) *MeetingService {
	return &MeetingService{backend: b, cache: c, log: log, now: time.Now}
}

func (s *MeetingService) List(ctx context.Context) ([]meeting.Meeting, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("meetings", "all"), s.backend.Meetings)
}

func (s *MeetingService) Get(ctx context.Context, id int64) (*meeting.Meeting, error) {
	return s.backend.Meeting(ctx, id)
}

func (s *MeetingService) Create(ctx context.Context, u user.SessionUser, d meeting.Draft) (*meeting.Meeting, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(s.now(), true); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	m, err := s.backend.CreateMeeting(ctx, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(meetingsPrefix)
	s.log.WithFields(logrus.Fields{"meeting_id": m.ID, "user_id": u.ID}).Info("Meeting created")
	return m, nil
}

func (s *MeetingService) Update(ctx context.Context, u user.SessionUser, id int64, d meeting.Draft) (*meeting.Meeting, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(s.now(), false); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	m, err := s.backend.UpdateMeeting(ctx, id, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(meetingsPrefix)
	return m, nil
}

func (s *MeetingService) Delete(ctx context.Context, u user.SessionUser, id int64) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if err := s.backend.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(meetingsPrefix)
	s.log.WithFields(logrus.Fields{"meeting_id": id, "user_id": u.ID}).Info("Meeting deleted")
	return nil
}

// UpdateStatus moves a meeting along its lifecycle. The transition is checked against the
// current status before the backend is asked to apply it.
func (s *MeetingService) UpdateStatus(ctx context.Context, u user.SessionUser, id int64, to meeting.Status) (*meeting.Meeting, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	current, err := s.backend.Meeting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !meeting.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", meeting.ErrInvalidTransition, current.Status, to)
	}
	m, err := s.backend.UpdateMeetingStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(meetingsPrefix)
	return m, nil
}

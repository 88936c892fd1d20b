package app

import (
	"context"
	"fmt"

	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"
	"eara_connect_portal/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const resolutionsPrefix = "resolutions:"

type ResolutionService struct {
	backend ResolutionBackend
	cache   *cache.QueryCache
	log     *logrus.Entry
}

func NewResolutionService(b ResolutionBackend, c *cache.QueryCache, log *logrus.Entry) *ResolutionService {
	return &ResolutionService{backend: b, cache: c, log: log}
}

func (s *ResolutionService) List(ctx context.Context) ([]resolution.Resolution, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("resolutions", "all"), s.backend.Resolutions)
}

func (s *ResolutionService) Get(ctx context.Context, id int64) (*resolution.Resolution, error) {
	return s.backend.Resolution(ctx, id)
}

func (s *ResolutionService) ForSubcommittee(ctx context.Context, subcommitteeID int64) ([]resolution.Resolution, error) {
	if subcommitteeID == 0 {
		return []resolution.Resolution{}, nil
	}
	return cache.Fetch(ctx, s.cache, cache.Key("resolutions", "subcommittee", subcommitteeID), func(ctx context.Context) ([]resolution.Resolution, error) {
		return s.backend.ResolutionsBySubcommittee(ctx, subcommitteeID)
	})
}

func (s *ResolutionService) ForMeeting(ctx context.Context, meetingID int64) ([]resolution.Resolution, error) {
	return s.backend.ResolutionsByMeeting(ctx, meetingID)
}

func (s *ResolutionService) Subcommittees(ctx context.Context) ([]resolution.SubcommitteeRef, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subcommittees"), s.backend.Subcommittees)
}

// Assign replaces the subcommittee shares of a resolution. Rows are validated before anything
// is sent, so an invalid allocation never reaches the backend.
func (s *ResolutionService) Assign(ctx context.Context, u user.SessionUser, id int64, rows []resolution.Row) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if errs := resolution.ValidateRows(rows); len(errs) > 0 {
		return invalid(errs...)
	}

	current, err := s.backend.Resolution(ctx, id)
	if err != nil {
		return err
	}
	if !resolution.Assignable(current.Status) {
		return fmt.Errorf("%w: resolution %d is %s", resolution.ErrNotAssignable, id, current.Status)
	}

	if err := s.backend.AssignResolution(ctx, id, rows); err != nil {
		logger.LogError(s.log, "ResolutionService", "Assign", err, logrus.Fields{"resolution_id": id})
		return err
	}
	s.cache.Invalidate(resolutionsPrefix)
	s.log.WithFields(logrus.Fields{"resolution_id": id, "rows": len(rows), "user_id": u.ID}).Info("Resolution assigned")
	return nil
}

// Create records a resolution under meetingID. New resolutions always start as assigned, so a
// status on the form is dropped.
func (s *ResolutionService) Create(ctx context.Context, u user.SessionUser, meetingID int64, d resolution.Draft) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	d.Status = ""
	if errs := d.Validate(); len(errs) > 0 {
		return invalid(errs...)
	}
	if err := s.backend.CreateResolution(ctx, meetingID, d); err != nil {
		logger.LogError(s.log, "ResolutionService", "Create", err, logrus.Fields{"meeting_id": meetingID})
		return err
	}
	s.cache.Invalidate(resolutionsPrefix)
	s.log.WithFields(logrus.Fields{"meeting_id": meetingID, "user_id": u.ID}).Info("Resolution created")
	return nil
}

func (s *ResolutionService) Update(ctx context.Context, u user.SessionUser, id int64, d resolution.Draft) (*resolution.Resolution, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	updated, err := s.backend.UpdateResolution(ctx, id, d)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(resolutionsPrefix)
	return updated, nil
}

func (s *ResolutionService) Delete(ctx context.Context, u user.SessionUser, id int64) error {
	if !user.CanManageDirectory(u) {
		return ErrForbidden
	}
	if err := s.backend.DeleteResolution(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(resolutionsPrefix)
	s.log.WithFields(logrus.Fields{"resolution_id": id, "user_id": u.ID}).Info("Resolution deleted")
	return nil
}

func (s *ResolutionService) UpdateStatus(ctx context.Context, u user.SessionUser, id int64, status resolution.Status) (*resolution.Resolution, error) {
	if !user.CanManageDirectory(u) {
		return nil, ErrForbidden
	}
	change := resolution.StatusChange{Status: status}
	if errs := change.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	updated, err := s.backend.UpdateResolutionStatus(ctx, id, change.Status)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(resolutionsPrefix)
	return updated, nil
}

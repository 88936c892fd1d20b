package app

import (
	"bytes"
	"context"
	"errors"
	"io"

	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/avatar"
	"eara_connect_portal/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

type ProfileService struct {
	backend ProfileBackend
	origin  string // API origin that relative picture paths resolve against
	region  string // default phone region
	log     *logrus.Entry
}

func NewProfileService(b ProfileBackend, origin, region string, log *logrus.Entry) *ProfileService {
	return &ProfileService{backend: b, origin: origin, region: region, log: log}
}

func (s *ProfileService) Get(ctx context.Context, u user.SessionUser) (*user.User, error) {
	p, err := s.backend.ProfileByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	p.ProfilePicture = user.ResolvePictureURL(s.origin, p.ProfilePicture)
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, u user.SessionUser, p user.ProfileUpdate) (*user.User, error) {
	if errs := p.Validate(s.region); len(errs) > 0 {
		return nil, invalid(errs...)
	}
	updated, err := s.backend.UpdateProfile(ctx, u.ID, p)
	if err != nil {
		return nil, err
	}
	updated.ProfilePicture = user.ResolvePictureURL(s.origin, updated.ProfilePicture)
	s.log.WithField("user_id", u.ID).Info("Profile updated")
	return updated, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, u user.SessionUser, p user.PasswordChange) error {
	if errs := p.Validate(); len(errs) > 0 {
		return invalid(errs...)
	}
	if err := s.backend.ChangePassword(ctx, u.ID, p); err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("Password changed")
	return nil
}

// UploadPicture validates the upload, shrinks it and sends it to the backend.
// The returned URL is absolute.
func (s *ProfileService) UploadPicture(ctx context.Context, u user.SessionUser, meta user.PictureUpload, content io.Reader) (string, error) {
	if errs := meta.Validate(); len(errs) > 0 {
		return "", invalid(errs...)
	}
	img, err := avatar.Normalize(io.LimitReader(content, user.MaxPictureSize+1), meta.ContentType)
	if err != nil {
		if errors.Is(err, avatar.ErrUndecodable) {
			return "", invalid("Please select a valid image file")
		}
		return "", err
	}

	path, err := s.backend.UploadPicture(ctx, u.ID, meta.Filename, img.ContentType, bytes.NewReader(img.Content))
	if err != nil {
		logger.LogError(s.log, "ProfileService", "UploadPicture", err, logrus.Fields{"user_id": u.ID, "bytes": len(img.Content)})
		return "", err
	}
	return user.ResolvePictureURL(s.origin, path), nil
}

func (s *ProfileService) DeletePicture(ctx context.Context, u user.SessionUser) error {
	return s.backend.DeletePicture(ctx, u.ID)
}

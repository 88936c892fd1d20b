package app

import (
	"context"
	"strings"

	"eara_connect_portal/internal/domain/user"

	"github.com/sirupsen/logrus"
)

type AuthService struct {
	backend AuthBackend
	log     *logrus.Entry
}

func NewAuthService(b AuthBackend, log *logrus.Entry) *AuthService {
	return &AuthService{backend: b, log: log}
}

// Login checks the credentials against the backend and returns the record to keep in the
// session together with the backend session cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) (*user.SessionUser, string, error) {
	email = strings.TrimSpace(email)
	var errs []string
	if email == "" {
		errs = append(errs, "Email is required")
	} else if !user.ValidEmail(email) {
		errs = append(errs, "Email is invalid")
	}
	if password == "" {
		errs = append(errs, "Password is required")
	}
	if len(errs) > 0 {
		return nil, "", invalid(errs...)
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.log.WithField("email", email).WithError(err).Warn("Login rejected")
		return nil, "", err
	}
	rec := res.User.SessionRecord()
	s.log.WithFields(logrus.Fields{"user_id": rec.ID, "role": rec.Role}).Info("User logged in")
	return &rec, res.SessionCookie, nil
}

// Logout ends the backend session. A failure is logged only; the portal session is dropped regardless.
func (s *AuthService) Logout(ctx context.Context, u *user.SessionUser) {
	if err := s.backend.Logout(ctx); err != nil {
		fields := logrus.Fields{}
		if u != nil {
			fields["user_id"] = u.ID
		}
		s.log.WithFields(fields).WithError(err).Warn("Backend logout failed")
	}
}

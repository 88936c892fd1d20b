package web

import (
	"errors"
	"net/http"
	"time"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type profileView struct {
	Profile         *user.User
	Form            user.ProfileUpdate
	TelegramEnabled bool
	Subscription    *notification.Subscription
	LinkCode        string
	LinkCodeExpires time.Time
}

func (s *Server) profileView(c *gin.Context) (*profileView, error) {
	u := currentUser(c)
	ctx := c.Request.Context()
	p, err := s.svc.Profile.Get(ctx, *u)
	if err != nil {
		return nil, err
	}
	view := &profileView{
		Profile: p,
		Form: user.ProfileUpdate{
			Name:       p.Name,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			Department: p.Department,
			Position:   p.Position,
		},
		TelegramEnabled: s.svc.Subscriptions.Enabled(),
	}
	if view.TelegramEnabled {
		sub, err := s.svc.Subscriptions.ForUser(ctx, u.ID)
		if err != nil {
			s.log.WithField("user_id", u.ID).WithError(err).Warn("Could not load Telegram subscription")
		}
		view.Subscription = sub
	}
	return view, nil
}

func (s *Server) handleProfile(c *gin.Context) {
	view, err := s.profileView(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "profile", "My profile", view)
}

func (s *Server) handleProfileUpdate(c *gin.Context) {
	u := currentUser(c)
	form := user.ProfileUpdate{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Phone:      c.PostForm("phone"),
		Address:    c.PostForm("address"),
		Department: c.PostForm("department"),
		Position:   c.PostForm("position"),
	}
	updated, err := s.svc.Profile.Update(c.Request.Context(), *u, form)
	if err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			view, verr := s.profileView(c)
			if verr != nil {
				s.fail(c, verr)
				return
			}
			view.Form = form
			s.renderStatus(c, http.StatusUnprocessableEntity, "profile", "My profile", view, msgs)
			return
		}
		s.failBack(c, err, "/profile")
		return
	}

	// Keep the header and later backend lookups in step with the new name and email.
	rec := *u
	rec.Name, rec.Email = updated.Name, updated.Email
	if err := s.sessions.Login(c.Writer, c.Request, rec, s.sessions.BackendSession(c.Request)); err != nil {
		s.log.WithError(err).Warn("Could not refresh session after profile update")
	}
	s.flash(c, session.FlashSuccess, "Profile updated.")
	s.redirect(c, "/profile")
}

func (s *Server) handlePasswordChange(c *gin.Context) {
	p := user.PasswordChange{
		CurrentPassword: c.PostForm("currentPassword"),
		NewPassword:     c.PostForm("newPassword"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	}
	if err := s.svc.Profile.ChangePassword(c.Request.Context(), *currentUser(c), p); err != nil {
		s.failBack(c, err, "/profile")
		return
	}
	s.flash(c, session.FlashSuccess, "Password changed.")
	s.redirect(c, "/profile")
}

func (s *Server) handlePictureUpload(c *gin.Context) {
	fh, err := c.FormFile("picture")
	if err != nil {
		s.flash(c, session.FlashError, "Please select an image to upload.")
		s.redirect(c, "/profile")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	meta := user.PictureUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if _, err := s.svc.Profile.UploadPicture(c.Request.Context(), *currentUser(c), meta, f); err != nil {
		s.failBack(c, err, "/profile")
		return
	}
	s.flash(c, session.FlashSuccess, "Profile picture updated.")
	s.redirect(c, "/profile")
}

func (s *Server) handlePictureDelete(c *gin.Context) {
	if err := s.svc.Profile.DeletePicture(c.Request.Context(), *currentUser(c)); err != nil {
		s.failBack(c, err, "/profile")
		return
	}
	s.flash(c, session.FlashSuccess, "Profile picture removed.")
	s.redirect(c, "/profile")
}

// handleTelegramLinkCode shows a fresh code on the profile page. It is never stored in a flash.
func (s *Server) handleTelegramLinkCode(c *gin.Context) {
	code, expires, err := s.svc.Subscriptions.IssueLinkCode(c.Request.Context(), *currentUser(c))
	if err != nil {
		if errors.Is(err, app.ErrRelayDisabled) {
			s.flash(c, session.FlashError, "Telegram notifications are not available.")
			s.redirect(c, "/profile")
			return
		}
		s.failBack(c, err, "/profile")
		return
	}
	view, err := s.profileView(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	view.LinkCode = code
	view.LinkCodeExpires = expires
	s.render(c, "profile", "My profile", view)
}

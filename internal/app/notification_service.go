package app

import (
	"context"
	"slices"

	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"

	"github.com/sirupsen/logrus"
)

// NotificationService serves the inbox. Every mutation drops the user's cached inbox and count.
type NotificationService struct {
	backend NotificationBackend
	cache   *cache.QueryCache
	log     *logrus.Entry
}

func NewNotificationService(b NotificationBackend, c *cache.QueryCache, log *logrus.Entry) *NotificationService {
	return &NotificationService{backend: b, cache: c, log: log}
}

func notificationsPrefix(userID int64) string {
	return cache.Key("notifications", userID) + ":"
}

func (s *NotificationService) Inbox(ctx context.Context, u user.SessionUser) ([]notification.Notification, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("notifications", u.ID, "all"), func(ctx context.Context) ([]notification.Notification, error) {
		return s.backend.Notifications(ctx, u.ID)
	})
}

func (s *NotificationService) Unread(ctx context.Context, u user.SessionUser) ([]notification.Notification, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("notifications", u.ID, "unread"), func(ctx context.Context) ([]notification.Notification, error) {
		return s.backend.UnreadNotifications(ctx, u.ID)
	})
}

// UnreadCount backs the navbar badge, which every open page polls.
func (s *NotificationService) UnreadCount(ctx context.Context, u user.SessionUser) (int, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("notifications", u.ID, "count"), func(ctx context.Context) (int, error) {
		return s.backend.UnreadCount(ctx, u.ID)
	})
}

// owns reports whether id is in the user's inbox. The backend acts on bare ids, so the portal
// checks ownership before marking or deleting.
func (s *NotificationService) owns(ctx context.Context, u user.SessionUser, id int64) error {
	inbox, err := s.Inbox(ctx, u)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(inbox, func(n notification.Notification) bool { return n.ID == id }) {
		s.log.WithFields(logrus.Fields{"user_id": u.ID, "notification_id": id}).Warn("Notification outside the user's inbox")
		return ErrForbidden
	}
	return nil
}

func (s *NotificationService) MarkRead(ctx context.Context, u user.SessionUser, id int64) error {
	if err := s.owns(ctx, u, id); err != nil {
		return err
	}
	if err := s.backend.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(notificationsPrefix(u.ID))
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, u user.SessionUser) error {
	if err := s.backend.MarkAllNotificationsRead(ctx, u.ID); err != nil {
		return err
	}
	s.cache.Invalidate(notificationsPrefix(u.ID))
	s.log.WithField("user_id", u.ID).Debug("All notifications marked read")
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, u user.SessionUser, id int64) error {
	if err := s.owns(ctx, u, id); err != nil {
		return err
	}
	if err := s.backend.DeleteNotification(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(notificationsPrefix(u.ID))
	return nil
}

package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"eara_connect_portal/internal/domain/display"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/report"
	domainTelegram "eara_connect_portal/internal/domain/telegram"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/cache"
	idb "eara_connect_portal/internal/infra/database"

	"github.com/sirupsen/logrus"
)

var ErrUnknownNotification = fmt.Errorf("notification is already read or does not belong to this chat")

const readCallbackPrefix = "read_"

// RelayBackend is what the relay needs from the backend. It runs outside any user request,
// so these calls carry no user session.
type RelayBackend interface {
	UnreadNotifications(ctx context.Context, userID int64) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	ReportsByStatus(ctx context.Context, status report.Status) ([]report.Report, error)
	ProfileByEmail(ctx context.Context, email string) (*user.User, error)
}

// RelayService forwards unread backend notifications to linked Telegram chats.
type RelayService struct {
	subs      notification.SubscriptionRepository
	backend   RelayBackend
	telegram  domainTelegram.Client
	cache     *cache.QueryCache
	portalURL string
	log       *logrus.Entry
}

func NewRelayService(
	subs notification.SubscriptionRepository,
	b RelayBackend,
	tc domainTelegram.Client,
	c *cache.QueryCache,
	portalURL string,
	log *logrus.Entry,
) *RelayService {
	return &RelayService{
		subs:      subs,
		backend:   b,
		telegram:  tc,
		cache:     c,
		portalURL: strings.TrimRight(portalURL, "/"),
		log:       log,
	}
}

// ReadCallbackData is the inline button payload that marks notification id read.
func ReadCallbackData(id int64) string {
	return fmt.Sprintf("%s%d", readCallbackPrefix, id)
}

// ParseReadCallback extracts the notification id from a ReadCallbackData payload.
func ParseReadCallback(data string) (int64, bool) {
	raw, ok := strings.CutPrefix(data, readCallbackPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ForwardUnread sends every unread notification not yet relayed to each active subscription.
// A failing subscription is logged and skipped.
func (s *RelayService) ForwardUnread(ctx context.Context) error {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	if len(subs) == 0 {
		s.log.Debug("No active subscriptions, nothing to relay")
		return nil
	}

	sent := 0
	for _, sub := range subs {
		n, err := s.forward(ctx, sub)
		sent += n
		if err != nil {
			s.log.WithFields(logrus.Fields{"subscription_id": sub.ID, "user_id": sub.UserID}).WithError(err).Error("Relay failed for subscription")
		}
	}
	if sent > 0 {
		s.log.WithFields(logrus.Fields{"sent": sent, "subscriptions": len(subs)}).Info("Relayed notifications to Telegram")
	}
	return nil
}

func (s *RelayService) forward(ctx context.Context, sub *notification.Subscription) (int, error) {
	unread, err := s.backend.UnreadNotifications(ctx, sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unread notifications: %w", err)
	}
	if len(unread) == 0 {
		return 0, nil
	}

	ids := make([]int64, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	seen, err := s.subs.WasForwarded(ctx, sub.ID, ids)
	if err != nil {
		return 0, err
	}

	slices.SortStableFunc(unread, func(a, b notification.Notification) int {
		return a.CreatedAt.Compare(b.CreatedAt.Time)
	})
	sent := 0
	for _, n := range unread {
		if seen[n.ID] {
			continue
		}
		msg := domainTelegram.Message{
			ChatID:  sub.ChatID,
			Text:    formatNotification(n),
			Buttons: []domainTelegram.Button{{Text: "Mark as read", Data: ReadCallbackData(n.ID)}},
		}
		if err := s.telegram.Send(ctx, msg); err != nil {
			return sent, fmt.Errorf("failed to send notification %d: %w", n.ID, err)
		}
		if err := s.subs.MarkForwarded(ctx, sub.ID, n.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func formatNotification(n notification.Notification) string {
	var b strings.Builder
	b.WriteString(n.Type.Icon())
	b.WriteString(" ")
	b.WriteString(n.Title)
	if msg := strings.TrimSpace(n.Message); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(msg)
	}
	if !n.CreatedAt.IsZero() {
		b.WriteString("\n\n")
		b.WriteString(display.FormatDateTime(n.CreatedAt.Time))
	}
	return b.String()
}

func (s *RelayService) subscriptionFor(ctx context.Context, chatID int64) (*notification.Subscription, error) {
	sub, err := s.subs.GetByChatID(ctx, chatID)
	if err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return nil, ErrNotLinked
		}
		return nil, err
	}
	if !sub.Active {
		return nil, ErrNotLinked
	}
	return sub, nil
}

// UnreadForChat lists the unread notifications of the account linked to chatID.
func (s *RelayService) UnreadForChat(ctx context.Context, chatID int64) ([]notification.Notification, error) {
	sub, err := s.subscriptionFor(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.backend.UnreadNotifications(ctx, sub.UserID)
}

// MarkReadFromChat handles the inline "Mark as read" button. Only an unread notification of
// the linked account can be marked.
func (s *RelayService) MarkReadFromChat(ctx context.Context, chatID, notificationID int64) error {
	sub, err := s.subscriptionFor(ctx, chatID)
	if err != nil {
		return err
	}
	unread, err := s.backend.UnreadNotifications(ctx, sub.UserID)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(unread, func(n notification.Notification) bool { return n.ID == notificationID }) {
		return ErrUnknownNotification
	}
	if err := s.backend.MarkNotificationRead(ctx, notificationID); err != nil {
		return err
	}
	s.cache.Invalidate(notificationsPrefix(sub.UserID))
	s.log.WithFields(logrus.Fields{"user_id": sub.UserID, "notification_id": notificationID}).Info("Notification marked read from Telegram")
	return nil
}

// SendReviewDigest tells each linked reviewer how many reports wait in their queue.
func (s *RelayService) SendReviewDigest(ctx context.Context) error {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	queues := map[report.Status][]report.Report{}
	queue := func(status report.Status) (int, error) {
		if list, ok := queues[status]; ok {
			return len(list), nil
		}
		list, err := s.backend.ReportsByStatus(ctx, status)
		if err != nil {
			return 0, err
		}
		queues[status] = list
		return len(list), nil
	}

	for _, sub := range subs {
		logCtx := s.log.WithFields(logrus.Fields{"subscription_id": sub.ID, "user_id": sub.UserID})
		profile, err := s.backend.ProfileByEmail(ctx, sub.Email)
		if err != nil {
			logCtx.WithError(err).Warn("Could not load profile for digest")
			continue
		}
		rec := profile.SessionRecord()

		var status report.Status
		switch {
		case user.HasHODPrivileges(rec):
			status = report.StatusSubmitted
		case rec.Role == user.RoleCommissionerGeneral:
			status = report.StatusApprovedByHOD
		default:
			continue
		}
		count, err := queue(status)
		if err != nil {
			return fmt.Errorf("failed to load %s queue: %w", status, err)
		}
		if count == 0 {
			continue
		}

		text := fmt.Sprintf("📋 %d %s awaiting your review.", count, plural(count, "report", "reports"))
		if s.portalURL != "" {
			text += "\n" + s.portalURL + "/dashboard"
		}
		if err := s.telegram.Send(ctx, domainTelegram.Message{ChatID: sub.ChatID, Text: text}); err != nil {
			logCtx.WithError(err).Error("Failed to send review digest")
			continue
		}
		logCtx.WithField("pending", count).Info("Review digest sent")
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/user"
	idb "eara_connect_portal/internal/infra/database"
	"eara_connect_portal/internal/infra/redisstore"

	"github.com/google/uuid"
)

var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrInvalidLinkCode = fmt.Errorf("link code is invalid or has expired")
var ErrChatAlreadyLinked = fmt.Errorf("this chat is already linked to another account")
var ErrNotLinked = fmt.Errorf("chat is not linked to a portal account")
var ErrSubscriptionInactive = fmt.Errorf("subscription is already inactive")

const DefaultLinkCodeTTL = 15 * time.Minute

// LinkCodeStore holds the one-time codes a portal user types into the bot to link a chat.
type LinkCodeStore interface {
	SaveLinkCode(ctx context.Context, code string, req redisstore.LinkRequest, ttl time.Duration) error
	ConsumeLinkCode(ctx context.Context, code string) (*redisstore.LinkRequest, error)
}

type SubscriptionService struct {
	subs            notification.SubscriptionRepository
	codes           LinkCodeStore
	adminTelegramID int64
	codeTTL         time.Duration
	now             func() time.Time
}

// NewSubscriptionService returns a service whose methods fail with ErrRelayDisabled when
// subs or codes is nil.
func NewSubscriptionService(subs notification.SubscriptionRepository, codes LinkCodeStore, adminID int64) *SubscriptionService {
	return &SubscriptionService{
		subs:            subs,
		codes:           codes,
		adminTelegramID: adminID,
		codeTTL:         DefaultLinkCodeTTL,
		now:             time.Now,
	}
}

func (s *SubscriptionService) Enabled() bool {
	return s.subs != nil && s.codes != nil
}

func (s *SubscriptionService) IsAdmin(chatID int64) bool {
	return s.adminTelegramID != 0 && chatID == s.adminTelegramID
}

func newLinkCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// IssueLinkCode creates a short-lived code u sends to the bot with /link.
func (s *SubscriptionService) IssueLinkCode(ctx context.Context, u user.SessionUser) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrRelayDisabled
	}
	code := newLinkCode()
	if err := s.codes.SaveLinkCode(ctx, code, redisstore.LinkRequest{UserID: u.ID, Email: u.Email}, s.codeTTL); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store link code: %w", err)
	}
	return code, s.now().Add(s.codeTTL), nil
}

// Link attaches chatID to the account the code was issued for. A user who already has a
// subscription gets it moved to this chat and reactivated.
func (s *SubscriptionService) Link(ctx context.Context, chatID int64, code string) (*notification.Subscription, error) {
	if !s.Enabled() {
		return nil, ErrRelayDisabled
	}
	req, err := s.codes.ConsumeLinkCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, redisstore.ErrLinkCodeNotFound) {
			return nil, ErrInvalidLinkCode
		}
		return nil, fmt.Errorf("failed to resolve link code: %w", err)
	}

	existing, err := s.subs.GetByUserID(ctx, req.UserID)
	if err == nil {
		existing.ChatID = chatID
		existing.Email = req.Email
		existing.Active = true
		if err := s.subs.Update(ctx, existing); err != nil {
			if err == idb.ErrDuplicateSubscription {
				return nil, ErrChatAlreadyLinked
			}
			return nil, fmt.Errorf("failed to relink subscription: %w", err)
		}
		return existing, nil
	}
	if err != idb.ErrSubscriptionNotFound {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	sub := &notification.Subscription{UserID: req.UserID, Email: req.Email, ChatID: chatID, Active: true}
	if err := s.subs.Create(ctx, sub); err != nil {
		if err == idb.ErrDuplicateSubscription {
			return nil, ErrChatAlreadyLinked
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// Unlink stops relaying to chatID. The row is kept so the delivery log survives a relink.
func (s *SubscriptionService) Unlink(ctx context.Context, chatID int64) (*notification.Subscription, error) {
	if !s.Enabled() {
		return nil, ErrRelayDisabled
	}
	return s.deactivate(ctx, chatID)
}

// ForUser returns the subscription of userID, or nil when the user never linked a chat.
func (s *SubscriptionService) ForUser(ctx context.Context, userID int64) (*notification.Subscription, error) {
	if s.subs == nil {
		return nil, nil
	}
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err == idb.ErrSubscriptionNotFound {
		return nil, nil
	}
	return sub, err
}

// ForChat returns the subscription linked to chatID, or nil when the chat was never linked.
func (s *SubscriptionService) ForChat(ctx context.Context, chatID int64) (*notification.Subscription, error) {
	if s.subs == nil {
		return nil, nil
	}
	sub, err := s.subs.GetByChatID(ctx, chatID)
	if err == idb.ErrSubscriptionNotFound {
		return nil, nil
	}
	return sub, err
}

func (s *SubscriptionService) List(ctx context.Context, performingChatID int64, includeInactive bool) ([]*notification.Subscription, error) {
	if !s.IsAdmin(performingChatID) {
		return nil, ErrAdminNotAuthorized
	}
	if s.subs == nil {
		return nil, ErrRelayDisabled
	}
	if includeInactive {
		return s.subs.ListAll(ctx)
	}
	return s.subs.ListActive(ctx)
}

// Deactivate is the admin variant of Unlink.
func (s *SubscriptionService) Deactivate(ctx context.Context, performingChatID, targetChatID int64) (*notification.Subscription, error) {
	if !s.IsAdmin(performingChatID) {
		return nil, ErrAdminNotAuthorized
	}
	if s.subs == nil {
		return nil, ErrRelayDisabled
	}
	return s.deactivate(ctx, targetChatID)
}

func (s *SubscriptionService) deactivate(ctx context.Context, chatID int64) (*notification.Subscription, error) {
	sub, err := s.subs.GetByChatID(ctx, chatID)
	if err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return nil, ErrNotLinked
		}
		return nil, fmt.Errorf("failed to get subscription by chat ID: %w", err)
	}
	if !sub.Active {
		return sub, ErrSubscriptionInactive
	}
	sub.Active = false
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return sub, nil
}

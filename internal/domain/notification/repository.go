// internal/domain/notification/repository.go
package notification

import (
	"context"
)

// SubscriptionRepository persists Telegram subscriptions and the relay's delivery log.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByChatID(ctx context.Context, chatID int64) (*Subscription, error)
	GetByUserID(ctx context.Context, userID int64) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
	ListActive(ctx context.Context) ([]*Subscription, error)
	ListAll(ctx context.Context) ([]*Subscription, error)

	// WasForwarded filters ids down to the notifications already relayed to subscriptionID.
	WasForwarded(ctx context.Context, subscriptionID int64, notificationIDs []int64) (map[int64]bool, error)
	MarkForwarded(ctx context.Context, subscriptionID int64, notificationID int64) error
}

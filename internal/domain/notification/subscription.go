// internal/domain/notification/subscription.go
package notification

import (
	"time"
)

// Subscription links a portal user to the Telegram chat their unread notifications are relayed to.
type Subscription struct {
	ID        int64
	UserID    int64
	Email     string
	ChatID    int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

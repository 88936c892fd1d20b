package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eara_connect_portal/internal/domain/notification"

	"github.com/lib/pq"
)

var ErrSubscriptionNotFound = fmt.Errorf("telegram subscription not found")
var ErrDuplicateSubscription = fmt.Errorf("user or chat is already linked")

const uniqueViolation = "23505"

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, email, chat_id, is_active, created_at, updated_at`

func scanSubscription(row interface{ Scan(...interface{}) error }) (*notification.Subscription, error) {
	s := &notification.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Email, &s.ChatID, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s *notification.Subscription) error {
	query := `INSERT INTO telegram_subscriptions (user_id, email, chat_id, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, s.UserID, s.Email, s.ChatID, s.Active).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubscription
		}
		return fmt.Errorf("error creating subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) GetByChatID(ctx context.Context, chatID int64) (*notification.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM telegram_subscriptions WHERE chat_id = $1`
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting subscription by chat ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*notification.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM telegram_subscriptions WHERE user_id = $1`
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting subscription by user ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriptionRepository) Update(ctx context.Context, s *notification.Subscription) error {
	query := `UPDATE telegram_subscriptions
               SET email = $1, chat_id = $2, is_active = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, s.Email, s.ChatID, s.Active, s.ID).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSubscriptionNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateSubscription
		}
		return fmt.Errorf("error updating subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) ListActive(ctx context.Context) ([]*notification.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM telegram_subscriptions WHERE is_active = TRUE ORDER BY id`)
}

func (r *PostgresSubscriptionRepository) ListAll(ctx context.Context) ([]*notification.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM telegram_subscriptions ORDER BY id`)
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, query string) ([]*notification.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*notification.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return subs, nil
}

func (r *PostgresSubscriptionRepository) WasForwarded(ctx context.Context, subscriptionID int64, notificationIDs []int64) (map[int64]bool, error) {
	seen := make(map[int64]bool, len(notificationIDs))
	if len(notificationIDs) == 0 {
		return seen, nil
	}
	query := `SELECT notification_id FROM forwarded_notifications
               WHERE subscription_id = $1 AND notification_id = ANY($2)`

	rows, err := r.db.QueryContext(ctx, query, subscriptionID, pq.Array(notificationIDs))
	if err != nil {
		return nil, fmt.Errorf("error checking forwarded notifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning forwarded notification: %w", err)
		}
		seen[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forwarded notifications: %w", err)
	}
	return seen, nil
}

func (r *PostgresSubscriptionRepository) MarkForwarded(ctx context.Context, subscriptionID int64, notificationID int64) error {
	query := `INSERT INTO forwarded_notifications (subscription_id, notification_id)
               VALUES ($1, $2)
               ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, subscriptionID, notificationID); err != nil {
		return fmt.Errorf("error marking notification %d forwarded: %w", notificationID, err)
	}
	return nil
}

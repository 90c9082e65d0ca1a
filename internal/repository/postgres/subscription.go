package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, tier, status, started_at, expires_at, auto_renew, pending_tier, stripe_subscription_id, created_at, updated_at`

// Create creates a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) (int64, error) {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO subscriptions (user_id, tier, status, started_at, expires_at, auto_renew, pending_tier, stripe_subscription_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	res, err := r.db.ExecContext(ctx, query,
		sub.UserID, string(sub.Tier), sub.Status, sub.StartedAt, sub.ExpiresAt,
		sub.AutoRenew, string(sub.PendingTier), sub.StripeSubscriptionID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create subscription", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get subscription id", err)
	}
	sub.ID = id
	return id, nil
}

func scanSubscription(scan func(dest ...interface{}) error) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var tier, pendingTier string
	var started, expires sql.NullTime
	err := scan(
		&s.ID, &s.UserID, &tier, &s.Status, &started, &expires,
		&s.AutoRenew, &pendingTier, &s.StripeSubscriptionID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}
	s.Tier = subscription.Tier(tier)
	s.PendingTier = subscription.Tier(pendingTier)
	if started.Valid {
		s.StartedAt = &started.Time
	}
	if expires.Valid {
		s.ExpiresAt = &expires.Time
	}
	return &s, nil
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := r.db.Rebind(`SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`)
	return scanSubscription(r.db.QueryRowContext(ctx, query, id).Scan)
}

// GetCurrentByUserID retrieves the user's pending or active subscription
func (r *SubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := r.db.Rebind(`
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = ? AND status IN ('pending', 'active')
		ORDER BY id DESC
		LIMIT 1
	`)
	return scanSubscription(r.db.QueryRowContext(ctx, query, userID).Scan)
}

// Update persists a subscription's mutable fields
func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	sub.UpdatedAt = time.Now()

	query := r.db.Rebind(`
		UPDATE subscriptions
		SET tier = ?, status = ?, started_at = ?, expires_at = ?, auto_renew = ?, pending_tier = ?, stripe_subscription_id = ?, updated_at = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		string(sub.Tier), sub.Status, sub.StartedAt, sub.ExpiresAt,
		sub.AutoRenew, string(sub.PendingTier), sub.StripeSubscriptionID, sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update subscription", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

// List retrieves subscriptions with filters and pagination
func (r *SubscriptionRepository) List(ctx context.Context, filter subscription.Filter, limit, offset int) ([]*subscription.Subscription, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Tier != "" {
		where = append(where, "tier = ?")
		args = append(args, string(filter.Tier))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM subscriptions WHERE %s", whereClause))
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count subscriptions", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM subscriptions
		WHERE %s
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, subscriptionColumns, whereClause))

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list subscriptions", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate subscriptions", err)
	}

	return subs, total, nil
}

// ListDue retrieves active subscriptions at or past their expiry
func (r *SubscriptionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	query := r.db.Rebind(`
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = 'active' AND expires_at <= ?
		ORDER BY expires_at
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list due subscriptions", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate due subscriptions", err)
	}
	return subs, nil
}

// CountActiveByTier counts active subscriptions grouped by tier
func (r *SubscriptionRepository) CountActiveByTier(ctx context.Context) (map[subscription.Tier]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tier, COUNT(*) FROM subscriptions WHERE status = 'active' GROUP BY tier`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count active subscriptions", err)
	}
	defer rows.Close()

	counts := make(map[subscription.Tier]int64)
	for rows.Next() {
		var tier string
		var n int64
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, errors.DatabaseError("Failed to scan tier counts", err)
		}
		counts[subscription.Tier(tier)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate tier counts", err)
	}
	return counts, nil
}

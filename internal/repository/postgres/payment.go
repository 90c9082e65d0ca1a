package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// PaymentRepository implements payment.Repository
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB) payment.Repository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, user_id, subscription_id, amount_cents, currency, status, provider, external_id, checkout_url, description, created_at, paid_at`

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	p.CreatedAt = time.Now()

	query := r.db.Rebind(`
		INSERT INTO payments (id, user_id, subscription_id, amount_cents, currency, status, provider, external_id, checkout_url, description, created_at, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.SubscriptionID, p.AmountCents, p.Currency, p.Status,
		p.Provider, p.ExternalID, p.CheckoutURL, p.Description, p.CreatedAt, p.PaidAt,
	)
	if err != nil {
		return errors.DatabaseError("Failed to create payment", err)
	}
	return nil
}

func scanPayment(scan func(dest ...interface{}) error) (*payment.Payment, error) {
	var p payment.Payment
	var paidAt sql.NullTime
	err := scan(
		&p.ID, &p.UserID, &p.SubscriptionID, &p.AmountCents, &p.Currency, &p.Status,
		&p.Provider, &p.ExternalID, &p.CheckoutURL, &p.Description, &p.CreatedAt, &paidAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Payment")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get payment", err)
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	query := r.db.Rebind(`SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`)
	return scanPayment(r.db.QueryRowContext(ctx, query, id).Scan)
}

// GetByExternalID retrieves a payment by provider reference
func (r *PaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*payment.Payment, error) {
	query := r.db.Rebind(`SELECT ` + paymentColumns + ` FROM payments WHERE external_id = ?`)
	return scanPayment(r.db.QueryRowContext(ctx, query, externalID).Scan)
}

// Update persists a payment's mutable fields
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := r.db.Rebind(`
		UPDATE payments
		SET status = ?, external_id = ?, checkout_url = ?, description = ?, paid_at = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		p.Status, p.ExternalID, p.CheckoutURL, p.Description, p.PaidAt, p.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update payment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Payment")
	}
	return nil
}

func paymentWhere(filter payment.Filter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "created_at < ?")
		args = append(args, *filter.To)
	}

	return strings.Join(where, " AND "), args
}

// List retrieves payments with filters and pagination
func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Payment, int64, error) {
	whereClause, args := paymentWhere(filter)

	var total int64
	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM payments WHERE %s", whereClause))
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count payments", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, paymentColumns, whereClause))

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list payments", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate payments", err)
	}

	return payments, total, nil
}

// Aggregate computes the payments stats view over a filter
func (r *PaymentRepository) Aggregate(ctx context.Context, filter payment.Filter) (*payment.Stats, error) {
	whereClause, args := paymentWhere(filter)

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT status, COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE %s
		GROUP BY status
	`, whereClause))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to aggregate payments", err)
	}
	defer rows.Close()

	stats := &payment.Stats{CountByStatus: make(map[string]int64)}
	for rows.Next() {
		var status string
		var count, sum int64
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, errors.DatabaseError("Failed to scan payment aggregates", err)
		}
		stats.CountByStatus[status] = count
		switch status {
		case payment.StatusCompleted:
			stats.RevenueCents += sum
		case payment.StatusRefunded:
			stats.RefundedCents += sum
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate payment aggregates", err)
	}

	return stats, nil
}

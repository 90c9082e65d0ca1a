package postgres

import (
	"context"
	"time"

	"github.com/tradepulse/backend/internal/domain/feedback"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// FeedbackRepository implements feedback.Repository
type FeedbackRepository struct {
	db *DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *DB) feedback.Repository {
	return &FeedbackRepository{db: db}
}

// Create stores a feedback entry
func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) (int64, error) {
	f.CreatedAt = time.Now()

	query := r.db.Rebind(`
		INSERT INTO feedback (user_id, category, message, created_at)
		VALUES (?, ?, ?, ?)
	`)

	res, err := r.db.ExecContext(ctx, query, f.UserID, f.Category, f.Message, f.CreatedAt)
	if err != nil {
		return 0, errors.DatabaseError("Failed to store feedback", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get feedback id", err)
	}
	f.ID = id
	return id, nil
}

// List retrieves feedback entries, newest first
func (r *FeedbackRepository) List(ctx context.Context, limit, offset int) ([]*feedback.Feedback, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count feedback", err)
	}

	query := r.db.Rebind(`
		SELECT id, user_id, category, message, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list feedback", err)
	}
	defer rows.Close()

	var entries []*feedback.Feedback
	for rows.Next() {
		var f feedback.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Category, &f.Message, &f.CreatedAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan feedback", err)
		}
		entries = append(entries, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate feedback", err)
	}

	return entries, total, nil
}

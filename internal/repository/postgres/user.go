package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	if u.Tier == "" {
		u.Tier = subscription.TierFree
	}
	if u.FunnelStage == "" {
		u.FunnelStage = user.StageRegistered
	}
	if u.Language == "" {
		u.Language = "en"
	}

	query := r.db.Rebind(`
		INSERT INTO users (telegram_id, username, email, password_hash, role, language, tier, funnel_stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	res, err := r.db.ExecContext(ctx, query,
		u.TelegramID, u.Username, u.Email, u.PasswordHash, u.Role, u.Language, string(u.Tier), u.FunnelStage, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return errors.DatabaseError("Failed to create user", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		u.ID = id
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var tier string
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Role, &u.Language, &tier, &u.FunnelStage, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}
	u.Tier = subscription.Tier(tier)
	return &u, nil
}

const userColumns = `id, telegram_id, username, email, password_hash, role, language, tier, funnel_stage, created_at, updated_at`

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByTelegramID retrieves a user by telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`)
	return r.scanUser(r.db.QueryRowContext(ctx, query, telegramID))
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()

	query := r.db.Rebind(`
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, role = ?, language = ?, tier = ?, funnel_stage = ?, updated_at = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Role, u.Language, string(u.Tier), u.FunnelStage, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("User")
	}
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM users WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete user", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("User")
	}
	return nil
}

// List retrieves users with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count users", err)
	}

	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list users", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var tier string
		if err := rows.Scan(
			&u.ID, &u.TelegramID, &u.Username, &u.Email, &u.PasswordHash,
			&u.Role, &u.Language, &tier, &u.FunnelStage, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan user", err)
		}
		u.Tier = subscription.Tier(tier)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate users", err)
	}

	return users, total, nil
}

// CountByFunnelStage counts users grouped by funnel stage
func (r *UserRepository) CountByFunnelStage(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT funnel_stage, COUNT(*) FROM users GROUP BY funnel_stage`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count users by funnel stage", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var stage string
		var n int64
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, errors.DatabaseError("Failed to scan funnel counts", err)
		}
		counts[stage] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate funnel counts", err)
	}
	return counts, nil
}

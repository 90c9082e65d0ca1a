package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tradepulse/backend/internal/domain/trade"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// TradeRepository implements trade.Repository
type TradeRepository struct {
	db *DB
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *DB) trade.Repository {
	return &TradeRepository{db: db}
}

const tradeColumns = `id, user_id, origin, result, profit_pct, opened_at, closed_at, created_at`

// Create records a closed trade
func (r *TradeRepository) Create(ctx context.Context, o *trade.Outcome) (int64, error) {
	o.CreatedAt = time.Now()

	query := r.db.Rebind(`
		INSERT INTO trades (user_id, origin, result, profit_pct, opened_at, closed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	res, err := r.db.ExecContext(ctx, query,
		o.UserID, o.Origin, o.Result, o.ProfitPct, o.OpenedAt, o.ClosedAt, o.CreatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to record trade", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get trade id", err)
	}
	o.ID = id
	return id, nil
}

// GetByID retrieves a trade outcome
func (r *TradeRepository) GetByID(ctx context.Context, userID, id int64) (*trade.Outcome, error) {
	query := r.db.Rebind(`SELECT ` + tradeColumns + ` FROM trades WHERE user_id = ? AND id = ?`)

	var o trade.Outcome
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&o.ID, &o.UserID, &o.Origin, &o.Result, &o.ProfitPct, &o.OpenedAt, &o.ClosedAt, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Trade")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get trade", err)
	}
	return &o, nil
}

// Delete removes a recorded trade
func (r *TradeRepository) Delete(ctx context.Context, userID, id int64) error {
	query := r.db.Rebind(`DELETE FROM trades WHERE user_id = ? AND id = ?`)

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete trade", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Trade")
	}
	return nil
}

func tradeWhere(userID int64, filter trade.Filter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}

	if userID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if filter.Origin != "" {
		where = append(where, "origin = ?")
		args = append(args, filter.Origin)
	}
	if filter.Result != "" {
		where = append(where, "result = ?")
		args = append(args, filter.Result)
	}
	if filter.From != nil {
		where = append(where, "closed_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "closed_at < ?")
		args = append(args, *filter.To)
	}

	return strings.Join(where, " AND "), args
}

func (r *TradeRepository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*trade.Outcome, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list trades", err)
	}
	defer rows.Close()

	var trades []*trade.Outcome
	for rows.Next() {
		var o trade.Outcome
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Origin, &o.Result, &o.ProfitPct, &o.OpenedAt, &o.ClosedAt, &o.CreatedAt,
		); err != nil {
			return nil, errors.DatabaseError("Failed to scan trade", err)
		}
		trades = append(trades, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate trades", err)
	}
	return trades, nil
}

// List retrieves trades with filters and pagination
func (r *TradeRepository) List(ctx context.Context, userID int64, filter trade.Filter, limit, offset int) ([]*trade.Outcome, int64, error) {
	whereClause, args := tradeWhere(userID, filter)

	var total int64
	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM trades WHERE %s", whereClause))
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count trades", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM trades
		WHERE %s
		ORDER BY closed_at DESC
		LIMIT ? OFFSET ?
	`, tradeColumns, whereClause))

	args = append(args, limit, offset)
	trades, err := r.queryTrades(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return trades, total, nil
}

// ListForUser retrieves all of a user's trades for aggregation, oldest first
func (r *TradeRepository) ListForUser(ctx context.Context, userID int64, filter trade.Filter) ([]*trade.Outcome, error) {
	whereClause, args := tradeWhere(userID, filter)
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s FROM trades WHERE %s ORDER BY closed_at
	`, tradeColumns, whereClause))
	return r.queryTrades(ctx, query, args...)
}

// ListAll retrieves every trade matching a filter, for global stats
func (r *TradeRepository) ListAll(ctx context.Context, filter trade.Filter) ([]*trade.Outcome, error) {
	whereClause, args := tradeWhere(0, filter)
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s FROM trades WHERE %s ORDER BY closed_at
	`, tradeColumns, whereClause))
	return r.queryTrades(ctx, query, args...)
}

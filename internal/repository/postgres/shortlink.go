package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradepulse/backend/internal/domain/shortlink"
	"github.com/tradepulse/backend/internal/pkg/errors"
)

// ShortLinkRepository implements shortlink.Repository
type ShortLinkRepository struct {
	db *DB
}

// NewShortLinkRepository creates a new short link repository
func NewShortLinkRepository(db *DB) shortlink.Repository {
	return &ShortLinkRepository{db: db}
}

const shortLinkColumns = `id, slug, target_url, campaign, medium, source, clicks, active, created_at`

// Create creates a new short link
func (r *ShortLinkRepository) Create(ctx context.Context, link *shortlink.ShortLink) (int64, error) {
	link.CreatedAt = time.Now()

	query := r.db.Rebind(`
		INSERT INTO short_links (slug, target_url, campaign, medium, source, clicks, active, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`)

	res, err := r.db.ExecContext(ctx, query,
		link.Slug, link.TargetURL, link.Campaign, link.Medium, link.Source, link.Active, link.CreatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create short link", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get short link id", err)
	}
	link.ID = id
	return id, nil
}

// GetBySlug retrieves a short link by slug
func (r *ShortLinkRepository) GetBySlug(ctx context.Context, slug string) (*shortlink.ShortLink, error) {
	query := r.db.Rebind(`SELECT ` + shortLinkColumns + ` FROM short_links WHERE slug = ?`)

	var l shortlink.ShortLink
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&l.ID, &l.Slug, &l.TargetURL, &l.Campaign, &l.Medium, &l.Source, &l.Clicks, &l.Active, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Short link")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get short link", err)
	}
	return &l, nil
}

// Update updates a short link
func (r *ShortLinkRepository) Update(ctx context.Context, link *shortlink.ShortLink) error {
	query := r.db.Rebind(`
		UPDATE short_links
		SET target_url = ?, campaign = ?, medium = ?, source = ?, active = ?
		WHERE slug = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		link.TargetURL, link.Campaign, link.Medium, link.Source, link.Active, link.Slug,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update short link", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Short link")
	}
	return nil
}

// Delete deletes a short link
func (r *ShortLinkRepository) Delete(ctx context.Context, slug string) error {
	query := r.db.Rebind(`DELETE FROM short_links WHERE slug = ?`)

	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return errors.DatabaseError("Failed to delete short link", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Short link")
	}
	return nil
}

// List retrieves short links with pagination
func (r *ShortLinkRepository) List(ctx context.Context, limit, offset int) ([]*shortlink.ShortLink, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM short_links`).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count short links", err)
	}

	query := r.db.Rebind(`SELECT ` + shortLinkColumns + ` FROM short_links ORDER BY created_at DESC LIMIT ? OFFSET ?`)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list short links", err)
	}
	defer rows.Close()

	var links []*shortlink.ShortLink
	for rows.Next() {
		var l shortlink.ShortLink
		if err := rows.Scan(
			&l.ID, &l.Slug, &l.TargetURL, &l.Campaign, &l.Medium, &l.Source, &l.Clicks, &l.Active, &l.CreatedAt,
		); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan short link", err)
		}
		links = append(links, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate short links", err)
	}

	return links, total, nil
}

// IncrementClicks bumps the click counter for a slug
func (r *ShortLinkRepository) IncrementClicks(ctx context.Context, slug string) error {
	query := r.db.Rebind(`UPDATE short_links SET clicks = clicks + 1 WHERE slug = ?`)
	if _, err := r.db.ExecContext(ctx, query, slug); err != nil {
		return errors.DatabaseError("Failed to increment clicks", err)
	}
	return nil
}

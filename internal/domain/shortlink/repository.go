package shortlink

import "context"

// Repository defines the interface for short link data access
type Repository interface {
	// Create creates a new short link
	Create(ctx context.Context, link *ShortLink) (int64, error)

	// GetBySlug retrieves a short link by slug
	GetBySlug(ctx context.Context, slug string) (*ShortLink, error)

	// Update updates a short link
	Update(ctx context.Context, link *ShortLink) error

	// Delete deletes a short link
	Delete(ctx context.Context, slug string) error

	// List retrieves short links with pagination
	List(ctx context.Context, limit, offset int) ([]*ShortLink, int64, error)

	// IncrementClicks bumps the click counter for a slug
	IncrementClicks(ctx context.Context, slug string) error
}

package shortlink

import "context"

// Service defines the interface for short link business logic
type Service interface {
	// Create validates the slug and creates a link; a duplicate slug is a
	// conflict
	Create(ctx context.Context, link *ShortLink) (int64, error)

	// Resolve returns the redirect target for a slug with UTM parameters
	// appended, and records the click
	Resolve(ctx context.Context, slug string) (string, error)

	// Get retrieves a short link by slug
	Get(ctx context.Context, slug string) (*ShortLink, error)

	// Deactivate turns a link off without deleting its click history
	Deactivate(ctx context.Context, slug string) error

	// Delete removes a link
	Delete(ctx context.Context, slug string) error

	// List retrieves short links with pagination
	List(ctx context.Context, limit, offset int) ([]*ShortLink, int64, error)
}

package feedback

import "context"

// Repository defines the interface for feedback data access
type Repository interface {
	// Create stores a feedback entry
	Create(ctx context.Context, f *Feedback) (int64, error)

	// List retrieves feedback entries, newest first
	List(ctx context.Context, limit, offset int) ([]*Feedback, int64, error)
}

// Service defines the interface for feedback business logic
type Service interface {
	// Submit validates and stores a feedback entry
	Submit(ctx context.Context, f *Feedback) (int64, error)

	// List retrieves feedback for the admin surface
	List(ctx context.Context, limit, offset int) ([]*Feedback, int64, error)
}

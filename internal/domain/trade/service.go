package trade

import "context"

// Service defines the interface for trade outcome business logic
type Service interface {
	// Record validates and stores a closed trade, invalidating the user's
	// cached statistics
	Record(ctx context.Context, o *Outcome) (int64, error)

	// GetByID retrieves a trade outcome
	GetByID(ctx context.Context, userID, id int64) (*Outcome, error)

	// Delete removes a recorded trade and invalidates cached statistics
	Delete(ctx context.Context, userID, id int64) error

	// List retrieves trades with filters and pagination
	List(ctx context.Context, userID int64, filter Filter, limit, offset int) ([]*Outcome, int64, error)
}

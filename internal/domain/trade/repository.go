package trade

import "context"

// Repository defines the interface for trade outcome data access
type Repository interface {
	// Create records a closed trade
	Create(ctx context.Context, o *Outcome) (int64, error)

	// GetByID retrieves a trade outcome
	GetByID(ctx context.Context, userID, id int64) (*Outcome, error)

	// Delete removes a recorded trade
	Delete(ctx context.Context, userID, id int64) error

	// List retrieves trades with filters and pagination
	List(ctx context.Context, userID int64, filter Filter, limit, offset int) ([]*Outcome, int64, error)

	// ListForUser retrieves all of a user's trades matching a filter,
	// oldest first, for aggregation
	ListForUser(ctx context.Context, userID int64, filter Filter) ([]*Outcome, error)

	// ListAll retrieves every trade matching a filter, for global stats
	ListAll(ctx context.Context, filter Filter) ([]*Outcome, error)
}

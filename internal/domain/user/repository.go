package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByTelegramID retrieves a user by telegram ID
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)

	// Update updates a user
	Update(ctx context.Context, u *User) error

	// Delete deletes a user
	Delete(ctx context.Context, id int64) error

	// List retrieves users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)

	// CountByFunnelStage counts users grouped by funnel stage
	CountByFunnelStage(ctx context.Context) (map[string]int64, error)
}

package feedback

import "time"

// Feedback is a user-submitted message routed to the team
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Categories
const (
	CategoryBug     = "bug"
	CategoryFeature = "feature"
	CategoryOther   = "other"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return c == CategoryBug || c == CategoryFeature || c == CategoryOther
}

package shortlink

import (
	"regexp"
	"time"
)

// ShortLink maps a marketing slug to a landing URL with UTM attribution
type ShortLink struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	TargetURL string    `json:"target_url"`
	Campaign  string    `json:"campaign"`
	Medium    string    `json:"medium"`
	Source    string    `json:"source"`
	Clicks    int64     `json:"clicks"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,31}$`)

// ValidSlug reports whether s is an acceptable slug: lowercase
// alphanumerics and hyphens, 3..32 chars, no leading hyphen.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

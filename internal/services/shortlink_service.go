package services

import (
	"context"
	"net/url"
	"time"

	"github.com/tradepulse/backend/internal/domain/shortlink"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

const clickWriteTimeout = 5 * time.Second

// ShortLinkService implements shortlink.Service
type ShortLinkService struct {
	repo   shortlink.Repository
	logger *logger.Logger
}

// NewShortLinkService creates a new short link service
func NewShortLinkService(repo shortlink.Repository, log *logger.Logger) shortlink.Service {
	return &ShortLinkService{
		repo:   repo,
		logger: log,
	}
}

// Create validates the slug and creates a link
func (s *ShortLinkService) Create(ctx context.Context, link *shortlink.ShortLink) (int64, error) {
	if !shortlink.ValidSlug(link.Slug) {
		return 0, errors.BadRequest("slug must be 3-32 lowercase alphanumerics or hyphens, not starting with a hyphen")
	}
	if _, err := url.ParseRequestURI(link.TargetURL); err != nil {
		return 0, errors.BadRequest("target URL is not valid")
	}

	if _, err := s.repo.GetBySlug(ctx, link.Slug); err == nil {
		return 0, errors.Conflict("a link with this slug already exists")
	} else if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.ErrCodeNotFound {
		return 0, err
	}

	if link.Medium == "" {
		link.Medium = "social"
	}
	if link.Source == "" {
		link.Source = "telegram"
	}
	link.Active = true
	link.CreatedAt = time.Now()

	id, err := s.repo.Create(ctx, link)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"slug":     link.Slug,
		"campaign": link.Campaign,
	}).Info("Short link created")

	return id, nil
}

// Resolve returns the redirect target for a slug with UTM parameters
// appended, and records the click
func (s *ShortLinkService) Resolve(ctx context.Context, slug string) (string, error) {
	link, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if !link.Active {
		return "", errors.NotFound("short link")
	}

	target, err := url.Parse(link.TargetURL)
	if err != nil {
		return "", errors.Internal("stored target URL is not valid", err)
	}

	// Existing query parameters on the target survive; UTM ones win on
	// collision.
	q := target.Query()
	q.Set("utm_source", link.Source)
	q.Set("utm_medium", link.Medium)
	if link.Campaign != "" {
		q.Set("utm_campaign", link.Campaign)
	}
	target.RawQuery = q.Encode()

	// The click count is best-effort bookkeeping; it must not hold up the
	// redirect, so it runs detached from the request context.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), clickWriteTimeout)
		defer cancel()
		if err := s.repo.IncrementClicks(ctx, slug); err != nil {
			s.logger.ErrorWithErr(err, "Failed to record short link click")
		}
	}()
	metrics.RecordShortLinkRedirect(slug)

	return target.String(), nil
}

// Get retrieves a short link by slug
func (s *ShortLinkService) Get(ctx context.Context, slug string) (*shortlink.ShortLink, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Deactivate turns a link off without deleting its click history
func (s *ShortLinkService) Deactivate(ctx context.Context, slug string) error {
	link, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	link.Active = false
	return s.repo.Update(ctx, link)
}

// Delete removes a link
func (s *ShortLinkService) Delete(ctx context.Context, slug string) error {
	return s.repo.Delete(ctx, slug)
}

// List retrieves short links with pagination
func (s *ShortLinkService) List(ctx context.Context, limit, offset int) ([]*shortlink.ShortLink, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/tradepulse/backend/internal/domain/feedback"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

const maxFeedbackLength = 4000

// FeedbackService implements feedback.Service
type FeedbackService struct {
	repo   feedback.Repository
	logger *logger.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(repo feedback.Repository, log *logger.Logger) feedback.Service {
	return &FeedbackService{
		repo:   repo,
		logger: log,
	}
}

// Submit validates and stores a feedback entry
func (s *FeedbackService) Submit(ctx context.Context, f *feedback.Feedback) (int64, error) {
	if !feedback.ValidCategory(f.Category) {
		return 0, errors.BadRequest("unknown feedback category")
	}

	f.Message = strings.TrimSpace(f.Message)
	if f.Message == "" {
		return 0, errors.BadRequest("feedback message is empty")
	}
	if len(f.Message) > maxFeedbackLength {
		return 0, errors.BadRequest("feedback message is too long")
	}

	f.CreatedAt = time.Now()
	id, err := s.repo.Create(ctx, f)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to store feedback")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"feedback_id": id,
		"category":    f.Category,
	}).Info("Feedback submitted")

	return id, nil
}

// List retrieves feedback for the admin surface
func (s *FeedbackService) List(ctx context.Context, limit, offset int) ([]*feedback.Feedback, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

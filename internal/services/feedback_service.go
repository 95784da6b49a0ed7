package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/logger"
)

// FeedbackService submits app feedback. Append-only.
type FeedbackService struct {
	feedback interfaces.FeedbackRepository
	session  *SessionService
	log      *logger.Logger

	writeTimeout time.Duration
}

func NewFeedbackService(feedback interfaces.FeedbackRepository, session *SessionService, log *logger.Logger, writeTimeout time.Duration) *FeedbackService {
	return &FeedbackService{
		feedback:     feedback,
		session:      session,
		log:          log,
		writeTimeout: writeTimeout,
	}
}

func (s *FeedbackService) Submit(ctx context.Context, message string) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	email := ""
	if user := s.session.CurrentUser(); user != nil {
		email = user.Email
	}

	entry := &models.Feedback{
		ID:        uuid.New().String(),
		UserID:    driverID,
		Email:     email,
		Message:   message,
		Timestamp: time.Now(),
	}

	wctx := ctx
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	if err := s.feedback.Create(wctx, entry); err != nil {
		return fmt.Errorf("%w: submit feedback: %v", ErrWriteFailed, err)
	}

	return nil
}

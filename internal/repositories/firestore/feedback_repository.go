package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/logger"
)

const feedbackCollection = "feedback"

type feedbackRepository struct {
	client *fs.Client
	log    *logger.Logger
}

func NewFeedbackRepository(client *fs.Client, log *logger.Logger) interfaces.FeedbackRepository {
	return &feedbackRepository{
		client: client,
		log:    log,
	}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	_, err := r.client.Collection(feedbackCollection).Doc(feedback.ID).Create(ctx, feedback)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	r.log.WithField("feedback_id", feedback.ID).Info("Feedback submitted")
	return nil
}

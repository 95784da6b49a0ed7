package interfaces

import (
	"context"

	"saferides-driver/internal/models"
)

// FeedbackRepository is append-only; feedback documents are never read
// back, updated, or deleted by this client.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
}

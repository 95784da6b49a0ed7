package interfaces

import (
	"context"

	"saferides-driver/internal/models"
)

// DriverRepository accesses driver profile documents keyed by the
// authenticated uid.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)

	// Create writes the profile document at sign-up. Fails with
	// ErrDriverExists if a document is already present for the uid.
	Create(ctx context.Context, driver *models.Driver) error

	// Update applies a partial merge. Callers must not include the
	// immutable email and gender fields.
	Update(ctx context.Context, id string, updates map[string]interface{}) error
}

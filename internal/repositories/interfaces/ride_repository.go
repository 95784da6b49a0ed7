package interfaces

import (
	"context"
	"time"

	"saferides-driver/internal/models"
)

// RideRepository is the driver client's view of the rides collection.
// The client updates and listens; it never creates or deletes ride
// documents, those belong to the rider side.
type RideRepository interface {
	GetByID(ctx context.Context, id string) (*models.Ride, error)

	// AcceptRide conditionally transitions a requested ride to accepted and
	// stamps the driver fields, in a single transaction. It fails with
	// ErrRideAlreadyAccepted unless the ride is still requested with no
	// driver assigned, so exactly one concurrent accepter wins.
	AcceptRide(ctx context.Context, id string, stamp *models.DriverStamp) error

	// StartRide transitions accepted → in_progress.
	StartRide(ctx context.Context, id string) error

	// CompleteRide transitions in_progress → completed and stamps the
	// server-side completion time.
	CompleteRide(ctx context.Context, id string) error

	// ListenRequested delivers full snapshots of all rides currently in the
	// requested state. The channel closes when ctx is cancelled.
	ListenRequested(ctx context.Context) (<-chan []*models.Ride, error)

	// ListenRide delivers snapshots of a single ride document. The channel
	// closes when ctx is cancelled.
	ListenRide(ctx context.Context, id string) (<-chan *models.Ride, error)

	// CompletedByDriver returns the driver's completed rides with a
	// completion-time lower bound, for trip history and daily stats.
	CompletedByDriver(ctx context.Context, driverID string, since time.Time) ([]*models.Ride, error)
}

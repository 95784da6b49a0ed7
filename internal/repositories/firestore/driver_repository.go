package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/logger"
)

const driversCollection = "drivers"

type driverRepository struct {
	client *fs.Client
	log    *logger.Logger
}

func NewDriverRepository(client *fs.Client, log *logger.Logger) interfaces.DriverRepository {
	return &driverRepository{
		client: client,
		log:    log,
	}
}

func (r *driverRepository) ref(id string) *fs.DocumentRef {
	return r.client.Collection(driversCollection).Doc(id)
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	snap, err := r.ref(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver profile: %w", err)
	}

	var driver models.Driver
	if err := snap.DataTo(&driver); err != nil {
		return nil, fmt.Errorf("failed to decode driver profile %s: %w", id, err)
	}
	driver.ID = snap.Ref.ID

	return &driver, nil
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	_, err := r.ref(driver.ID).Create(ctx, driver)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return interfaces.ErrDriverExists
		}
		return fmt.Errorf("failed to create driver profile: %w", err)
	}

	r.log.WithDriverID(driver.ID).Info("Driver profile created")
	return nil
}

func (r *driverRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	_, err := r.ref(id).Set(ctx, updates, fs.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return interfaces.ErrDriverNotFound
		}
		return fmt.Errorf("failed to update driver profile: %w", err)
	}

	return nil
}

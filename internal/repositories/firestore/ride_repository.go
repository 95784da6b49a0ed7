package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/logger"
)

const ridesCollection = "rides"

type rideRepository struct {
	client *fs.Client
	log    *logger.Logger
}

func NewRideRepository(client *fs.Client, log *logger.Logger) interfaces.RideRepository {
	return &rideRepository{
		client: client,
		log:    log,
	}
}

func (r *rideRepository) ref(id string) *fs.DocumentRef {
	return r.client.Collection(ridesCollection).Doc(id)
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	snap, err := r.ref(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return decodeRide(snap)
}

// AcceptRide is the conditional accept: the transaction re-reads the
// document and refuses to stamp a ride that is no longer requested or
// already carries a driver, so exactly one concurrent accepter wins.
func (r *rideRepository) AcceptRide(ctx context.Context, id string, stamp *models.DriverStamp) error {
	ref := r.ref(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return interfaces.ErrRideNotFound
			}
			return fmt.Errorf("failed to read ride in transaction: %w", err)
		}

		data := snap.Data()
		current, _ := data["status"].(string)
		if models.RideStatus(current) != models.RideStatusRequested {
			return interfaces.ErrRideAlreadyAccepted
		}
		if driverID, ok := data["driverId"].(string); ok && driverID != "" {
			return interfaces.ErrRideAlreadyAccepted
		}

		return tx.Update(ref, []fs.Update{
			{Path: "status", Value: string(models.RideStatusAccepted)},
			{Path: "driverId", Value: stamp.DriverID},
			{Path: "driverName", Value: stamp.Name},
			{Path: "driverPhone", Value: stamp.Phone},
			{Path: "driverGender", Value: stamp.Gender},
			{Path: "driverCar", Value: map[string]interface{}{
				"make":  stamp.Car.Make,
				"model": stamp.Car.Model,
				"color": stamp.Car.Color,
				"year":  stamp.Car.Year,
			}},
			{Path: "driverPlate", Value: stamp.Plate},
			{Path: "acceptedAt", Value: fs.ServerTimestamp},
		})
	})
	if err != nil {
		return err
	}

	r.log.LogRideEvent(id, "accepted", map[string]interface{}{"driver_id": stamp.DriverID})
	return nil
}

func (r *rideRepository) StartRide(ctx context.Context, id string) error {
	ref := r.ref(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return interfaces.ErrRideNotFound
			}
			return fmt.Errorf("failed to read ride in transaction: %w", err)
		}

		current, _ := snap.Data()["status"].(string)
		if models.RideStatus(current) != models.RideStatusAccepted {
			return interfaces.ErrRideNotAccepted
		}

		return tx.Update(ref, []fs.Update{
			{Path: "status", Value: string(models.RideStatusInProgress)},
		})
	})
	if err != nil {
		return err
	}

	r.log.LogRideEvent(id, "in_progress", nil)
	return nil
}

func (r *rideRepository) CompleteRide(ctx context.Context, id string) error {
	ref := r.ref(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return interfaces.ErrRideNotFound
			}
			return fmt.Errorf("failed to read ride in transaction: %w", err)
		}

		current, _ := snap.Data()["status"].(string)
		if models.RideStatus(current) != models.RideStatusInProgress {
			return interfaces.ErrRideNotInProgress
		}

		return tx.Update(ref, []fs.Update{
			{Path: "status", Value: string(models.RideStatusCompleted)},
			{Path: "completedAt", Value: fs.ServerTimestamp},
		})
	})
	if err != nil {
		return err
	}

	r.log.LogRideEvent(id, "completed", nil)
	return nil
}

func (r *rideRepository) ListenRequested(ctx context.Context) (<-chan []*models.Ride, error) {
	query := r.client.Collection(ridesCollection).
		Where("status", "==", string(models.RideStatusRequested))

	out := make(chan []*models.Ride, 1)

	go func() {
		defer close(out)

		it := query.Snapshots(ctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					r.log.WithError(err).Warn("requested-rides listener terminated")
				}
				return
			}

			rides := make([]*models.Ride, 0, qs.Size)
			docs := qs.Documents
			for {
				snap, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					r.log.WithError(err).Warn("failed to iterate ride snapshot")
					break
				}
				ride, err := decodeRide(snap)
				if err != nil {
					r.log.WithError(err).WithRideID(snap.Ref.ID).Warn("skipping undecodable ride document")
					continue
				}
				rides = append(rides, ride)
			}

			// Latest snapshot wins; a slow consumer only ever sees the
			// freshest full list.
			select {
			case out <- rides:
			default:
				select {
				case <-out:
				default:
				}
				out <- rides
			}
		}
	}()

	return out, nil
}

func (r *rideRepository) ListenRide(ctx context.Context, id string) (<-chan *models.Ride, error) {
	out := make(chan *models.Ride, 1)

	go func() {
		defer close(out)

		it := r.ref(id).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					r.log.WithError(err).WithRideID(id).Warn("ride listener terminated")
				}
				return
			}
			if !snap.Exists() {
				r.log.WithRideID(id).Warn("watched ride document no longer exists")
				continue
			}

			ride, err := decodeRide(snap)
			if err != nil {
				r.log.WithError(err).WithRideID(id).Warn("skipping undecodable ride snapshot")
				continue
			}

			select {
			case out <- ride:
			default:
				select {
				case <-out:
				default:
				}
				out <- ride
			}
		}
	}()

	return out, nil
}

func (r *rideRepository) CompletedByDriver(ctx context.Context, driverID string, since time.Time) ([]*models.Ride, error) {
	it := r.client.Collection(ridesCollection).
		Where("driverId", "==", driverID).
		Where("status", "==", string(models.RideStatusCompleted)).
		Where("completedAt", ">=", since).
		Documents(ctx)
	defer it.Stop()

	var rides []*models.Ride
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query completed rides: %w", err)
		}

		ride, err := decodeRide(snap)
		if err != nil {
			r.log.WithError(err).WithRideID(snap.Ref.ID).Warn("skipping undecodable completed ride")
			continue
		}
		rides = append(rides, ride)
	}

	return rides, nil
}

func decodeRide(snap *fs.DocumentSnapshot) (*models.Ride, error) {
	var ride models.Ride
	if err := snap.DataTo(&ride); err != nil {
		return nil, fmt.Errorf("failed to decode ride %s: %w", snap.Ref.ID, err)
	}

	ride.ID = snap.Ref.ID
	ride.UpdateTime = snap.UpdateTime

	// pickupCode is decoded from the raw document: older rider clients wrote
	// it as a number, and a typed decode would drop leading zeros.
	ride.PickupCode = codeString(snap.Data()["pickupCode"])

	return &ride, nil
}

func codeString(value interface{}) string {
	switch code := value.(type) {
	case string:
		return code
	case int64:
		return strconv.FormatInt(code, 10)
	case float64:
		return strconv.FormatFloat(code, 'f', -1, 64)
	default:
		return ""
	}
}

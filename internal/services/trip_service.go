package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/internal/utils"
	"saferides-driver/pkg/logger"
)

// TripService aggregates the driver's completed rides into history and
// daily stats. Read-only.
type TripService struct {
	rides   interfaces.RideRepository
	session *SessionService
	log     *logger.Logger

	now func() time.Time
}

func NewTripService(rides interfaces.RideRepository, session *SessionService, log *logger.Logger) *TripService {
	return &TripService{
		rides:   rides,
		session: session,
		log:     log,
		now:     time.Now,
	}
}

// History returns completed trips since the given time, newest first.
// Rides are de-duplicated by id so a repeated completion write can never
// produce a double entry.
func (s *TripService) History(ctx context.Context, since time.Time) ([]*models.Trip, error) {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return nil, err
	}

	rides, err := s.rides.CompletedByDriver(ctx, driverID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip history: %w", err)
	}

	seen := make(map[string]bool, len(rides))
	trips := make([]*models.Trip, 0, len(rides))
	for _, ride := range rides {
		if seen[ride.ID] {
			continue
		}
		seen[ride.ID] = true
		trips = append(trips, models.TripFromRide(ride))
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CompletedAt.After(trips[j].CompletedAt)
	})

	return trips, nil
}

// DailyStats returns today's trip count and earnings, bounded at start of
// day in the local timezone.
func (s *TripService) DailyStats(ctx context.Context) (*models.DailyStats, error) {
	startOfDay := utils.StartOfDay(s.now())

	trips, err := s.History(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	stats := &models.DailyStats{Date: startOfDay}
	for _, trip := range trips {
		stats.Trips++
		stats.Earnings += trip.Price
	}

	return stats, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"saferides-driver/internal/models"
)

func completedRide(id, driverID string, completedAt time.Time, price float64) *models.Ride {
	ride := requestedRide(id)
	ride.Status = models.RideStatusCompleted
	ride.DriverID = driverID
	ride.CompletedAt = &completedAt
	ride.Price = price
	return ride
}

func newTestTripService(t *testing.T, uid string) (*TripService, *mockRideRepository) {
	t.Helper()
	rideRepo := newMockRideRepository()
	driverRepo := newMockDriverRepository()
	session := newTestSession(t, uid, driverRepo)
	return NewTripService(rideRepo, session, testLogger(t)), rideRepo
}

func TestHistoryRequiresAuthentication(t *testing.T) {
	rideRepo := newMockRideRepository()
	driverRepo := newMockDriverRepository()
	session := NewSessionService(&fakeIdentityProvider{uid: "driver-1"}, driverRepo, testLogger(t))
	service := NewTripService(rideRepo, session, testLogger(t))

	if _, err := service.History(context.Background(), time.Time{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestHistoryNewestFirstOwnRidesOnly(t *testing.T) {
	service, rideRepo := newTestTripService(t, "driver-1")

	now := time.Now()
	rideRepo.addRide(completedRide("ride-old", "driver-1", now.Add(-2*time.Hour), 5.00))
	rideRepo.addRide(completedRide("ride-new", "driver-1", now, 8.25))
	rideRepo.addRide(completedRide("ride-other", "driver-2", now, 9.99))

	// An accepted ride never shows up in history.
	active := requestedRide("ride-active")
	active.Status = models.RideStatusAccepted
	active.DriverID = "driver-1"
	rideRepo.addRide(active)

	trips, err := service.History(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trips) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(trips))
	}
	if trips[0].RideID != "ride-new" || trips[1].RideID != "ride-old" {
		t.Errorf("expected newest first, got %s then %s", trips[0].RideID, trips[1].RideID)
	}
	if trips[0].Price != 8.25 {
		t.Errorf("expected price 8.25, got %v", trips[0].Price)
	}
}

func TestHistorySinceBound(t *testing.T) {
	service, rideRepo := newTestTripService(t, "driver-1")

	now := time.Now()
	rideRepo.addRide(completedRide("ride-yesterday", "driver-1", now.Add(-30*time.Hour), 5.00))
	rideRepo.addRide(completedRide("ride-today", "driver-1", now.Add(-time.Hour), 6.00))

	trips, err := service.History(context.Background(), now.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].RideID != "ride-today" {
		t.Errorf("expected only ride-today, got %+v", trips)
	}
}

func TestDailyStatsSumsTodaysTrips(t *testing.T) {
	service, rideRepo := newTestTripService(t, "driver-1")

	fixed := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	service.now = func() time.Time { return fixed }

	rideRepo.addRide(completedRide("ride-1", "driver-1", fixed.Add(-time.Hour), 5.50))
	rideRepo.addRide(completedRide("ride-2", "driver-1", fixed.Add(-4*time.Hour), 7.25))
	rideRepo.addRide(completedRide("ride-yesterday", "driver-1", fixed.Add(-20*time.Hour), 10.00))

	stats, err := service.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Trips != 2 {
		t.Errorf("expected 2 trips today, got %d", stats.Trips)
	}
	if stats.Earnings != 12.75 {
		t.Errorf("expected earnings 12.75, got %v", stats.Earnings)
	}
}

func TestDailyStatsEmptyDay(t *testing.T) {
	service, _ := newTestTripService(t, "driver-1")

	stats, err := service.DailyStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Trips != 0 || stats.Earnings != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

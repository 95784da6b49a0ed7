package services

import (
	"context"
	"fmt"
	"time"

	"saferides-driver/internal/models"
	"saferides-driver/pkg/logger"
	"saferides-driver/pkg/maps"
)

// RouteCache is the subset of the redis cache used for ETA lookups.
type RouteCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// ETAService annotates candidate rides with an estimated pickup-to-dropoff
// duration and distance. Pure annotation: failures degrade to an
// unannotated ride and never block anything.
type ETAService struct {
	provider maps.MapsProvider
	cache    RouteCache // may be nil
	cacheTTL time.Duration
	log      *logger.Logger
}

type routeEstimate struct {
	Minutes int     `json:"minutes"`
	KM      float64 `json:"km"`
}

func NewETAService(provider maps.MapsProvider, cache RouteCache, cacheTTL time.Duration, log *logger.Logger) *ETAService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ETAService{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *ETAService) AnnotateTrip(ctx context.Context, ride *models.Ride) error {
	origin, err := s.resolve(ctx, ride.PickupLocation, ride.PickupAddress)
	if err != nil {
		return err
	}
	destination, err := s.resolve(ctx, ride.DropoffLocation, ride.DropoffAddress)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("eta:%.5f,%.5f:%.5f,%.5f",
		origin.Latitude, origin.Longitude, destination.Latitude, destination.Longitude)

	if s.cache != nil {
		var cached routeEstimate
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			ride.EstimatedMinutes = cached.Minutes
			ride.EstimatedKM = cached.KM
			return nil
		}
	}

	resp, err := s.provider.CalculateDistance(ctx, &maps.DistanceRequest{
		Origin:      origin,
		Destination: destination,
	})
	if err != nil {
		return fmt.Errorf("failed to estimate route: %w", err)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("route estimate unavailable: %s", resp.Status)
	}

	estimate := routeEstimate{
		Minutes: resp.Duration.Value / 60,
		KM:      resp.Distance.Value / 1000,
	}
	ride.EstimatedMinutes = estimate.Minutes
	ride.EstimatedKM = estimate.KM

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, estimate, s.cacheTTL); err != nil {
			s.log.WithError(err).Debug("failed to cache route estimate")
		}
	}

	return nil
}

func (s *ETAService) resolve(ctx context.Context, location *models.Location, address string) (maps.Location, error) {
	if location.IsSet() {
		return maps.Location{Latitude: location.Latitude, Longitude: location.Longitude}, nil
	}
	if address == "" {
		return maps.Location{}, fmt.Errorf("no location or address to resolve")
	}

	resp, err := s.provider.Geocode(ctx, address)
	if err != nil {
		return maps.Location{}, fmt.Errorf("failed to geocode %q: %w", address, err)
	}
	if len(resp.Results) == 0 {
		return maps.Location{}, fmt.Errorf("no geocoding result for %q", address)
	}

	return resp.Results[0].Coordinates, nil
}

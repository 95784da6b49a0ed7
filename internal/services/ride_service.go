package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/logger"
)

// CandidateListener receives the full candidate list after every
// reconciliation pass.
type CandidateListener func(candidates []*models.Ride)

// RideService owns the driver's view of ride documents: the live candidate
// list while online, the pickup verification gate, and every status
// transition write.
type RideService struct {
	rides   interfaces.RideRepository
	drivers interfaces.DriverRepository
	session *SessionService
	eta     *ETAService // optional annotation, may be nil
	log     *logger.Logger

	writeTimeout time.Duration

	mu         sync.Mutex
	online     bool
	generation uint64
	cancelSub  context.CancelFunc
	candidates []*models.Ride
	// declined maps a ride id to the document fingerprint at decline time.
	// Suppression is purely local and holds only until the document changes.
	declined  map[string]time.Time
	verified  map[string]bool
	listeners []CandidateListener

	// notifyMu serializes listener delivery so a snapshot copied before
	// GoOffline can never reach listeners after the offline clear.
	notifyMu sync.Mutex
}

func NewRideService(
	rides interfaces.RideRepository,
	drivers interfaces.DriverRepository,
	session *SessionService,
	eta *ETAService,
	log *logger.Logger,
	writeTimeout time.Duration,
) *RideService {
	return &RideService{
		rides:        rides,
		drivers:      drivers,
		session:      session,
		eta:          eta,
		log:          log,
		writeTimeout: writeTimeout,
		declined:     make(map[string]time.Time),
		verified:     make(map[string]bool),
	}
}

// GoOnline opens the live subscription to requested rides. Idempotent
// while already online.
func (s *RideService) GoOnline(ctx context.Context) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.online {
		s.mu.Unlock()
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	ch, err := s.rides.ListenRequested(subCtx)
	if err != nil {
		cancel()
		s.mu.Unlock()
		return fmt.Errorf("failed to subscribe to requested rides: %w", err)
	}

	s.online = true
	s.cancelSub = cancel
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	s.log.WithDriverID(driverID).Info("Driver online, subscribed to requested rides")

	go s.consume(subCtx, generation, ch)
	return nil
}

// GoOffline tears down the subscription and clears the candidate list
// immediately. A later GoOnline starts fresh.
func (s *RideService) GoOffline() {
	s.mu.Lock()
	if !s.online {
		s.mu.Unlock()
		return
	}

	s.cancelSub()
	s.cancelSub = nil
	s.online = false
	// Bump the generation so a stale consumer can never repopulate the list.
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	s.log.Info("Driver offline, candidate list cleared")
	s.notify(generation, nil)
}

func (s *RideService) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Candidates returns a copy of the current candidate list.
func (s *RideService) Candidates() []*models.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Ride, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// OnCandidates registers a listener for candidate list changes.
func (s *RideService) OnCandidates(listener CandidateListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

func (s *RideService) consume(ctx context.Context, generation uint64, ch <-chan []*models.Ride) {
	for incoming := range ch {
		if s.eta != nil {
			s.annotate(ctx, incoming)
		}

		s.mu.Lock()
		if s.generation != generation || !s.online {
			s.mu.Unlock()
			return
		}
		s.candidates = s.reconcile(incoming)
		snapshot := make([]*models.Ride, len(s.candidates))
		copy(snapshot, s.candidates)
		s.mu.Unlock()

		s.notify(generation, snapshot)
	}
}

// reconcile fully replaces the candidate list from an incoming snapshot:
// declined rides stay hidden while their document is unchanged, and the
// result is sorted by request time, oldest first. Callers hold s.mu.
func (s *RideService) reconcile(incoming []*models.Ride) []*models.Ride {
	candidates := make([]*models.Ride, 0, len(incoming))
	for _, ride := range incoming {
		if fingerprint, ok := s.declined[ride.ID]; ok {
			if ride.UpdateTime.Equal(fingerprint) {
				continue
			}
			// The document changed since the decline; it resurfaces.
			delete(s.declined, ride.ID)
		}
		candidates = append(candidates, ride)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].RequestedAt.Before(candidates[j].RequestedAt)
	})

	return candidates
}

func (s *RideService) annotate(ctx context.Context, rides []*models.Ride) {
	actx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for _, ride := range rides {
		// Best effort only; an annotation failure never blocks the list.
		if err := s.eta.AnnotateTrip(actx, ride); err != nil {
			s.log.WithError(err).WithRideID(ride.ID).Debug("trip annotation skipped")
		}
	}
}

// notify delivers a candidate list under notifyMu, dropping it if the
// subscription generation moved on between the snapshot and the delivery.
func (s *RideService) notify(generation uint64, candidates []*models.Ride) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return
	}
	listeners := make([]CandidateListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(candidates)
	}
}

// Accept stamps the current driver onto a requested ride with a single
// conditional write. The profile snapshot is taken at this moment; later
// profile edits do not change an already-accepted ride.
func (s *RideService) Accept(ctx context.Context, rideID string) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	profile, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrDriverNotFound) {
			return fmt.Errorf("failed to load driver profile: %w", err)
		}
		// Accept is never blocked on incomplete profile data; the stamp
		// degrades to empty fields.
		s.log.WithDriverID(driverID).Warn("accepting with missing driver profile")
		profile = nil
	}

	stamp := models.NewDriverStamp(driverID, profile)

	wctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.rides.AcceptRide(wctx, rideID, stamp); err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) || errors.Is(err, interfaces.ErrRideAlreadyAccepted) {
			return err
		}
		return fmt.Errorf("%w: accept ride %s: %v", ErrWriteFailed, rideID, err)
	}

	s.mu.Lock()
	s.removeCandidateLocked(rideID)
	snapshot := make([]*models.Ride, len(s.candidates))
	copy(snapshot, s.candidates)
	generation := s.generation
	s.mu.Unlock()
	s.notify(generation, snapshot)

	s.log.LogDriverAction(driverID, "accept_ride", map[string]interface{}{"ride_id": rideID})
	return nil
}

// Decline removes a ride from the local candidate list. No document write
// happens, so the ride resurfaces once its document changes. Idempotent.
func (s *RideService) Decline(rideID string) {
	s.mu.Lock()
	fingerprint := time.Time{}
	for _, ride := range s.candidates {
		if ride.ID == rideID {
			fingerprint = ride.UpdateTime
			break
		}
	}
	s.declined[rideID] = fingerprint
	s.removeCandidateLocked(rideID)
	snapshot := make([]*models.Ride, len(s.candidates))
	copy(snapshot, s.candidates)
	generation := s.generation
	s.mu.Unlock()

	s.notify(generation, snapshot)
	s.log.WithRideID(rideID).Info("Ride declined locally")
}

func (s *RideService) removeCandidateLocked(rideID string) {
	for i, ride := range s.candidates {
		if ride.ID == rideID {
			s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
			return
		}
	}
}

// VerifyPickupCode compares the rider-supplied code against the ride
// document. Pure gate: it never mutates the document, allows unlimited
// retries, and compares trimmed strings so leading zeros survive.
func (s *RideService) VerifyPickupCode(ctx context.Context, rideID, code string) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) {
			return err
		}
		return fmt.Errorf("failed to load ride: %w", err)
	}

	stored := strings.TrimSpace(ride.PickupCode)
	if stored == "" {
		return ErrPickupCodeUnavailable
	}
	if stored != strings.TrimSpace(code) {
		return ErrPickupCodeMismatch
	}

	s.mu.Lock()
	s.verified[rideID] = true
	s.mu.Unlock()

	s.log.WithRideID(rideID).Info("Pickup code verified")
	return nil
}

// StartRide confirms the pickup and marks the ride in progress. Refused
// unless the verification gate has passed, the ride carries pickup
// coordinates, and it has a usable drop-off.
func (s *RideService) StartRide(ctx context.Context, rideID string) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	verified := s.verified[rideID]
	s.mu.Unlock()
	if !verified {
		return ErrPickupNotVerified
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) {
			return err
		}
		return fmt.Errorf("failed to load ride: %w", err)
	}

	if ride.DriverID != "" && ride.DriverID != driverID {
		return ErrRideNotOwned
	}
	if ride.Status != models.RideStatusAccepted {
		return interfaces.ErrRideNotAccepted
	}
	// The pickup needs real coordinates; an address alone is not enough to
	// start navigation. The drop-off accepts either.
	if !ride.PickupLocation.IsSet() {
		return ErrMissingPickupLocation
	}
	if !ride.HasDropoff() {
		return ErrMissingDropoffLocation
	}

	wctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.rides.StartRide(wctx, rideID); err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) || errors.Is(err, interfaces.ErrRideNotAccepted) {
			return err
		}
		return fmt.Errorf("%w: start ride %s: %v", ErrWriteFailed, rideID, err)
	}

	s.mu.Lock()
	delete(s.verified, rideID)
	s.mu.Unlock()

	s.log.LogDriverAction(driverID, "confirm_pickup", map[string]interface{}{"ride_id": rideID})
	return nil
}

// CompleteRide finishes the trip from the drop-off screen. Terminal; the
// completion time is stamped server-side.
func (s *RideService) CompleteRide(ctx context.Context, rideID string) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) {
			return err
		}
		return fmt.Errorf("failed to load ride: %w", err)
	}

	if ride.DriverID != "" && ride.DriverID != driverID {
		return ErrRideNotOwned
	}

	wctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.rides.CompleteRide(wctx, rideID); err != nil {
		if errors.Is(err, interfaces.ErrRideNotFound) || errors.Is(err, interfaces.ErrRideNotInProgress) {
			return err
		}
		return fmt.Errorf("%w: complete ride %s: %v", ErrWriteFailed, rideID, err)
	}

	s.log.LogDriverAction(driverID, "complete_ride", map[string]interface{}{"ride_id": rideID})
	return nil
}

// ListenActiveRide opens a live subscription to a single ride document for
// the active-ride and drop-off views.
func (s *RideService) ListenActiveRide(ctx context.Context, rideID string) (<-chan *models.Ride, error) {
	if _, err := s.session.CurrentDriverID(); err != nil {
		return nil, err
	}
	return s.rides.ListenRide(ctx, rideID)
}

func (s *RideService) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.writeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.writeTimeout)
}

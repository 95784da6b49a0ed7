package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/internal/utils"
	"saferides-driver/pkg/identity"
	"saferides-driver/pkg/logger"
)

// AuthStateListener is notified whenever the session changes. A nil user
// means signed out.
type AuthStateListener func(user *identity.User)

// SessionService is the single injected session context. Every
// ride-lifecycle operation takes the driver id from here instead of
// subscribing to auth changes independently.
type SessionService struct {
	provider identity.Provider
	drivers  interfaces.DriverRepository
	log      *logger.Logger

	mu           sync.RWMutex
	user         *identity.User
	listeners    map[int]AuthStateListener
	nextListener int
}

func NewSessionService(provider identity.Provider, drivers interfaces.DriverRepository, log *logger.Logger) *SessionService {
	return &SessionService{
		provider:  provider,
		drivers:   drivers,
		log:       log,
		listeners: make(map[int]AuthStateListener),
	}
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) error {
	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.setUser(user)
	s.log.WithDriverID(user.UID).Info("Driver signed in")
	return nil
}

// SignUpRequest carries the sign-up form. Gender and email become
// immutable once the profile document is created.
type SignUpRequest struct {
	FullName     string `validate:"required"`
	Email        string `validate:"required,email"`
	Password     string `validate:"required,min=6"`
	Gender       string `validate:"required"`
	VehicleMake  string `validate:"required"`
	VehicleModel string `validate:"required"`
	VehicleYear  string `validate:"required"`
	LicensePlate string `validate:"required"`
	VehicleColor string `validate:"required"`
}

func (s *SessionService) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	driver := &models.Driver{
		ID:       user.UID,
		FullName: req.FullName,
		Email:    req.Email,
		Gender:   req.Gender,
		Vehicle: models.Vehicle{
			Make:  req.VehicleMake,
			Model: req.VehicleModel,
			Year:  req.VehicleYear,
			Plate: req.LicensePlate,
			Color: req.VehicleColor,
		},
		CreatedAt: time.Now(),
	}

	if err := s.drivers.Create(ctx, driver); err != nil {
		return fmt.Errorf("%w: create driver profile: %v", ErrWriteFailed, err)
	}

	s.setUser(user)
	s.log.WithDriverID(user.UID).Info("Driver account created")
	return nil
}

func (s *SessionService) SignOut() {
	s.setUser(nil)
	s.log.Info("Driver signed out")
}

// CurrentDriverID returns the authenticated driver uid, the key for all
// document operations.
func (s *SessionService) CurrentDriverID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return "", ErrNotAuthenticated
	}
	return s.user.UID, nil
}

func (s *SessionService) CurrentUser() *identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// OnAuthStateChanged registers a listener and returns its unsubscribe func.
func (s *SessionService) OnAuthStateChanged(listener AuthStateListener) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionService) setUser(user *identity.User) {
	s.mu.Lock()
	s.user = user
	listeners := make([]AuthStateListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(user)
	}
}

package services

import (
	"context"
	"fmt"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/internal/utils"
	"saferides-driver/pkg/logger"
)

// ProfileService reads and edits the authenticated driver's profile
// document. Email and gender are immutable and never part of an update.
type ProfileService struct {
	drivers interfaces.DriverRepository
	session *SessionService
	log     *logger.Logger
}

func NewProfileService(drivers interfaces.DriverRepository, session *SessionService, log *logger.Logger) *ProfileService {
	return &ProfileService{
		drivers: drivers,
		session: session,
		log:     log,
	}
}

func (s *ProfileService) Get(ctx context.Context) (*models.Driver, error) {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return nil, err
	}

	return s.drivers.GetByID(ctx, driverID)
}

// UpdateProfileRequest carries the editable profile fields. Empty fields
// are left untouched.
type UpdateProfileRequest struct {
	FullName     string `validate:"omitempty"`
	Phone        string `validate:"omitempty,phone"`
	Birthday     string `validate:"omitempty"`
	Year         string `validate:"omitempty"`
	Major        string `validate:"omitempty"`
	VehicleMake  string `validate:"omitempty"`
	VehicleModel string `validate:"omitempty"`
	VehicleYear  string `validate:"omitempty"`
	LicensePlate string `validate:"omitempty"`
	VehicleColor string `validate:"omitempty"`
}

func (s *ProfileService) Update(ctx context.Context, req UpdateProfileRequest) error {
	driverID, err := s.session.CurrentDriverID()
	if err != nil {
		return err
	}

	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	setIfPresent(updates, "fullName", req.FullName)
	setIfPresent(updates, "phone", req.Phone)
	setIfPresent(updates, "birthday", req.Birthday)
	setIfPresent(updates, "year", req.Year)
	setIfPresent(updates, "major", req.Major)

	vehicle := make(map[string]interface{})
	setIfPresent(vehicle, "make", req.VehicleMake)
	setIfPresent(vehicle, "model", req.VehicleModel)
	setIfPresent(vehicle, "year", req.VehicleYear)
	setIfPresent(vehicle, "plate", req.LicensePlate)
	setIfPresent(vehicle, "color", req.VehicleColor)
	if len(vehicle) > 0 {
		updates["vehicle"] = vehicle
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.drivers.Update(ctx, driverID, updates); err != nil {
		if err == interfaces.ErrDriverNotFound {
			return err
		}
		return fmt.Errorf("%w: update profile: %v", ErrWriteFailed, err)
	}

	s.log.LogDriverAction(driverID, "update_profile", nil)
	return nil
}

func setIfPresent(updates map[string]interface{}, key, value string) {
	if value != "" {
		updates[key] = value
	}
}

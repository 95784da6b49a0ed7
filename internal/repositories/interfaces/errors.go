package interfaces

import "errors"

var (
	// ErrRideNotFound is returned when the referenced ride document is absent.
	ErrRideNotFound = errors.New("ride not found")

	// ErrRideAlreadyAccepted is returned when an accept loses the conditional
	// write because another driver already owns the ride.
	ErrRideAlreadyAccepted = errors.New("ride already accepted by another driver")

	// ErrRideNotAccepted is returned when starting a ride that is not in the
	// accepted state.
	ErrRideNotAccepted = errors.New("ride not in accepted state")

	// ErrRideNotInProgress is returned when completing a ride that is not in
	// the in_progress state.
	ErrRideNotInProgress = errors.New("ride not in progress")

	// ErrDriverNotFound is returned when the driver profile document is absent.
	ErrDriverNotFound = errors.New("driver profile not found")

	// ErrDriverExists is returned when creating a profile that already exists.
	ErrDriverExists = errors.New("driver profile already exists")
)

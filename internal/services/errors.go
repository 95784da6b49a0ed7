package services

import "errors"

var (
	// ErrNotAuthenticated is returned when a mutating operation is attempted
	// with no current user. The operation is aborted, no retry.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrWriteFailed wraps a store/network error during an update or create.
	// Retryable by the user; never retried automatically.
	ErrWriteFailed = errors.New("write failed")

	// ErrPickupCodeMismatch is returned when the entered code does not match
	// the code on the ride document. Non-blocking; retry allowed, no lockout.
	ErrPickupCodeMismatch = errors.New("incorrect pickup code")

	// ErrPickupCodeUnavailable is returned when the ride document carries no
	// pickup code to compare against.
	ErrPickupCodeUnavailable = errors.New("no pickup code available")

	// ErrPickupNotVerified is returned when a pickup confirmation is attempted
	// before the verification gate has passed for the ride.
	ErrPickupNotVerified = errors.New("pickup code not verified")

	// ErrMissingPickupLocation is returned when a ride has no usable pickup
	// coordinates; the in-progress transition is refused.
	ErrMissingPickupLocation = errors.New("ride is missing pickup coordinates")

	// ErrMissingDropoffLocation is returned when a ride has neither drop-off
	// coordinates nor a drop-off address; the in-progress transition is refused.
	ErrMissingDropoffLocation = errors.New("ride is missing a drop-off location")

	// ErrRideNotOwned is returned when acting on a ride assigned to a
	// different driver.
	ErrRideNotOwned = errors.New("ride is assigned to another driver")

	// ErrEmptyMessage is returned when submitting feedback with no message.
	ErrEmptyMessage = errors.New("feedback message is required")
)

package models

import (
	"time"
)

type RideStatus string

const (
	RideStatusRequested  RideStatus = "requested"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
)

// Rank orders statuses along the lifecycle chain. Unknown statuses rank
// below requested so they never mask a real state.
func (s RideStatus) Rank() int {
	switch s {
	case RideStatusRequested:
		return 1
	case RideStatusAccepted:
		return 2
	case RideStatusInProgress:
		return 3
	case RideStatusCompleted:
		return 4
	default:
		return 0
	}
}

// CanTransition reports whether next is the immediate successor of s.
// Status is monotonic: it only ever moves one step forward along
// requested → accepted → in_progress → completed.
func (s RideStatus) CanTransition(next RideStatus) bool {
	return s.Rank() != 0 && next.Rank() == s.Rank()+1
}

type Ride struct {
	ID     string     `firestore:"-" json:"id"`
	Status RideStatus `firestore:"status" json:"status"`

	// Rider-owned fields; never written by the driver client.
	RiderID         string    `firestore:"riderId" json:"rider_id"`
	RiderName       string    `firestore:"riderName" json:"rider_name"`
	RiderPhone      string    `firestore:"riderPhone" json:"rider_phone"`
	RiderGender     string    `firestore:"riderGender" json:"rider_gender"`
	PickupAddress   string    `firestore:"pickupAddress" json:"pickup_address"`
	PickupLocation  *Location `firestore:"pickupLocation" json:"pickup_location"`
	DropoffAddress  string    `firestore:"dropoffAddress" json:"dropoff_address"`
	DropoffLocation *Location `firestore:"dropoffLocation" json:"dropoff_location"`
	Price           float64   `firestore:"price" json:"price"`

	// PickupCode is set by the rider side and read-only here. It is decoded
	// separately from the raw document because older rider clients stored it
	// as a number, which would strip leading zeros.
	PickupCode string `firestore:"-" json:"-"`

	// Driver snapshot fields, stamped once at acceptance. Later profile
	// edits do not retroactively change an accepted ride.
	DriverID     string   `firestore:"driverId" json:"driver_id"`
	DriverName   string   `firestore:"driverName" json:"driver_name"`
	DriverPhone  string   `firestore:"driverPhone" json:"driver_phone"`
	DriverGender string   `firestore:"driverGender" json:"driver_gender"`
	DriverCar    *Vehicle `firestore:"driverCar" json:"driver_car"`
	DriverPlate  string   `firestore:"driverPlate" json:"driver_plate"`

	RequestedAt time.Time  `firestore:"requestedAt" json:"requested_at"`
	AcceptedAt  *time.Time `firestore:"acceptedAt" json:"accepted_at"`
	CompletedAt *time.Time `firestore:"completedAt" json:"completed_at"`

	// UpdateTime is snapshot metadata from the store, used as the decline
	// suppression fingerprint. Not persisted.
	UpdateTime time.Time `firestore:"-" json:"-"`

	// Optional trip annotation computed locally; never persisted.
	EstimatedMinutes int     `firestore:"-" json:"estimated_minutes,omitempty"`
	EstimatedKM      float64 `firestore:"-" json:"estimated_km,omitempty"`
}

// HasDropoff reports whether the ride carries any usable drop-off target,
// either coordinates or an address string.
func (r *Ride) HasDropoff() bool {
	return r.DropoffLocation.IsSet() || r.DropoffAddress != ""
}

// DriverStamp is the value-semantics copy of a driver profile written onto
// a ride at acceptance time.
type DriverStamp struct {
	DriverID string
	Name     string
	Phone    string
	Gender   string
	Car      Vehicle
	Plate    string
}

// NewDriverStamp snapshots a profile for stamping onto a ride. Missing
// profile fields degrade to empty strings; an accept is never blocked on
// incomplete profile data.
func NewDriverStamp(driverID string, profile *Driver) *DriverStamp {
	stamp := &DriverStamp{DriverID: driverID}
	if profile == nil {
		return stamp
	}

	stamp.Name = profile.FullName
	stamp.Phone = profile.Phone
	stamp.Gender = profile.Gender
	stamp.Car = Vehicle{
		Make:  profile.Vehicle.Make,
		Model: profile.Vehicle.Model,
		Year:  profile.Vehicle.Year,
		Color: profile.Vehicle.Color,
	}
	stamp.Plate = profile.Vehicle.Plate

	return stamp
}

package models

import "time"

// Trip is the read-only projection of a completed ride used for history
// and earnings aggregation.
type Trip struct {
	RideID         string    `json:"ride_id"`
	RiderName      string    `json:"rider_name"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	Price          float64   `json:"price"`
	CompletedAt    time.Time `json:"completed_at"`
}

func TripFromRide(ride *Ride) *Trip {
	trip := &Trip{
		RideID:         ride.ID,
		RiderName:      ride.RiderName,
		PickupAddress:  ride.PickupAddress,
		DropoffAddress: ride.DropoffAddress,
		Price:          ride.Price,
	}
	if ride.CompletedAt != nil {
		trip.CompletedAt = *ride.CompletedAt
	}
	return trip
}

// DailyStats aggregates a driver's completed trips since start of day.
type DailyStats struct {
	Date     time.Time `json:"date"`
	Trips    int       `json:"trips"`
	Earnings float64   `json:"earnings"`
}

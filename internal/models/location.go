package models

// Location is a point as stored on ride documents. The rider client writes
// these; the driver client only ever reads them.
type Location struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
}

// IsSet reports whether the location carries usable coordinates. The rider
// client leaves fields zeroed when a ride was created from an address string
// only, so a zero coordinate is treated as absent.
func (l *Location) IsSet() bool {
	return l != nil && l.Latitude != 0 && l.Longitude != 0
}

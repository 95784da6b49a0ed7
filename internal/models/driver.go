package models

import "time"

type Vehicle struct {
	Make  string `firestore:"make" json:"make"`
	Model string `firestore:"model" json:"model"`
	Year  string `firestore:"year" json:"year"`
	Plate string `firestore:"plate,omitempty" json:"plate,omitempty"`
	Color string `firestore:"color" json:"color"`
}

// Driver is the profile document keyed by the authenticated driver uid.
// Email and Gender are immutable after creation; profile updates never
// include them.
type Driver struct {
	ID        string    `firestore:"-" json:"id"`
	FullName  string    `firestore:"fullName" json:"full_name"`
	Email     string    `firestore:"email" json:"email"`
	Gender    string    `firestore:"gender" json:"gender"`
	Phone     string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	Birthday  string    `firestore:"birthday,omitempty" json:"birthday,omitempty"`
	Year      string    `firestore:"year,omitempty" json:"year,omitempty"`
	Major     string    `firestore:"major,omitempty" json:"major,omitempty"`
	Vehicle   Vehicle   `firestore:"vehicle" json:"vehicle"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}

package models

import "time"

// Feedback is append-only; the client only ever creates these documents.
type Feedback struct {
	ID        string    `firestore:"-" json:"id"`
	UserID    string    `firestore:"userId" json:"user_id"`
	Email     string    `firestore:"email" json:"email"`
	Message   string    `firestore:"message" json:"message"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

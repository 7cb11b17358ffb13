// Package tracker holds the job application model and the pipeline analytics computed over it.
package tracker

import (
	"time"

	"github.com/google/uuid"
)

// Status is the pipeline stage of an application.
type Status string

// Application statuses, in pipeline order.
const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusGhosted   Status = "Ghosted"
	StatusAccepted  Status = "Accepted"
)

// DefaultStatus is assigned to applications created without a status.
const DefaultStatus = StatusApplied

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusGhosted,
	StatusAccepted,
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Application is a single tracked job or internship application owned by a user.
type Application struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	Location    string    `json:"location"`
	Status      Status    `json:"status"`
	URL         string    `json:"url"`
	Notes       string    `json:"notes"`
	AppliedDate string    `json:"applied_date"` // free text as entered by the user
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an update targets a row that does not exist
// or is not owned by the caller.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when a user is created with an email that is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
}

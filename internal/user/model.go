package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User represents a user in the system.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

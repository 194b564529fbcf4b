package item

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("item not found")

// Item is a thing a user lists for others to borrow.
type Item struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Available   bool
	CreatedAt   time.Time
}

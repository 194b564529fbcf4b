package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrSelfBooking      = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrItemUnavailable  = apperror.New(http.StatusBadRequest, "item is not available for booking")
	ErrStatusFinal      = apperror.New(http.StatusBadRequest, "booking status is already final")
	ErrInvalidInput     = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsFinal reports whether the status can no longer change.
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Booking is a request to occupy an item for [StartTime, EndTime].
// Item and booker fields are denormalized from the item and user at creation time.
type Booking struct {
	ID          int64
	ItemID      int64
	ItemName    string
	ItemOwnerID int64
	BookerID    int64
	BookerName  string
	StartTime   time.Time
	EndTime     time.Time
	Status      Status
	CreatedAt   time.Time
}

// Perspective selects whose bookings a listing returns.
type Perspective int

const (
	PerspectiveBooker Perspective = iota
	PerspectiveOwner
)

func (p Perspective) String() string {
	if p == PerspectiveOwner {
		return "owner"
	}
	return "booker"
}

// Scope restricts a listing to the bookings made by a booker,
// or to the bookings on items owned by an owner.
type Scope struct {
	Perspective Perspective
	SubjectID   int64
}

func BookerScope(bookerID int64) Scope {
	return Scope{Perspective: PerspectiveBooker, SubjectID: bookerID}
}

func OwnerScope(ownerID int64) Scope {
	return Scope{Perspective: PerspectiveOwner, SubjectID: ownerID}
}

// Includes reports whether b falls within the scope.
func (s Scope) Includes(b *Booking) bool {
	if s.Perspective == PerspectiveOwner {
		return b.ItemOwnerID == s.SubjectID
	}
	return b.BookerID == s.SubjectID
}

type CreateRequest struct {
	BookerID  int64
	ItemID    int64
	StartTime time.Time
	EndTime   time.Time
}

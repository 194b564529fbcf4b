package http

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/item-sharing-backend/internal/booking/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
)

// ItemResponse is an item, annotated with its nearest APPROVED bookings
// when the requester owns it.
type ItemResponse struct {
	ID          int64                        `json:"id"`
	OwnerID     int64                        `json:"owner_id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Available   bool                         `json:"available"`
	CreatedAt   time.Time                    `json:"created_at"`
	LastBooking *bookingHttp.BookingResponse `json:"last_booking,omitempty"`
	NextBooking *bookingHttp.BookingResponse `json:"next_booking,omitempty"`
}

func NewItemResponse(it *item.Item, nearest booking.Nearest) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		CreatedAt:   it.CreatedAt,
		LastBooking: bookingRef(nearest.Last),
		NextBooking: bookingRef(nearest.Next),
	}
}

func bookingRef(b *booking.Booking) *bookingHttp.BookingResponse {
	if b == nil {
		return nil
	}
	resp := bookingHttp.NewBookingResponse(b)
	return &resp
}

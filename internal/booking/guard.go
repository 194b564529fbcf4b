package booking

import "github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"

// IsParticipant reports whether userID booked b or owns the booked item.
func IsParticipant(userID int64, b *Booking) bool {
	return userID == b.BookerID || userID == b.ItemOwnerID
}

// checkApprover allows only the item owner to decide on b.
// The booker is answered with NotFound and any other user with Validation.
func checkApprover(actorID int64, b *Booking) error {
	if actorID == b.BookerID {
		return apperror.NotFound("only the item owner may approve booking %d", b.ID)
	}
	if actorID != b.ItemOwnerID {
		return apperror.Validation("only the item owner may approve booking %d", b.ID)
	}
	return nil
}

package app

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/item-sharing-backend/internal/booking/http"
	itemHttp "github.com/nekogravitycat/item-sharing-backend/internal/item/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

func TestBookingLifecycle(t *testing.T) {
	a := newTestApp(t)

	// ==== Setup Users, Tokens & Item ====
	owner, ownerToken := a.createTestUser(t, "owner")
	booker, bookerToken := a.createTestUser(t, "booker")
	_, strangerToken := a.createTestUser(t, "stranger")
	ladder := a.createTestItem(owner.ID, "Ladder")

	var bookingID int64

	t.Run("Create", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ItemID: ladder.ID, StartTime: days(1), EndTime: days(3),
		}, bookerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "WAITING", resp.Status)
		assert.Equal(t, ladder.ID, resp.Item.ID)
		assert.Equal(t, owner.ID, resp.Item.OwnerID)
		assert.Equal(t, booker.ID, resp.Booker.ID)
		assert.Equal(t, "booker", resp.Booker.Name)
		bookingID = resp.ID
	})

	t.Run("Overlapping request conflicts", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ItemID: ladder.ID, StartTime: days(2), EndTime: days(4),
		}, strangerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode[response.ErrorResponse](t, w).Error, "already booked")
	})

	t.Run("Owner cannot book own item", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ItemID: ladder.ID, StartTime: days(10), EndTime: days(11),
		}, ownerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid range", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ItemID: ladder.ID, StartTime: days(11), EndTime: days(10),
		}, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", map[string]any{"item_id": ladder.ID}, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get as participants and stranger", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d", bookingID)
		assert.Equal(t, http.StatusOK, a.executeRequest("GET", path, nil, bookerToken).Code)
		assert.Equal(t, http.StatusOK, a.executeRequest("GET", path, nil, ownerToken).Code)
		assert.Equal(t, http.StatusNotFound, a.executeRequest("GET", path, nil, strangerToken).Code)
		assert.Equal(t, http.StatusNotFound, a.executeRequest("GET", "/v1/bookings/999", nil, bookerToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("GET", "/v1/bookings/abc", nil, bookerToken).Code)
	})

	t.Run("Approve requires a decision", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d", bookingID)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("PATCH", path, nil, ownerToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("PATCH", path+"?approved=maybe", nil, ownerToken).Code)
	})

	t.Run("Only the owner approves", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d?approved=true", bookingID)
		assert.Equal(t, http.StatusNotFound, a.executeRequest("PATCH", path, nil, bookerToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("PATCH", path, nil, strangerToken).Code)
	})

	t.Run("Owner approves once", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d?approved=true", bookingID)
		w := a.executeRequest("PATCH", path, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "APPROVED", decode[bookingHttp.BookingResponse](t, w).Status)

		w = a.executeRequest("PATCH", fmt.Sprintf("/v1/bookings/%d?approved=false", bookingID), nil, ownerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, a.executeRequest("GET", "/v1/bookings", nil, "").Code)
		assert.Equal(t, http.StatusUnauthorized, a.executeRequest("GET", "/v1/bookings", nil, "not-a-token").Code)
	})
}

func TestBookingListing(t *testing.T) {
	a := newTestApp(t)

	owner, ownerToken := a.createTestUser(t, "owner")
	booker, bookerToken := a.createTestUser(t, "booker")
	drill := a.createTestItem(owner.ID, "Drill")

	spans := [][2]int{{-6, -4}, {-1, 1}, {2, 3}, {5, 6}}
	for _, s := range spans {
		a.Memory.Bookings.Add(booking.Booking{
			ItemID: drill.ID, ItemName: drill.Name, ItemOwnerID: owner.ID,
			BookerID: booker.ID, BookerName: booker.Name,
			StartTime: days(s[0]), EndTime: days(s[1]), Status: booking.StatusWaiting,
		})
	}

	list := func(path, token string) response.PageResponse[bookingHttp.BookingResponse] {
		w := a.executeRequest("GET", path, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
	}

	t.Run("Default lists all, start descending", func(t *testing.T) {
		page := list("/v1/bookings", bookerToken)
		require.Len(t, page.Items, 4)
		assert.Equal(t, 0, page.From)
		assert.Equal(t, 10, page.Size)
		assert.True(t, page.Items[0].StartTime.Equal(days(5)))
		assert.True(t, page.Items[3].StartTime.Equal(days(-6)))
	})

	t.Run("State filters", func(t *testing.T) {
		assert.Len(t, list("/v1/bookings?state=future", bookerToken).Items, 2)
		assert.Len(t, list("/v1/bookings?state=CURRENT", bookerToken).Items, 1)
		assert.Len(t, list("/v1/bookings?state=PAST", bookerToken).Items, 1)
		assert.Len(t, list("/v1/bookings?state=WAITING", bookerToken).Items, 4)
		assert.Empty(t, list("/v1/bookings?state=REJECTED", bookerToken).Items)
	})

	t.Run("Unknown state", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/bookings?state=SOON", nil, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Unknown state: SOON", decode[response.ErrorResponse](t, w).Error)
	})

	t.Run("Literal offset", func(t *testing.T) {
		page := list("/v1/bookings?from=1&size=1", bookerToken)
		require.Len(t, page.Items, 1)
		assert.True(t, page.Items[0].StartTime.Equal(days(2)))
		assert.Equal(t, 1, page.From)
	})

	t.Run("Invalid paging", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("GET", "/v1/bookings?size=0", nil, bookerToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("GET", "/v1/bookings?from=-1", nil, bookerToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.executeRequest("GET", "/v1/bookings?size=500", nil, bookerToken).Code)
	})

	t.Run("Owner perspective", func(t *testing.T) {
		assert.Len(t, list("/v1/bookings/owner", ownerToken).Items, 4)
		assert.Empty(t, list("/v1/bookings/owner", bookerToken).Items)
		assert.Empty(t, list("/v1/bookings", ownerToken).Items)
	})
}

func TestItemNearestBookings(t *testing.T) {
	a := newTestApp(t)

	owner, ownerToken := a.createTestUser(t, "owner")
	booker, bookerToken := a.createTestUser(t, "booker")
	tent := a.createTestItem(owner.ID, "Tent")
	kayak := a.createTestItem(owner.ID, "Kayak")
	a.createTestItem(booker.ID, "Bike")

	add := func(itemID int64, start, end int, status booking.Status) *booking.Booking {
		return a.Memory.Bookings.Add(booking.Booking{
			ItemID: itemID, ItemOwnerID: owner.ID, BookerID: booker.ID,
			StartTime: days(start), EndTime: days(end), Status: status,
		})
	}
	last := add(tent.ID, -3, -1, booking.StatusApproved)
	next := add(tent.ID, 1, 3, booking.StatusApproved)
	add(tent.ID, 4, 5, booking.StatusWaiting)
	kayakNext := add(kayak.ID, 2, 4, booking.StatusApproved)

	t.Run("Owner sees last and next", func(t *testing.T) {
		w := a.executeRequest("GET", fmt.Sprintf("/v1/items/%d", tent.ID), nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[itemHttp.ItemResponse](t, w)
		require.NotNil(t, resp.LastBooking)
		require.NotNil(t, resp.NextBooking)
		assert.Equal(t, last.ID, resp.LastBooking.ID)
		assert.Equal(t, next.ID, resp.NextBooking.ID)
	})

	t.Run("Others see the item only", func(t *testing.T) {
		w := a.executeRequest("GET", fmt.Sprintf("/v1/items/%d", tent.ID), nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[itemHttp.ItemResponse](t, w)
		assert.Equal(t, "Tent", resp.Name)
		assert.Nil(t, resp.LastBooking)
		assert.Nil(t, resp.NextBooking)
	})

	t.Run("Unknown item", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, a.executeRequest("GET", "/v1/items/999", nil, ownerToken).Code)
	})

	t.Run("Listing is annotated in batch", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/items", nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[itemHttp.ItemResponse]](t, w)
		require.Len(t, page.Items, 2)

		assert.Equal(t, tent.ID, page.Items[0].ID)
		assert.Equal(t, last.ID, page.Items[0].LastBooking.ID)
		assert.Equal(t, next.ID, page.Items[0].NextBooking.ID)

		assert.Equal(t, kayak.ID, page.Items[1].ID)
		assert.Nil(t, page.Items[1].LastBooking)
		assert.Equal(t, kayakNext.ID, page.Items[1].NextBooking.ID)
	})

	t.Run("Owner without items gets an empty page", func(t *testing.T) {
		_, token := a.createTestUser(t, "newcomer")
		w := a.executeRequest("GET", "/v1/items", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"from":0,"size":10}`, w.Body.String())
	})
}

func TestMeAndHealth(t *testing.T) {
	a := newTestApp(t)
	u, token := a.createTestUser(t, "ada")

	w := a.executeRequest("GET", "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"id":%d`, u.ID))

	ghost, err := a.JWTManager.GenerateAccessToken(404, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, a.executeRequest("GET", "/v1/me", nil, ghost).Code)

	w = a.executeRequest("GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

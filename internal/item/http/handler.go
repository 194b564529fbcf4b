package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

type Handler struct {
	service  item.Service
	resolver *booking.NearestResolver
	now      func() time.Time
	log      *zap.Logger
}

// NewHandler creates an item handler. A nil now uses the UTC wall clock.
func NewHandler(service item.Service, resolver *booking.NearestResolver, now func() time.Time, log *zap.Logger) *Handler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{service: service, resolver: resolver, now: now, log: log}
}

// Get returns one item. Booking history is only shown to its owner.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	it, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
			return
		}
		response.Error(c, h.log, err)
		return
	}

	var nearest booking.Nearest
	if it.OwnerID == userID {
		now := h.now()
		if nearest.Last, err = h.resolver.FindLast(ctx, it.ID, now); err != nil {
			response.Error(c, h.log, err)
			return
		}
		if nearest.Next, err = h.resolver.FindNext(ctx, it.ID, now); err != nil {
			response.Error(c, h.log, err)
			return
		}
	}

	c.JSON(http.StatusOK, NewItemResponse(it, nearest))
}

// ListMine lists the requester's items with their nearest bookings, resolved in one batch.
func (h *Handler) ListMine(c *gin.Context) {
	var query request.ListParams
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	page, err := query.Page()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	items, err := h.service.ListByOwner(ctx, userID, page)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	nearest, err := h.resolver.Resolve(ctx, ids, h.now())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = NewItemResponse(it, nearest[it.ID])
	}
	c.JSON(http.StatusOK, response.NewPageResponse(out, page.From, page.Size))
}

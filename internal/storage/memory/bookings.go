package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

var errNotInTx = errors.New("memory: lock item: not in a transaction")

type bookingData struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*booking.Booking
}

// BookingRepository stores bookings in memory. Not suitable for production.
// InTx holds the write lock for the whole callback, which serializes every
// transaction and makes LockItem a no-op.
type BookingRepository struct {
	data *bookingData
	inTx bool
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		data: &bookingData{byID: make(map[int64]*booking.Booking)},
	}
}

func (r *BookingRepository) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.data.mu.RLock()
	return r.data.mu.RUnlock
}

func (r *BookingRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.data.mu.Lock()
	return r.data.mu.Unlock
}

func clone(b *booking.Booking) *booking.Booking {
	out := *b
	return &out
}

// InTx rolls back every change made by fn when it returns an error.
func (r *BookingRepository) InTx(ctx context.Context, fn func(tx booking.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	snapshot := maps.Clone(r.data.byID)
	nextID := r.data.nextID

	if err := fn(&BookingRepository{data: r.data, inTx: true}); err != nil {
		r.data.byID = snapshot
		r.data.nextID = nextID
		return err
	}
	return nil
}

func (r *BookingRepository) LockItem(ctx context.Context, itemID int64) error {
	if !r.inTx {
		return errNotInTx
	}
	return nil
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if !b.EndTime.After(b.StartTime) {
		return booking.ErrInvalidTimeRange
	}

	unlock := r.lock()
	defer unlock()

	r.data.nextID++
	b.ID = r.data.nextID
	b.CreatedAt = time.Now().UTC()
	r.data.byID[b.ID] = clone(b)
	return nil
}

// Add stores b as is, assigning an id when b.ID is zero. It bypasses every check.
func (r *BookingRepository) Add(b booking.Booking) *booking.Booking {
	unlock := r.lock()
	defer unlock()

	if b.ID == 0 {
		r.data.nextID++
		b.ID = r.data.nextID
	} else if b.ID > r.data.nextID {
		r.data.nextID = b.ID
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	r.data.byID[b.ID] = clone(&b)
	return clone(&b)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	unlock := r.rlock()
	defer unlock()

	b, ok := r.data.byID[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return clone(b), nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*booking.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status booking.Status) error {
	unlock := r.lock()
	defer unlock()

	b, ok := r.data.byID[id]
	if !ok {
		return booking.ErrNotFound
	}
	updated := clone(b)
	updated.Status = status
	r.data.byID[id] = updated
	return nil
}

// filter returns clones of the bookings accepted by keep, in no particular order.
func (r *BookingRepository) filter(keep func(b *booking.Booking) bool) []*booking.Booking {
	unlock := r.rlock()
	defer unlock()

	var out []*booking.Booking
	for _, b := range r.data.byID {
		if keep(b) {
			out = append(out, clone(b))
		}
	}
	return out
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time) ([]*booking.Booking, error) {
	out := r.filter(func(b *booking.Booking) bool {
		return b.ItemID == itemID && booking.Overlaps(b.StartTime, b.EndTime, start, end)
	})
	slices.SortFunc(out, func(a, b *booking.Booking) int {
		return -booking.CompareStartDesc(a, b)
	})
	return out, nil
}

func (r *BookingRepository) list(scope booking.Scope, page request.OffsetPage, keep func(b *booking.Booking) bool) []*booking.Booking {
	out := r.filter(func(b *booking.Booking) bool {
		return scope.Includes(b) && keep(b)
	})
	slices.SortFunc(out, booking.CompareStartDesc)

	lo, hi := page.Slice(len(out))
	return out[lo:hi]
}

func (r *BookingRepository) listState(scope booking.Scope, state booking.State, now time.Time, page request.OffsetPage) []*booking.Booking {
	return r.list(scope, page, func(b *booking.Booking) bool {
		return state.Matches(b, now)
	})
}

func (r *BookingRepository) ListAll(ctx context.Context, scope booking.Scope, page request.OffsetPage) ([]*booking.Booking, error) {
	return r.listState(scope, booking.StateAll, time.Time{}, page), nil
}

func (r *BookingRepository) ListCurrent(ctx context.Context, scope booking.Scope, now time.Time, page request.OffsetPage) ([]*booking.Booking, error) {
	return r.listState(scope, booking.StateCurrent, now, page), nil
}

func (r *BookingRepository) ListPast(ctx context.Context, scope booking.Scope, now time.Time, page request.OffsetPage) ([]*booking.Booking, error) {
	return r.listState(scope, booking.StatePast, now, page), nil
}

func (r *BookingRepository) ListFuture(ctx context.Context, scope booking.Scope, now time.Time, page request.OffsetPage) ([]*booking.Booking, error) {
	return r.listState(scope, booking.StateFuture, now, page), nil
}

func (r *BookingRepository) ListByStatus(ctx context.Context, scope booking.Scope, status booking.Status, page request.OffsetPage) ([]*booking.Booking, error) {
	return r.list(scope, page, func(b *booking.Booking) bool {
		return b.Status == status
	}), nil
}

func (r *BookingRepository) ofItems(itemIDs []int64) []*booking.Booking {
	return r.filter(func(b *booking.Booking) bool {
		return slices.Contains(itemIDs, b.ItemID)
	})
}

func (r *BookingRepository) FindLastApproved(ctx context.Context, itemID int64, now time.Time) (*booking.Booking, error) {
	return booking.SelectLast(r.ofItems([]int64{itemID}), now), nil
}

func (r *BookingRepository) FindNextApproved(ctx context.Context, itemID int64, now time.Time) (*booking.Booking, error) {
	return booking.SelectNext(r.ofItems([]int64{itemID}), now), nil
}

func (r *BookingRepository) FindLastApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*booking.Booking, error) {
	return booking.GroupLast(r.ofItems(itemIDs), now), nil
}

func (r *BookingRepository) FindNextApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*booking.Booking, error) {
	return booking.GroupNext(r.ofItems(itemIDs), now), nil
}

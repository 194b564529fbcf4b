package booking

import (
	"context"
	"time"
)

// stubRepo serves canned results. Methods it does not override panic.
type stubRepo struct {
	Repository
	overlapping []*Booking
	last, next  map[int64]*Booking
	batchCalls  int
}

func (r *stubRepo) FindOverlapping(context.Context, int64, time.Time, time.Time) ([]*Booking, error) {
	return append([]*Booking(nil), r.overlapping...), nil
}

func (r *stubRepo) FindLastApprovedBatch(context.Context, []int64, time.Time) (map[int64]*Booking, error) {
	r.batchCalls++
	return r.last, nil
}

func (r *stubRepo) FindNextApprovedBatch(context.Context, []int64, time.Time) (map[int64]*Booking, error) {
	r.batchCalls++
	return r.next, nil
}

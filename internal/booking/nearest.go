package booking

import (
	"context"
	"fmt"
	"time"
)

// Nearest holds the closest APPROVED bookings of an item on either side of a moment.
type Nearest struct {
	Last *Booking
	Next *Booking
}

// NearestResolver finds, per item, the last started and the next upcoming APPROVED booking.
type NearestResolver struct {
	repo Repository
}

func NewNearestResolver(repo Repository) *NearestResolver {
	return &NearestResolver{repo: repo}
}

// FindLast returns the APPROVED booking of itemID with the latest start not after now,
// or nil if there is none.
func (r *NearestResolver) FindLast(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	b, err := r.repo.FindLastApproved(ctx, itemID, now)
	if err != nil {
		return nil, fmt.Errorf("find last booking of item %d: %w", itemID, err)
	}
	return b, nil
}

// FindNext returns the APPROVED booking of itemID with the earliest start after now,
// or nil if there is none.
func (r *NearestResolver) FindNext(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	b, err := r.repo.FindNextApproved(ctx, itemID, now)
	if err != nil {
		return nil, fmt.Errorf("find next booking of item %d: %w", itemID, err)
	}
	return b, nil
}

// FindLastBatch is FindLast for many items at once. Items without a match are absent.
func (r *NearestResolver) FindLastBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*Booking{}, nil
	}
	m, err := r.repo.FindLastApprovedBatch(ctx, itemIDs, now)
	if err != nil {
		return nil, fmt.Errorf("find last bookings: %w", err)
	}
	return m, nil
}

// FindNextBatch is FindNext for many items at once. Items without a match are absent.
func (r *NearestResolver) FindNextBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*Booking{}, nil
	}
	m, err := r.repo.FindNextApprovedBatch(ctx, itemIDs, now)
	if err != nil {
		return nil, fmt.Errorf("find next bookings: %w", err)
	}
	return m, nil
}

// Resolve returns both sides for every item that has at least one of them.
func (r *NearestResolver) Resolve(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]Nearest, error) {
	last, err := r.FindLastBatch(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}
	next, err := r.FindNextBatch(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]Nearest, len(last)+len(next))
	for id, b := range last {
		n := out[id]
		n.Last = b
		out[id] = n
	}
	for id, b := range next {
		n := out[id]
		n.Next = b
		out[id] = n
	}
	return out, nil
}

// IsLastCandidate reports whether b may be the last booking at now.
func IsLastCandidate(b *Booking, now time.Time) bool {
	return b.Status == StatusApproved && !b.StartTime.After(now)
}

// IsNextCandidate reports whether b may be the next booking at now.
func IsNextCandidate(b *Booking, now time.Time) bool {
	return b.Status == StatusApproved && b.StartTime.After(now)
}

// laterStart prefers the later start, then the greater id.
func laterStart(a, b *Booking) bool {
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.After(b.StartTime)
	}
	return a.ID > b.ID
}

// earlierStart prefers the earlier start, then the greater id.
func earlierStart(a, b *Booking) bool {
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.Before(b.StartTime)
	}
	return a.ID > b.ID
}

// SelectLast picks the last booking among bookings at now, ignoring the item.
func SelectLast(bookings []*Booking, now time.Time) *Booking {
	return selectBest(bookings, now, IsLastCandidate, laterStart)
}

// SelectNext picks the next booking among bookings at now, ignoring the item.
func SelectNext(bookings []*Booking, now time.Time) *Booking {
	return selectBest(bookings, now, IsNextCandidate, earlierStart)
}

// GroupLast applies SelectLast per item in a single pass.
func GroupLast(bookings []*Booking, now time.Time) map[int64]*Booking {
	return groupBest(bookings, now, IsLastCandidate, laterStart)
}

// GroupNext applies SelectNext per item in a single pass.
func GroupNext(bookings []*Booking, now time.Time) map[int64]*Booking {
	return groupBest(bookings, now, IsNextCandidate, earlierStart)
}

func selectBest(bookings []*Booking, now time.Time, eligible func(*Booking, time.Time) bool, better func(a, b *Booking) bool) *Booking {
	var best *Booking
	for _, b := range bookings {
		if !eligible(b, now) {
			continue
		}
		if best == nil || better(b, best) {
			best = b
		}
	}
	return best
}

func groupBest(bookings []*Booking, now time.Time, eligible func(*Booking, time.Time) bool, better func(a, b *Booking) bool) map[int64]*Booking {
	out := make(map[int64]*Booking)
	for _, b := range bookings {
		if !eligible(b, now) {
			continue
		}
		if cur, ok := out[b.ItemID]; !ok || better(b, cur) {
			out[b.ItemID] = b
		}
	}
	return out
}

package booking

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

// State is a listing filter. It is not persisted and is distinct from Status.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// States lists every recognized filter.
var States = []State{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseState maps a filter string to a State, ignoring case and surrounding space.
// An empty string means ALL.
func ParseState(s string) (State, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return StateAll, nil
	}
	st := State(v)
	if !slices.Contains(States, st) {
		return "", apperror.UnknownState(s)
	}
	return st, nil
}

// CURRENT/PAST/FUTURE split the time axis, WAITING/REJECTED the status axis.
var statePredicates = map[State]func(b *Booking, now time.Time) bool{
	StateAll: func(*Booking, time.Time) bool { return true },
	StateCurrent: func(b *Booking, now time.Time) bool {
		return !b.StartTime.After(now) && b.EndTime.After(now)
	},
	StatePast: func(b *Booking, now time.Time) bool {
		return !b.EndTime.After(now)
	},
	StateFuture: func(b *Booking, now time.Time) bool {
		return b.StartTime.After(now)
	},
	StateWaiting: func(b *Booking, _ time.Time) bool {
		return b.Status == StatusWaiting
	},
	StateRejected: func(b *Booking, _ time.Time) bool {
		return b.Status == StatusRejected
	},
}

// Matches evaluates the state's predicate against b at now.
// Unknown states match nothing.
func (st State) Matches(b *Booking, now time.Time) bool {
	pred, ok := statePredicates[st]
	return ok && pred(b, now)
}

type listFunc func(ctx context.Context, repo Repository, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error)

// stateQueries dispatches each state to its store finder.
var stateQueries = map[State]listFunc{
	StateAll: func(ctx context.Context, repo Repository, scope Scope, _ time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListAll(ctx, scope, page)
	},
	StateCurrent: func(ctx context.Context, repo Repository, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListCurrent(ctx, scope, now, page)
	},
	StatePast: func(ctx context.Context, repo Repository, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListPast(ctx, scope, now, page)
	},
	StateFuture: func(ctx context.Context, repo Repository, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListFuture(ctx, scope, now, page)
	},
	StateWaiting: func(ctx context.Context, repo Repository, scope Scope, _ time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListByStatus(ctx, scope, StatusWaiting, page)
	},
	StateRejected: func(ctx context.Context, repo Repository, scope Scope, _ time.Time, page request.OffsetPage) ([]*Booking, error) {
		return repo.ListByStatus(ctx, scope, StatusRejected, page)
	},
}

// CompareStartDesc orders bookings by start descending, then id descending.
// It is the listing order shared by every store.
func CompareStartDesc(a, b *Booking) int {
	if c := b.StartTime.Compare(a.StartTime); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

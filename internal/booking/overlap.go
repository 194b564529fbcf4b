package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

// Overlaps reports whether the closed intervals [s1, e1] and [s2, e2] intersect.
// Shared endpoints count. For intervals with start before end this holds exactly when
// the starts or ends coincide, or an endpoint of one lies within the other.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// findOverlaps returns the bookings on itemID that intersect [start, end].
// Bookings of every status block the interval unless skipRejected is set.
func (s *service) findOverlaps(ctx context.Context, repo Repository, itemID int64, start, end time.Time) ([]*Booking, error) {
	candidates, err := repo.FindOverlapping(ctx, itemID, start, end)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	if !s.opts.OverlapSkipRejected {
		return candidates, nil
	}

	out := candidates[:0]
	for _, b := range candidates {
		if b.Status != StatusRejected {
			out = append(out, b)
		}
	}
	return out, nil
}

func conflictError(itemID int64, conflicts []*Booking) error {
	ranges := make([]string, len(conflicts))
	for i, b := range conflicts {
		ranges[i] = fmt.Sprintf("[%s, %s]", b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))
	}
	return apperror.Conflict("item %d is already booked for %s", itemID, strings.Join(ranges, ", "))
}

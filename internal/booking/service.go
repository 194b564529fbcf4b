package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/item-sharing-backend/internal/events"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

const DefaultPublishTimeout = 2 * time.Second

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Approve(ctx context.Context, bookingID, actorID int64, approved bool) (*Booking, error)
	GetByID(ctx context.Context, bookingID, requesterID int64) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, state State, page request.OffsetPage) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state State, page request.OffsetPage) ([]*Booking, error)
}

// Options tune the service. The zero value gives the default behaviour.
type Options struct {
	// OverlapSkipRejected stops REJECTED bookings from blocking new requests.
	OverlapSkipRejected bool
	// PublishTimeout bounds each event publish. Defaults to DefaultPublishTimeout.
	PublishTimeout time.Duration
	// Now overrides the clock used for state filters.
	Now func() time.Time
}

type service struct {
	repo        Repository
	userService user.Service
	itemService item.Service
	publisher   events.Publisher
	log         *zap.Logger
	opts        Options
}

func NewService(
	repo Repository,
	userService user.Service,
	itemService item.Service,
	publisher events.Publisher,
	log *zap.Logger,
	opts Options,
) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	return &service{
		repo:        repo,
		userService: userService,
		itemService: itemService,
		publisher:   publisher,
		log:         log,
		opts:        opts,
	}
}

func (s *service) getUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.userService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, apperror.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *service) getItem(ctx context.Context, id int64) (*item.Item, error) {
	it, err := s.itemService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, apperror.NotFound("item %d not found", id)
		}
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return it, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// 1. Resolve Booker and Item
	booker, err := s.getUser(ctx, req.BookerID)
	if err != nil {
		return nil, err
	}
	it, err := s.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	// 2. Validate Time Range, at the precision the store keeps
	start := req.StartTime.Truncate(time.Microsecond)
	end := req.EndTime.Truncate(time.Microsecond)
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	// 3. Owners cannot book their own items
	if req.BookerID == it.OwnerID {
		return nil, ErrSelfBooking
	}

	// 4. Item must be available
	if !it.Available {
		return nil, ErrItemUnavailable
	}

	b := &Booking{
		ItemID:      it.ID,
		ItemName:    it.Name,
		ItemOwnerID: it.OwnerID,
		BookerID:    booker.ID,
		BookerName:  booker.Name,
		StartTime:   start,
		EndTime:     end,
		Status:      StatusWaiting,
	}

	// 5. Check for Overlaps and 6. Create Booking, serialized per item
	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockItem(ctx, it.ID); err != nil {
			return err
		}
		conflicts, err := s.findOverlaps(ctx, tx, it.ID, start, end)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return conflictError(it.ID, conflicts)
		}
		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("item_id", b.ItemID),
		zap.Int64("booker_id", b.BookerID),
		zap.Time("start", b.StartTime),
		zap.Time("end", b.EndTime),
	)
	s.publish(ctx, events.BookingCreated, b)

	return b, nil
}

func (s *service) Approve(ctx context.Context, bookingID, actorID int64, approved bool) (*Booking, error) {
	// The actor is read outside the transaction so the lookup never waits
	// on a pool connection while the booking row is locked.
	_, actorErr := s.getUser(ctx, actorID)

	var b *Booking
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		// 1. Resolve Booking, locked against concurrent decisions
		b, err = tx.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		// 2. A decision is taken once
		if b.Status.IsFinal() {
			return ErrStatusFinal
		}

		// 3. Resolve Actor
		if actorErr != nil {
			return actorErr
		}

		// 4-5. Only the item owner decides
		if err := checkApprover(actorID, b); err != nil {
			return err
		}

		// 6. Persist the decision
		status := StatusRejected
		if approved {
			status = StatusApproved
		}
		if err := tx.UpdateStatus(ctx, b.ID, status); err != nil {
			return err
		}
		b.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	evtType := events.BookingRejected
	if b.Status == StatusApproved {
		evtType = events.BookingApproved
	}
	s.log.Info("booking decided",
		zap.Int64("booking_id", b.ID),
		zap.Int64("owner_id", actorID),
		zap.String("status", string(b.Status)),
	)
	s.publish(ctx, evtType, b)

	return b, nil
}

func (s *service) GetByID(ctx context.Context, bookingID, requesterID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, requesterID); err != nil {
		return nil, err
	}
	// Non-participants are told the booking does not exist
	if !IsParticipant(requesterID, b) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) ListByBooker(ctx context.Context, bookerID int64, state State, page request.OffsetPage) ([]*Booking, error) {
	return s.list(ctx, BookerScope(bookerID), state, page)
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, state State, page request.OffsetPage) ([]*Booking, error) {
	return s.list(ctx, OwnerScope(ownerID), state, page)
}

func (s *service) list(ctx context.Context, scope Scope, state State, page request.OffsetPage) ([]*Booking, error) {
	if page.Size <= 0 || page.From < 0 {
		return nil, ErrInvalidInput
	}
	query, ok := stateQueries[state]
	if !ok {
		return nil, apperror.UnknownState(string(state))
	}
	if _, err := s.getUser(ctx, scope.SubjectID); err != nil {
		return nil, err
	}

	bookings, err := query(ctx, s.repo, scope, s.opts.Now(), page)
	if err != nil {
		return nil, fmt.Errorf("list %s bookings for %s %d: %w", state, scope.Perspective, scope.SubjectID, err)
	}
	return bookings, nil
}

// publish is best effort: the booking is already committed. It outlives a
// cancelled request but never blocks it for longer than PublishTimeout.
func (s *service) publish(ctx context.Context, evtType string, b *Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PublishTimeout)
	defer cancel()

	evt := events.BookingEvent{
		Type:       evtType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		BookerID:   b.BookerID,
		OwnerID:    b.ItemOwnerID,
		Status:     string(b.Status),
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("failed to publish booking event",
			zap.String("type", evtType),
			zap.Int64("booking_id", b.ID),
			zap.Error(err),
		)
	}
}

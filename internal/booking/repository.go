package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

type Repository interface {
	// InTx runs fn inside a transaction. The Repository passed to fn is bound to it.
	// Calling InTx on a transaction-bound Repository reuses the transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// LockItem takes an exclusive per-item lock held until the transaction ends.
	// It must be called on a transaction-bound Repository.
	LockItem(ctx context.Context, itemID int64) error

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// GetByIDForUpdate is GetByID with a row lock held until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// FindOverlapping returns bookings on itemID whose closed interval intersects [start, end].
	// Status is not filtered.
	FindOverlapping(ctx context.Context, itemID int64, start, end time.Time) ([]*Booking, error)

	// Listings are ordered by start time descending and windowed by page.
	ListAll(ctx context.Context, scope Scope, page request.OffsetPage) ([]*Booking, error)
	ListCurrent(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error)
	ListPast(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error)
	ListFuture(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error)
	ListByStatus(ctx context.Context, scope Scope, status Status, page request.OffsetPage) ([]*Booking, error)

	// Nearest APPROVED bookings; nil (or absent from the map) when none qualify.
	FindLastApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error)
	FindNextApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error)
	FindLastApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error)
	FindNextApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error)
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxRepository{pool: r.pool, db: tx, inTx: true})
	})
}

func (r *pgxRepository) LockItem(ctx context.Context, itemID int64) error {
	if !r.inTx {
		return errors.New("lock item: not in a transaction")
	}
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", itemID); err != nil {
		return fmt.Errorf("lock item %d failed: %w", itemID, err)
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.StartTime, b.EndTime, b.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				return apperror.Wrap(err, http.StatusNotFound, "item or booker not found")
			case pgerrcode.CheckViolation:
				return ErrInvalidTimeRange
			}
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

// selectBookings joins the item and booker so every booking carries its owner id.
func selectBookings() squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.item_id", "i.name", "i.owner_id", "b.booker_id", "u.name",
		"b.start_time", "b.end_time", "b.status", "b.created_at",
	).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.ItemOwnerID, &b.BookerID, &b.BookerName,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) getOne(ctx context.Context, q squirrel.SelectBuilder) (*Booking, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) getMany(ctx context.Context, q squirrel.SelectBuilder) ([]*Booking, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, selectBookings().Where(squirrel.Eq{"b.id": id}))
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return r.getOne(ctx, selectBookings().Where(squirrel.Eq{"b.id": id}).Suffix("FOR UPDATE OF b"))
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time) ([]*Booking, error) {
	// Closed intervals: existing.start <= end AND existing.end >= start.
	q := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID}).
		Where(squirrel.LtOrEq{"b.start_time": end}).
		Where(squirrel.GtOrEq{"b.end_time": start}).
		OrderBy("b.start_time ASC", "b.id ASC")
	return r.getMany(ctx, q)
}

func scopeWhere(scope Scope) squirrel.Eq {
	if scope.Perspective == PerspectiveOwner {
		return squirrel.Eq{"i.owner_id": scope.SubjectID}
	}
	return squirrel.Eq{"b.booker_id": scope.SubjectID}
}

// listPage scopes, orders and windows a listing. The offset is page.From verbatim.
func (r *pgxRepository) listPage(ctx context.Context, scope Scope, page request.OffsetPage, preds ...squirrel.Sqlizer) ([]*Booking, error) {
	q := selectBookings().Where(scopeWhere(scope))
	for _, p := range preds {
		q = q.Where(p)
	}
	q = q.OrderBy("b.start_time DESC", "b.id DESC").
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset()))
	return r.getMany(ctx, q)
}

func (r *pgxRepository) ListAll(ctx context.Context, scope Scope, page request.OffsetPage) ([]*Booking, error) {
	return r.listPage(ctx, scope, page)
}

func (r *pgxRepository) ListCurrent(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
	return r.listPage(ctx, scope, page,
		squirrel.LtOrEq{"b.start_time": now},
		squirrel.Gt{"b.end_time": now},
	)
}

func (r *pgxRepository) ListPast(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
	return r.listPage(ctx, scope, page, squirrel.LtOrEq{"b.end_time": now})
}

func (r *pgxRepository) ListFuture(ctx context.Context, scope Scope, now time.Time, page request.OffsetPage) ([]*Booking, error) {
	return r.listPage(ctx, scope, page, squirrel.Gt{"b.start_time": now})
}

func (r *pgxRepository) ListByStatus(ctx context.Context, scope Scope, status Status, page request.OffsetPage) ([]*Booking, error) {
	return r.listPage(ctx, scope, page, squirrel.Eq{"b.status": status})
}

func (r *pgxRepository) findNearest(ctx context.Context, itemID int64, pred squirrel.Sqlizer, order string) (*Booking, error) {
	q := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID, "b.status": StatusApproved}).
		Where(pred).
		OrderBy(order, "b.id DESC").
		Limit(1)

	b, err := r.getOne(ctx, q)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return b, err
}

func (r *pgxRepository) FindLastApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	return r.findNearest(ctx, itemID, squirrel.LtOrEq{"b.start_time": now}, "b.start_time DESC")
}

func (r *pgxRepository) FindNextApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	return r.findNearest(ctx, itemID, squirrel.Gt{"b.start_time": now}, "b.start_time ASC")
}

// findNearestBatch keeps the first row per item under the given order, in one query.
func (r *pgxRepository) findNearestBatch(ctx context.Context, itemIDs []int64, pred squirrel.Sqlizer, order string) (map[int64]*Booking, error) {
	q := selectBookings().
		Options("DISTINCT ON (b.item_id)").
		Where(squirrel.Eq{"b.item_id": itemIDs, "b.status": StatusApproved}).
		Where(pred).
		OrderBy("b.item_id", order, "b.id DESC")

	bookings, err := r.getMany(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]*Booking, len(bookings))
	for _, b := range bookings {
		out[b.ItemID] = b
	}
	return out, nil
}

func (r *pgxRepository) FindLastApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error) {
	return r.findNearestBatch(ctx, itemIDs, squirrel.LtOrEq{"b.start_time": now}, "b.start_time DESC")
}

func (r *pgxRepository) FindNextApprovedBatch(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error) {
	return r.findNearestBatch(ctx, itemIDs, squirrel.Gt{"b.start_time": now}, "b.start_time ASC")
}

package request

import "fmt"

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Validate performs custom validation for ByIDRequest.
func (r *ByIDRequest) Validate() error {
	return nil
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListParams are the offset pagination query parameters shared by list endpoints.
// From is a row offset into the ordered result, not a page index.
type ListParams struct {
	From int `form:"from,default=0" binding:"min=0"`
	Size int `form:"size,default=10" binding:"min=1,max=100"`
}

// Page converts the query parameters into an OffsetPage.
func (p ListParams) Page() (OffsetPage, error) {
	return NewOffsetPage(p.From, p.Size)
}

// OffsetPage addresses a window [From, From+Size) of an ordered result set.
type OffsetPage struct {
	From int
	Size int
}

// NewOffsetPage validates from >= 0 and size > 0.
func NewOffsetPage(from, size int) (OffsetPage, error) {
	if from < 0 {
		return OffsetPage{}, fmt.Errorf("from must not be negative, got %d", from)
	}
	if size <= 0 {
		return OffsetPage{}, fmt.Errorf("size must be positive, got %d", size)
	}
	return OffsetPage{From: from, Size: size}, nil
}

// Offset returns the literal row offset. It is never rounded to a page boundary.
func (p OffsetPage) Offset() int {
	return p.From
}

// Limit returns the maximum number of rows in the window.
func (p OffsetPage) Limit() int {
	return p.Size
}

// Number returns the zero-based page index From / Size.
func (p OffsetPage) Number() int {
	if p.Size <= 0 {
		return 0
	}
	return p.From / p.Size
}

// Slice returns the bounds [lo, hi) of the window within a result of n rows.
func (p OffsetPage) Slice(n int) (lo, hi int) {
	lo = p.From
	if lo > n {
		lo = n
	}
	hi = lo + p.Size
	if hi > n {
		hi = n
	}
	return lo, hi
}

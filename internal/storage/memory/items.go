package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

// ItemRepository stores items in memory. Not suitable for production.
type ItemRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*item.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{byID: make(map[int64]*item.Item)}
}

// Add stores it, assigning the next id when it.ID is zero.
func (r *ItemRepository) Add(it item.Item) *item.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ID == 0 {
		r.nextID++
		it.ID = r.nextID
	} else if it.ID > r.nextID {
		r.nextID = it.ID
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	r.byID[it.ID] = &it

	out := it
	return &out
}

// SetAvailable flips the availability flag of an existing item.
func (r *ItemRepository) SetAvailable(id int64, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.byID[id]
	if !ok {
		return item.ErrNotFound
	}
	updated := *it
	updated.Available = available
	r.byID[id] = &updated
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	out := *it
	return &out, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64, page request.OffsetPage) ([]*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*item.Item
	for _, it := range r.byID {
		if it.OwnerID == ownerID {
			out := *it
			owned = append(owned, &out)
		}
	}
	slices.SortFunc(owned, func(a, b *item.Item) int {
		return cmp.Compare(a.ID, b.ID)
	})

	lo, hi := page.Slice(len(owned))
	return owned[lo:hi], nil
}

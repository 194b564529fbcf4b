package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// UserRepository stores users in memory. Not suitable for production.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[int64]*user.User)}
}

// Add stores u, assigning the next id when u.ID is zero.
func (r *UserRepository) Add(u user.User) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.byID[u.ID] = &u

	out := u
	return &out
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := *u
	return &out, nil
}

package item

import (
	"context"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

// Service exposes read access to items.
type Service interface {
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListByOwner(ctx context.Context, ownerID int64, page request.OffsetPage) ([]*Item, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, page request.OffsetPage) ([]*Item, error) {
	return s.repo.ListByOwner(ctx, ownerID, page)
}

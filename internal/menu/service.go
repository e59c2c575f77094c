package menu

import (
	"context"
	"errors"

	"ntu-food/internal/auth"
	"ntu-food/internal/stall"
)

var ErrNotAuthorized = errors.New("not authorized to manage this stall's menu")

type Service interface {
	ListByStall(ctx context.Context, stallID int64) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, actor *auth.User, item *Item) (*Item, error)
	Update(ctx context.Context, actor *auth.User, item *Item) (*Item, error)
	Delete(ctx context.Context, actor *auth.User, id int64) error
}

type service struct {
	repo   Repository
	stalls stall.Repository
}

func NewService(repo Repository, stalls stall.Repository) Service {
	return &service{repo: repo, stalls: stalls}
}

func (s *service) ListByStall(ctx context.Context, stallID int64) ([]Item, error) {
	if _, err := s.stalls.GetByID(ctx, stallID); err != nil {
		return nil, err
	}
	return s.repo.ListByStall(ctx, stallID)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actor *auth.User, item *Item) (*Item, error) {
	st, err := s.stalls.GetByID(ctx, item.StallID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, st) {
		return nil, ErrNotAuthorized
	}
	return s.repo.Create(ctx, item)
}

func (s *service) Update(ctx context.Context, actor *auth.User, item *Item) (*Item, error) {
	existing, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	st, err := s.stalls.GetByID(ctx, existing.StallID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, st) {
		return nil, ErrNotAuthorized
	}

	item.StallID = existing.StallID
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	st, err := s.stalls.GetByID(ctx, existing.StallID)
	if err != nil {
		return err
	}
	if !canManage(actor, st) {
		return ErrNotAuthorized
	}
	return s.repo.Delete(ctx, id)
}

func canManage(actor *auth.User, st *stall.Stall) bool {
	if actor.Role == auth.RoleAdmin {
		return true
	}
	return st.OwnerID != nil && *st.OwnerID == actor.ID
}

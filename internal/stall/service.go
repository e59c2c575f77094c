package stall

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ntu-food/internal/auth"
	"ntu-food/internal/geo"
)

var ErrNotStallOwner = errors.New("not authorized to manage this stall")

type Service interface {
	List(ctx context.Context, offset, limit int) ([]Stall, error)
	GetByID(ctx context.Context, id int64) (*Stall, error)
	GetByOwnerID(ctx context.Context, ownerID int64) (*Stall, error)
	Nearby(ctx context.Context, lat, lng float64) ([]NearbyStall, error)
	Create(ctx context.Context, actor *auth.User, s *Stall) (*Stall, error)
	Update(ctx context.Context, actor *auth.User, s *Stall) (*Stall, error)
	Delete(ctx context.Context, actor *auth.User, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, offset, limit int) ([]Stall, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Stall, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByOwnerID(ctx context.Context, ownerID int64) (*Stall, error) {
	return s.repo.GetByOwnerID(ctx, ownerID)
}

// Nearby returns stalls with coordinates, sorted by great-circle distance
// from the given point. Stalls without coordinates are omitted.
func (s *service) Nearby(ctx context.Context, lat, lng float64) ([]NearbyStall, error) {
	stalls, err := s.repo.List(ctx, 0, 100)
	if err != nil {
		return nil, err
	}

	var nearby []NearbyStall
	for _, st := range stalls {
		if st.Latitude == nil || st.Longitude == nil {
			continue
		}
		dist := geo.Distance(lat, lng, *st.Latitude, *st.Longitude)
		nearby = append(nearby, NearbyStall{
			Stall:          st,
			DistanceKm:     dist,
			WalkingMinutes: geo.WalkingMinutes(dist),
		})
	}

	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	return nearby, nil
}

func (s *service) Create(ctx context.Context, actor *auth.User, st *Stall) (*Stall, error) {
	if actor.Role != auth.RoleStallOwner && actor.Role != auth.RoleAdmin {
		return nil, ErrNotStallOwner
	}
	st.OwnerID = &actor.ID
	created, err := s.repo.Create(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create stall: %w", err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, actor *auth.User, st *Stall) (*Stall, error) {
	existing, err := s.repo.GetByID(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, existing) {
		return nil, ErrNotStallOwner
	}

	st.OwnerID = existing.OwnerID
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, existing) {
		return ErrNotStallOwner
	}
	return s.repo.Delete(ctx, id)
}

func canManage(actor *auth.User, st *Stall) bool {
	if actor.Role == auth.RoleAdmin {
		return true
	}
	return st.OwnerID != nil && *st.OwnerID == actor.ID
}

package queue

import (
	"context"
	"errors"
)

var ErrNotAuthorized = errors.New("not authorized to view this queue position")

type Service interface {
	StallQueue(ctx context.Context, stallID int64) ([]Entry, error)
	PositionForOrder(ctx context.Context, orderID, userID int64) (*Position, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// StallQueue returns waiting and preparing entries in queue order.
func (s *service) StallQueue(ctx context.Context, stallID int64) ([]Entry, error) {
	return s.repo.ListActiveByStall(ctx, stallID)
}

// PositionForOrder reports where the caller's order sits in its stall's
// queue: one plus the number of active entries ahead of it.
func (s *service) PositionForOrder(ctx context.Context, orderID, userID int64) (*Position, error) {
	owner, err := s.repo.OrderOwner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrNotAuthorized
	}

	entry, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ahead, err := s.repo.CountActiveAhead(ctx, entry.StallID, entry.QueueNumber)
	if err != nil {
		return nil, err
	}

	return &Position{
		QueueNumber:       entry.QueueNumber,
		Position:          ahead + 1,
		Status:            entry.Status,
		EstimatedWaitTime: entry.EstimatedWaitTime,
	}, nil
}

package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ntu-food/internal/auth"
	"ntu-food/internal/menu"
	"ntu-food/internal/queue"
	"ntu-food/internal/stall"
)

var (
	ErrStallClosed         = errors.New("stall is currently closed")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be between 1 and 10")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrItemWrongStall      = errors.New("menu item does not belong to this stall")
	ErrNotAuthorized       = errors.New("not authorized for this order")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)

const (
	minItemQuantity = 1
	maxItemQuantity = 10

	// Each active order ahead in the queue adds this many minutes to the
	// estimated wait, on top of the stall's average preparation time.
	waitMinutesPerOrder = 3
)

type Service interface {
	Create(ctx context.Context, user *auth.User, input CreateInput) (*Order, error)
	GetByID(ctx context.Context, actor *auth.User, id int64) (*Order, error)
	ListMine(ctx context.Context, userID int64) ([]Summary, error)
	ListByStall(ctx context.Context, actor *auth.User, stallID int64, status *Status) ([]Order, error)
	ConfirmPayment(ctx context.Context, actor *auth.User, id int64) (*Order, error)
	StartPreparing(ctx context.Context, actor *auth.User, id int64) (*Order, error)
	MarkReady(ctx context.Context, actor *auth.User, id int64) (*Order, error)
	MarkCompleted(ctx context.Context, actor *auth.User, id int64) (*Order, error)
	Cancel(ctx context.Context, actor *auth.User, id int64) (*Order, error)
}

type service struct {
	repo      Repository
	queueRepo queue.Repository
	stallRepo stall.Repository
	menuRepo  menu.Repository
}

func NewService(repo Repository, queueRepo queue.Repository, stallRepo stall.Repository, menuRepo menu.Repository) Service {
	return &service{
		repo:      repo,
		queueRepo: queueRepo,
		stallRepo: stallRepo,
		menuRepo:  menuRepo,
	}
}

// Create validates the requested items against the stall's menu, prices
// the order from the stored menu prices, assigns the next queue number
// and writes the order together with its queue entry.
func (s *service) Create(ctx context.Context, user *auth.User, input CreateInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	st, err := s.stallRepo.GetByID(ctx, input.StallID)
	if err != nil {
		return nil, err
	}
	if !st.IsOpen {
		return nil, ErrStallClosed
	}

	var total float64
	items := make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity < minItemQuantity || in.Quantity > maxItemQuantity {
			return nil, ErrInvalidQuantity
		}
		mi, err := s.menuRepo.GetByID(ctx, in.MenuItemID)
		if err != nil {
			return nil, err
		}
		if mi.StallID != input.StallID {
			return nil, ErrItemWrongStall
		}
		if !mi.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, mi.Name)
		}
		total += mi.Price * float64(in.Quantity)
		items = append(items, Item{
			MenuItemID:      mi.ID,
			Name:            mi.Name,
			Quantity:        in.Quantity,
			UnitPrice:       mi.Price,
			SpecialRequests: in.SpecialRequests,
		})
	}

	active, err := s.queueRepo.CountActiveByStall(ctx, input.StallID)
	if err != nil {
		return nil, err
	}
	queueNumber := active + 1
	estimatedWait := st.AvgPrepTime + waitMinutesPerOrder*active

	o := &Order{
		UserID:              user.ID,
		StallID:             input.StallID,
		StallName:           st.Name,
		Status:              StatusPendingPayment,
		PaymentStatus:       PaymentPending,
		PaymentMethod:       input.PaymentMethod,
		TotalAmount:         total,
		QueueNumber:         queueNumber,
		PickupWindowStart:   input.PickupWindowStart,
		PickupWindowEnd:     input.PickupWindowEnd,
		SpecialInstructions: input.SpecialInstructions,
		Items:               items,
	}
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, err
	}

	_, err = s.queueRepo.Create(ctx, &queue.Entry{
		OrderID:           created.ID,
		StallID:           created.StallID,
		QueueNumber:       queueNumber,
		Status:            queue.StatusWaiting,
		EstimatedWaitTime: estimatedWait,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to enqueue order: %w", err)
	}

	log.Info().
		Int64("order_id", created.ID).
		Int64("stall_id", created.StallID).
		Int("queue_number", queueNumber).
		Msg("Order created")
	return created, nil
}

func (s *service) GetByID(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListMine returns the caller's orders newest first, attaching an
// estimated ready time to orders that are still moving through the
// queue.
func (s *service) ListMine(ctx context.Context, userID int64) ([]Summary, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(orders))
	for _, o := range orders {
		sum := Summary{
			ID:                o.ID,
			StallID:           o.StallID,
			StallName:         o.StallName,
			Status:            o.Status,
			PaymentStatus:     o.PaymentStatus,
			TotalAmount:       o.TotalAmount,
			QueueNumber:       o.QueueNumber,
			OrderNumber:       o.OrderNumber,
			PickupWindowStart: o.PickupWindowStart,
			PickupWindowEnd:   o.PickupWindowEnd,
			CreatedAt:         o.CreatedAt,
		}
		if !o.Status.Terminal() {
			if entry, err := s.queueRepo.GetByOrderID(ctx, o.ID); err == nil {
				ready := entry.JoinedAt.Add(time.Duration(entry.EstimatedWaitTime) * time.Minute)
				sum.EstimatedReadyTime = &ready
			}
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *service) ListByStall(ctx context.Context, actor *auth.User, stallID int64, status *Status) ([]Order, error) {
	if err := s.authorizeStall(ctx, actor, stallID); err != nil {
		return nil, err
	}
	return s.repo.ListByStall(ctx, stallID, status)
}

// ConfirmPayment marks the order paid and moves it into the stall's
// active queue.
func (s *service) ConfirmPayment(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && actor.Role != auth.RoleAdmin {
		return nil, ErrNotAuthorized
	}
	if !allowedTransitions[o.Status][StatusConfirmed] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusConfirmed)
	}

	if err := s.repo.UpdatePayment(ctx, id, PaymentConfirmed, StatusConfirmed); err != nil {
		return nil, err
	}
	o.PaymentStatus = PaymentConfirmed
	o.Status = StatusConfirmed
	return o, nil
}

func (s *service) StartPreparing(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	return s.advance(ctx, actor, id, StatusPreparing, queue.StatusPreparing)
}

func (s *service) MarkReady(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	return s.advance(ctx, actor, id, StatusReady, queue.StatusReady)
}

func (s *service) MarkCompleted(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	return s.advance(ctx, actor, id, StatusCompleted, queue.StatusCollected)
}

// advance moves an order to the next stall-side status and mirrors the
// change onto its queue entry. Only the stall's owner or an admin may
// drive these transitions.
func (s *service) advance(ctx context.Context, actor *auth.User, id int64, next Status, queueStatus queue.Status) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStall(ctx, actor, o.StallID); err != nil {
		return nil, err
	}
	if !allowedTransitions[o.Status][next] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	if err := s.queueRepo.UpdateStatusByOrderID(ctx, id, queueStatus); err != nil && !errors.Is(err, queue.ErrEntryNotFound) {
		return nil, err
	}
	o.Status = next
	return o, nil
}

// Cancel is only possible before the stall starts preparing. The
// payment is marked failed so an unpaid order cannot be resurrected.
func (s *service) Cancel(ctx context.Context, actor *auth.User, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && actor.Role != auth.RoleAdmin {
		return nil, ErrNotAuthorized
	}
	if o.Status != StatusPendingPayment && o.Status != StatusConfirmed {
		return nil, ErrOrderNotCancellable
	}

	if err := s.repo.UpdatePayment(ctx, id, PaymentFailed, StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.queueRepo.UpdateStatusByOrderID(ctx, id, queue.StatusCancelled); err != nil && !errors.Is(err, queue.ErrEntryNotFound) {
		return nil, err
	}
	o.PaymentStatus = PaymentFailed
	o.Status = StatusCancelled
	return o, nil
}

func (s *service) authorizeView(ctx context.Context, actor *auth.User, o *Order) error {
	if o.UserID == actor.ID || actor.Role == auth.RoleAdmin {
		return nil
	}
	if actor.Role == auth.RoleStallOwner {
		if err := s.authorizeStall(ctx, actor, o.StallID); err == nil {
			return nil
		}
	}
	return ErrNotAuthorized
}

func (s *service) authorizeStall(ctx context.Context, actor *auth.User, stallID int64) error {
	if actor.Role == auth.RoleAdmin {
		return nil
	}
	if actor.Role != auth.RoleStallOwner {
		return ErrNotAuthorized
	}
	st, err := s.stallRepo.GetByID(ctx, stallID)
	if err != nil {
		return err
	}
	if st.OwnerID == nil || *st.OwnerID != actor.ID {
		return ErrNotAuthorized
	}
	return nil
}

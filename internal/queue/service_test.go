package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/queue"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, entry *queue.Entry) (*queue.Entry, error)
	getByOrderIDFunc func(ctx context.Context, orderID int64) (*queue.Entry, error)
	listActiveFunc   func(ctx context.Context, stallID int64) ([]queue.Entry, error)
	countActiveFunc  func(ctx context.Context, stallID int64) (int, error)
	countAheadFunc   func(ctx context.Context, stallID int64, queueNumber int) (int, error)
	updateStatusFunc func(ctx context.Context, orderID int64, status queue.Status) error
	orderOwnerFunc   func(ctx context.Context, orderID int64) (int64, error)
}

func (m *mockRepository) Create(ctx context.Context, entry *queue.Entry) (*queue.Entry, error) {
	return m.createFunc(ctx, entry)
}

func (m *mockRepository) GetByOrderID(ctx context.Context, orderID int64) (*queue.Entry, error) {
	return m.getByOrderIDFunc(ctx, orderID)
}

func (m *mockRepository) ListActiveByStall(ctx context.Context, stallID int64) ([]queue.Entry, error) {
	return m.listActiveFunc(ctx, stallID)
}

func (m *mockRepository) CountActiveByStall(ctx context.Context, stallID int64) (int, error) {
	return m.countActiveFunc(ctx, stallID)
}

func (m *mockRepository) CountActiveAhead(ctx context.Context, stallID int64, queueNumber int) (int, error) {
	return m.countAheadFunc(ctx, stallID, queueNumber)
}

func (m *mockRepository) UpdateStatusByOrderID(ctx context.Context, orderID int64, status queue.Status) error {
	return m.updateStatusFunc(ctx, orderID, status)
}

func (m *mockRepository) OrderOwner(ctx context.Context, orderID int64) (int64, error) {
	return m.orderOwnerFunc(ctx, orderID)
}

func TestService_PositionForOrder(t *testing.T) {
	tests := []struct {
		name         string
		owner        int64
		caller       int64
		ahead        int
		wantPosition int
		wantErrIs    error
	}{
		{name: "first_in_line", owner: 100, caller: 100, ahead: 0, wantPosition: 1},
		{name: "three_ahead", owner: 100, caller: 100, ahead: 3, wantPosition: 4},
		{name: "foreign_order_rejected", owner: 100, caller: 200, wantErrIs: queue.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				orderOwnerFunc: func(ctx context.Context, orderID int64) (int64, error) {
					return tt.owner, nil
				},
				getByOrderIDFunc: func(ctx context.Context, orderID int64) (*queue.Entry, error) {
					return &queue.Entry{
						OrderID:           orderID,
						StallID:           10,
						QueueNumber:       tt.ahead + 1,
						Status:            queue.StatusWaiting,
						EstimatedWaitTime: 15,
					}, nil
				},
				countAheadFunc: func(ctx context.Context, stallID int64, queueNumber int) (int, error) {
					return tt.ahead, nil
				},
			}
			svc := queue.NewService(repo)

			pos, err := svc.PositionForOrder(context.Background(), 1, tt.caller)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPosition, pos.Position)
			assert.Equal(t, queue.StatusWaiting, pos.Status)
			assert.Equal(t, 15, pos.EstimatedWaitTime)
		})
	}
}

func TestService_PositionForOrder_MissingEntry(t *testing.T) {
	repo := &mockRepository{
		orderOwnerFunc: func(ctx context.Context, orderID int64) (int64, error) { return 100, nil },
		getByOrderIDFunc: func(ctx context.Context, orderID int64) (*queue.Entry, error) {
			return nil, queue.ErrEntryNotFound
		},
	}
	svc := queue.NewService(repo)

	_, err := svc.PositionForOrder(context.Background(), 1, 100)

	assert.ErrorIs(t, err, queue.ErrEntryNotFound)
}

func TestService_StallQueue(t *testing.T) {
	repo := &mockRepository{
		listActiveFunc: func(ctx context.Context, stallID int64) ([]queue.Entry, error) {
			return []queue.Entry{
				{OrderID: 1, QueueNumber: 1, Status: queue.StatusPreparing},
				{OrderID: 2, QueueNumber: 2, Status: queue.StatusWaiting},
			}, nil
		},
	}
	svc := queue.NewService(repo)

	entries, err := svc.StallQueue(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].QueueNumber)
}

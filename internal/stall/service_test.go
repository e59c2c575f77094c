package stall_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/auth"
	"ntu-food/internal/stall"
)

type mockRepository struct {
	listFunc         func(ctx context.Context, offset, limit int) ([]stall.Stall, error)
	getByIDFunc      func(ctx context.Context, id int64) (*stall.Stall, error)
	getByOwnerIDFunc func(ctx context.Context, ownerID int64) (*stall.Stall, error)
	createFunc       func(ctx context.Context, s *stall.Stall) (*stall.Stall, error)
	updateFunc       func(ctx context.Context, s *stall.Stall) error
	deleteFunc       func(ctx context.Context, id int64) error
}

func (m *mockRepository) List(ctx context.Context, offset, limit int) ([]stall.Stall, error) {
	return m.listFunc(ctx, offset, limit)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*stall.Stall, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetByOwnerID(ctx context.Context, ownerID int64) (*stall.Stall, error) {
	return m.getByOwnerIDFunc(ctx, ownerID)
}

func (m *mockRepository) Create(ctx context.Context, s *stall.Stall) (*stall.Stall, error) {
	return m.createFunc(ctx, s)
}

func (m *mockRepository) Update(ctx context.Context, s *stall.Stall) error {
	return m.updateFunc(ctx, s)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func coord(v float64) *float64 { return &v }

func TestService_Nearby(t *testing.T) {
	repo := &mockRepository{
		listFunc: func(ctx context.Context, offset, limit int) ([]stall.Stall, error) {
			return []stall.Stall{
				{ID: 1, Name: "Far", Latitude: coord(1.3600), Longitude: coord(103.7000)},
				{ID: 2, Name: "No Coordinates"},
				{ID: 3, Name: "Near", Latitude: coord(1.3490), Longitude: coord(103.6840)},
			}, nil
		},
	}
	svc := stall.NewService(repo)

	nearby, err := svc.Nearby(context.Background(), 1.3483, 103.6831)

	require.NoError(t, err)
	require.Len(t, nearby, 2, "stalls without coordinates are omitted")
	assert.Equal(t, "Near", nearby[0].Name)
	assert.Equal(t, "Far", nearby[1].Name)
	assert.Less(t, nearby[0].DistanceKm, nearby[1].DistanceKm)
	assert.Greater(t, nearby[0].WalkingMinutes, 0)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		actor     *auth.User
		wantErrIs error
	}{
		{name: "stall_owner", actor: &auth.User{ID: 5, Role: auth.RoleStallOwner}},
		{name: "admin", actor: &auth.User{ID: 6, Role: auth.RoleAdmin}},
		{name: "student_rejected", actor: &auth.User{ID: 7, Role: auth.RoleStudent}, wantErrIs: stall.ErrNotStallOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				createFunc: func(ctx context.Context, s *stall.Stall) (*stall.Stall, error) {
					s.ID = 1
					return s, nil
				},
			}
			svc := stall.NewService(repo)

			created, err := svc.Create(context.Background(), tt.actor, &stall.Stall{Name: "New Stall"})

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, created.OwnerID)
			assert.Equal(t, tt.actor.ID, *created.OwnerID)
		})
	}
}

func TestService_Update(t *testing.T) {
	owner := int64(5)

	tests := []struct {
		name      string
		actor     *auth.User
		wantErrIs error
	}{
		{name: "owner_can_update", actor: &auth.User{ID: owner, Role: auth.RoleStallOwner}},
		{name: "admin_can_update", actor: &auth.User{ID: 99, Role: auth.RoleAdmin}},
		{name: "other_owner_rejected", actor: &auth.User{ID: 66, Role: auth.RoleStallOwner}, wantErrIs: stall.ErrNotStallOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				getByIDFunc: func(ctx context.Context, id int64) (*stall.Stall, error) {
					return &stall.Stall{ID: id, Name: "Canteen A", OwnerID: &owner}, nil
				},
				updateFunc: func(ctx context.Context, s *stall.Stall) error { return nil },
			}
			svc := stall.NewService(repo)

			updated, err := svc.Update(context.Background(), tt.actor, &stall.Stall{ID: 1, Name: "Renamed"})

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, updated.OwnerID)
			assert.Equal(t, owner, *updated.OwnerID, "ownership survives updates")
		})
	}
}

package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/admin"
	"ntu-food/internal/auth"
)

type mockRepository struct {
	listUsersFunc        func(ctx context.Context, offset, limit int) ([]auth.User, error)
	updateUserFunc       func(ctx context.Context, id int64, update admin.UserUpdate) (*auth.User, error)
	deleteUserFunc       func(ctx context.Context, id int64) error
	countAdminsFunc      func(ctx context.Context) (int, error)
	listOrdersFunc       func(ctx context.Context, status *string, offset, limit int) ([]admin.OrderOverview, error)
	deleteOrderFunc      func(ctx context.Context, id int64) error
	dashboardFunc        func(ctx context.Context, now time.Time) (*admin.Dashboard, error)
	popularItemsFunc     func(ctx context.Context, since time.Time, limit int) ([]admin.PopularItem, error)
	stallPerformanceFunc func(ctx context.Context, since time.Time) ([]admin.StallPerformance, error)
}

func (m *mockRepository) ListUsers(ctx context.Context, offset, limit int) ([]auth.User, error) {
	return m.listUsersFunc(ctx, offset, limit)
}

func (m *mockRepository) UpdateUser(ctx context.Context, id int64, update admin.UserUpdate) (*auth.User, error) {
	return m.updateUserFunc(ctx, id, update)
}

func (m *mockRepository) DeleteUser(ctx context.Context, id int64) error {
	return m.deleteUserFunc(ctx, id)
}

func (m *mockRepository) CountAdmins(ctx context.Context) (int, error) {
	return m.countAdminsFunc(ctx)
}

func (m *mockRepository) ListOrders(ctx context.Context, status *string, offset, limit int) ([]admin.OrderOverview, error) {
	return m.listOrdersFunc(ctx, status, offset, limit)
}

func (m *mockRepository) DeleteOrder(ctx context.Context, id int64) error {
	return m.deleteOrderFunc(ctx, id)
}

func (m *mockRepository) DashboardStats(ctx context.Context, now time.Time) (*admin.Dashboard, error) {
	return m.dashboardFunc(ctx, now)
}

func (m *mockRepository) PopularItems(ctx context.Context, since time.Time, limit int) ([]admin.PopularItem, error) {
	return m.popularItemsFunc(ctx, since, limit)
}

func (m *mockRepository) StallPerformance(ctx context.Context, since time.Time) ([]admin.StallPerformance, error) {
	return m.stallPerformanceFunc(ctx, since)
}

type mockAuthRepository struct {
	auth.Repository
	getUserByIDFunc func(ctx context.Context, id int64) (*auth.User, error)
}

func (m *mockAuthRepository) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	return m.getUserByIDFunc(ctx, id)
}

func actingAdmin() *auth.User {
	return &auth.User{ID: 1, Role: auth.RoleAdmin, IsActive: true}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestService_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		targetID   int64
		targetRole auth.Role
		adminCount int
		wantErrIs  error
	}{
		{name: "delete_student", targetID: 50, targetRole: auth.RoleStudent, adminCount: 1},
		{name: "self_delete_rejected", targetID: 1, wantErrIs: admin.ErrSelfDelete},
		{name: "last_admin_protected", targetID: 2, targetRole: auth.RoleAdmin, adminCount: 1, wantErrIs: admin.ErrLastAdmin},
		{name: "spare_admin_deletable", targetID: 2, targetRole: auth.RoleAdmin, adminCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted bool
			repo := &mockRepository{
				deleteUserFunc: func(ctx context.Context, id int64) error {
					deleted = true
					return nil
				},
				countAdminsFunc: func(ctx context.Context) (int, error) {
					return tt.adminCount, nil
				},
			}
			authRepo := &mockAuthRepository{
				getUserByIDFunc: func(ctx context.Context, id int64) (*auth.User, error) {
					return &auth.User{ID: id, Role: tt.targetRole}, nil
				},
			}
			svc := admin.NewService(repo, authRepo)

			err := svc.DeleteUser(context.Background(), actingAdmin(), tt.targetID)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.False(t, deleted)
				return
			}
			require.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestService_UpdateUser(t *testing.T) {
	tests := []struct {
		name       string
		targetRole auth.Role
		update     admin.UserUpdate
		adminCount int
		wantErrIs  error
	}{
		{
			name:       "rename_student",
			targetRole: auth.RoleStudent,
			update:     admin.UserUpdate{Name: strPtr("New Name")},
		},
		{
			name:      "invalid_role_rejected",
			update:    admin.UserUpdate{Role: strPtr("superuser")},
			wantErrIs: admin.ErrInvalidRole,
		},
		{
			name:       "demoting_last_admin_rejected",
			targetRole: auth.RoleAdmin,
			update:     admin.UserUpdate{Role: strPtr("student")},
			adminCount: 1,
			wantErrIs:  admin.ErrLastAdmin,
		},
		{
			name:       "deactivating_last_admin_rejected",
			targetRole: auth.RoleAdmin,
			update:     admin.UserUpdate{IsActive: boolPtr(false)},
			adminCount: 1,
			wantErrIs:  admin.ErrLastAdmin,
		},
		{
			name:       "demoting_spare_admin_allowed",
			targetRole: auth.RoleAdmin,
			update:     admin.UserUpdate{Role: strPtr("student")},
			adminCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				updateUserFunc: func(ctx context.Context, id int64, update admin.UserUpdate) (*auth.User, error) {
					return &auth.User{ID: id}, nil
				},
				countAdminsFunc: func(ctx context.Context) (int, error) {
					return tt.adminCount, nil
				},
			}
			authRepo := &mockAuthRepository{
				getUserByIDFunc: func(ctx context.Context, id int64) (*auth.User, error) {
					return &auth.User{ID: id, Role: tt.targetRole}, nil
				},
			}
			svc := admin.NewService(repo, authRepo)

			_, err := svc.UpdateUser(context.Background(), actingAdmin(), 2, tt.update)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_ReportingWindows(t *testing.T) {
	repo := &mockRepository{
		popularItemsFunc: func(ctx context.Context, since time.Time, limit int) ([]admin.PopularItem, error) {
			return nil, nil
		},
		stallPerformanceFunc: func(ctx context.Context, since time.Time) ([]admin.StallPerformance, error) {
			return nil, nil
		},
	}
	svc := admin.NewService(repo, &mockAuthRepository{})

	_, err := svc.PopularItems(context.Background(), 0, 0)
	assert.NoError(t, err, "zero days falls back to the default window")

	_, err = svc.PopularItems(context.Background(), 91, 0)
	assert.ErrorIs(t, err, admin.ErrInvalidWindow)

	_, err = svc.StallPerformance(context.Background(), -1)
	assert.ErrorIs(t, err, admin.ErrInvalidWindow)
}

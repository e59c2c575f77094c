package admin

import (
	"context"
	"errors"
	"time"

	"ntu-food/internal/auth"
)

var (
	ErrSelfDelete    = errors.New("cannot delete your own account")
	ErrLastAdmin     = errors.New("cannot remove the last active administrator")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidWindow = errors.New("reporting window must be between 1 and 90 days")
)

const defaultReportDays = 7

type Service interface {
	ListUsers(ctx context.Context, offset, limit int) ([]auth.User, error)
	GetUser(ctx context.Context, id int64) (*auth.User, error)
	UpdateUser(ctx context.Context, actor *auth.User, id int64, update UserUpdate) (*auth.User, error)
	DeleteUser(ctx context.Context, actor *auth.User, id int64) error

	ListOrders(ctx context.Context, status *string, offset, limit int) ([]OrderOverview, error)
	DeleteOrder(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*Dashboard, error)
	PopularItems(ctx context.Context, days, limit int) ([]PopularItem, error)
	StallPerformance(ctx context.Context, days int) ([]StallPerformance, error)
}

type service struct {
	repo     Repository
	authRepo auth.Repository
}

func NewService(repo Repository, authRepo auth.Repository) Service {
	return &service{repo: repo, authRepo: authRepo}
}

func (s *service) ListUsers(ctx context.Context, offset, limit int) ([]auth.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListUsers(ctx, offset, limit)
}

func (s *service) GetUser(ctx context.Context, id int64) (*auth.User, error) {
	return s.authRepo.GetUserByID(ctx, id)
}

func (s *service) UpdateUser(ctx context.Context, actor *auth.User, id int64, update UserUpdate) (*auth.User, error) {
	if update.Role != nil {
		switch auth.Role(*update.Role) {
		case auth.RoleStudent, auth.RoleStallOwner, auth.RoleAdmin:
		default:
			return nil, ErrInvalidRole
		}
	}

	// Demoting or deactivating an admin must not leave the system
	// without one.
	target, err := s.authRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == auth.RoleAdmin && losesAdmin(update) {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	return s.repo.UpdateUser(ctx, id, update)
}

func losesAdmin(update UserUpdate) bool {
	if update.Role != nil && auth.Role(*update.Role) != auth.RoleAdmin {
		return true
	}
	if update.IsActive != nil && !*update.IsActive {
		return true
	}
	return false
}

func (s *service) DeleteUser(ctx context.Context, actor *auth.User, id int64) error {
	if actor.ID == id {
		return ErrSelfDelete
	}

	target, err := s.authRepo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == auth.RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.repo.DeleteUser(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, status *string, offset, limit int) ([]OrderOverview, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListOrders(ctx, status, offset, limit)
}

func (s *service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.DeleteOrder(ctx, id)
}

func (s *service) DashboardStats(ctx context.Context) (*Dashboard, error) {
	return s.repo.DashboardStats(ctx, time.Now())
}

func (s *service) PopularItems(ctx context.Context, days, limit int) ([]PopularItem, error) {
	if days == 0 {
		days = defaultReportDays
	}
	if days < 1 || days > 90 {
		return nil, ErrInvalidWindow
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.PopularItems(ctx, since, limit)
}

func (s *service) StallPerformance(ctx context.Context, days int) ([]StallPerformance, error) {
	if days == 0 {
		days = defaultReportDays
	}
	if days < 1 || days > 90 {
		return nil, ErrInvalidWindow
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.StallPerformance(ctx, since)
}

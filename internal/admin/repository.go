package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ntu-food/internal/auth"
	"ntu-food/internal/order"
)

type Repository interface {
	ListUsers(ctx context.Context, offset, limit int) ([]auth.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (*auth.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context) (int, error)

	ListOrders(ctx context.Context, status *string, offset, limit int) ([]OrderOverview, error)
	DeleteOrder(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context, now time.Time) (*Dashboard, error)
	PopularItems(ctx context.Context, since time.Time, limit int) ([]PopularItem, error)
	StallPerformance(ctx context.Context, since time.Time) ([]StallPerformance, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListUsers(ctx context.Context, offset, limit int) ([]auth.User, error) {
	query := `
		SELECT id, email, student_id, name, phone, dietary_preferences, hashed_password, role, is_active, is_verified, created_at, updated_at
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		var role string
		if err := rows.Scan(
			&u.ID, &u.Email, &u.StudentID, &u.Name, &u.Phone, &u.DietaryPreferences,
			&u.HashedPassword, &role, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan user: %w", err)
		}
		u.Role = auth.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRepository) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*auth.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    dietary_preferences = COALESCE($4, dietary_preferences),
		    role = COALESCE($5, role),
		    is_active = COALESCE($6, is_active),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, email, student_id, name, phone, dietary_preferences, hashed_password, role, is_active, is_verified, created_at, updated_at
	`
	var u auth.User
	var role string
	err := r.db.QueryRow(ctx, query, id, update.Name, update.Phone, update.DietaryPreferences, update.Role, update.IsActive).Scan(
		&u.ID, &u.Email, &u.StudentID, &u.Name, &u.Phone, &u.DietaryPreferences,
		&u.HashedPassword, &role, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to update user: %w", err)
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (r *postgresRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin' AND is_active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count admins: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context, status *string, offset, limit int) ([]OrderOverview, error) {
	query := `
		SELECT o.id, o.order_number, o.user_id, u.name, o.stall_id, s.name,
		       o.status, o.payment_status, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN stalls s ON s.id = o.stall_id
	`
	args := []any{offset, limit}
	if status != nil {
		query += ` WHERE o.status = $3`
		args = append(args, *status)
	}
	query += ` ORDER BY o.created_at DESC OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []OrderOverview
	for rows.Next() {
		var o OrderOverview
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.UserName, &o.StallID, &o.StallName,
			&o.Status, &o.PaymentStatus, &o.TotalAmount, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order overview: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// DeleteOrder removes an order entirely; items and the queue entry go
// with it via cascade.
func (r *postgresRepository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) DashboardStats(ctx context.Context, now time.Time) (*Dashboard, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM stalls),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status NOT IN ('COMPLETED', 'CANCELLED')),
			(SELECT COUNT(*) FROM orders WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM orders WHERE status = 'CANCELLED'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'CONFIRMED'),
			(SELECT COUNT(*) FROM orders WHERE created_at >= $1),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'CONFIRMED' AND created_at >= $1)
	`
	var d Dashboard
	err := r.db.QueryRow(ctx, query, startOfDay).Scan(
		&d.TotalUsers, &d.TotalStalls, &d.TotalOrders, &d.ActiveOrders,
		&d.CompletedOrders, &d.CancelledOrders, &d.TotalRevenue,
		&d.OrdersToday, &d.RevenueToday,
	)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to fetch dashboard stats: %w", err)
	}
	return &d, nil
}

func (r *postgresRepository) PopularItems(ctx context.Context, since time.Time, limit int) ([]PopularItem, error) {
	query := `
		SELECT oi.menu_item_id, oi.name, o.stall_id, s.name,
		       SUM(oi.quantity) AS units_sold,
		       SUM(oi.quantity * oi.unit_price) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN stalls s ON s.id = o.stall_id
		WHERE o.created_at >= $1 AND o.status != 'CANCELLED'
		GROUP BY oi.menu_item_id, oi.name, o.stall_id, s.name
		ORDER BY units_sold DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list popular items: %w", err)
	}
	defer rows.Close()

	var items []PopularItem
	for rows.Next() {
		var p PopularItem
		if err := rows.Scan(&p.MenuItemID, &p.Name, &p.StallID, &p.StallName, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("repository: failed to scan popular item: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *postgresRepository) StallPerformance(ctx context.Context, since time.Time) ([]StallPerformance, error) {
	query := `
		SELECT s.id, s.name,
		       COUNT(o.id) AS total_orders,
		       COUNT(o.id) FILTER (WHERE o.status = 'COMPLETED') AS completed_orders,
		       COUNT(o.id) FILTER (WHERE o.status = 'CANCELLED') AS cancelled_orders,
		       COALESCE(SUM(o.total_amount) FILTER (WHERE o.payment_status = 'CONFIRMED'), 0) AS revenue
		FROM stalls s
		LEFT JOIN orders o ON o.stall_id = s.id AND o.created_at >= $1
		GROUP BY s.id, s.name
		ORDER BY revenue DESC
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list stall performance: %w", err)
	}
	defer rows.Close()

	var stats []StallPerformance
	for rows.Next() {
		var p StallPerformance
		if err := rows.Scan(&p.StallID, &p.StallName, &p.TotalOrders, &p.CompletedOrders, &p.CancelledOrders, &p.Revenue); err != nil {
			return nil, fmt.Errorf("repository: failed to scan stall performance: %w", err)
		}
		if p.CompletedOrders > 0 {
			p.AvgOrderValue = p.Revenue / float64(p.CompletedOrders)
		}
		stats = append(stats, p)
	}
	return stats, rows.Err()
}

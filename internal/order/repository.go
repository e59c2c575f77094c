package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListByStall(ctx context.Context, stallID int64, status *Status) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdatePayment(ctx context.Context, id int64, paymentStatus PaymentStatus, status Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order and its items in one transaction and stamps
// the human-readable order number derived from the generated id.
func (r *postgresRepository) Create(ctx context.Context, o *Order) (*Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("Failed to rollback order transaction")
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `
		INSERT INTO orders (user_id, stall_id, status, payment_status, payment_method, total_amount,
		                    queue_number, pickup_window_start, pickup_window_end, special_instructions,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		o.UserID, o.StallID, string(o.Status), string(o.PaymentStatus), o.PaymentMethod,
		o.TotalAmount, o.QueueNumber, o.PickupWindowStart, o.PickupWindowEnd, o.SpecialInstructions, now,
	).Scan(&o.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	o.OrderNumber = fmt.Sprintf("ORD%05d", o.ID)
	if _, err = tx.Exec(ctx, `UPDATE orders SET order_number = $2 WHERE id = $1`, o.ID, o.OrderNumber); err != nil {
		return nil, fmt.Errorf("repository: failed to set order number: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, special_requests)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, o.ID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.SpecialRequests).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to insert order item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return o, nil
}

const orderColumns = `o.id, o.user_id, o.stall_id, s.name, o.status, o.payment_status, o.payment_method,
       o.total_amount, o.queue_number, o.order_number, o.pickup_window_start, o.pickup_window_end,
       o.special_instructions, o.created_at, o.updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN stalls s ON s.id = o.stall_id
		WHERE o.id = $1
	`
	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, query, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN stalls s ON s.id = o.stall_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListByStall(ctx context.Context, stallID int64, status *Status) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN stalls s ON s.id = o.stall_id
		WHERE o.stall_id = $1
	`
	args := []any{stallID}
	if status != nil {
		query += ` AND o.status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY o.created_at DESC`

	orders, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepository) itemsFor(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, special_requests
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.UnitPrice, &it.SpecialRequests); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) UpdatePayment(ctx context.Context, id int64, paymentStatus PaymentStatus, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET payment_status = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, string(paymentStatus), string(status),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row, o *Order) error {
	var status, payStatus string
	err := row.Scan(
		&o.ID, &o.UserID, &o.StallID, &o.StallName, &status, &payStatus, &o.PaymentMethod,
		&o.TotalAmount, &o.QueueNumber, &o.OrderNumber, &o.PickupWindowStart, &o.PickupWindowEnd,
		&o.SpecialInstructions, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("repository: failed to scan order: %w", err)
	}
	o.Status = Status(status)
	o.PaymentStatus = PaymentStatus(payStatus)
	return nil
}

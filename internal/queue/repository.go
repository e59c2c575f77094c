package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEntryNotFound = errors.New("queue entry not found")

type Repository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	GetByOrderID(ctx context.Context, orderID int64) (*Entry, error)
	ListActiveByStall(ctx context.Context, stallID int64) ([]Entry, error)
	CountActiveByStall(ctx context.Context, stallID int64) (int, error)
	CountActiveAhead(ctx context.Context, stallID int64, queueNumber int) (int, error)
	UpdateStatusByOrderID(ctx context.Context, orderID int64, status Status) error
	OrderOwner(ctx context.Context, orderID int64) (int64, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const entryColumns = `id, order_id, stall_id, queue_number, status, estimated_wait_time, joined_at, ready_at, collected_at`

func (r *postgresRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	query := `
		INSERT INTO queue_entries (order_id, stall_id, queue_number, status, estimated_wait_time, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	entry.JoinedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		entry.OrderID, entry.StallID, entry.QueueNumber, string(entry.Status), entry.EstimatedWaitTime, entry.JoinedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert queue entry: %w", err)
	}
	return entry, nil
}

func (r *postgresRepository) GetByOrderID(ctx context.Context, orderID int64) (*Entry, error) {
	var e Entry
	var status string
	err := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM queue_entries WHERE order_id = $1`, orderID).Scan(
		&e.ID, &e.OrderID, &e.StallID, &e.QueueNumber, &status, &e.EstimatedWaitTime,
		&e.JoinedAt, &e.ReadyAt, &e.CollectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("repository: failed to fetch queue entry: %w", err)
	}
	e.Status = Status(status)
	return &e, nil
}

func (r *postgresRepository) ListActiveByStall(ctx context.Context, stallID int64) ([]Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE stall_id = $1 AND status IN ('waiting', 'preparing')
		ORDER BY queue_number
	`
	rows, err := r.db.Query(ctx, query, stallID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list queue entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		if err := rows.Scan(
			&e.ID, &e.OrderID, &e.StallID, &e.QueueNumber, &status, &e.EstimatedWaitTime,
			&e.JoinedAt, &e.ReadyAt, &e.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan queue entry: %w", err)
		}
		e.Status = Status(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepository) CountActiveByStall(ctx context.Context, stallID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_entries WHERE stall_id = $1 AND status IN ('waiting', 'preparing')`,
		stallID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count queue entries: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountActiveAhead(ctx context.Context, stallID int64, queueNumber int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_entries WHERE stall_id = $1 AND queue_number < $2 AND status IN ('waiting', 'preparing')`,
		stallID, queueNumber,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count queue entries ahead: %w", err)
	}
	return count, nil
}

// UpdateStatusByOrderID moves an entry to the given status, stamping
// ready_at / collected_at for the corresponding transitions.
func (r *postgresRepository) UpdateStatusByOrderID(ctx context.Context, orderID int64, status Status) error {
	query := `
		UPDATE queue_entries
		SET status = $2,
		    ready_at = CASE WHEN $2 = 'ready' THEN now() ELSE ready_at END,
		    collected_at = CASE WHEN $2 = 'collected' THEN now() ELSE collected_at END
		WHERE order_id = $1
	`
	tag, err := r.db.Exec(ctx, query, orderID, string(status))
	if err != nil {
		return fmt.Errorf("repository: failed to update queue status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// OrderOwner returns the user id that placed the order behind a queue
// entry, for authorization checks.
func (r *postgresRepository) OrderOwner(ctx context.Context, orderID int64) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx, `SELECT user_id FROM orders WHERE id = $1`, orderID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrEntryNotFound
		}
		return 0, fmt.Errorf("repository: failed to fetch order owner: %w", err)
	}
	return userID, nil
}

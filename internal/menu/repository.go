package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("menu item not found")

type Repository interface {
	ListByStall(ctx context.Context, stallID int64) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const itemColumns = `id, stall_id, name, description, price, category, image_url, is_available, is_vegetarian, is_halal, preparation_time`

func (r *postgresRepository) ListByStall(ctx context.Context, stallID int64) ([]Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE stall_id = $1 ORDER BY id`, stallID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.StallID, &it.Name, &it.Description, &it.Price, &it.Category,
			&it.ImageURL, &it.IsAvailable, &it.IsVegetarian, &it.IsHalal, &it.PreparationTime,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	var it Item
	err := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1`, id).Scan(
		&it.ID, &it.StallID, &it.Name, &it.Description, &it.Price, &it.Category,
		&it.ImageURL, &it.IsAvailable, &it.IsVegetarian, &it.IsHalal, &it.PreparationTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to fetch menu item: %w", err)
	}
	return &it, nil
}

func (r *postgresRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	query := `
		INSERT INTO menu_items (stall_id, name, description, price, category, image_url, is_available, is_vegetarian, is_halal, preparation_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		item.StallID, item.Name, item.Description, item.Price, item.Category,
		item.ImageURL, item.IsAvailable, item.IsVegetarian, item.IsHalal, item.PreparationTime,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert menu item: %w", err)
	}
	return item, nil
}

func (r *postgresRepository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, image_url = $6,
		    is_available = $7, is_vegetarian = $8, is_halal = $9, preparation_time = $10
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.ImageURL, item.IsAvailable, item.IsVegetarian, item.IsHalal, item.PreparationTime,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

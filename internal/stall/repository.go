package stall

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStallNotFound = errors.New("stall not found")

type Repository interface {
	List(ctx context.Context, offset, limit int) ([]Stall, error)
	GetByID(ctx context.Context, id int64) (*Stall, error)
	GetByOwnerID(ctx context.Context, ownerID int64) (*Stall, error)
	Create(ctx context.Context, s *Stall) (*Stall, error)
	Update(ctx context.Context, s *Stall) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const stallColumns = `id, name, description, location, cuisine_type, image_url, is_open, rating, avg_prep_time, latitude, longitude, owner_id`

func (r *postgresRepository) List(ctx context.Context, offset, limit int) ([]Stall, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stallColumns+` FROM stalls ORDER BY id OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list stalls: %w", err)
	}
	defer rows.Close()

	var stalls []Stall
	for rows.Next() {
		var s Stall
		if err := scanStall(rows, &s); err != nil {
			return nil, err
		}
		stalls = append(stalls, s)
	}
	return stalls, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Stall, error) {
	var s Stall
	err := scanStall(r.db.QueryRow(ctx, `SELECT `+stallColumns+` FROM stalls WHERE id = $1`, id), &s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStallNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) GetByOwnerID(ctx context.Context, ownerID int64) (*Stall, error) {
	var s Stall
	err := scanStall(r.db.QueryRow(ctx, `SELECT `+stallColumns+` FROM stalls WHERE owner_id = $1 ORDER BY id LIMIT 1`, ownerID), &s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStallNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) Create(ctx context.Context, s *Stall) (*Stall, error) {
	query := `
		INSERT INTO stalls (name, description, location, cuisine_type, image_url, is_open, rating, avg_prep_time, latitude, longitude, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		s.Name, s.Description, s.Location, s.CuisineType, s.ImageURL,
		s.IsOpen, s.Rating, s.AvgPrepTime, s.Latitude, s.Longitude, s.OwnerID,
	).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert stall: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) Update(ctx context.Context, s *Stall) error {
	query := `
		UPDATE stalls
		SET name = $2, description = $3, location = $4, cuisine_type = $5, image_url = $6,
		    is_open = $7, rating = $8, avg_prep_time = $9, latitude = $10, longitude = $11
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		s.ID, s.Name, s.Description, s.Location, s.CuisineType, s.ImageURL,
		s.IsOpen, s.Rating, s.AvgPrepTime, s.Latitude, s.Longitude,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update stall: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStallNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stalls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete stall: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStallNotFound
	}
	return nil
}

func scanStall(row pgx.Row, s *Stall) error {
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Location, &s.CuisineType, &s.ImageURL,
		&s.IsOpen, &s.Rating, &s.AvgPrepTime, &s.Latitude, &s.Longitude, &s.OwnerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("repository: failed to scan stall: %w", err)
	}
	return nil
}

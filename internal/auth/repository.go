package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrStudentIDExists = errors.New("student id already taken")
	ErrOTPNotFound     = errors.New("otp verification not found")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByStudentID(ctx context.Context, studentID string) (*User, error)

	UpsertOTP(ctx context.Context, otp *OTPVerification) error
	GetOTPByEmail(ctx context.Context, email string) (*OTPVerification, error)
	IncrementOTPAttempts(ctx context.Context, id int64) error
	MarkOTPUsed(ctx context.Context, id int64) error
	DeleteOTP(ctx context.Context, email string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, student_id, name, phone, dietary_preferences, hashed_password, role, is_active, is_verified, created_at, updated_at`

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) (*User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (email, student_id, name, phone, dietary_preferences, hashed_password, role, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		user.Email, user.StudentID, user.Name, user.Phone, user.DietaryPreferences,
		user.HashedPassword, string(user.Role), user.IsActive, user.IsVerified, now,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "users_student_id_key" {
				return nil, ErrStudentIDExists
			}
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresRepository) GetUserByStudentID(ctx context.Context, studentID string) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE student_id = $1`, studentID)
}

func (r *postgresRepository) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	var role string
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.StudentID, &u.Name, &u.Phone, &u.DietaryPreferences,
		&u.HashedPassword, &role, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to fetch user: %w", err)
	}
	u.Role = Role(role)
	return &u, nil
}

func (r *postgresRepository) UpsertOTP(ctx context.Context, otp *OTPVerification) error {
	query := `
		INSERT INTO otp_verifications (email, otp_code, token, student_id, name, phone, dietary_preferences, hashed_password, created_at, expires_at, attempts, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, FALSE)
		ON CONFLICT (email) DO UPDATE SET
			otp_code = EXCLUDED.otp_code,
			token = EXCLUDED.token,
			student_id = EXCLUDED.student_id,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			dietary_preferences = EXCLUDED.dietary_preferences,
			hashed_password = EXCLUDED.hashed_password,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at,
			attempts = 0,
			is_used = FALSE
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		otp.Email, otp.Code, otp.Token, otp.StudentID, otp.Name, otp.Phone,
		otp.DietaryPreferences, otp.HashedPassword, otp.CreatedAt, otp.ExpiresAt,
	).Scan(&otp.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert otp: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetOTPByEmail(ctx context.Context, email string) (*OTPVerification, error) {
	var o OTPVerification
	query := `
		SELECT id, email, otp_code, token, student_id, name, phone, dietary_preferences, hashed_password, created_at, expires_at, attempts, is_used
		FROM otp_verifications
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&o.ID, &o.Email, &o.Code, &o.Token, &o.StudentID, &o.Name, &o.Phone,
		&o.DietaryPreferences, &o.HashedPassword, &o.CreatedAt, &o.ExpiresAt, &o.Attempts, &o.IsUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("repository: failed to fetch otp: %w", err)
	}
	return &o, nil
}

func (r *postgresRepository) IncrementOTPAttempts(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE otp_verifications SET attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to increment otp attempts: %w", err)
	}
	return nil
}

func (r *postgresRepository) MarkOTPUsed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE otp_verifications SET is_used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to mark otp used: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteOTP(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM otp_verifications WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("repository: failed to delete otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOTPNotFound
	}
	return nil
}

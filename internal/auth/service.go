package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrOTPExpired         = errors.New("verification code has expired")
	ErrOTPInvalidCode     = errors.New("incorrect verification code")
	ErrOTPTooManyAttempts = errors.New("too many verification attempts")
)

type RegisterInput struct {
	Email              string
	StudentID          string
	Name               string
	Phone              string
	DietaryPreferences string
	Password           string
}

// OTPPending describes an OTP challenge that was sent out.
type OTPPending struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Mailer delivers verification codes. The delivery mechanism itself is an
// external collaborator.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the log instead of sending mail. Useful for
// local development.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, email, code string) error {
	log.Info().Str("email", email).Str("code", code).Msg("OTP code issued")
	return nil
}

type Service interface {
	Login(ctx context.Context, identifier, password string) (string, *User, error)
	UserByStudentID(ctx context.Context, studentID string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)

	BeginOTPRegistration(ctx context.Context, input RegisterInput) (*OTPPending, error)
	VerifyOTP(ctx context.Context, email, code string) (string, *User, error)
	ResendOTP(ctx context.Context, email string) (*OTPPending, error)
	CancelRegistration(ctx context.Context, email string) error
}

type service struct {
	repo   Repository
	tokens *TokenManager
	mailer Mailer
	otpTTL time.Duration
}

func NewService(repo Repository, tokens *TokenManager, mailer Mailer, otpTTL time.Duration) Service {
	return &service{repo: repo, tokens: tokens, mailer: mailer, otpTTL: otpTTL}
}

// Login accepts either the campus email or the student id as identifier.
func (s *service) Login(ctx context.Context, identifier, password string) (string, *User, error) {
	user, err := s.repo.GetUserByEmail(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.repo.GetUserByStudentID(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("service: failed to look up user: %w", err)
	}

	if !VerifyPassword(password, user.HashedPassword) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("service: %w", err)
	}
	return token, user, nil
}

func (s *service) UserByStudentID(ctx context.Context, studentID string) (*User, error) {
	return s.repo.GetUserByStudentID(ctx, studentID)
}

func (s *service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// BeginOTPRegistration stashes the registration data and sends a
// verification code. The user row is created only after VerifyOTP.
func (s *service) BeginOTPRegistration(ctx context.Context, input RegisterInput) (*OTPPending, error) {
	if _, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("service: failed to check email: %w", err)
	}
	if _, err := s.repo.GetUserByStudentID(ctx, input.StudentID); err == nil {
		return nil, ErrStudentIDExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("service: failed to check student id: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	token, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate registration token: %w", err)
	}

	now := time.Now().UTC()
	otp := &OTPVerification{
		Email:              input.Email,
		Code:               code,
		Token:              token.String(),
		StudentID:          input.StudentID,
		Name:               input.Name,
		Phone:              input.Phone,
		DietaryPreferences: input.DietaryPreferences,
		HashedPassword:     hash,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.otpTTL),
	}
	if err := s.repo.UpsertOTP(ctx, otp); err != nil {
		return nil, err
	}

	if err := s.mailer.SendOTP(ctx, input.Email, code); err != nil {
		log.Error().Err(err).Str("email", input.Email).Msg("Failed to send OTP email")
		return nil, fmt.Errorf("service: failed to send verification code: %w", err)
	}

	return &OTPPending{Email: otp.Email, Token: otp.Token, ExpiresAt: otp.ExpiresAt}, nil
}

// VerifyOTP redeems a code, creates the verified user and logs them in.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (string, *User, error) {
	otp, err := s.repo.GetOTPByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if otp.IsUsed || now.After(otp.ExpiresAt) {
		return "", nil, ErrOTPExpired
	}
	if otp.Attempts >= maxOTPAttempts {
		return "", nil, ErrOTPTooManyAttempts
	}

	if otp.Code != code {
		if err := s.repo.IncrementOTPAttempts(ctx, otp.ID); err != nil {
			log.Error().Err(err).Str("email", email).Msg("Failed to record OTP attempt")
		}
		return "", nil, ErrOTPInvalidCode
	}

	user := &User{
		Email:              otp.Email,
		StudentID:          otp.StudentID,
		Name:               otp.Name,
		Phone:              otp.Phone,
		DietaryPreferences: otp.DietaryPreferences,
		HashedPassword:     otp.HashedPassword,
		Role:               RoleStudent,
		IsActive:           true,
		IsVerified:         true,
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return "", nil, err
	}

	if err := s.repo.MarkOTPUsed(ctx, otp.ID); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to mark OTP used")
	}

	token, err := s.tokens.Generate(created)
	if err != nil {
		return "", nil, fmt.Errorf("service: %w", err)
	}

	log.Info().Int64("user_id", created.ID).Msg("User verified and registered via OTP")
	return token, created, nil
}

func (s *service) ResendOTP(ctx context.Context, email string) (*OTPPending, error) {
	otp, err := s.repo.GetOTPByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	now := time.Now().UTC()
	otp.Code = code
	otp.CreatedAt = now
	otp.ExpiresAt = now.Add(s.otpTTL)
	if err := s.repo.UpsertOTP(ctx, otp); err != nil {
		return nil, err
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return nil, fmt.Errorf("service: failed to send verification code: %w", err)
	}
	return &OTPPending{Email: otp.Email, Token: otp.Token, ExpiresAt: otp.ExpiresAt}, nil
}

func (s *service) CancelRegistration(ctx context.Context, email string) error {
	return s.repo.DeleteOTP(ctx, email)
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

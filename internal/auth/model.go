package auth

import "time"

type Role string

const (
	RoleStudent    Role = "student"
	RoleStallOwner Role = "stall_owner"
	RoleAdmin      Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"ntu_email"`
	StudentID          string    `json:"student_id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	DietaryPreferences string    `json:"dietary_preferences"`
	HashedPassword     string    `json:"-"`
	Role               Role      `json:"role"`
	IsActive           bool      `json:"is_active"`
	IsVerified         bool      `json:"is_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// OTPVerification holds a pending registration awaiting email
// verification. The user row is only created once the code is confirmed.
type OTPVerification struct {
	ID                 int64
	Email              string
	Code               string
	Token              string
	StudentID          string
	Name               string
	Phone              string
	DietaryPreferences string
	HashedPassword     string
	CreatedAt          time.Time
	ExpiresAt          time.Time
	Attempts           int
	IsUsed             bool
}

const maxOTPAttempts = 5

// Valid reports whether the code can still be redeemed.
func (o *OTPVerification) Valid(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt) && o.Attempts < maxOTPAttempts
}

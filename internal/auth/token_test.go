package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/auth"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := auth.NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate(&auth.User{StudentID: "U2212345A"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "U2212345A", subject)
}

func TestTokenManager_Parse(t *testing.T) {
	m := auth.NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name:  "garbage",
			token: func() string { return "not.a.token" },
		},
		{
			name: "wrong_secret",
			token: func() string {
				other := auth.NewTokenManager("another-secret", time.Hour)
				tok, err := other.Generate(&auth.User{StudentID: "U2212345A"})
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "expired",
			token: func() string {
				expired := auth.NewTokenManager("test-secret", -time.Minute)
				tok, err := expired.Generate(&auth.User{StudentID: "U2212345A"})
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "empty_subject",
			token: func() string {
				tok, err := m.Generate(&auth.User{})
				require.NoError(t, err)
				return tok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token())
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, auth.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, auth.VerifyPassword("wrong password", hash))
}

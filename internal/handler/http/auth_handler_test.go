package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/auth"
	apihttp "ntu-food/internal/handler/http"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (string, *auth.User, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*auth.User), args.Error(2)
}

func (m *MockAuthService) UserByStudentID(ctx context.Context, studentID string) (*auth.User, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockAuthService) UserByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockAuthService) BeginOTPRegistration(ctx context.Context, input auth.RegisterInput) (*auth.OTPPending, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.OTPPending), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (string, *auth.User, error) {
	args := m.Called(ctx, email, code)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*auth.User), args.Error(2)
}

func (m *MockAuthService) ResendOTP(ctx context.Context, email string) (*auth.OTPPending, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.OTPPending), args.Error(1)
}

func (m *MockAuthService) CancelRegistration(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func newAuthRouter(service auth.Service) chi.Router {
	router := chi.NewRouter()
	apihttp.NewAuthHandler(service).RegisterRoutes(router)
	return router
}

func TestAuthHandler_handleLogin_Success(t *testing.T) {
	mockService := new(MockAuthService)
	user := &auth.User{ID: 1, StudentID: "U2212345A", Name: "Alice", Role: auth.RoleStudent}
	mockService.On("Login", mock.Anything, "U2212345A", "pa55word!").
		Return("signed-token", user, nil).Once()

	body, err := json.Marshal(apihttp.LoginRequest{Identifier: "U2212345A", Password: "pa55word!"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newAuthRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp apihttp.TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	require.NotNil(t, resp.User)
	assert.Equal(t, "U2212345A", resp.User.StudentID)
	mockService.AssertExpectations(t)
}

func TestAuthHandler_handleLogin_InvalidCredentials(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Login", mock.Anything, "U2212345A", "wrong").
		Return("", nil, auth.ErrInvalidCredentials).Once()

	body, err := json.Marshal(apihttp.LoginRequest{Identifier: "U2212345A", Password: "wrong"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newAuthRouter(mockService).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	mockService.AssertExpectations(t)
}

func TestAuthHandler_handleRegister_ValidationFailure(t *testing.T) {
	mockService := new(MockAuthService)

	// Missing email and too-short password; the service must never be hit.
	body, err := json.Marshal(apihttp.RegisterRequest{
		StudentID: "U2212345A",
		Name:      "Alice",
		Password:  "short",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newAuthRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp apihttp.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "Email")
	assert.Contains(t, resp.Details, "Password")
	mockService.AssertNotCalled(t, "BeginOTPRegistration")
}

func TestAuthHandler_handleRegister_Success(t *testing.T) {
	mockService := new(MockAuthService)
	expiresAt := time.Now().Add(10 * time.Minute).UTC()
	mockService.On("BeginOTPRegistration", mock.Anything, mock.MatchedBy(func(in auth.RegisterInput) bool {
		return in.Email == "alice@e.ntu.edu.sg" && in.StudentID == "U2212345A"
	})).Return(&auth.OTPPending{
		Email:     "alice@e.ntu.edu.sg",
		Token:     "reg-token",
		ExpiresAt: expiresAt,
	}, nil).Once()

	body, err := json.Marshal(apihttp.RegisterRequest{
		Email:     "alice@e.ntu.edu.sg",
		StudentID: "U2212345A",
		Name:      "Alice",
		Password:  "longenoughpassword",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newAuthRouter(mockService).ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var resp apihttp.OTPPendingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "reg-token", resp.Token)
	mockService.AssertExpectations(t)
}

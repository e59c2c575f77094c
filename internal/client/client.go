// Package client is a typed HTTP client for the food ordering API. It
// holds the bearer token for the session and drops it when the server
// rejects it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, empty once logged out or
// after the server rejected it.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// A rejected token is gone for good; force a fresh login.
		c.SetToken("")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if decErr := json.NewDecoder(resp.Body).Decode(&errBody); decErr != nil {
			log.Debug().Err(decErr).Int("status", resp.StatusCode).Msg("Failed to decode error body")
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: failed to decode response: %w", err)
	}
	return nil
}

type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"ntu_email"`
	StudentID          string `json:"student_id"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	DietaryPreferences string `json:"dietary_preferences"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

type OTPPending struct {
	Email     string    `json:"ntu_email"`
	Token     string    `json:"registration_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Email              string `json:"ntu_email"`
	StudentID          string `json:"student_id"`
	Name               string `json:"name"`
	Phone              string `json:"phone,omitempty"`
	DietaryPreferences string `json:"dietary_preferences,omitempty"`
	Password           string `json:"password"`
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*User, error) {
	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return resp.User, nil
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*OTPPending, error) {
	var pending OTPPending
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", input, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*User, error) {
	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"ntu_email": email,
		"otp_code":  code,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type Stall struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	CuisineType string   `json:"cuisine_type"`
	IsOpen      bool     `json:"is_open"`
	AvgPrepTime int      `json:"avg_prep_time"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type NearbyStall struct {
	Stall
	DistanceKm     float64 `json:"distance_km"`
	WalkingMinutes int     `json:"walking_time_minutes"`
}

func (c *Client) Stalls(ctx context.Context) ([]Stall, error) {
	var stalls []Stall
	if err := c.do(ctx, http.MethodGet, "/api/stalls", nil, &stalls); err != nil {
		return nil, err
	}
	return stalls, nil
}

func (c *Client) NearbyStalls(ctx context.Context, lat, lng float64) ([]NearbyStall, error) {
	path := fmt.Sprintf("/api/stalls/nearby?lat=%s&lng=%s",
		url.QueryEscape(fmt.Sprintf("%f", lat)), url.QueryEscape(fmt.Sprintf("%f", lng)))
	var stalls []NearbyStall
	if err := c.do(ctx, http.MethodGet, path, nil, &stalls); err != nil {
		return nil, err
	}
	return stalls, nil
}

type MenuItem struct {
	ID           int64   `json:"id"`
	StallID      int64   `json:"stall_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	IsAvailable  bool    `json:"is_available"`
	IsVegetarian bool    `json:"is_vegetarian"`
	IsHalal      bool    `json:"is_halal"`
}

func (c *Client) StallMenu(ctx context.Context, stallID int64) ([]MenuItem, error) {
	var items []MenuItem
	path := fmt.Sprintf("/api/stalls/%d/menu", stallID)
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type OrderItemInput struct {
	MenuItemID      int64  `json:"menu_item_id"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type CreateOrderInput struct {
	StallID             int64            `json:"stall_id"`
	Items               []OrderItemInput `json:"items"`
	PickupWindowStart   time.Time        `json:"pickup_window_start"`
	PickupWindowEnd     time.Time        `json:"pickup_window_end"`
	PaymentMethod       string           `json:"payment_method"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
}

type Order struct {
	ID                int64     `json:"id"`
	StallID           int64     `json:"stall_id"`
	StallName         string    `json:"stall_name"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"payment_status"`
	TotalAmount       float64   `json:"total_amount"`
	QueueNumber       int       `json:"queue_number"`
	OrderNumber       string    `json:"order_number"`
	PickupWindowStart time.Time `json:"pickup_window_start"`
	PickupWindowEnd   time.Time `json:"pickup_window_end"`
	CreatedAt         time.Time `json:"created_at"`
}

func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", input, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/confirm-payment", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

type QueuePosition struct {
	QueueNumber       int    `json:"queue_number"`
	Position          int    `json:"position"`
	Status            string `json:"status"`
	EstimatedWaitTime int    `json:"estimated_wait_time"`
}

func (c *Client) QueuePosition(ctx context.Context, orderID int64) (*QueuePosition, error) {
	var pos QueuePosition
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/queue/order/%d", orderID), nil, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

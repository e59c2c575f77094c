package order

import "time"

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the order has reached a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPendingPayment: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusPreparing: true,
		StatusCancelled: true,
	},
	StatusPreparing: {
		StatusReady:     true,
		StatusCancelled: true,
	},
	StatusReady: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type Item struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	MenuItemID      int64   `json:"menu_item_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

type Order struct {
	ID                  int64         `json:"id"`
	UserID              int64         `json:"user_id"`
	StallID             int64         `json:"stall_id"`
	StallName           string        `json:"stall_name,omitempty"`
	Status              Status        `json:"status"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	PaymentMethod       string        `json:"payment_method"`
	TotalAmount         float64       `json:"total_amount"`
	QueueNumber         int           `json:"queue_number"`
	OrderNumber         string        `json:"order_number"`
	PickupWindowStart   time.Time     `json:"pickup_window_start"`
	PickupWindowEnd     time.Time     `json:"pickup_window_end"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	Items               []Item        `json:"order_items"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Summary is the list-view projection of an order, with an estimated
// ready time attached while the order is still active.
type Summary struct {
	ID                 int64         `json:"id"`
	StallID            int64         `json:"stall_id"`
	StallName          string        `json:"stall_name"`
	Status             Status        `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	TotalAmount        float64       `json:"total_amount"`
	QueueNumber        int           `json:"queue_number"`
	OrderNumber        string        `json:"order_number"`
	PickupWindowStart  time.Time     `json:"pickup_window_start"`
	PickupWindowEnd    time.Time     `json:"pickup_window_end"`
	CreatedAt          time.Time     `json:"created_at"`
	EstimatedReadyTime *time.Time    `json:"estimated_ready_time,omitempty"`
}

type CreateItemInput struct {
	MenuItemID      int64
	Quantity        int
	SpecialRequests string
}

type CreateInput struct {
	StallID             int64
	Items               []CreateItemInput
	PickupWindowStart   time.Time
	PickupWindowEnd     time.Time
	PaymentMethod       string
	SpecialInstructions string
}

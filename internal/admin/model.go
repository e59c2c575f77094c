package admin

import "time"

// UserUpdate carries the fields an administrator may change on a user
// account. Nil fields are left untouched.
type UserUpdate struct {
	Name               *string
	Phone              *string
	DietaryPreferences *string
	Role               *string
	IsActive           *bool
}

// Dashboard aggregates the headline numbers shown on the admin
// overview page.
type Dashboard struct {
	TotalUsers      int     `json:"total_users"`
	TotalStalls     int     `json:"total_stalls"`
	TotalOrders     int     `json:"total_orders"`
	ActiveOrders    int     `json:"active_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	OrdersToday     int     `json:"orders_today"`
	RevenueToday    float64 `json:"revenue_today"`
}

// PopularItem ranks a menu item by units sold over a reporting window.
type PopularItem struct {
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	StallID    int64   `json:"stall_id"`
	StallName  string  `json:"stall_name"`
	UnitsSold  int     `json:"units_sold"`
	Revenue    float64 `json:"revenue"`
}

// StallPerformance summarises one stall's order volume and revenue.
type StallPerformance struct {
	StallID         int64   `json:"stall_id"`
	StallName       string  `json:"stall_name"`
	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	Revenue         float64 `json:"revenue"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

// OrderOverview is the admin-facing projection of an order, including
// who placed it.
type OrderOverview struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"order_number"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name"`
	StallID       int64     `json:"stall_id"`
	StallName     string    `json:"stall_name"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

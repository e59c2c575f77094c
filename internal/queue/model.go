package queue

import "time"

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
	StatusCancelled Status = "cancelled"
)

type Entry struct {
	ID                int64      `json:"id"`
	OrderID           int64      `json:"order_id"`
	StallID           int64      `json:"stall_id"`
	QueueNumber       int        `json:"queue_number"`
	Status            Status     `json:"status"`
	EstimatedWaitTime int        `json:"estimated_wait_time"`
	JoinedAt          time.Time  `json:"joined_at"`
	ReadyAt           *time.Time `json:"ready_at,omitempty"`
	CollectedAt       *time.Time `json:"collected_at,omitempty"`
}

// Position is a customer's place in a stall's queue.
type Position struct {
	QueueNumber       int    `json:"queue_number"`
	Position          int    `json:"position"`
	Status            Status `json:"status"`
	EstimatedWaitTime int    `json:"estimated_wait_time"`
}

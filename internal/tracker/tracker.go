// Package tracker drives the periodic refresh of order and queue state.
// Each view owns exactly one refresh timer and one countdown timer; both
// are torn down together by Stop.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Refresh intervals per screen, reflecting the urgency of each role.
const (
	ListInterval      = 30 * time.Second
	TrackInterval     = 15 * time.Second
	DashboardInterval = 5 * time.Second
)

// OrderState is the tracked view of one order.
type OrderState struct {
	OrderID           int64
	Status            string
	PaymentStatus     string
	QueueNumber       int
	PickupWindowStart time.Time
}

// Terminal reports whether a status ends automatic polling.
func Terminal(status string) bool {
	return status == "COMPLETED" || status == "CANCELLED"
}

// FetchFunc retrieves the current order state from the order service.
type FetchFunc func(ctx context.Context) (OrderState, error)

// Handlers receive tracker output. OnError fires only for explicit
// refreshes; silent background errors are logged and swallowed.
type Handlers struct {
	OnState     func(state OrderState)
	OnCountdown func(remaining string)
	OnError     func(err error)
}

// Tracker polls order state on a fixed interval and recomputes the pickup
// countdown every second.
type Tracker struct {
	interval time.Duration
	fetch    FetchFunc
	handlers Handlers

	mu          sync.Mutex
	state       *OrderState
	lastUpdated time.Time
	autoStopped bool

	cancel  context.CancelFunc
	stopped chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func New(interval time.Duration, fetch FetchFunc, handlers Handlers) *Tracker {
	return &Tracker{
		interval: interval,
		fetch:    fetch,
		handlers: handlers,
		stopped:  make(chan struct{}),
	}
}

// Start performs an initial explicit fetch and then begins the background
// refresh and countdown loops.
func (t *Tracker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.refresh(ctx, false)

	t.wg.Add(2)
	go t.refreshLoop(ctx)
	go t.countdownLoop(ctx)
}

// Stop cancels both timers. It is idempotent and safe to call from any
// goroutine; results of an in-flight fetch are discarded.
func (t *Tracker) Stop() {
	t.once.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
		close(t.stopped)
	})
	t.wg.Wait()
}

// Refresh performs a user-triggered refresh. Errors are surfaced. A manual
// refresh after the tracker reached a terminal status does not re-arm the
// automatic timer.
func (t *Tracker) Refresh(ctx context.Context) {
	t.refresh(ctx, false)
}

// State returns the last fetched order state, if any.
func (t *Tracker) State() (OrderState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return OrderState{}, false
	}
	return *t.state, true
}

// LastUpdated reports when the state was last refreshed successfully, so
// callers can surface staleness instead of silently showing old data.
func (t *Tracker) LastUpdated() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUpdated
}

func (t *Tracker) refreshLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			stopped := t.autoStopped
			t.mu.Unlock()
			if stopped {
				return
			}
			t.refresh(ctx, true)
		}
	}
}

func (t *Tracker) countdownLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			state := t.state
			t.mu.Unlock()
			if state == nil || t.handlers.OnCountdown == nil {
				continue
			}
			t.handlers.OnCountdown(TimeUntilPickup(state.PickupWindowStart, time.Now()))
		}
	}
}

// refresh fetches the current state. Silent refreshes swallow errors so a
// transient network problem never flaps the screen; the view keeps its
// last-known-good data.
func (t *Tracker) refresh(ctx context.Context, silent bool) {
	state, err := t.fetch(ctx)
	if err != nil {
		if silent {
			log.Debug().Err(err).Msg("Silent order refresh failed")
			return
		}
		if t.handlers.OnError != nil {
			t.handlers.OnError(err)
		}
		return
	}

	select {
	case <-t.stopped:
		return
	default:
	}

	t.mu.Lock()
	t.state = &state
	t.lastUpdated = time.Now()
	if Terminal(state.Status) {
		t.autoStopped = true
	}
	t.mu.Unlock()

	if t.handlers.OnState != nil {
		t.handlers.OnState(state)
	}
}

// TimeUntilPickup renders the remaining time before the pickup window
// opens, e.g. "12m 30s" or "1h 5m".
func TimeUntilPickup(pickupStart, now time.Time) string {
	diff := pickupStart.Sub(now)
	if diff < 0 {
		return "Pickup time passed"
	}

	mins := int(diff.Minutes())
	secs := int(diff.Seconds()) % 60
	switch {
	case mins == 0:
		return fmt.Sprintf("%ds", secs)
	case mins < 60:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
}

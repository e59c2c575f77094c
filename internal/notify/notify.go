// Package notify maps domain events to a visual toast and an optional
// synthesized tone sequence. It has no effect on domain state.
package notify

import (
	"fmt"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Toast is a transient visual notification.
type Toast struct {
	Message  string
	Level    Level
	Duration time.Duration
}

// Tone is a single synthesized note. Delay is measured from the start of
// the sequence.
type Tone struct {
	FrequencyHz float64
	Length      time.Duration
	Delay       time.Duration
}

// Toaster displays toasts.
type Toaster interface {
	Show(toast Toast)
}

// TonePlayer plays a tone sequence.
type TonePlayer interface {
	Play(tones []Tone)
}

// Tone sequences, in the order the original sound palette defines them:
// success is two ascending notes, error two descending, alert a repeated
// high note, new-order three ascending notes.
var (
	successTones = []Tone{
		{FrequencyHz: 523.25, Length: 100 * time.Millisecond},
		{FrequencyHz: 659.25, Length: 150 * time.Millisecond, Delay: 100 * time.Millisecond},
	}
	errorTones = []Tone{
		{FrequencyHz: 392.00, Length: 150 * time.Millisecond},
		{FrequencyHz: 293.66, Length: 200 * time.Millisecond, Delay: 150 * time.Millisecond},
	}
	alertTones = []Tone{
		{FrequencyHz: 880.00, Length: 100 * time.Millisecond},
		{FrequencyHz: 880.00, Length: 100 * time.Millisecond, Delay: 200 * time.Millisecond},
	}
	newOrderTones = []Tone{
		{FrequencyHz: 659.25, Length: 150 * time.Millisecond},
		{FrequencyHz: 783.99, Length: 150 * time.Millisecond, Delay: 150 * time.Millisecond},
		{FrequencyHz: 1046.50, Length: 200 * time.Millisecond, Delay: 300 * time.Millisecond},
	}
)

// Dispatcher fans domain events out to its sinks. An order-ready alert
// fires at most once per order ID for the dispatcher's lifetime.
type Dispatcher struct {
	toaster Toaster
	player  TonePlayer

	mu       sync.Mutex
	notified map[int64]struct{}
}

func NewDispatcher(toaster Toaster, player TonePlayer) *Dispatcher {
	return &Dispatcher{
		toaster:  toaster,
		player:   player,
		notified: make(map[int64]struct{}),
	}
}

func (d *Dispatcher) Success(message string) {
	d.play(successTones)
	d.show(Toast{Message: message, Level: LevelSuccess, Duration: 4 * time.Second})
}

func (d *Dispatcher) Error(message string) {
	d.play(errorTones)
	d.show(Toast{Message: message, Level: LevelError, Duration: 5 * time.Second})
}

func (d *Dispatcher) Info(message string) {
	d.show(Toast{Message: message, Level: LevelInfo, Duration: 4 * time.Second})
}

func (d *Dispatcher) Warning(message string) {
	d.show(Toast{Message: message, Level: LevelWarning, Duration: 4 * time.Second})
}

// OrderReady alerts a customer that their queue number is up. Repeat calls
// for the same order are dropped, so a poller observing READY on several
// consecutive ticks produces a single alert.
func (d *Dispatcher) OrderReady(orderID int64, queueNumber int) {
	d.mu.Lock()
	if _, seen := d.notified[orderID]; seen {
		d.mu.Unlock()
		return
	}
	d.notified[orderID] = struct{}{}
	d.mu.Unlock()

	d.play(alertTones)
	d.show(Toast{
		Message:  fmt.Sprintf("Order #%d is Ready!", queueNumber),
		Level:    LevelSuccess,
		Duration: 8 * time.Second,
	})
}

// NewOrder alerts a stall owner about an incoming order.
func (d *Dispatcher) NewOrder(queueNumber int) {
	d.play(newOrderTones)
	d.show(Toast{
		Message:  fmt.Sprintf("New Order #%d!", queueNumber),
		Level:    LevelSuccess,
		Duration: 6 * time.Second,
	})
}

// PaymentReminder nudges the customer to complete payment. No tone.
func (d *Dispatcher) PaymentReminder() {
	d.show(Toast{
		Message:  "Please complete payment to proceed",
		Level:    LevelWarning,
		Duration: 5 * time.Second,
	})
}

func (d *Dispatcher) show(toast Toast) {
	if d.toaster != nil {
		d.toaster.Show(toast)
	}
}

func (d *Dispatcher) play(tones []Tone) {
	if d.player != nil {
		d.player.Play(tones)
	}
}

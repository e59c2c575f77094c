package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/notify"
)

type recordingToaster struct {
	mu     sync.Mutex
	toasts []notify.Toast
}

func (r *recordingToaster) Show(toast notify.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

func (r *recordingToaster) all() []notify.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Toast(nil), r.toasts...)
}

type recordingPlayer struct {
	mu        sync.Mutex
	sequences [][]notify.Tone
}

func (r *recordingPlayer) Play(tones []notify.Tone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences = append(r.sequences, tones)
}

func (r *recordingPlayer) all() [][]notify.Tone {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]notify.Tone(nil), r.sequences...)
}

func TestDispatcher_Events(t *testing.T) {
	tests := []struct {
		name          string
		fire          func(d *notify.Dispatcher)
		wantLevel     notify.Level
		wantDuration  time.Duration
		wantTones     int
		wantFirstFreq float64
	}{
		{
			name:          "success",
			fire:          func(d *notify.Dispatcher) { d.Success("saved") },
			wantLevel:     notify.LevelSuccess,
			wantDuration:  4 * time.Second,
			wantTones:     2,
			wantFirstFreq: 523.25,
		},
		{
			name:          "error",
			fire:          func(d *notify.Dispatcher) { d.Error("boom") },
			wantLevel:     notify.LevelError,
			wantDuration:  5 * time.Second,
			wantTones:     2,
			wantFirstFreq: 392.00,
		},
		{
			name:          "order_ready",
			fire:          func(d *notify.Dispatcher) { d.OrderReady(1, 7) },
			wantLevel:     notify.LevelSuccess,
			wantDuration:  8 * time.Second,
			wantTones:     2,
			wantFirstFreq: 880.00,
		},
		{
			name:          "new_order",
			fire:          func(d *notify.Dispatcher) { d.NewOrder(7) },
			wantLevel:     notify.LevelSuccess,
			wantDuration:  6 * time.Second,
			wantTones:     3,
			wantFirstFreq: 659.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toaster := &recordingToaster{}
			player := &recordingPlayer{}
			d := notify.NewDispatcher(toaster, player)

			tt.fire(d)

			toasts := toaster.all()
			require.Len(t, toasts, 1)
			assert.Equal(t, tt.wantLevel, toasts[0].Level)
			assert.Equal(t, tt.wantDuration, toasts[0].Duration)

			sequences := player.all()
			require.Len(t, sequences, 1)
			assert.Len(t, sequences[0], tt.wantTones)
			assert.Equal(t, tt.wantFirstFreq, sequences[0][0].FrequencyHz)
		})
	}
}

func TestDispatcher_PaymentReminderHasNoTone(t *testing.T) {
	toaster := &recordingToaster{}
	player := &recordingPlayer{}
	d := notify.NewDispatcher(toaster, player)

	d.PaymentReminder()

	toasts := toaster.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelWarning, toasts[0].Level)
	assert.Equal(t, 5*time.Second, toasts[0].Duration)
	assert.Empty(t, player.all())
}

func TestDispatcher_OrderReadyDeduplicates(t *testing.T) {
	toaster := &recordingToaster{}
	d := notify.NewDispatcher(toaster, nil)

	// A poller seeing READY on consecutive ticks fires repeatedly.
	d.OrderReady(42, 7)
	d.OrderReady(42, 7)
	d.OrderReady(42, 7)
	d.OrderReady(43, 8)

	toasts := toaster.all()
	require.Len(t, toasts, 2)
	assert.Equal(t, "Order #7 is Ready!", toasts[0].Message)
	assert.Equal(t, "Order #8 is Ready!", toasts[1].Message)
}

func TestDispatcher_NilSinks(t *testing.T) {
	d := notify.NewDispatcher(nil, nil)

	assert.NotPanics(t, func() {
		d.Success("ok")
		d.Error("fail")
		d.OrderReady(1, 1)
	})
}

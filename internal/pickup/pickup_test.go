package pickup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/pickup"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantFirst  string
		wantLength int
	}{
		{
			name:       "on_the_hour",
			now:        time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			wantFirst:  "12:30 PM - 12:45 PM",
			wantLength: 11,
		},
		{
			name:       "rounds_up_to_quarter",
			now:        time.Date(2025, 3, 10, 12, 7, 0, 0, time.UTC),
			wantFirst:  "12:45 PM - 01:00 PM",
			wantLength: 10,
		},
		{
			name:       "exactly_on_quarter_boundary",
			now:        time.Date(2025, 3, 10, 12, 15, 0, 0, time.UTC),
			wantFirst:  "12:45 PM - 01:00 PM",
			wantLength: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := pickup.Generate(tt.now)

			require.NotEmpty(t, slots)
			assert.Equal(t, tt.wantFirst, slots[0].Label())
			assert.Len(t, slots, tt.wantLength)
		})
	}
}

func TestGenerate_Invariants(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 41, 0, 0, time.UTC)
	slots := pickup.Generate(now)
	require.NotEmpty(t, slots)

	for i, slot := range slots {
		assert.Equal(t, 15*time.Minute, slot.End.Sub(slot.Start), "slot %d length", i)
		assert.GreaterOrEqual(t, slot.Start.Sub(now), 30*time.Minute, "slot %d lead time", i)
		assert.LessOrEqual(t, slot.Start.Sub(now), 3*time.Hour, "slot %d horizon", i)
		if i > 0 {
			assert.Equal(t, slots[i-1].End, slot.Start, "slot %d should be consecutive", i)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 3, 0, 0, time.UTC)
	assert.Equal(t, pickup.Generate(now), pickup.Generate(now))
}

func TestParseLabel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		label     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{
			name:      "same_day",
			label:     "01:15 PM - 01:30 PM",
			wantStart: time.Date(2025, 3, 10, 13, 15, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC),
		},
		{
			name:      "past_time_rolls_to_next_day",
			label:     "09:00 AM - 09:15 AM",
			wantStart: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 3, 11, 9, 15, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			label:   "half past one",
			wantErr: pickup.ErrInvalidLabel,
		},
		{
			name:    "missing_separator",
			label:   "01:15 PM 01:30 PM",
			wantErr: pickup.ErrInvalidLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := pickup.ParseLabel(tt.label, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, slot.Start)
			assert.Equal(t, tt.wantEnd, slot.End)
		})
	}
}

func TestParseLabel_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, slot := range pickup.Generate(now) {
		parsed, err := pickup.ParseLabel(slot.Label(), now)
		require.NoError(t, err)
		assert.Equal(t, slot.Label(), parsed.Label())
	}
}

// Package pickup generates the discrete 15-minute pickup windows offered
// at checkout.
package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	slotLength = 15 * time.Minute
	leadTime   = 30 * time.Minute
	horizon    = 3 * time.Hour
)

var ErrInvalidLabel = errors.New("invalid pickup slot label")

// Slot is a half-open [Start, End) pickup window.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Label renders the window as "03:15 PM - 03:30 PM".
func (s Slot) Label() string {
	return fmt.Sprintf("%s - %s", s.Start.Format("03:04 PM"), s.End.Format("03:04 PM"))
}

// Generate returns consecutive 15-minute slots starting at least 30
// minutes after now (rounded up to the next quarter hour) and extending
// while the slot start is within three hours of now. The function is pure:
// the same now always yields the same slots.
func Generate(now time.Time) []Slot {
	start := roundUpToQuarter(now.Add(leadTime))
	windowEnd := now.Add(horizon)

	var slots []Slot
	for cur := start; !cur.After(windowEnd); cur = cur.Add(slotLength) {
		slots = append(slots, Slot{Start: cur, End: cur.Add(slotLength)})
	}
	return slots
}

// ParseLabel converts a slot label back into concrete times, anchored to
// now's date. A label whose times fall before now is taken to span
// midnight and is moved to the next day.
func ParseLabel(label string, now time.Time) (Slot, error) {
	parts := strings.Split(label, " - ")
	if len(parts) != 2 {
		return Slot{}, ErrInvalidLabel
	}

	start, err := parseClock(strings.TrimSpace(parts[0]), now)
	if err != nil {
		return Slot{}, err
	}
	end, err := parseClock(strings.TrimSpace(parts[1]), now)
	if err != nil {
		return Slot{}, err
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return Slot{Start: start, End: end}, nil
}

func parseClock(s string, now time.Time) (time.Time, error) {
	t, err := time.ParseInLocation("03:04 PM", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

func roundUpToQuarter(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	rem := t.Minute() % 15
	if rem != 0 {
		t = t.Add(time.Duration(15-rem) * time.Minute)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

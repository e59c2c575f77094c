package geo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Classified position errors. Callers branch on these to pick a
// user-facing message; the application stays usable without a fix.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location information is unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrUnsupported         = errors.New("location is not supported in this environment")
)

type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Provider supplies a single position fix.
type Provider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

const (
	fixTimeout  = 10 * time.Second
	maxCacheAge = 5 * time.Minute
)

// Locator wraps a Provider with a fix timeout and a bounded cache of the
// last fix. Position data here is advisory, for sorting and display only.
type Locator struct {
	provider Provider
	now      func() time.Time

	mu   sync.Mutex
	last *Position
}

func NewLocator(provider Provider) *Locator {
	return &Locator{provider: provider, now: time.Now}
}

// CurrentLocation requests a fix with a 10-second timeout. The result is
// cached for subsequent CachedLocation calls.
func (l *Locator) CurrentLocation(ctx context.Context) (Position, error) {
	if l.provider == nil {
		return Position{}, ErrUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, fixTimeout)
	defer cancel()

	pos, err := l.provider.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		return Position{}, err
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = l.now()
	}

	l.mu.Lock()
	l.last = &pos
	l.mu.Unlock()
	return pos, nil
}

// CachedLocation returns the last fix if it is younger than five minutes.
func (l *Locator) CachedLocation() (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil {
		return Position{}, false
	}
	if l.now().Sub(l.last.Timestamp) >= maxCacheAge {
		return Position{}, false
	}
	return *l.last, true
}

// StaticProvider reports a fixed coordinate, e.g. one configured through
// the environment.
type StaticProvider struct {
	Latitude  float64
	Longitude float64
}

func (p StaticProvider) CurrentPosition(_ context.Context) (Position, error) {
	return Position{Latitude: p.Latitude, Longitude: p.Longitude, Timestamp: time.Now()}, nil
}

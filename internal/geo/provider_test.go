package geo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/geo"
)

type funcProvider func(ctx context.Context) (geo.Position, error)

func (f funcProvider) CurrentPosition(ctx context.Context) (geo.Position, error) {
	return f(ctx)
}

func TestLocator_CurrentLocation(t *testing.T) {
	t.Run("returns_fix", func(t *testing.T) {
		l := geo.NewLocator(geo.StaticProvider{Latitude: 1.3483, Longitude: 103.6831})

		pos, err := l.CurrentLocation(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1.3483, pos.Latitude)
		assert.Equal(t, 103.6831, pos.Longitude)
		assert.False(t, pos.Timestamp.IsZero())
	})

	t.Run("nil_provider_is_unsupported", func(t *testing.T) {
		l := geo.NewLocator(nil)

		_, err := l.CurrentLocation(context.Background())

		assert.ErrorIs(t, err, geo.ErrUnsupported)
	})

	t.Run("deadline_maps_to_timeout", func(t *testing.T) {
		l := geo.NewLocator(funcProvider(func(ctx context.Context) (geo.Position, error) {
			return geo.Position{}, context.DeadlineExceeded
		}))

		_, err := l.CurrentLocation(context.Background())

		assert.ErrorIs(t, err, geo.ErrTimeout)
	})

	t.Run("provider_errors_pass_through", func(t *testing.T) {
		l := geo.NewLocator(funcProvider(func(ctx context.Context) (geo.Position, error) {
			return geo.Position{}, geo.ErrPermissionDenied
		}))

		_, err := l.CurrentLocation(context.Background())

		assert.ErrorIs(t, err, geo.ErrPermissionDenied)
	})
}

func TestLocator_CachedLocation(t *testing.T) {
	t.Run("empty_before_first_fix", func(t *testing.T) {
		l := geo.NewLocator(geo.StaticProvider{})

		_, ok := l.CachedLocation()

		assert.False(t, ok)
	})

	t.Run("fresh_fix_is_cached", func(t *testing.T) {
		l := geo.NewLocator(geo.StaticProvider{Latitude: 1.3, Longitude: 103.7})

		_, err := l.CurrentLocation(context.Background())
		require.NoError(t, err)

		pos, ok := l.CachedLocation()
		require.True(t, ok)
		assert.Equal(t, 1.3, pos.Latitude)
	})

	t.Run("stale_fix_is_discarded", func(t *testing.T) {
		stale := time.Now().Add(-10 * time.Minute)
		l := geo.NewLocator(funcProvider(func(ctx context.Context) (geo.Position, error) {
			return geo.Position{Latitude: 1.3, Longitude: 103.7, Timestamp: stale}, nil
		}))

		_, err := l.CurrentLocation(context.Background())
		require.NoError(t, err)

		_, ok := l.CachedLocation()
		assert.False(t, ok)
	})
}

func TestLocator_ErrorClassification(t *testing.T) {
	// Callers branch on these sentinels for user-facing messages; they
	// must stay distinct.
	sentinels := []error{
		geo.ErrPermissionDenied,
		geo.ErrPositionUnavailable,
		geo.ErrTimeout,
		geo.ErrUnsupported,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b))
			}
		}
	}
}

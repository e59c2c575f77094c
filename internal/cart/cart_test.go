package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ntu-food/internal/cart"
)

func chickenRice(qty int) cart.Item {
	return cart.Item{
		MenuItemID: 1,
		Name:       "Chicken Rice",
		UnitPrice:  4.50,
		Quantity:   qty,
		StallID:    10,
		StallName:  "Canteen A",
	}
}

func laksa(qty int) cart.Item {
	return cart.Item{
		MenuItemID: 2,
		Name:       "Laksa",
		UnitPrice:  5.00,
		Quantity:   qty,
		StallID:    20,
		StallName:  "Canteen B",
	}
}

func TestStore_AddItem(t *testing.T) {
	t.Run("derived_totals", func(t *testing.T) {
		s := cart.NewStore(cart.NewMemoryStorage(), nil)

		s.AddItem(chickenRice(2))
		item := laksa(1)
		item.StallID = 10
		item.StallName = "Canteen A"
		s.AddItem(item)

		assert.Equal(t, 3, s.Count())
		assert.InDelta(t, 2*4.50+5.00, s.Total(), 1e-9)
		assert.True(t, s.IsOpen())
	})

	t.Run("merge_adds_quantities_without_cap", func(t *testing.T) {
		s := cart.NewStore(cart.NewMemoryStorage(), nil)

		s.AddItem(chickenRice(8))
		s.AddItem(chickenRice(8))

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 16, items[0].Quantity)
	})

	t.Run("merge_overwrites_special_requests_when_set", func(t *testing.T) {
		s := cart.NewStore(cart.NewMemoryStorage(), nil)

		first := chickenRice(1)
		first.SpecialRequests = "no chilli"
		s.AddItem(first)

		second := chickenRice(1)
		s.AddItem(second)
		assert.Equal(t, "no chilli", s.Items()[0].SpecialRequests)

		third := chickenRice(1)
		third.SpecialRequests = "extra rice"
		s.AddItem(third)
		assert.Equal(t, "extra rice", s.Items()[0].SpecialRequests)
	})
}

func TestStore_StallSwitch(t *testing.T) {
	tests := []struct {
		name          string
		confirm       cart.ConfirmFunc
		wantStallName string
		wantItems     int
	}{
		{
			name:          "declined_switch_keeps_cart",
			confirm:       func(currentStall, newStall string) bool { return false },
			wantStallName: "Canteen A",
			wantItems:     1,
		},
		{
			name:          "approved_switch_replaces_cart",
			confirm:       func(currentStall, newStall string) bool { return true },
			wantStallName: "Canteen B",
			wantItems:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cart.NewStore(cart.NewMemoryStorage(), tt.confirm)
			s.AddItem(chickenRice(2))
			s.AddItem(laksa(1))

			_, stallName, ok := s.Stall()
			require.True(t, ok)
			assert.Equal(t, tt.wantStallName, stallName)
			assert.Len(t, s.Items(), tt.wantItems)
		})
	}
}

func TestStore_UpdateQuantity(t *testing.T) {
	t.Run("caps_at_ten", func(t *testing.T) {
		s := cart.NewStore(cart.NewMemoryStorage(), nil)
		s.AddItem(chickenRice(1))

		s.UpdateQuantity(1, 99)

		assert.Equal(t, 10, s.Items()[0].Quantity)
	})

	t.Run("zero_removes_line_and_clears_stall", func(t *testing.T) {
		s := cart.NewStore(cart.NewMemoryStorage(), nil)
		s.AddItem(chickenRice(1))

		s.UpdateQuantity(1, 0)

		assert.Empty(t, s.Items())
		_, _, ok := s.Stall()
		assert.False(t, ok)
	})
}

func TestStore_Persistence(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		storage := cart.NewMemoryStorage()

		s := cart.NewStore(storage, nil)
		s.AddItem(chickenRice(3))

		reloaded := cart.NewStore(storage, nil)
		items := reloaded.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)

		_, stallName, ok := reloaded.Stall()
		require.True(t, ok)
		assert.Equal(t, "Canteen A", stallName)
	})

	t.Run("clear_removes_persisted_keys", func(t *testing.T) {
		storage := cart.NewMemoryStorage()

		s := cart.NewStore(storage, nil)
		s.AddItem(chickenRice(3))
		s.Clear()

		_, ok, err := storage.Get("ntu_food_cart")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = storage.Get("ntu_food_cart_stall")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupted_data_resets_store", func(t *testing.T) {
		storage := cart.NewMemoryStorage()
		require.NoError(t, storage.Set("ntu_food_cart", []byte("{not json")))

		s := cart.NewStore(storage, nil)

		assert.Empty(t, s.Items())
		_, ok, err := storage.Get("ntu_food_cart")
		require.NoError(t, err)
		assert.False(t, ok, "corrupted key should be removed")
	})
}

func TestStore_OpenClose(t *testing.T) {
	s := cart.NewStore(cart.NewMemoryStorage(), nil)
	assert.False(t, s.IsOpen())

	s.Open()
	assert.True(t, s.IsOpen())

	s.Close()
	assert.False(t, s.IsOpen())
}

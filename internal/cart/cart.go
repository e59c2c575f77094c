// Package cart holds the order draft for a single stall, persisted across
// restarts through a key/value Storage.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	itemsKey = "ntu_food_cart"
	stallKey = "ntu_food_cart_stall"

	maxQuantity = 10
)

// Item is one product line in the draft.
type Item struct {
	MenuItemID      int64   `json:"menu_item_id"`
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	StallID         int64   `json:"stall_id"`
	StallName       string  `json:"stall_name"`
}

type stallMeta struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ConfirmFunc asks the user to approve replacing a cart bound to
// currentStall with items from newStall.
type ConfirmFunc func(currentStall, newStall string) bool

// Store owns the cart state. All mutation goes through named operations;
// count and total are always derived from the item list, never stored.
type Store struct {
	mu      sync.Mutex
	items   []Item
	stall   *stallMeta
	isOpen  bool
	storage Storage
	confirm ConfirmFunc
}

// NewStore loads any persisted cart from storage. Corrupted or unparsable
// stored data is discarded and the store starts empty.
func NewStore(storage Storage, confirm ConfirmFunc) *Store {
	s := &Store{storage: storage, confirm: confirm}
	s.load()
	return s
}

func (s *Store) load() {
	rawItems, ok, err := s.storage.Get(itemsKey)
	if err != nil || !ok {
		return
	}

	var items []Item
	if err := json.Unmarshal(rawItems, &items); err != nil {
		log.Warn().Err(err).Msg("Discarding corrupted cart data")
		s.reset()
		return
	}

	var stall *stallMeta
	if rawStall, ok, err := s.storage.Get(stallKey); err == nil && ok {
		var meta stallMeta
		if err := json.Unmarshal(rawStall, &meta); err != nil {
			log.Warn().Err(err).Msg("Discarding corrupted cart stall data")
			s.reset()
			return
		}
		stall = &meta
	}

	s.items = items
	s.stall = stall
}

func (s *Store) reset() {
	s.items = nil
	s.stall = nil
	_ = s.storage.Remove(itemsKey)
	_ = s.storage.Remove(stallKey)
}

// AddItem puts an item into the cart. When the cart already holds items
// from another stall the switch must be confirmed; on approval the cart is
// replaced with just the new item. An existing line for the same menu item
// has the quantity added to it. Adding opens the cart view.
func (s *Store) AddItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stall != nil && s.stall.ID != item.StallID {
		if s.confirm == nil || !s.confirm(s.stall.Name, item.StallName) {
			return
		}
		s.items = []Item{item}
		s.stall = &stallMeta{ID: item.StallID, Name: item.StallName}
		s.isOpen = true
		s.persist()
		return
	}

	if s.stall == nil {
		s.stall = &stallMeta{ID: item.StallID, Name: item.StallName}
	}

	merged := false
	for i := range s.items {
		if s.items[i].MenuItemID == item.MenuItemID {
			// Merge adds raw quantities; the 10-per-item cap applies only
			// to direct quantity edits.
			s.items[i].Quantity += item.Quantity
			if item.SpecialRequests != "" {
				s.items[i].SpecialRequests = item.SpecialRequests
			}
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}

	s.isOpen = true
	s.persist()
}

// UpdateQuantity sets the quantity for a line, capped at 10. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(menuItemID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(menuItemID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	for i := range s.items {
		if s.items[i].MenuItemID == menuItemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persist()
}

// UpdateSpecialRequests replaces the free-text note for a line.
func (s *Store) UpdateSpecialRequests(menuItemID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].MenuItemID == menuItemID {
			s.items[i].SpecialRequests = text
			break
		}
	}
	s.persist()
}

// RemoveItem deletes a line. The stall context is cleared when the cart
// becomes empty.
func (s *Store) RemoveItem(menuItemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.MenuItemID != menuItemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persist()
}

// Clear empties the cart, the stall context and the persisted state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) Open()  { s.mu.Lock(); s.isOpen = true; s.mu.Unlock() }
func (s *Store) Close() { s.mu.Lock(); s.isOpen = false; s.mu.Unlock() }

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the sum of line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Total is the sum of unit price times quantity over all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// Stall reports the stall the cart is bound to, if any.
func (s *Store) Stall() (id int64, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stall == nil {
		return 0, "", false
	}
	return s.stall.ID, s.stall.Name, true
}

// persist writes both keys while the cart has items and removes both once
// it is empty. Callers hold the lock.
func (s *Store) persist() {
	if len(s.items) == 0 {
		s.stall = nil
		_ = s.storage.Remove(itemsKey)
		_ = s.storage.Remove(stallKey)
		return
	}

	rawItems, err := json.Marshal(s.items)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal cart items")
		return
	}
	if err := s.storage.Set(itemsKey, rawItems); err != nil {
		log.Error().Err(err).Msg("Failed to persist cart items")
	}

	if s.stall != nil {
		rawStall, err := json.Marshal(s.stall)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal cart stall")
			return
		}
		if err := s.storage.Set(stallKey, rawStall); err != nil {
			log.Error().Err(err).Msg("Failed to persist cart stall")
		}
	}
}

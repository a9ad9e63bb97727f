// Package watch owns the user's watchlist state and the periodic market
// refresh cycle. State mutations persist synchronously; the refresher
// publishes market snapshots to any number of listeners.
package watch

import (
	"fmt"
	"log"
	"sync"

	"github.com/mkotas/coindeck/internal/store"
	"github.com/mkotas/coindeck/pkg/models"
)

// MaxSelection is the watchlist capacity, aliased from models for
// callers already working with this package.
const MaxSelection = models.MaxSelection

// ErrSelectionFull is returned by Toggle when the watchlist already holds
// MaxSelection coins. It is a user-policy error, not a fault.
var ErrSelectionFull = fmt.Errorf("watchlist is full: at most %d coins can be selected", MaxSelection)

// Persister is the slice of the settings store the state needs.
type Persister interface {
	Put(key string, value any) error
	Load(key string, dest any) (bool, error)
}

// State is the single owner of the watchlist and preferences. All access
// goes through its methods; every mutation is persisted before returning.
type State struct {
	mu       sync.Mutex
	store    Persister
	selected []string
	prefs    models.Preferences
}

// NewState creates a State backed by the given store. Call Load before use.
func NewState(p Persister) *State {
	return &State{
		store: p,
		prefs: models.DefaultPreferences(),
	}
}

// Load reads the watchlist and preferences from the store. Absent or
// unreadable content falls back to an empty selection and default
// preferences; Load never fails on bad stored data.
func (s *State) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var selected []string
	if _, err := s.store.Load(store.KeySelectedCoins, &selected); err != nil {
		log.Printf("watch: stored selection unreadable, starting empty: %v", err)
		selected = nil
	}
	if len(selected) > MaxSelection {
		selected = selected[:MaxSelection]
	}
	s.selected = dedupe(selected)

	prefs := models.DefaultPreferences()
	if _, err := s.store.Load(store.KeyUserPrefs, &prefs); err != nil {
		log.Printf("watch: stored preferences unreadable, using defaults: %v", err)
		prefs = models.DefaultPreferences()
	}
	if _, err := models.ParseSortOrder(string(prefs.SortOrder)); err != nil {
		prefs.SortOrder = models.DefaultSortOrder
	}
	s.prefs = prefs
}

// Selected returns a copy of the current selection, in insertion order.
func (s *State) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// Prefs returns the current preferences.
func (s *State) Prefs() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// IsSelected reports whether id is on the watchlist.
func (s *State) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.selected, id) >= 0
}

// CompareReady reports whether the selection is full, which is the only
// state in which a comparison can be built.
func (s *State) CompareReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected) == MaxSelection
}

// Toggle adds id to the selection, or removes it when already present.
// Adding to a full selection returns ErrSelectionFull with the state
// unchanged. The returned bool is true when the coin was added.
func (s *State) Toggle(id string) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.selected, id); i >= 0 {
		s.selected = append(s.selected[:i], s.selected[i+1:]...)
		return false, s.persistLocked()
	}

	if len(s.selected) >= MaxSelection {
		return false, ErrSelectionFull
	}
	s.selected = append(s.selected, id)
	return true, s.persistLocked()
}

// Remove takes id off the selection. Removing an absent id is a no-op.
func (s *State) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.selected, id)
	if i < 0 {
		return nil
	}
	s.selected = append(s.selected[:i], s.selected[i+1:]...)
	return s.persistLocked()
}

// SetShow24h updates the 24h-change visibility preference.
func (s *State) SetShow24h(show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Show24h = show
	return s.persistLocked()
}

// SetSortOrder updates the market ordering preference. The raw token is
// validated against the known orderings.
func (s *State) SetSortOrder(token string) error {
	order, err := models.ParseSortOrder(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.SortOrder = order
	return s.persistLocked()
}

// persistLocked writes both settings keys. Must be called with mu held.
// The two writes are not atomic with each other; a crash in between can
// leave one key newer than the other, which Load tolerates.
func (s *State) persistLocked() error {
	if err := s.store.Put(store.KeySelectedCoins, s.selected); err != nil {
		return err
	}
	return s.store.Put(store.KeyUserPrefs, s.prefs)
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Package appstate holds the process-wide console state: UI language, the
// active registry (type of service) and the transient snackbar message.
//
// Store replaces the global read/dispatch context pair of a browser app with
// an explicit value passed to whoever needs it, plus subscriptions.
package appstate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ServiceType selects the registry the console works against.
type ServiceType string

const (
	ServiceISBN ServiceType = "isbn"
	ServiceISSN ServiceType = "issn"
)

// DefaultLanguage is the UI language at start-up.
const DefaultLanguage = "fi"

// SnackbarTimeout is how long a snackbar stays visible without dismissal.
const SnackbarTimeout = 6 * time.Second

// Severity of a snackbar message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// SnackbarMessage is a one-shot notification.
type SnackbarMessage struct {
	ID       uint64
	Severity Severity
	Text     string
}

// State is a snapshot of the store.
type State struct {
	Language      string
	TypeOfService ServiceType
	Snackbar      *SnackbarMessage
}

// Update is a partial state update; nil fields are left untouched.
type Update struct {
	Language      *string
	TypeOfService *ServiceType
	Snackbar      *SnackbarMessage
	ClearSnackbar bool
}

// Store is the single application state owner. Writes are last-write-wins.
type Store struct {
	mu     sync.Mutex
	state  State
	prefs  PreferenceStore
	subs   map[int]func(State)
	nextID int
	nextSn uint64
}

// NewStore creates a store with the given initial state. prefs may be nil,
// in which case service type toggles are not persisted.
func NewStore(initial State, prefs PreferenceStore) *Store {
	if initial.Language == "" {
		initial.Language = DefaultLanguage
	}
	if initial.TypeOfService == "" {
		initial.TypeOfService = ServiceISBN
	}
	return &Store{state: initial, prefs: prefs, subs: make(map[int]func(State))}
}

// Init resolves the type of service from the start-up path and preferences
// and returns a ready store.
func Init(ctx context.Context, path string, prefs PreferenceStore) (*Store, error) {
	t, err := ResolveTypeOfService(ctx, path, prefs)
	if err != nil {
		return nil, err
	}
	return NewStore(State{Language: DefaultLanguage, TypeOfService: t}, prefs), nil
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for state changes and returns its cancel func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch merges u into the state and notifies subscribers.
func (s *Store) Dispatch(u Update) State {
	snap, _ := s.mutate(func(st *State) bool {
		if u.Language != nil {
			st.Language = *u.Language
		}
		if u.TypeOfService != nil {
			st.TypeOfService = *u.TypeOfService
		}
		if u.ClearSnackbar {
			st.Snackbar = nil
		}
		if u.Snackbar != nil {
			msg := *u.Snackbar
			st.Snackbar = &msg
		}
		return true
	})
	return snap
}

// mutate applies fn under the lock; subscribers are notified when fn
// reports a change.
func (s *Store) mutate(fn func(*State) bool) (State, bool) {
	s.mu.Lock()
	changed := fn(&s.state)
	snap := s.snapshotLocked()
	var subs []func(State)
	if changed {
		subs = make([]func(State), 0, len(s.subs))
		for _, sub := range s.subs {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
	return snap, changed
}

// SetTypeOfService switches the registry and persists the choice.
func (s *Store) SetTypeOfService(ctx context.Context, t ServiceType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown type of service %q", t)
	}
	s.Dispatch(Update{TypeOfService: &t})
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.Set(ctx, TypeOfServiceKey, string(t)); err != nil {
		return fmt.Errorf("persist type of service: %w", err)
	}
	return nil
}

// ShowSnackbar publishes a message and returns its id.
func (s *Store) ShowSnackbar(severity Severity, text string) uint64 {
	s.mu.Lock()
	s.nextSn++
	id := s.nextSn
	s.mu.Unlock()

	s.Dispatch(Update{Snackbar: &SnackbarMessage{ID: id, Severity: severity, Text: text}})
	return id
}

// DismissSnackbar clears the snackbar if it is still showing message id.
// A timer started for an older message therefore never hides a newer one.
func (s *Store) DismissSnackbar(id uint64) bool {
	_, changed := s.mutate(func(st *State) bool {
		if st.Snackbar == nil || st.Snackbar.ID != id {
			return false
		}
		st.Snackbar = nil
		return true
	})
	return changed
}

func (s *Store) snapshotLocked() State {
	out := s.state
	if s.state.Snackbar != nil {
		msg := *s.state.Snackbar
		out.Snackbar = &msg
	}
	return out
}

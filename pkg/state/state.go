// Package state provides a small explicit state container: an immutable
// snapshot advanced by a pure reducer, observable through subscriptions.
// Clients and TUIs hold a Store instead of sharing mutable globals.
package state

import "sync"

// Action describes a state transition request. Actions are plain value
// types; embed ActionBase to satisfy the interface.
type Action interface {
	isAction()
}

// ActionBase satisfies Action when embedded in a concrete action type.
type ActionBase struct{}

func (ActionBase) isAction() {}

// Reducer computes the next state from the current one and an action.
// Reducers must be pure: no mutation of the inputs, no side effects.
// Unrecognized actions return the state unchanged.
type Reducer[S any] func(S, Action) S

// Store holds the current snapshot and advances it through its reducer.
// Dispatches are serialized, so subscribers observe every state version
// in dispatch order. Notification runs outside the snapshot lock.
type Store[S any] struct {
	reduce Reducer[S]

	// dispatchMu serializes reduce-and-notify so versions cannot
	// interleave between concurrent dispatchers.
	dispatchMu sync.Mutex

	mu     sync.RWMutex
	state  S
	subs   []subscriber[S]
	nextID int
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

// New returns a store seeded with initial.
func New[S any](initial S, reduce Reducer[S]) *Store[S] {
	return &Store[S]{reduce: reduce, state: initial}
}

// State returns the current snapshot. The value must be treated as
// immutable; reducers produce replacements, never in-place edits.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies the reducer to the current snapshot and publishes the
// result to every subscriber before returning.
func (s *Store[S]) Dispatch(a Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	next := s.reduce(s.State(), a)

	s.mu.Lock()
	s.state = next
	fns := make([]func(S), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers fn to be called with each new snapshot. The returned
// function removes the subscription; calling it more than once is a no-op.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[S]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Select derives a view of the store's current snapshot.
func Select[S, T any](s *Store[S], sel func(S) T) T {
	return sel(s.State())
}

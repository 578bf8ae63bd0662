// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"sync"

	"agrimart/internal/models"
)

// State is the catalog snapshot read by presentation code. Slices in a
// returned State are shared and must be treated as read-only.
type State struct {
	Categories []models.Category
	Products   []models.Product

	// IsInitialized is true once any snapshot (seed or live) has been
	// applied; IsLoading is true only while the very first hydration is
	// still pending.
	IsLoading     bool
	IsInitialized bool

	// Identity has an independent lifecycle from catalog data and is
	// written only through SetUser.
	CurrentUser *models.User
	IsAdmin     bool
}

// Patch describes a shallow state merge: nil fields leave the current
// value untouched, non-nil fields replace it wholesale.
type Patch struct {
	Categories    *[]models.Category
	Products      *[]models.Product
	IsLoading     *bool
	IsInitialized *bool
}

// Store is an injectable, observable state container. One instance is
// shared process-wide in the running server, but tests create their own
// isolated instances.
type Store struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewStore returns an empty, uninitialized catalog store.
func NewStore() *Store {
	return &Store{
		state: State{IsLoading: true},
		subs:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState applies a shallow merge of the patch onto the current state
// and notifies subscribers with the resulting snapshot.
func (s *Store) SetState(p Patch) {
	s.mu.Lock()
	if p.Categories != nil {
		s.state.Categories = *p.Categories
	}
	if p.Products != nil {
		s.state.Products = *p.Products
	}
	if p.IsLoading != nil {
		s.state.IsLoading = *p.IsLoading
	}
	if p.IsInitialized != nil {
		s.state.IsInitialized = *p.IsInitialized
	}
	snapshot := s.state
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// SetUser records the current identity and admin flag. Identity changes
// notify subscribers like any other state change but never touch the
// catalog data fields.
func (s *Store) SetUser(u *models.User) {
	s.mu.Lock()
	s.state.CurrentUser = u
	s.state.IsAdmin = u != nil && u.IsAdmin()
	snapshot := s.state
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers a callback invoked with the new snapshot after
// every state change. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FilteredProducts is the derived query over the current snapshot. It is
// computed on demand, never cached.
func (s *Store) FilteredProducts(keyword, categoryID string) []models.Product {
	return FilterProducts(s.State().Products, keyword, categoryID)
}

// Tree derives the two-level category tree from the current snapshot.
func (s *Store) Tree() []models.Category {
	return BuildTree(s.State().Categories)
}

// snapshotSubs copies the subscriber list; callers invoke the callbacks
// after releasing the lock so a subscriber may re-read the store.
func (s *Store) snapshotSubs() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

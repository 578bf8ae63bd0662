// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"
	"sync"

	"agrimart/internal/models"
)

// Source is the storage collaborator the background refresh reads from.
type Source interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Session scopes the once-per-session refresh flag. It is created at
// application start and Reset at logout or reload; resetting also bumps
// the epoch so an in-flight refresh from the previous session discards
// its result instead of overwriting the new one.
type Session struct {
	mu        sync.Mutex
	refreshed bool
	epoch     uint64
}

// NewSession returns a fresh session with no refresh performed.
func NewSession() *Session {
	return &Session{}
}

// Refreshed reports whether the session's single background refresh has
// already been claimed.
func (s *Session) Refreshed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshed
}

// Reset clears the refresh flag and invalidates in-flight refreshes.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed = false
	s.epoch++
}

// claimRefresh atomically claims the session's one refresh. It returns
// the epoch the caller must present when applying results, and false if
// the refresh was already claimed this session.
func (s *Session) claimRefresh() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshed {
		return 0, false
	}
	s.refreshed = true
	return s.epoch, true
}

// current reports whether the given epoch is still the live one.
func (s *Session) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// Initializer reconciles a server-computed initial snapshot with the
// store exactly once per instance, then performs at most one background
// refresh per session. It tolerates being run repeatedly (page
// navigations, re-invoked effects) without double-fetching.
type Initializer struct {
	store   *Store
	session *Session
	source  Source

	mu  sync.Mutex
	ran bool // per-instance guard, independent of the session flag

	wg sync.WaitGroup
}

// NewInitializer wires an initializer to its store, session, and source.
func NewInitializer(store *Store, session *Session, source Source) *Initializer {
	return &Initializer{store: store, session: session, source: source}
}

// Run hydrates the store from the initial snapshot and kicks off the
// background refresh. The merge is per-field: for categories and for
// products independently, whichever of (store, incoming) holds more
// entries wins, so a page rendered from a smaller build-time snapshot
// cannot clobber richer data already present. The merge completes
// synchronously before the refresh starts, so the refresh always
// overwrites a fully hydrated baseline.
func (ini *Initializer) Run(ctx context.Context, initialCategories []models.Category, initialProducts []models.Product) {
	ini.mu.Lock()
	alreadyRan := ini.ran
	ini.ran = true
	ini.mu.Unlock()

	if !alreadyRan {
		cur := ini.store.State()

		cats := cur.Categories
		if len(initialCategories) > len(cats) {
			cats = initialCategories
		}
		prods := cur.Products
		if len(initialProducts) > len(prods) {
			prods = initialProducts
		}

		initialized := true
		loading := false
		ini.store.SetState(Patch{
			Categories:    &cats,
			Products:      &prods,
			IsInitialized: &initialized,
			IsLoading:     &loading,
		})
	}

	// At most one background refresh per session, regardless of how many
	// times or on how many instances Run is invoked.
	epoch, ok := ini.session.claimRefresh()
	if !ok {
		return
	}

	ini.wg.Add(1)
	go func() {
		defer ini.wg.Done()
		ini.refresh(ctx, epoch)
	}()
}

// Wait blocks until an in-flight background refresh (if any) finishes.
// Used by tests and graceful shutdown.
func (ini *Initializer) Wait() {
	ini.wg.Wait()
}

// refresh fetches live categories and products and replaces (not merges)
// the store snapshot. Any error is logged and swallowed: the last good
// snapshot stays, and no retry is attempted. Results are discarded when
// the session epoch moved on while the fetch was in flight.
func (ini *Initializer) refresh(ctx context.Context, epoch uint64) {
	cats, err := ini.source.ListCategories(ctx)
	if err != nil {
		slog.Warn("catalog refresh: list categories failed", "error", err)
		return
	}
	prods, err := ini.source.ListProducts(ctx)
	if err != nil {
		slog.Warn("catalog refresh: list products failed", "error", err)
		return
	}

	if !ini.session.current(epoch) {
		slog.Debug("catalog refresh: stale result discarded")
		return
	}

	ini.store.SetState(Patch{Categories: &cats, Products: &prods})
	slog.Info("catalog refreshed", "categories", len(cats), "products", len(prods))
}

package services

import (
	"context"

	"gamelens/internal/cache"
	"gamelens/internal/models"
	"gamelens/internal/sources"
	"gamelens/internal/storage"
)

func (s *LibraryService) Watchlist() []models.WatchlistEntry {
	return storage.GetOr(s.store, storage.KeyWatchlist, []models.WatchlistEntry{})
}

// AddWatchlistEntry is idempotent by game id. It reports whether the entry
// was new.
func (s *LibraryService) AddWatchlistEntry(entry models.WatchlistEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Watchlist()
	for _, e := range list {
		if e.GameID == entry.GameID {
			return false, nil
		}
	}
	return true, s.store.Set(storage.KeyWatchlist, append(list, entry))
}

func (s *LibraryService) RemoveWatchlistEntry(gameID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Watchlist()
	kept := list[:0]
	for _, e := range list {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	return true, s.store.Set(storage.KeyWatchlist, kept)
}

// ImportWishlist appends wishlist items not yet on the watchlist. Provider
// failures are reported in the result, not as an error.
func (s *LibraryService) ImportWishlist(ctx context.Context) (ImportResult, error) {
	account := s.account()
	if account.SteamID == "" {
		return ImportResult{}, ErrMissingCredentials
	}
	if s.sources.Wishlist == nil {
		return ImportResult{}, ErrProviderUnavailable
	}

	items, _, err := cache.Fetch(ctx, s.cache, "wishlist:"+account.SteamID, func(ctx context.Context) ([]models.WatchlistEntry, error) {
		return s.sources.Wishlist.Wishlist(ctx, account.SteamID)
	}, s.conf.Providers.OwnershipTTL, models.SourceOwnership)
	result := ImportResult{Errors: []*models.ProviderError{}}
	if err != nil {
		result.Errors = append(result.Errors, sources.AsProviderError(models.SourceOwnership, err))
		return result, nil
	}
	result.Total = len(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.Watchlist()
	known := make(map[string]struct{}, len(list))
	for _, e := range list {
		known[e.GameID] = struct{}{}
	}
	for _, item := range items {
		if _, ok := known[item.GameID]; ok {
			continue
		}
		known[item.GameID] = struct{}{}
		list = append(list, item)
		result.Imported++
	}
	if result.Imported == 0 {
		return result, nil
	}
	return result, s.store.Set(storage.KeyWatchlist, list)
}

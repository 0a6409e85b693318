package sources

import (
	"context"

	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/structures"
)

// Set bundles the providers a library refresh needs. Nil members are
// treated as unavailable.
type Set struct {
	Ownership OwnershipProvider
	Pricing   PricingProvider
	Estimate  EstimateProvider
	Wishlist  WishlistProvider
}

// NewGuardedSet wraps every provider of raw in its own Guard.
func NewGuardedSet(raw Set, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) Set {
	var out Set
	if raw.Ownership != nil {
		out.Ownership = &guardedOwnership{inner: raw.Ownership, guard: NewGuard(models.SourceOwnership, conf.Providers, logger, metrics)}
	}
	if raw.Pricing != nil {
		out.Pricing = &guardedPricing{inner: raw.Pricing, guard: NewGuard(models.SourcePricing, conf.Providers, logger, metrics)}
	}
	if raw.Estimate != nil {
		out.Estimate = &guardedEstimate{inner: raw.Estimate, guard: NewGuard(models.SourceEstimate, conf.Providers, logger, metrics)}
	}
	if raw.Wishlist != nil {
		// the wishlist lives at the ownership provider but is limited separately
		out.Wishlist = &guardedWishlist{inner: raw.Wishlist, guard: NewGuard(models.SourceOwnership+"-wishlist", conf.Providers, logger, metrics)}
	}
	return out
}

type guardedOwnership struct {
	inner OwnershipProvider
	guard *Guard
}

func (p *guardedOwnership) OwnedGames(ctx context.Context, account Account) ([]models.GameRecord, error) {
	return call(ctx, p.guard, func(ctx context.Context) ([]models.GameRecord, error) {
		return p.inner.OwnedGames(ctx, account)
	})
}

func (p *guardedOwnership) AppDetails(ctx context.Context, gameID string) (*models.GameRecord, error) {
	return call(ctx, p.guard, func(ctx context.Context) (*models.GameRecord, error) {
		return p.inner.AppDetails(ctx, gameID)
	})
}

type guardedPricing struct {
	inner PricingProvider
	guard *Guard
}

func (p *guardedPricing) CurrentPrice(ctx context.Context, gameID string) (*models.GameRecord, error) {
	return call(ctx, p.guard, func(ctx context.Context) (*models.GameRecord, error) {
		return p.inner.CurrentPrice(ctx, gameID)
	})
}

func (p *guardedPricing) PriceHistory(ctx context.Context, gameID string) ([]models.SaleEvent, error) {
	return call(ctx, p.guard, func(ctx context.Context) ([]models.SaleEvent, error) {
		return p.inner.PriceHistory(ctx, gameID)
	})
}

type guardedEstimate struct {
	inner EstimateProvider
	guard *Guard
}

func (p *guardedEstimate) MainStoryMinutes(ctx context.Context, title string) (*int, error) {
	return call(ctx, p.guard, func(ctx context.Context) (*int, error) {
		return p.inner.MainStoryMinutes(ctx, title)
	})
}

type guardedWishlist struct {
	inner WishlistProvider
	guard *Guard
}

func (p *guardedWishlist) Wishlist(ctx context.Context, steamID string) ([]models.WatchlistEntry, error) {
	return call(ctx, p.guard, func(ctx context.Context) ([]models.WatchlistEntry, error) {
		return p.inner.Wishlist(ctx, steamID)
	})
}

// NewSourceSet loads the configured catalog and guards each of its
// providers.
func NewSourceSet(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Set, error) {
	catalog, err := LoadCatalog(conf.Providers.CatalogPath)
	if err != nil {
		return Set{}, err
	}
	return NewGuardedSet(NewCatalogSet(catalog), conf, logger, metrics), nil
}

// Package sources defines the collaborator contracts for the ownership,
// pricing, completion-estimate and wishlist data providers, and the guard
// every provider call goes through.
package sources

import (
	"context"
	"errors"
	"fmt"

	"gamelens/internal/models"
)

// Account identifies the user at the ownership provider.
type Account struct {
	SteamID string
	APIKey  string
}

func (a Account) Complete() bool {
	return a.SteamID != "" && a.APIKey != ""
}

type OwnershipProvider interface {
	OwnedGames(ctx context.Context, account Account) ([]models.GameRecord, error)
	AppDetails(ctx context.Context, gameID string) (*models.GameRecord, error)
}

// PricingProvider returns nil records and empty histories for unknown games.
type PricingProvider interface {
	CurrentPrice(ctx context.Context, gameID string) (*models.GameRecord, error)
	PriceHistory(ctx context.Context, gameID string) ([]models.SaleEvent, error)
}

// EstimateProvider returns nil when no estimate exists for the title.
type EstimateProvider interface {
	MainStoryMinutes(ctx context.Context, title string) (*int, error)
}

type WishlistProvider interface {
	Wishlist(ctx context.Context, steamID string) ([]models.WatchlistEntry, error)
}

// ClassifyHTTPStatus maps an HTTP status onto the provider error taxonomy.
func ClassifyHTTPStatus(status int) models.ErrorKind {
	switch {
	case status == 401 || status == 403:
		return models.KindAuth
	case status == 429:
		return models.KindRateLimit
	case status >= 500:
		return models.KindServer
	default:
		return models.KindUnknown
	}
}

// HTTPError builds a provider error from a non-2xx response.
func HTTPError(source string, status int, message string) *models.ProviderError {
	perr := models.NewProviderError(source, ClassifyHTTPStatus(status), message)
	perr.HTTPStatus = models.Int(status)
	return perr
}

// AsProviderError converts err into a *models.ProviderError attributed to
// source. Errors that already are provider errors pass through unchanged.
func AsProviderError(source string, err error) *models.ProviderError {
	if err == nil {
		return nil
	}
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewProviderError(source, models.KindNetwork, "request timed out")
	case errors.Is(err, context.Canceled):
		return models.NewProviderError(source, models.KindNetwork, "request cancelled")
	}
	// Anything else failed before a response came back.
	return models.NewProviderError(source, models.KindNetwork, fmt.Sprint(err))
}

package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"gamelens/internal/models"
)

// PricePoint is a price-history row as the pricing feed delivers it, with a
// unix-second timestamp.
type PricePoint struct {
	Timestamp int64    `json:"timestamp"`
	Price     *float64 `json:"price"`
	Cut       float64  `json:"cut"`
}

func (p PricePoint) SaleEvent() models.SaleEvent {
	return models.SaleEvent{
		At:              time.Unix(p.Timestamp, 0).UTC(),
		Price:           p.Price,
		DiscountPercent: p.Cut,
	}
}

type catalogFile struct {
	SteamID   string                       `json:"steam_id"`
	Owned     []models.GameRecord          `json:"owned"`
	Details   map[string]models.GameRecord `json:"details"`
	Prices    map[string]models.GameRecord `json:"prices"`
	History   map[string][]PricePoint      `json:"history"`
	Estimates map[string]int               `json:"estimates"`
	Wishlist  []models.WatchlistEntry      `json:"wishlist"`
}

// Catalog serves every provider contract from a local JSON export. It stands
// in for the remote services in offline setups and tests.
type Catalog struct {
	data catalogFile
}

// LoadCatalog reads a catalog file. An empty path yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{}
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return c, nil
}

// NewCatalogSet exposes c through all four provider contracts.
func NewCatalogSet(c *Catalog) Set {
	return Set{Ownership: c, Pricing: c, Estimate: c, Wishlist: c}
}

func (c *Catalog) OwnedGames(ctx context.Context, account Account) ([]models.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.data.SteamID != "" && c.data.SteamID != account.SteamID {
		return nil, HTTPError(models.SourceOwnership, 403, "profile is private or does not exist")
	}
	out := make([]models.GameRecord, 0, len(c.data.Owned))
	for _, r := range c.data.Owned {
		out = append(out, flagged(r, models.SourceOwnership))
	}
	return out, nil
}

func (c *Catalog) AppDetails(ctx context.Context, gameID string) (*models.GameRecord, error) {
	return c.lookup(ctx, c.data.Details, gameID, models.SourceOwnership)
}

func (c *Catalog) CurrentPrice(ctx context.Context, gameID string) (*models.GameRecord, error) {
	return c.lookup(ctx, c.data.Prices, gameID, models.SourcePricing)
}

func (c *Catalog) PriceHistory(ctx context.Context, gameID string) ([]models.SaleEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points := c.data.History[gameID]
	out := make([]models.SaleEvent, 0, len(points))
	for _, p := range points {
		out = append(out, p.SaleEvent())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (c *Catalog) MainStoryMinutes(ctx context.Context, title string) (*int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	minutes, ok := c.data.Estimates[title]
	if !ok || minutes <= 0 {
		return nil, nil
	}
	return models.Int(minutes), nil
}

func (c *Catalog) Wishlist(ctx context.Context, steamID string) ([]models.WatchlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.data.SteamID != "" && c.data.SteamID != steamID {
		return nil, HTTPError(models.SourceOwnership, 403, "wishlist is private")
	}
	return append([]models.WatchlistEntry(nil), c.data.Wishlist...), nil
}

func (c *Catalog) lookup(ctx context.Context, table map[string]models.GameRecord, gameID, source string) (*models.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := table[gameID]
	if !ok {
		return nil, nil
	}
	if r.ID == "" {
		r.ID = gameID
	}
	r = flagged(r, source)
	return &r, nil
}

func flagged(r models.GameRecord, source string) models.GameRecord {
	if !r.HasSource(source) {
		r.SourceFlags = append(append([]string(nil), r.SourceFlags...), source)
	}
	return r
}

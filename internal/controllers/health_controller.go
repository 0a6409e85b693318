package controllers

import (
	"net/http"
	"time"

	"gamelens/internal/cache"
	"gamelens/internal/providers"
	"gamelens/internal/services"
)

type HealthController struct {
	service   services.LibraryServiceInterface
	cache     cache.ManagerInterface
	logger    providers.Logger
	startedAt time.Time
	now       func() time.Time
}

type healthResponse struct {
	Status        string      `json:"status"`
	Uptime        string      `json:"uptime"`
	UptimeSeconds float64     `json:"uptime_seconds"`
	LibrarySize   int         `json:"library_size"`
	WatchlistSize int         `json:"watchlist_size"`
	Cache         cache.Stats `json:"cache"`
}

func NewHealthController(service services.LibraryServiceInterface, cacheManager cache.ManagerInterface, logger providers.Logger) *HealthController {
	return &HealthController{
		service:   service,
		cache:     cacheManager,
		logger:    logger,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := hc.now().Sub(hc.startedAt)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		LibrarySize:   len(hc.service.Library()),
		WatchlistSize: len(hc.service.Watchlist()),
		Cache:         hc.cache.Stats(),
	}

	respond(w, hc.logger, http.StatusOK, resp)
}

package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"gamelens/internal/activity"
	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const maskedSecret = "********"

// Response cache keys. Everything under them depends on the library,
// watchlist or settings and is dropped when those change.
const (
	cacheKeyLibrary    = "library"
	cacheKeyBacklog    = "backlog"
	cacheKeyStatistics = "statistics"
	cacheKeyTagProfile = "tag-profile"
	cacheKeyWatchlist  = "watchlist"
)

type ApiController struct {
	logger  providers.Logger
	service services.LibraryServiceInterface
	cache   providers.CacheProviderInterface
}

type errorResponse struct {
	Error string `json:"error"`
}

type similarRequest struct {
	Candidates []models.GameRecord `json:"candidates"`
}

type recommendationsRequest struct {
	Candidates []models.GameRecord `json:"candidates"`
}

type saleRequest struct {
	Record  models.GameRecord  `json:"record"`
	History []models.SaleEvent `json:"history"`
}

type settingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

func NewApiController(logger providers.Logger, service services.LibraryServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeRaw(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Marshal %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeRaw(w, http.StatusOK, gson)
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	respond(w, ac.logger, status, v)
}

func respond(w http.ResponseWriter, logger providers.Logger, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		logger.Errorf(providers.TypeApp, "Marshal response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, gson)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps service errors onto HTTP statuses.
func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrMissingCredentials):
		status = http.StatusBadRequest
	case errors.Is(err, activity.ErrInvalidMapping):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrProviderUnavailable), errors.Is(err, services.ErrActivityDisabled):
		status = http.StatusServiceUnavailable
	default:
		var perr *models.ProviderError
		if errors.As(err, &perr) {
			status = http.StatusBadGateway
		}
	}
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
	}
	ac.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (ac *ApiController) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ac.logger.Debugf(providers.TypePost, "Bad request body on %s: %s", r.URL.Path, err)
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

// invalidate drops every rendered response derived from stored state.
func (ac *ApiController) invalidate() {
	ac.cache.Clear()
}

func (ac *ApiController) GetLibrary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyLibrary, func() (any, error) {
		return ac.service.Library(), nil
	})
}

func (ac *ApiController) RefreshLibrary(w http.ResponseWriter, r *http.Request) {
	result, err := ac.service.RefreshLibrary(r.Context())
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.invalidate()
	ac.writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) GetBacklog(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyBacklog, func() (any, error) {
		return ac.service.Backlog(), nil
	})
}

func (ac *ApiController) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyStatistics, func() (any, error) {
		return ac.service.Statistics(), nil
	})
}

func (ac *ApiController) GetTagProfile(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyTagProfile, func() (any, error) {
		return ac.service.TagProfile(), nil
	})
}

func (ac *ApiController) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if !ac.decode(w, r, &req) {
		return
	}
	ac.writeJSON(w, http.StatusOK, ac.service.Recommendations(req.Candidates))
}

func (ac *ApiController) Similar(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source is required"})
		return
	}
	var req similarRequest
	if !ac.decode(w, r, &req) {
		return
	}
	ranked, err := ac.service.Similar(source, req.Candidates)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, ranked)
}

func (ac *ApiController) SalePrediction(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !ac.decode(w, r, &req) {
		return
	}
	outlook, err := ac.service.SaleOutlook(r.Context(), req.Record, req.History)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, outlook)
}

func (ac *ApiController) GetActivity(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.ActivitySummary())
}

func (ac *ApiController) GetMappings(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.ProcessMappings())
}

func (ac *ApiController) RegisterMapping(w http.ResponseWriter, r *http.Request) {
	var mapping models.ProcessMapping
	if !ac.decode(w, r, &mapping) {
		return
	}
	if err := ac.service.RegisterProcessMapping(mapping); err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusCreated, mapping)
}

func (ac *ApiController) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyWatchlist, func() (any, error) {
		return ac.service.Watchlist(), nil
	})
}

func (ac *ApiController) AddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	var entry models.WatchlistEntry
	if !ac.decode(w, r, &entry) {
		return
	}
	if entry.GameID == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "game_id is required"})
		return
	}
	added, err := ac.service.AddWatchlistEntry(entry)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		ac.invalidate()
	}
	ac.writeJSON(w, status, changedResponse{Changed: added})
}

func (ac *ApiController) RemoveWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "game_id is required"})
		return
	}
	removed, err := ac.service.RemoveWatchlistEntry(gameID)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	if removed {
		ac.invalidate()
	}
	ac.writeJSON(w, http.StatusOK, changedResponse{Changed: removed})
}

func (ac *ApiController) ImportWishlist(w http.ResponseWriter, r *http.Request) {
	result, err := ac.service.ImportWishlist(r.Context())
	if err != nil {
		ac.writeError(w, err)
		return
	}
	if result.Imported > 0 {
		ac.invalidate()
	}
	ac.writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}
	ac.writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: masked(key, ac.service.Setting(key, nil))})
}

func (ac *ApiController) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.Key == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}
	if err := ac.service.SetSetting(req.Key, req.Value); err != nil {
		ac.writeError(w, err)
		return
	}
	ac.invalidate()
	ac.writeJSON(w, http.StatusOK, settingResponse{Key: req.Key, Value: masked(req.Key, req.Value)})
}

// masked hides secret settings in responses.
func masked(key string, value any) any {
	if key == services.SettingSteamKey && value != nil && value != "" {
		return maskedSecret
	}
	return value
}

func (ac *ApiController) ClearCache(w http.ResponseWriter, r *http.Request) {
	ac.service.ClearCache()
	ac.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.Export(r.URL.Query().Get("format")))
}

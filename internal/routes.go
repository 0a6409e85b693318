package internal

import (
	"net/http"

	"gamelens/internal/controllers"
	"gamelens/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/library", http.HandlerFunc(apiController.GetLibrary))
	routers.Post("/library/refresh", http.HandlerFunc(apiController.RefreshLibrary))
	routers.Get("/backlog", http.HandlerFunc(apiController.GetBacklog))
	routers.Get("/statistics", http.HandlerFunc(apiController.GetStatistics))
	routers.Get("/tag-profile", http.HandlerFunc(apiController.GetTagProfile))
	routers.Post("/recommendations", http.HandlerFunc(apiController.Recommendations))
	routers.Post("/similar", http.HandlerFunc(apiController.Similar))
	routers.Post("/sale-prediction", http.HandlerFunc(apiController.SalePrediction))
	routers.Get("/activity", http.HandlerFunc(apiController.GetActivity))
	routers.Get("/activity/mappings", http.HandlerFunc(apiController.GetMappings))
	routers.Post("/activity/mappings", http.HandlerFunc(apiController.RegisterMapping))
	routers.Get("/watchlist", http.HandlerFunc(apiController.GetWatchlist))
	routers.Post("/watchlist", http.HandlerFunc(apiController.AddWatchlistEntry))
	routers.Delete("/watchlist", http.HandlerFunc(apiController.RemoveWatchlistEntry))
	routers.Post("/watchlist/import", http.HandlerFunc(apiController.ImportWishlist))
	routers.Get("/settings", http.HandlerFunc(apiController.GetSetting))
	routers.Post("/settings", http.HandlerFunc(apiController.SetSetting))
	routers.Post("/cache/clear", http.HandlerFunc(apiController.ClearCache))
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	return routers
}

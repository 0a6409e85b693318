//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"gamelens/internal"
	"gamelens/internal/activity"
	"gamelens/internal/cache"
	"gamelens/internal/controllers"
	"gamelens/internal/providers"
	"gamelens/internal/services"
	"gamelens/internal/sources"
	"gamelens/internal/statistic"
	"gamelens/internal/storage"
	"gamelens/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewStore,
		cache.NewManagerFromConfig,
		sources.NewSourceSet,
		activity.NewMonitorFromConfig,
		services.NewLibraryService,
		wire.Bind(new(services.LibraryServiceInterface), new(*services.LibraryService)),
		statistic.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}

package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"gamelens/internal/structures"
)

const AppName = "GameLens"

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", structures.StoreDriverFile)
	v.SetDefault("cache.backend", structures.CacheBackendMemory)
	v.SetDefault("cache.defaultTTL", 6*time.Hour)
	v.SetDefault("cache.responseTTL", 30*time.Second)
	v.SetDefault("backlog.investmentWeight", 5)
	v.SetDefault("backlog.priceWeight", 3)
	v.SetDefault("backlog.priceCap", 60)
	v.SetDefault("activity.scanInterval", 15*time.Second)
	v.SetDefault("providers.requestTimeout", 10*time.Second)
	v.SetDefault("providers.rateLimit", 4)
	v.SetDefault("providers.burst", 4)
	v.SetDefault("providers.maxFailures", 5)
	v.SetDefault("providers.breakerTimeout", time.Minute)
	v.SetDefault("providers.concurrency", 4)
	v.SetDefault("providers.ownershipTTL", time.Hour)
	v.SetDefault("providers.pricingTTL", 6*time.Hour)
	v.SetDefault("providers.estimateTTL", 7*24*time.Hour)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	_ = v.BindEnv("logger.level", "GAMELENS_LOG_LEVEL")
	_ = v.BindEnv("persistence.saveInterval", "GAMELENS_SAVE_INTERVAL")
	_ = v.BindEnv("store.driver", "GAMELENS_STORE_DRIVER")
	_ = v.BindEnv("store.path", "GAMELENS_STORE_PATH")
	_ = v.BindEnv("cache.enabled", "GAMELENS_CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "GAMELENS_CACHE_BACKEND")
	_ = v.BindEnv("cache.size", "GAMELENS_CACHE_SIZE")
	_ = v.BindEnv("activity.enabled", "GAMELENS_ACTIVITY_ENABLED")
	_ = v.BindEnv("providers.catalogPath", "GAMELENS_CATALOG_PATH")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

package structures

import (
	"net/http"
	"time"
)

const (
	StoreDriverFile   = "file"
	StoreDriverBadger = "badger"

	CacheBackendMemory    = "memory"
	CacheBackendFreecache = "freecache"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" validate:"in:file,badger"`
	Path   string `yaml:"path"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled             bool          `yaml:"enabled"`
	Backend             string        `yaml:"backend" validate:"in:memory,freecache"`
	Size                int           `yaml:"size"`
	DefaultTTL          time.Duration `yaml:"defaultTTL"`
	ResponseTTL         time.Duration `yaml:"responseTTL"`
	SingleFlightRefresh bool          `yaml:"singleFlightRefresh"`
}

type BacklogConfig struct {
	InvestmentWeight float64 `yaml:"investmentWeight"`
	PriceWeight      float64 `yaml:"priceWeight"`
	PriceCap         float64 `yaml:"priceCap"`
}

type ActivityConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ScanInterval time.Duration `yaml:"scanInterval"`
	ProcMount    string        `yaml:"procMount"`
}

type ProvidersConfig struct {
	CatalogPath    string        `yaml:"catalogPath"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	RateLimit      float64       `yaml:"rateLimit"`
	Burst          int           `yaml:"burst"`
	MaxFailures    uint32        `yaml:"maxFailures"`
	BreakerTimeout time.Duration `yaml:"breakerTimeout"`
	Concurrency    int           `yaml:"concurrency"`
	OwnershipTTL   time.Duration `yaml:"ownershipTTL"`
	PricingTTL     time.Duration `yaml:"pricingTTL"`
	EstimateTTL    time.Duration `yaml:"estimateTTL"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Store       StoreConfig     `yaml:"store"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Backlog     BacklogConfig   `yaml:"backlog"`
	Activity    ActivityConfig  `yaml:"activity"`
	Providers   ProvidersConfig `yaml:"providers"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

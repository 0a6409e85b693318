package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gamelens/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			SaveInterval: 30 * time.Second,
		},
		Store: structures.StoreConfig{
			Driver: structures.StoreDriverFile,
			Path:   "/tmp/gamelens.dat",
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Cache: structures.CacheConfig{
			Enabled:    true,
			Backend:    structures.CacheBackendMemory,
			DefaultTTL: time.Hour,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownStoreDriver(t *testing.T) {
	c := validConfig()
	c.Store.Driver = "postgres"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownCacheBackend(t *testing.T) {
	c := validConfig()
	c.Cache.Backend = "redis"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_NegativeTTL(t *testing.T) {
	c := validConfig()
	c.Cache.DefaultTTL = -time.Second
	assert.Error(t, NewCnfValidator(c).Validate())
}

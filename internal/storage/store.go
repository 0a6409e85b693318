// Package storage is the persistent key-value collaborator. Values are
// stored as JSON documents; the analytics never see the backend.
package storage

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"gamelens/internal/providers"
	"gamelens/internal/structures"
)

// Well-known keys.
const (
	KeyLibrary           = "library"
	KeyTagProfile        = "tagProfile"
	KeyWatchlist         = "watchlist"
	KeySettings          = "settings"
	KeyCompletedSessions = "completedSessions"
	KeyMappings          = "processMappings"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Store interface {
	// Get decodes the value under key into dst and reports whether it existed.
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
	Delete(key string) error
	Persist() error
	Close() error
}

// GetOr returns the stored value or def when the key is absent or unreadable.
func GetOr[T any](s Store, key string, def T) T {
	var v T
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}

// Setting reads one entry of the settings document.
func Setting(s Store, key string, def any) any {
	settings := GetOr(s, KeySettings, map[string]any{})
	if v, ok := settings[key]; ok {
		return v
	}
	return def
}

func SettingString(s Store, key, def string) string {
	return cast.ToString(Setting(s, key, def))
}

func SettingBool(s Store, key string, def bool) bool {
	return cast.ToBool(Setting(s, key, def))
}

func SetSetting(s Store, key string, value any) error {
	settings := GetOr(s, KeySettings, map[string]any{})
	settings[key] = value
	return s.Set(KeySettings, settings)
}

// NewStore opens the backend selected by store.driver.
func NewStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (Store, error) {
	switch conf.Store.Driver {
	case "", structures.StoreDriverFile:
		fs := NewFileStore(conf.Store.Path, compressor, logger)
		if err := fs.Load(); err != nil {
			return nil, fmt.Errorf("load store %s: %w", conf.Store.Path, err)
		}
		return fs, nil
	case structures.StoreDriverBadger:
		return OpenBadgerStore(conf.Store.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, conf.Store.Driver)
	}
}

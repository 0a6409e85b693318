package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelens/internal/models"
	"gamelens/internal/structures"
	"gamelens/internal/testutil"
)

func TestSettings_Defaults(t *testing.T) {
	s := testutil.NewMockStore()

	assert.Equal(t, "none", SettingString(s, "steamId", "none"))
	assert.True(t, SettingBool(s, "notifications", true))

	require.NoError(t, SetSetting(s, "steamId", 7656))
	require.NoError(t, SetSetting(s, "notifications", "false"))

	assert.Equal(t, "7656", SettingString(s, "steamId", ""))
	assert.False(t, SettingBool(s, "notifications", true))
	assert.Equal(t, "fallback", Setting(s, "missing", "fallback"))
}

func TestGetOr(t *testing.T) {
	s := testutil.NewMockStore()
	def := []models.WatchlistEntry{}
	assert.Equal(t, def, GetOr(s, KeyWatchlist, def))

	require.NoError(t, s.Set(KeyWatchlist, []models.WatchlistEntry{{GameID: "1", Title: "A"}}))
	assert.Len(t, GetOr(s, KeyWatchlist, def), 1)
}

func TestNewStore_Drivers(t *testing.T) {
	conf := testutil.Config()
	logger := &testutil.MockLogger{}

	conf.Store = structures.StoreConfig{Driver: structures.StoreDriverFile, Path: filepath.Join(t.TempDir(), "s.dat")}
	s, err := NewStore(conf, &testutil.MockCompressor{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	conf.Store = structures.StoreConfig{Driver: structures.StoreDriverBadger}
	s, err = NewStore(conf, &testutil.MockCompressor{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	conf.Store = structures.StoreConfig{Driver: "sqlite"}
	_, err = NewStore(conf, &testutil.MockCompressor{}, logger)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

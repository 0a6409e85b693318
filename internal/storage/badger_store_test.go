package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelens/internal/models"
	"gamelens/internal/testutil"
)

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadgerStore("", &testutil.MockLogger{})
	require.NoError(t, err)
	defer s.Close()

	var lib []models.GameRecord
	ok, err := s.Get(KeyLibrary, &lib)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []models.GameRecord{{ID: "70", Title: "Half-Life", BasePrice: models.Float(9.99)}}
	require.NoError(t, s.Set(KeyLibrary, want))
	ok, err = s.Get(KeyLibrary, &lib)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, lib)

	require.NoError(t, s.Persist())
	require.NoError(t, s.Delete(KeyLibrary))
	ok, err = s.Get(KeyLibrary, &lib)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerStore_OnDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenBadgerStore(dir, &testutil.MockLogger{})
	require.NoError(t, err)
	require.NoError(t, SetSetting(s, "steamId", "7656"))
	require.NoError(t, s.Persist())
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir, &testutil.MockLogger{})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "7656", SettingString(s, "steamId", ""))
}

package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelens/internal/models"
	"gamelens/internal/storage"
	"gamelens/internal/testutil"
)

type fakeLister struct {
	mu    sync.Mutex
	procs []Process
	err   error
	block chan struct{}
}

func (f *fakeLister) set(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs = f.procs[:0]
	for i, n := range names {
		f.procs = append(f.procs, Process{PID: 100 + i, Name: n})
	}
}

func (f *fakeLister) Processes(_ context.Context) ([]Process, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Process(nil), f.procs...), f.err
}

var monitorStart = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

func newTestMonitor(t *testing.T) (*Monitor, *fakeLister, *testutil.MockStore, *testutil.Clock) {
	t.Helper()
	lister := &fakeLister{}
	store := testutil.NewMockStore()
	clock := testutil.NewClock(monitorStart)
	m := NewMonitor(lister, store, &testutil.MockLogger{}, &testutil.MockMetrics{}, clock.Now)
	require.NoError(t, m.RegisterMapping(models.ProcessMapping{GameID: "620", Executables: []string{"portal2", "portal2.exe"}}))
	require.NoError(t, m.RegisterMapping(models.ProcessMapping{GameID: "70", Executables: []string{"hl.exe"}}))
	return m, lister, store, clock
}

func TestMonitor_RegisterMappingValidates(t *testing.T) {
	m, _, _, _ := newTestMonitor(t)
	assert.ErrorIs(t, m.RegisterMapping(models.ProcessMapping{GameID: "1"}), ErrInvalidMapping)
	assert.ErrorIs(t, m.RegisterMapping(models.ProcessMapping{Executables: []string{"x"}}), ErrInvalidMapping)
}

func TestMonitor_RegisterMappingReplacesAndPersists(t *testing.T) {
	m, _, store, _ := newTestMonitor(t)
	require.NoError(t, m.RegisterMapping(models.ProcessMapping{GameID: "70", Executables: []string{"hl2.exe"}}))

	mappings := m.Mappings()
	require.Len(t, mappings, 2)
	assert.Equal(t, []string{"hl2.exe"}, mappings[1].Executables)

	persisted := storage.GetOr(store, storage.KeyMappings, []models.ProcessMapping{})
	assert.Equal(t, mappings, persisted)
}

func TestMonitor_SessionLifecycle(t *testing.T) {
	m, lister, store, clock := newTestMonitor(t)
	ctx := context.Background()

	lister.set("bash", "portal2")
	require.NoError(t, m.Scan(ctx))
	active := m.ActiveSessions()
	require.Len(t, active, 1)
	assert.Equal(t, "620", active[0].GameID)
	assert.Nil(t, active[0].EndedAt)
	assert.Equal(t, monitorStart, active[0].StartedAt)

	clock.Advance(10 * time.Minute)
	require.NoError(t, m.Scan(ctx))
	require.Len(t, m.ActiveSessions(), 1, "a game still running keeps its session")
	assert.Equal(t, monitorStart, m.ActiveSessions()[0].StartedAt)

	clock.Advance(20*time.Minute + 40*time.Second)
	lister.set("bash")
	require.NoError(t, m.Scan(ctx))
	assert.Empty(t, m.ActiveSessions())

	completed := m.CompletedSessions()
	require.Len(t, completed, 1)
	assert.Equal(t, 31, completed[0].DurationMinutes)
	assert.Equal(t, models.DetectedByProcess, completed[0].DetectedBy)
	require.NotNil(t, completed[0].EndedAt)

	persisted := storage.GetOr(store, storage.KeyCompletedSessions, []models.PlaySession{})
	require.Len(t, persisted, 1)
	assert.Equal(t, "620", persisted[0].GameID)
}

func TestMonitor_MatchesExecutableBaseName(t *testing.T) {
	m, lister, _, _ := newTestMonitor(t)
	lister.mu.Lock()
	lister.procs = []Process{{PID: 1, Name: "wine-preloader", Exe: "/games/hl/hl.exe"}}
	lister.mu.Unlock()

	require.NoError(t, m.Scan(context.Background()))
	active := m.ActiveSessions()
	require.Len(t, active, 1)
	assert.Equal(t, "70", active[0].GameID)
}

func TestMonitor_SeveralExecutablesOneSession(t *testing.T) {
	m, lister, _, _ := newTestMonitor(t)
	lister.set("portal2", "portal2.exe", "hl.exe")

	require.NoError(t, m.Scan(context.Background()))
	active := m.ActiveSessions()
	require.Len(t, active, 2)
	assert.Equal(t, "620", active[0].GameID)
	assert.Equal(t, "70", active[1].GameID)
}

func TestMonitor_NoChangeDoesNotWrite(t *testing.T) {
	m, lister, store, _ := newTestMonitor(t)
	lister.set("bash")

	require.NoError(t, m.Scan(context.Background()))
	_, ok := store.Data[storage.KeyCompletedSessions]
	assert.False(t, ok)
}

func TestMonitor_ListerErrorKeepsState(t *testing.T) {
	m, lister, _, _ := newTestMonitor(t)
	lister.set("portal2")
	require.NoError(t, m.Scan(context.Background()))

	lister.err = errors.New("procfs unavailable")
	assert.Error(t, m.Scan(context.Background()))
	assert.Len(t, m.ActiveSessions(), 1)
}

func TestMonitor_OverlappingScanSkipped(t *testing.T) {
	m, lister, _, _ := newTestMonitor(t)
	lister.set("portal2")
	lister.block = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- m.Scan(context.Background()) }()

	require.Eventually(t, func() bool { return m.scanning.Load() }, time.Second, time.Millisecond)
	assert.NoError(t, m.Scan(context.Background()))

	close(lister.block)
	require.NoError(t, <-done)
	assert.Len(t, m.ActiveSessions(), 1)
}

func TestMonitor_RestoresCompletedLog(t *testing.T) {
	store := testutil.NewMockStore()
	prior := []models.PlaySession{session("620", monitorStart.Add(-48*time.Hour), 90)}
	require.NoError(t, store.Set(storage.KeyCompletedSessions, prior))

	m := NewMonitor(&fakeLister{}, store, &testutil.MockLogger{}, &testutil.MockMetrics{}, nil)
	completed := m.CompletedSessions()
	require.Len(t, completed, 1)
	assert.Equal(t, 90, completed[0].DurationMinutes)
}

func TestMonitor_CloseAll(t *testing.T) {
	m, lister, store, clock := newTestMonitor(t)
	lister.set("portal2", "hl.exe")
	require.NoError(t, m.Scan(context.Background()))

	clock.Advance(5 * time.Minute)
	require.NoError(t, m.CloseAll())

	assert.Empty(t, m.ActiveSessions())
	assert.Len(t, m.CompletedSessions(), 2)
	persisted := storage.GetOr(store, storage.KeyCompletedSessions, []models.PlaySession{})
	assert.Len(t, persisted, 2)
}

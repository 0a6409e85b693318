package activity

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/atomic"

	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/storage"
	"gamelens/internal/structures"
)

var ErrInvalidMapping = errors.New("mapping needs a game id and at least one executable")

type MonitorInterface interface {
	RegisterMapping(m models.ProcessMapping) error
	Mappings() []models.ProcessMapping
	Scan(ctx context.Context) error
	ActiveSessions() []models.PlaySession
	CompletedSessions() []models.PlaySession
	CloseAll() error
}

// Monitor turns successive process snapshots into play sessions. A game seen
// in a snapshot opens a session; the first snapshot without it closes that
// session and appends it to the completed log.
type Monitor struct {
	mu        sync.Mutex
	lister    ProcessLister
	store     storage.Store
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	now       func() time.Time
	mappings  []models.ProcessMapping
	active    []models.PlaySession
	completed []models.PlaySession
	scanning  atomic.Bool
}

// NewMonitor restores mappings and the completed log from store.
func NewMonitor(lister ProcessLister, store storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		lister:    lister,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		now:       now,
		mappings:  storage.GetOr(store, storage.KeyMappings, []models.ProcessMapping{}),
		completed: storage.GetOr(store, storage.KeyCompletedSessions, []models.PlaySession{}),
	}
}

// RegisterMapping adds or replaces the mapping for m.GameID.
func (m *Monitor) RegisterMapping(mapping models.ProcessMapping) error {
	if mapping.GameID == "" || len(mapping.Executables) == 0 {
		return ErrInvalidMapping
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i := range m.mappings {
		if m.mappings[i].GameID == mapping.GameID {
			m.mappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		m.mappings = append(m.mappings, mapping)
	}
	return m.store.Set(storage.KeyMappings, m.mappings)
}

func (m *Monitor) Mappings() []models.ProcessMapping {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProcessMapping(nil), m.mappings...)
}

// Scan takes one snapshot and updates the session state. A scan that starts
// while another is still running is skipped.
func (m *Monitor) Scan(ctx context.Context) error {
	if !m.scanning.CompareAndSwap(false, true) {
		m.logger.Debugf(providers.TypeApp, "activity scan already running, skipping")
		return nil
	}
	defer m.scanning.Store(false)

	procs, err := m.lister.Processes(ctx)
	if err != nil {
		return err
	}

	running := make(map[string]struct{}, len(procs))
	for _, p := range procs {
		for _, name := range p.names() {
			running[name] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	detected := make(map[string]struct{})
	var order []string
	for _, mapping := range m.mappings {
		for _, exe := range mapping.Executables {
			if _, ok := running[exe]; ok {
				if _, seen := detected[mapping.GameID]; !seen {
					detected[mapping.GameID] = struct{}{}
					order = append(order, mapping.GameID)
				}
				break
			}
		}
	}

	now := m.now()
	open := make(map[string]struct{}, len(m.active))
	for _, s := range m.active {
		open[s.GameID] = struct{}{}
	}
	for _, id := range order {
		if _, ok := open[id]; !ok {
			m.active = append(m.active, models.PlaySession{
				GameID:     id,
				StartedAt:  now,
				DetectedBy: models.DetectedByProcess,
			})
			m.logger.Infof(providers.TypeApp, "session started: %s", id)
		}
	}

	closed := m.closeWhere(now, func(s models.PlaySession) bool {
		_, ok := detected[s.GameID]
		return !ok
	})
	m.metrics.SetActiveSessions(len(m.active))

	if closed > 0 {
		return m.store.Set(storage.KeyCompletedSessions, m.completed)
	}
	return nil
}

// CloseAll ends every open session as of now, for shutdown.
func (m *Monitor) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	closed := m.closeWhere(m.now(), func(models.PlaySession) bool { return true })
	m.metrics.SetActiveSessions(0)
	if closed > 0 {
		return m.store.Set(storage.KeyCompletedSessions, m.completed)
	}
	return nil
}

// closeWhere must be called with mu held.
func (m *Monitor) closeWhere(now time.Time, shouldClose func(models.PlaySession) bool) int {
	still := m.active[:0]
	closed := 0
	for _, s := range m.active {
		if !shouldClose(s) {
			still = append(still, s)
			continue
		}
		ended := now
		s.EndedAt = &ended
		s.DurationMinutes = max(0, int(math.Round(ended.Sub(s.StartedAt).Minutes())))
		m.completed = append(m.completed, s)
		closed++
		m.logger.Infof(providers.TypeApp, "session ended: %s after %d min", s.GameID, s.DurationMinutes)
	}
	m.active = still
	return closed
}

func (m *Monitor) ActiveSessions() []models.PlaySession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PlaySession(nil), m.active...)
}

func (m *Monitor) CompletedSessions() []models.PlaySession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PlaySession(nil), m.completed...)
}

// NewMonitorFromConfig builds a procfs-backed monitor. It returns a nil
// interface when activity tracking is disabled or procfs is not mounted.
func NewMonitorFromConfig(conf *structures.Config, store storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) MonitorInterface {
	if !conf.Activity.Enabled {
		return nil
	}
	lister, err := NewProcLister(conf.Activity.ProcMount)
	if err != nil {
		logger.Warnf(providers.TypeApp, "Activity tracking disabled: %s", err)
		return nil
	}
	return NewMonitor(lister, store, logger, metrics, time.Now)
}

package statistic

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"gamelens/internal/activity"
	"gamelens/internal/providers"
	"gamelens/internal/statistic/interfaces"
	"gamelens/internal/storage"
	"gamelens/internal/structures"
)

// Scheduler drives the periodic work: one activity scan per scan interval
// and a store snapshot per save interval.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   storage.Store
	monitor activity.MonitorInterface
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		_ = s.Persist()
	})

	if s.scanEnabled() {
		s.cron.AddFunc(gron.Every(s.config.Activity.ScanInterval), s.Scan)
		s.logger.Infof(providers.TypeApp, "Activity scan every %s", s.config.Activity.ScanInterval)
	}

	s.cron.Start()
}

func (s *Scheduler) scanEnabled() bool {
	return s.monitor != nil && s.config.Activity.Enabled && s.config.Activity.ScanInterval > 0
}

// Scan takes one process snapshot. Failures are logged and the next tick
// tries again.
func (s *Scheduler) Scan() {
	ctx, cancel := context.WithTimeout(context.Background(), max(s.config.Activity.ScanInterval, time.Second))
	defer cancel()

	if err := s.monitor.Scan(ctx); err != nil {
		s.logger.Warnf(providers.TypeApp, "Activity scan failed: %s", err)
	}
}

// Stop halts the cron and closes any sessions still open so their time is
// counted before the final Persist.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.monitor != nil {
		if err := s.monitor.CloseAll(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Closing active sessions: %s", err)
		}
	}
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	started := time.Now()
	err := s.store.Persist()
	s.metrics.ObservePersistenceDuration(time.Since(started))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.logger.Debugf(providers.TypeApp, "Persisted store in %s", time.Since(started))
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store storage.Store, monitor activity.MonitorInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		store:   store,
		monitor: monitor,
		metrics: metrics,
	}
}

package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SijmenSchoon/pimpybot/internal/logging"
)

// FlushConfig holds the periodic flush settings. The store is only required
// to flush on graceful shutdown; scheduled flushes bound how much onboarding
// a crash can lose.
type FlushConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec, e.g. "@every 15m"
}

// DefaultFlushConfig returns the default flush schedule.
func DefaultFlushConfig() *FlushConfig {
	return &FlushConfig{
		Enabled:  true,
		Schedule: "@every 15m",
	}
}

// Scheduler periodically flushes a dirty store to its snapshot path.
type Scheduler struct {
	store   *Store
	path    string
	config  *FlushConfig
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	entryID cron.EntryID
}

// NewScheduler creates a flush scheduler for the given store and snapshot path.
func NewScheduler(s *Store, path string, config *FlushConfig) *Scheduler {
	if config == nil {
		config = DefaultFlushConfig()
	}
	return &Scheduler{
		store:  s,
		path:   path,
		config: config,
		cron:   cron.New(),
	}
}

// Start begins the flush schedule. A disabled config is not an error; the
// shutdown flush still happens.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		logging.WithComponent("store").Info("Scheduled snapshot flush disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.flush)
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	logging.WithComponent("store").Info("Snapshot flush scheduled",
		slog.String("schedule", s.config.Schedule),
		slog.Time("next_run", s.cron.Entry(s.entryID).Next))

	return nil
}

// Stop stops the schedule and waits for an in-flight flush to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}

// NextRun returns the next scheduled flush time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// flush writes the snapshot when the store has unflushed mutations.
func (s *Scheduler) flush() {
	if !s.store.Dirty() {
		return
	}
	if err := s.store.Flush(s.path); err != nil {
		logging.WithComponent("store").Error("Scheduled snapshot flush failed", slog.Any("error", err))
		return
	}
	logging.WithComponent("store").Debug("Snapshot flushed", slog.String("path", s.path))
}

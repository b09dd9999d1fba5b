package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vistoriapro/vistoria/internal/access/store"
)

// HousekeepingService periodically deletes grants that expired a while
// ago. Expired grants already deny access; this only bounds table growth.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Retention keeps expired grants around for auditing before deletion.
	Retention time.Duration

	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass and returns the number of grants removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.Retention)

	n, err := s.Store.Grants().DeleteExpiredGrants(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete expired grants", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "grants_deleted", n, "cutoff", cutoff)
	return n
}

// Package watcher polls the forced-photometry database for new epochs on
// watched objects and dispatches notifications when they arrive.
package watcher

import (
	"context"
	"log"
	"time"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/notification"
	"lightcurve-monitor/internal/store"
)

// Service periodically compares the latest forced-source epoch of every
// subscribed object against the last one seen.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool

	lastSeen map[int64]time.Time
}

// NewService creates a watcher backed by the given store and worker pool.
func NewService(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:        cfg,
		store:      s,
		workerPool: pool,
		lastSeen:   make(map[int64]time.Time),
	}
}

// Run starts the polling loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Watcher.Enabled {
		log.Println("Epoch watcher is disabled. Not starting.")
		return
	}
	log.Println("Starting epoch watcher...")

	s.workerPool.Start(ctx)

	s.CheckOnce(ctx)

	timer := time.NewTimer(s.cfg.Watcher.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Epoch watcher shutting down.")
			return
		case <-timer.C:
			s.CheckOnce(ctx)
			timer.Reset(s.cfg.Watcher.Interval)
		}
	}
}

// CheckOnce performs a single polling cycle and dispatches notification jobs
// for objects with new epochs.
func (s *Service) CheckOnce(ctx context.Context) {
	ids, err := s.store.SubscribedObjectIDs(ctx)
	if err != nil {
		log.Printf("Error listing subscribed objects: %v", err)
		return
	}

	var notified int
	for _, id := range ids {
		latest, err := s.store.LatestEpoch(ctx, id)
		if err != nil {
			log.Printf("Error fetching latest epoch for object %d: %v", id, err)
			continue
		}
		if latest.IsZero() {
			continue
		}

		seen, ok := s.lastSeen[id]
		s.lastSeen[id] = latest
		if !ok {
			// First sighting establishes the baseline; nothing to report.
			continue
		}
		if latest.After(seen) {
			s.workerPool.Dispatch(id)
			notified++
		}
	}

	if notified > 0 {
		log.Printf("Watcher cycle finished: dispatched notifications for %d objects", notified)
	}
}

package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler periodically sweeps expired cache entries.
type Scheduler struct {
	cache         *CacheGateway
	ttlDays       int
	intervalHours int
	logger        *logrus.Logger
	stopCh        chan struct{}
}

func NewScheduler(cache *CacheGateway, ttlDays, intervalHours int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cache:         cache,
		ttlDays:       ttlDays,
		intervalHours: intervalHours,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.intervalHours) * time.Hour)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"ttlDays":       s.ttlDays,
		"intervalHours": s.intervalHours,
	}).Info("Starting cache sweep scheduler")

	s.cache.Sweep(ctx, s.ttlDays)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.cache.Sweep(ctx, s.ttlDays)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

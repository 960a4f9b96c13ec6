package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mzielinski/imgw-weather/internal/imgw"
)

// Scheduler periodically runs the IMGW fetch cycle in the background,
// independent of request handling. A cycle that fails is not retried; the
// next tick picks it up.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   *imgw.Fetcher
	interval  time.Duration
	log       *slog.Logger
}

// New creates a Scheduler.
func New(fetcher *imgw.Fetcher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		interval:  interval,
		log:       logger,
	}
}

// Start schedules the periodic fetch job and starts the underlying
// scheduler asynchronously.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.log.Info("scheduler: running fetch cycle")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if ok := s.fetcher.FetchAndStore(ctx); !ok {
			s.log.Warn("scheduler: fetch cycle stored no data")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

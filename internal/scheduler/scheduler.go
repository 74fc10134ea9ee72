package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper drops expired state and reports how many entries it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler periodically expires idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.every()).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// every returns the sweep interval, 15 minutes when unset.
func (s *Scheduler) every() time.Duration {
	if s.interval <= 0 {
		return 15 * time.Minute
	}
	return s.interval
}

func (s *Scheduler) run() {
	removed := s.sweeper.Sweep(time.Now())
	if removed > 0 {
		log.Printf("scheduler: expired %d idle sessions", removed)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

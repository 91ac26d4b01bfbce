package notify

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the maintenance scan on a fixed schedule, plus once
// immediately at startup the way the original scan ran on app start.
type Scheduler struct {
	cron    *cron.Cron
	scanner *Scanner
	spec    string
}

// NewScheduler creates a scheduler around a scanner. The spec uses
// cron syntax, e.g. "@every 6h".
func NewScheduler(scanner *Scanner, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		scanner: scanner,
		spec:    spec,
	}
}

// Start registers the scan job and begins the schedule.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		log.WithError(err).WithField("spec", s.spec).Error("Failed to register maintenance scan job")
		return
	}
	s.cron.Start()
	go s.run()
	log.WithField("spec", s.spec).Info("Maintenance scan scheduler started")
}

// Stop gracefully stops the scheduler, waiting for a running scan.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Maintenance scan scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.scanner.Scan(ctx); err != nil {
		log.WithError(err).Error("Maintenance scan failed")
	}
}

package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on six-field (seconds first) cron specs in UTC.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		log:  log,
	}
}

func (s *Scheduler) Register(name, spec string, job func()) error {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	s.log.Info("job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

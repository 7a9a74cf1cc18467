package jobs

import (
	"context"
	"sync"
	"time"

	"pricerelay/internal/platform/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultInterval = 30 * time.Second

// Job is a named periodic task. Run receives a fresh execution id per run.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, execID string) error
}

type Scheduler struct {
	jobs []Job
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	for _, j := range s.jobs {
		interval := j.Interval
		if interval <= 0 {
			interval = defaultInterval
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(s.wrap(j)),
			gocron.WithName(j.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = scheduler.Shutdown()
			return err
		}
		logrus.WithFields(logrus.Fields{"job": j.Name, "interval": interval}).Info("Job scheduled")
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) wrap(j Job) func(context.Context) {
	return func(jobCtx context.Context) {
		execID := uuid.NewString()
		start := time.Now()
		err := j.Run(jobCtx, execID)
		metrics.RecordJobRun(j.Name, time.Since(start), err == nil)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"job": j.Name, "exec_id": execID}).Error("Job run failed")
		}
	}
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func NewScheduler(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs}
}

// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/biblia-online/biblia/internal/logger"
	cronlog "github.com/biblia-online/biblia/internal/logger/adapter/cron"
)

// ErrUnknownJob is returned by RunNow and Next for names that were not registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is a named task run on a cron schedule.
type Job struct {
	Name string
	Spec string // five field cron expression or a descriptor such as @hourly
	Run  func(ctx context.Context) error
}

// Scheduler runs jobs until stopped.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	jobs    map[string]Job
	entries map[string]cron.EntryID
	running bool
	cancel  context.CancelFunc
}

// Parser accepts standard five field expressions and descriptors.
func Parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// New creates a stopped scheduler.
func New() *Scheduler {
	l := logger.Component("scheduler")
	cl := cronlog.New(l)

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(Parser()),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     l,
		jobs:    map[string]Job{},
		entries: map[string]cron.EntryID{},
	}
}

// Add registers a job. It can be called before or after Start.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := Parser().Parse(job.Spec); err != nil {
		return fmt.Errorf("invalid schedule %q of job %s: %w", job.Spec, job.Name, err)
	}

	id, err := s.cron.AddFunc(job.Spec, func() {
		if err := s.RunNow(job.Name); err != nil {
			s.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name, err)
	}

	s.jobs[job.Name] = job
	s.entries[job.Name] = id

	return nil
}

// Start runs the registered jobs until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true

	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()

		return
	}

	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	// running jobs take the lock in RunNow
	<-s.cron.Stop().Done()
	cancel()

	s.log.Info().Msg("scheduler stopped")
}

// RunNow runs a job synchronously.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	start := time.Now()
	err := job.Run(context.Background())

	s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Err(err).Msg("job finished")

	return err
}

// Next returns the next planned run of a job. It is zero while the scheduler is stopped.
func (s *Scheduler) Next(name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	return s.cron.Entry(id).Next, nil
}

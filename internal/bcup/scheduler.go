package bcup

import (
	"fmt"
	"sync"
)

// JobRunner executes one backup run for a job. Implemented by Service;
// faked in scheduler tests.
type JobRunner interface {
	RunJob(job Job) error
}

// jobState is the per-job scheduler state.
type jobState int

const (
	stateIdle jobState = iota
	stateRunning
)

// Scheduler owns one independent timer per job. On each tick it triggers
// exactly one run for that job, serialized against any still-running prior
// tick for the same job: an overlapping tick is dropped and logged, never
// queued, so a slow run cannot build an unbounded backlog. Jobs never delay
// each other.
type Scheduler struct {
	runner JobRunner
	logger Logger
	clock  Clock

	mu    sync.Mutex
	state map[string]jobState
	jobs  []Job

	done    chan struct{}
	started bool
	loops   sync.WaitGroup // per-job tick loops
	runs    sync.WaitGroup // in-flight backup runs
}

// NewScheduler creates a scheduler for an already-validated job list.
func NewScheduler(runner JobRunner, jobs []Job, logger Logger, clock Clock) *Scheduler {
	return &Scheduler{
		runner: runner,
		logger: logger,
		clock:  clock,
		state:  make(map[string]jobState, len(jobs)),
		jobs:   jobs,
		done:   make(chan struct{}),
	}
}

// Start launches one timer loop per job. It fails when the job list is
// empty; a daemon with nothing to schedule is a startup error.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs to schedule")
	}
	s.started = true

	for _, job := range s.jobs {
		s.state[job.ID] = stateIdle
		// Create the ticker before the loop goroutine starts so the timer
		// exists by the time Start returns.
		ticker := s.clock.NewTicker(job.Period)
		s.loops.Add(1)
		go s.loop(job, ticker)
		s.logger.Info("job scheduled", "job", job.ID, "period", job.Period, "method", job.Method)
	}
	return nil
}

// Stop shuts the scheduler down gracefully: timers stop firing and
// in-flight runs finish rather than being aborted, since a partial run is
// already guarded by the writer's atomic rename.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	close(s.done)
	s.mu.Unlock()

	s.loops.Wait()
	s.runs.Wait()
	s.logger.Info("scheduler stopped")
}

// loop is the per-job timer loop. The underlying ticker coalesces missed
// ticks (e.g. after a system sleep) into a single catch-up tick.
func (s *Scheduler) loop(job Job, ticker Ticker) {
	defer s.loops.Done()
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C():
			s.tick(job)
		}
	}
}

// tick starts a run for the job unless one is already in flight, in which
// case the tick is dropped.
func (s *Scheduler) tick(job Job) {
	s.mu.Lock()
	if s.state[job.ID] == stateRunning {
		s.mu.Unlock()
		s.logger.Warn("tick dropped, previous run still in flight", "job", job.ID)
		return
	}
	s.state[job.ID] = stateRunning
	s.mu.Unlock()

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		// RunJob logs and records its own failures; the scheduler only
		// cares that the job returns to Idle either way.
		_ = s.runner.RunJob(job)

		s.mu.Lock()
		s.state[job.ID] = stateIdle
		s.mu.Unlock()
	}()
}

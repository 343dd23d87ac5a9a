package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"bcup-go/internal/archive"
	"bcup-go/internal/bcup"
	"bcup-go/internal/config"
	"bcup-go/internal/fs"
	"bcup-go/internal/history"
)

// App is the application layer between the CLI and the backup engine. It
// constructs all dependencies from config and manages their lifecycle on
// Close. The surrounding service wrapper only needs Run (start the
// scheduler with the job list, block until the context is cancelled) and
// RunOnce.
type App struct {
	cfg       *config.Config
	jobs      []bcup.Job
	store     bcup.HistoryStore
	service   *bcup.Service
	scheduler *bcup.Scheduler
	logger    bcup.Logger
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config. Malformed job
// descriptors are logged and dropped; only a config with no valid job at
// all is fatal. The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	procID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, procID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	jobs, errs := cfg.Jobs()
	for _, jerr := range errs {
		logger.Error("job rejected", "error", jerr)
	}
	if len(jobs) == 0 {
		logFile.Close()
		return nil, fmt.Errorf("no valid jobs configured")
	}

	store, err := history.NewStoreFromConfig(cfg.History)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	clock := bcup.RealClock{}
	service := bcup.NewService(fs.NewOSFilesystem(), archive.NewTarGz(), store, logger, clock, bcup.UUIDGenerator{})
	scheduler := bcup.NewScheduler(service, jobs, logger, clock)

	return &App{
		cfg:       cfg,
		jobs:      jobs,
		store:     store,
		service:   service,
		scheduler: scheduler,
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then stops
// gracefully: timers stop and in-flight runs finish.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	a.logger.Info("daemon started", "jobs", len(a.jobs))

	<-ctx.Done()
	a.logger.Info("shutdown requested, letting in-flight runs finish")
	a.scheduler.Stop()
	return nil
}

// RunOnce performs a single sequential pass over all jobs, without timers.
func (a *App) RunOnce() error {
	return a.service.RunAll(a.jobs)
}

// Jobs returns the validated job list.
func (a *App) Jobs() []bcup.Job {
	return a.jobs
}

// Snapshots lists a job's snapshots, oldest first.
func (a *App) Snapshots(job bcup.Job) ([]bcup.Snapshot, error) {
	return bcup.ListSnapshots(job.Target)
}

// History returns the most recent run records, newest first.
func (a *App) History(limit int) ([]*bcup.RunRecord, error) {
	return a.store.ListRuns(limit)
}

// Close releases the history store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing history store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

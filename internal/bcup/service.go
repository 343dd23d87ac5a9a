package bcup

import "fmt"

// Service runs single backup executions: change detection, snapshot
// writing and retention pruning for one job, in that order. It is the unit
// the scheduler triggers on every tick and the once-mode iterates over.
type Service struct {
	detector *Detector
	writer   *Writer
	pruner   *Pruner
	history  HistoryStore
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService wires a Service from its collaborators.
func NewService(fs Filesystem, archive Archiver, history HistoryStore, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		detector: NewDetector(fs),
		writer:   NewWriter(fs, archive, logger),
		pruner:   NewPruner(fs, logger),
		history:  history,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// RunJob performs one backup run for the job. Errors are job-local: the
// caller logs them and the job is retried on its next tick.
func (s *Service) RunJob(job Job) error {
	started := s.clock.Now()
	rec := &RunRecord{
		ID:        s.idgen.New(),
		JobID:     job.ID,
		Method:    string(job.Method),
		StartedAt: started,
	}
	s.logger.Info("run started", "run_id", rec.ID, "job", job.ID, "method", job.Method)

	err := s.run(job, rec)

	rec.FinishedAt = s.clock.Now()
	if err != nil {
		rec.Status = RunFailed
		rec.ErrorKind = ErrorKind(err)
		s.logger.Error("run failed", "run_id", rec.ID, "job", job.ID, "kind", rec.ErrorKind, "error", err)
	}
	s.record(rec)
	return err
}

func (s *Service) run(job Job, rec *RunRecord) error {
	baseline := s.baseline(job)

	changes, err := s.detector.Detect(job, baseline, rec.StartedAt)
	if err != nil {
		return err
	}
	rec.Added = len(changes.Added)
	rec.Modified = len(changes.Modified)
	rec.Removed = len(changes.Removed)
	rec.Skipped = len(changes.Skipped)

	for _, path := range changes.Skipped {
		s.logger.Warn("skipped unreadable or unsupported entry", "job", job.ID, "path", path)
	}

	// No-op guard: an unchanged source produces no snapshot and no disk
	// writes, for diff and full/last alike.
	if changes.Empty() {
		rec.Status = RunSkipped
		s.logger.Info("run skipped, no changes", "run_id", rec.ID, "job", job.ID)
		return nil
	}

	name := SnapshotName(job.NameFormat, rec.StartedAt)
	snap, err := s.writer.Write(job, name, changes)
	if err != nil {
		return err
	}
	rec.SnapshotName = snap.Name

	pruned, err := s.pruner.Prune(job)
	rec.Pruned = len(pruned)
	if err != nil {
		// Pruning failures never fail the run; the snapshot is in place.
		s.logger.Error("prune failed", "run_id", rec.ID, "job", job.ID, "error", err)
	}
	for _, name := range pruned {
		s.logger.Info("pruned snapshot", "job", job.ID, "snapshot", name)
	}

	rec.Status = RunCompleted
	s.logger.Info("run completed",
		"run_id", rec.ID, "job", job.ID, "snapshot", snap.Name,
		"added", rec.Added, "modified", rec.Modified, "removed", rec.Removed,
		"skipped", rec.Skipped, "pruned", rec.Pruned)
	return nil
}

// baseline loads the most recent snapshot's manifest. Any problem reading
// it degrades to a first-run detection (everything added) rather than
// failing the run.
func (s *Service) baseline(job Job) *Manifest {
	latest, err := LatestSnapshot(job.Target)
	if err != nil {
		s.logger.Warn("failed to list snapshots for baseline", "job", job.ID, "error", err)
		return nil
	}
	if latest == nil {
		return nil
	}
	m, err := latest.Manifest()
	if err != nil {
		s.logger.Warn("failed to read baseline manifest", "job", job.ID, "snapshot", latest.Name, "error", err)
		return nil
	}
	return m
}

func (s *Service) record(rec *RunRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordRun(rec); err != nil {
		s.logger.Error("failed to record run in history", "run_id", rec.ID, "error", err)
	}
}

// RunAll executes one run per job sequentially. Used by once mode. A
// failing job never blocks the remaining jobs; the first error is returned
// after all jobs ran.
func (s *Service) RunAll(jobs []Job) error {
	var firstErr error
	for _, job := range jobs {
		if err := s.RunJob(job); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("job %s: %w", job.ID, err)
		}
	}
	return firstErr
}

var _ JobRunner = (*Service)(nil)

package bcup

import "time"

// Run statuses recorded in history.
const (
	RunCompleted = "completed"
	RunSkipped   = "skipped"
	RunFailed    = "failed"
)

// RunRecord describes one backup run for the history store.
type RunRecord struct {
	ID           string
	JobID        string
	Method       string
	SnapshotName string // empty for skipped and failed runs
	Status       string
	ErrorKind    string // empty unless Status is failed
	Added        int
	Modified     int
	Removed      int
	Skipped      int
	Pruned       int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// HistoryStore persists run records. A store failure never fails the run
// that produced the record; it is logged and the run's on-disk result
// stands.
type HistoryStore interface {
	// RecordRun saves a finished run.
	RecordRun(rec *RunRecord) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*RunRecord, error)

	Close() error
}

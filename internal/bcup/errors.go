package bcup

import "errors"

// Error kinds for job runs. Every error is job-local: a failed run is logged,
// recorded in history, and retried on the next tick. The daemon itself only
// terminates when no valid job exists at startup.
var (
	// ErrInvalidConfig marks a malformed job descriptor. The job is rejected
	// at load time; other jobs proceed.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrSourceUnreadable marks a source path that is missing or not
	// readable. The run is skipped and retried next period.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrSnapshotWrite marks a copy or archive failure mid-run. The run is
	// aborted with prior snapshots untouched.
	ErrSnapshotWrite = errors.New("snapshot write failed")

	// ErrPrune marks a retention deletion failure. It never blocks future
	// runs; pruning is retried on the next cycle.
	ErrPrune = errors.New("prune failed")
)

// ErrorKind returns a short machine-readable tag for a job error, or "" for
// nil and unclassified errors. Used for history records and log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrSourceUnreadable):
		return "source_unreadable"
	case errors.Is(err, ErrSnapshotWrite):
		return "snapshot_write"
	case errors.Is(err, ErrPrune):
		return "prune"
	default:
		return "internal"
	}
}

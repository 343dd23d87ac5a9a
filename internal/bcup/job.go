package bcup

import (
	"fmt"
	"strings"
	"time"
)

// Method selects how a job persists its snapshots. Exactly three methods
// exist; the Writer dispatches on this value in one place.
type Method string

const (
	// MethodFull keeps a complete copy of the source per run, unlimited.
	MethodFull Method = "full"
	// MethodLast keeps a complete copy of the source, but only the newest one.
	MethodLast Method = "last"
	// MethodDiff keeps only files changed since the previous snapshot.
	MethodDiff Method = "diff"
)

// ParseMethod validates a method string from configuration.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodFull, MethodLast, MethodDiff:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, s)
	}
}

// Fingerprint selects how the change detector decides whether a file changed.
type Fingerprint string

const (
	// FingerprintMtime compares size and modification time. Fast, never
	// reads file contents.
	FingerprintMtime Fingerprint = "mtime"
	// FingerprintSHA256 compares content hashes. Catches edits that
	// preserve size and mtime, at the cost of reading every file.
	FingerprintSHA256 Fingerprint = "sha256"
)

// ParseFingerprint validates a fingerprint string from configuration.
// The empty string selects the mtime default.
func ParseFingerprint(s string) (Fingerprint, error) {
	switch Fingerprint(s) {
	case "":
		return FingerprintMtime, nil
	case FingerprintMtime, FingerprintSHA256:
		return Fingerprint(s), nil
	default:
		return "", fmt.Errorf("%w: unknown fingerprint %q", ErrInvalidConfig, s)
	}
}

// PathRules reports whether a relative path can be materialized on the
// target filesystem. Paths that fail the rules join the detector's skipped
// set instead of aborting the run.
type PathRules interface {
	Allowed(relPath string) bool
}

// Job is one configured source→target backup relationship. Immutable after
// load; one Job drives one independent schedule.
type Job struct {
	// ID is derived from the source path and doubles as the per-job
	// subdirectory name under the configured target root.
	ID string

	// Source is the absolute path of the directory tree to back up.
	Source string

	// Target is this job's own snapshot directory (target root + ID).
	// Assumed disjoint from every other job's Target.
	Target string

	Period      time.Duration
	Method      Method
	Compress    bool
	Limit       int // snapshots to retain; 0 = unlimited, only valid for diff
	NameFormat  string
	Fingerprint Fingerprint
	Rules       PathRules
}

// JobName derives a readable, unique job identifier from a source path.
func JobName(source string) string {
	return strings.ReplaceAll(source, "/", "_")
}

// Validate checks the job descriptor. A failing job is rejected with
// ErrInvalidConfig; other jobs are unaffected.
func (j Job) Validate() error {
	if j.Source == "" {
		return fmt.Errorf("%w: source path is empty", ErrInvalidConfig)
	}
	if j.Target == "" {
		return fmt.Errorf("%w: target path is empty", ErrInvalidConfig)
	}
	if j.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %s", ErrInvalidConfig, j.Period)
	}
	if _, err := ParseMethod(string(j.Method)); err != nil {
		return err
	}
	if j.Limit < 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, j.Limit)
	}
	if j.Limit > 0 && j.Method != MethodDiff {
		return fmt.Errorf("%w: limit is only valid for method diff (full is unlimited, last keeps exactly one)", ErrInvalidConfig)
	}
	if _, err := ParseFingerprint(string(j.Fingerprint)); err != nil {
		return err
	}
	if err := ValidateNameFormat(j.NameFormat); err != nil {
		return err
	}
	return nil
}

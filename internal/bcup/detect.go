package bcup

import (
	"fmt"
	"sort"
	"time"
)

// Changes is the change detector's output: the delta between the source
// tree and the baseline manifest, plus the new full-state manifest that the
// snapshot writer persists for the next run's baseline.
type Changes struct {
	Added    []string
	Modified []string
	Removed  []string
	Skipped  []string

	// Manifest reflects the full current state of the source tree. Removed
	// paths appear as deletion markers.
	Manifest *Manifest
}

// Empty reports whether the source is unchanged since the baseline.
// Skipped entries do not count as changes.
func (c *Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Detector computes the set of added, modified and removed files in a
// source tree relative to a baseline manifest.
type Detector struct {
	fs Filesystem
}

func NewDetector(fs Filesystem) *Detector {
	return &Detector{fs: fs}
}

// Detect walks the job's source tree and compares every file against the
// baseline by fingerprint. A nil baseline (first run ever) reports every
// source file as added. The walk never reads file contents unless the job
// uses the sha256 fingerprint.
func (d *Detector) Detect(job Job, baseline *Manifest, now time.Time) (*Changes, error) {
	entries, skipped, err := d.fs.Walk(job.Source, job.Fingerprint, job.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", ErrSourceUnreadable, job.Source, err)
	}

	ch := &Changes{Skipped: skipped, Manifest: NewManifest(now)}

	var base map[string]Entry
	if baseline != nil {
		base = baseline.Present()
	}

	for path, entry := range entries {
		ch.Manifest.Entries[path] = entry
		prev, ok := base[path]
		switch {
		case !ok:
			ch.Added = append(ch.Added, path)
		case !entry.Same(prev, job.Fingerprint):
			ch.Modified = append(ch.Modified, path)
		}
	}

	for path, prev := range base {
		if _, ok := entries[path]; !ok {
			ch.Removed = append(ch.Removed, path)
			prev.Status = StatusDeleted
			ch.Manifest.Entries[path] = prev
		}
	}

	sort.Strings(ch.Added)
	sort.Strings(ch.Modified)
	sort.Strings(ch.Removed)
	sort.Strings(ch.Skipped)
	return ch, nil
}

package bcup

import "fmt"

// Pruner removes the oldest snapshots of a job once the count exceeds the
// configured retention limit.
//
// Pruning the oldest diff snapshot only shrinks the backward reconstruction
// horizon: every diff snapshot carries a full-state manifest and physical
// copies of its changed files, so history from the next-oldest snapshot
// forward stays intact.
type Pruner struct {
	fs     Filesystem
	logger Logger
}

func NewPruner(fs Filesystem, logger Logger) *Pruner {
	return &Pruner{fs: fs, logger: logger}
}

// Prune deletes the oldest count-limit snapshots and returns the removed
// names. Jobs without a limit and full-method jobs are never pruned (full
// is unlimited by definition; last keeps exactly one via the writer). A
// deletion failure yields ErrPrune but does not stop the remaining
// deletions; pruning is retried on the next cycle.
func (p *Pruner) Prune(job Job) ([]string, error) {
	if job.Limit <= 0 || job.Method == MethodFull {
		return nil, nil
	}

	snaps, err := ListSnapshots(job.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrune, err)
	}
	if len(snaps) <= job.Limit {
		return nil, nil
	}

	var removed []string
	var firstErr error
	for _, s := range snaps[:len(snaps)-job.Limit] {
		if err := p.fs.RemoveAll(s.Dir); err != nil {
			p.logger.Error("failed to prune snapshot", "job", job.ID, "snapshot", s.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed = append(removed, s.Name)
	}

	if firstErr != nil {
		return removed, fmt.Errorf("%w: %v", ErrPrune, firstErr)
	}
	return removed, nil
}

package bcup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Writer materializes a new snapshot on disk per the job's method.
//
// A snapshot is assembled under a dot-prefixed temporary name and renamed
// into place only after every copy succeeded, so a crash mid-write never
// leaves a partial snapshot visible to the pruner or the change detector.
type Writer struct {
	fs      Filesystem
	archive Archiver
	logger  Logger
}

func NewWriter(fs Filesystem, archive Archiver, logger Logger) *Writer {
	return &Writer{fs: fs, archive: archive, logger: logger}
}

// Write creates the snapshot named name for the job from the detector's
// output. On any failure the temporary snapshot is discarded and the run
// fails with ErrSnapshotWrite, leaving prior snapshots untouched.
//
// Post-publish steps by method:
//   - last: all older snapshots are deleted, keeping exactly one.
//   - diff with compress: the previous snapshot's data directory is
//     archived. The newest diff snapshot always stays uncompressed so the
//     next run reads its payload without decompression.
func (w *Writer) Write(job Job, name string, ch *Changes) (*Snapshot, error) {
	prior, err := ListSnapshots(job.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: listing prior snapshots: %v", ErrSnapshotWrite, err)
	}

	tmp := filepath.Join(job.Target, ".tmp-"+name)
	final := filepath.Join(job.Target, name)

	if err := w.populate(job, tmp, ch); err != nil {
		w.discard(tmp)
		return nil, fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}

	if err := w.fs.Rename(tmp, final); err != nil {
		w.discard(tmp)
		return nil, fmt.Errorf("%w: publishing snapshot: %v", ErrSnapshotWrite, err)
	}

	snap := &Snapshot{
		Name:       name,
		Dir:        final,
		Compressed: job.Compress && job.Method != MethodDiff,
	}

	switch job.Method {
	case MethodLast:
		w.removeOlder(job, prior)
	case MethodDiff:
		if job.Compress && len(prior) > 0 {
			w.compressPrevious(job, prior[len(prior)-1])
		}
	}

	return snap, nil
}

// populate builds the snapshot contents under dir.
func (w *Writer) populate(job Job, dir string, ch *Changes) error {
	if err := w.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	switch job.Method {
	case MethodFull, MethodLast:
		if job.Compress {
			if err := w.archive.Compress(job.Source, filepath.Join(dir, ArchiveName), DataDirName); err != nil {
				return fmt.Errorf("archiving source: %w", err)
			}
		} else if err := w.copyFiles(job, dir, presentPaths(ch.Manifest)); err != nil {
			return err
		}
	case MethodDiff:
		changed := make([]string, 0, len(ch.Added)+len(ch.Modified))
		changed = append(changed, ch.Added...)
		changed = append(changed, ch.Modified...)
		sort.Strings(changed)
		if err := w.copyFiles(job, dir, changed); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown method %q", job.Method)
	}

	return w.writeManifest(dir, ch.Manifest)
}

// copyFiles copies the given relative paths from the source tree into the
// snapshot's data directory, preserving relative structure.
func (w *Writer) copyFiles(job Job, dir string, paths []string) error {
	dataDir := filepath.Join(dir, DataDirName)
	if err := w.fs.MkdirAll(dataDir); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	for _, rel := range paths {
		src := filepath.Join(job.Source, rel)
		dst := filepath.Join(dataDir, rel)
		if err := w.fs.CopyFile(src, dst); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}
	}
	return nil
}

func (w *Writer) writeManifest(dir string, m *Manifest) error {
	f, err := os.Create(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) discard(tmp string) {
	if err := w.fs.RemoveAll(tmp); err != nil {
		w.logger.Warn("failed to discard temporary snapshot", "path", tmp, "error", err)
	}
}

// removeOlder deletes all prior snapshots after a successful last-method
// write. A deletion failure is logged, not fatal: the next run removes the
// leftover again.
func (w *Writer) removeOlder(job Job, prior []Snapshot) {
	for _, s := range prior {
		if err := w.fs.RemoveAll(s.Dir); err != nil {
			w.logger.Error("failed to remove superseded snapshot", "job", job.ID, "snapshot", s.Name, "error", err)
			continue
		}
		w.logger.Info("removed superseded snapshot", "job", job.ID, "snapshot", s.Name)
	}
}

// compressPrevious archives the previous diff snapshot's data directory and
// removes the uncompressed copy. Failures are logged and retried implicitly
// on the next run, since the snapshot before the newest is re-examined then.
func (w *Writer) compressPrevious(job Job, prev Snapshot) {
	if prev.Compressed {
		return
	}
	if err := w.archive.Compress(prev.DataPath(), prev.ArchivePath(), DataDirName); err != nil {
		w.logger.Error("failed to compress previous snapshot", "job", job.ID, "snapshot", prev.Name, "error", err)
		return
	}
	if err := w.fs.RemoveAll(prev.DataPath()); err != nil {
		w.logger.Error("failed to remove uncompressed data after archiving", "job", job.ID, "snapshot", prev.Name, "error", err)
		return
	}
	w.logger.Info("compressed previous snapshot", "job", job.ID, "snapshot", prev.Name)
}

func presentPaths(m *Manifest) []string {
	paths := make([]string, 0, len(m.Entries))
	for path, e := range m.Entries {
		if e.Status == StatusPresent {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

package bcup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snapshot is the on-disk result of one backup run: a directory under the
// job's target named by the Snapshot Namer, containing a data payload
// (plain directory or tar.gz archive) and a manifest.
type Snapshot struct {
	Name       string
	Dir        string // absolute path of the snapshot directory
	Compressed bool   // data payload is an archive
}

// DataPath returns the uncompressed data directory path.
func (s Snapshot) DataPath() string { return filepath.Join(s.Dir, DataDirName) }

// ArchivePath returns the compressed data archive path.
func (s Snapshot) ArchivePath() string { return filepath.Join(s.Dir, ArchiveName) }

// ManifestPath returns the manifest file path.
func (s Snapshot) ManifestPath() string { return filepath.Join(s.Dir, ManifestFileName) }

// Manifest reads and decodes the snapshot's manifest.
func (s Snapshot) Manifest() (*Manifest, error) {
	f, err := os.Open(s.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("opening manifest for %s: %w", s.Name, err)
	}
	defer f.Close()
	return DecodeManifest(f)
}

// ListSnapshots returns the job's snapshots sorted by name, oldest first.
// Snapshot names sort chronologically by string order, so the last element
// is the most recent. Dot-prefixed entries (in-progress temporary
// snapshots) and plain files are skipped. A missing job directory means no
// snapshots yet.
func ListSnapshots(jobDir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(jobDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading job directory: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(jobDir, entry.Name())
		_, err := os.Stat(filepath.Join(dir, ArchiveName))
		snaps = append(snaps, Snapshot{
			Name:       entry.Name(),
			Dir:        dir,
			Compressed: err == nil,
		})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps, nil
}

// LatestSnapshot returns the most recent snapshot for a job, or nil if the
// job has none.
func LatestSnapshot(jobDir string) (*Snapshot, error) {
	snaps, err := ListSnapshots(jobDir)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[len(snaps)-1], nil
}

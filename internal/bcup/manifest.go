package bcup

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Names of the files inside a snapshot directory. The manifest always lives
// beside the data payload, never inside the archive, so change detection
// reads it without decompression regardless of method.
const (
	DataDirName      = "data"
	ArchiveName      = "data.tar.gz"
	ManifestFileName = "manifest.yml"
)

// EntryStatus tags a manifest entry as part of the current tree or as a
// deletion marker recorded by a diff snapshot.
type EntryStatus string

const (
	StatusPresent EntryStatus = "present"
	StatusDeleted EntryStatus = "deleted"
)

// Entry is the recorded fingerprint of one file.
type Entry struct {
	Size    int64       `yaml:"size"`
	ModTime time.Time   `yaml:"mtime"`
	SHA256  string      `yaml:"sha256,omitempty"`
	Status  EntryStatus `yaml:"status"`
}

// Same reports whether two entries carry the same fingerprint under the
// given mode.
func (e Entry) Same(other Entry, fp Fingerprint) bool {
	if fp == FingerprintSHA256 {
		return e.SHA256 != "" && e.SHA256 == other.SHA256
	}
	return e.Size == other.Size && e.ModTime.Equal(other.ModTime)
}

// Manifest maps relative file paths to fingerprints. The manifest of the
// most recent snapshot always reflects the full current state of the source
// tree, so the next run has a correct baseline without replaying the chain.
// Entries with StatusDeleted record the removals of the run that wrote the
// manifest; they are ignored as baseline state.
type Manifest struct {
	CreatedAt time.Time        `yaml:"created_at"`
	Entries   map[string]Entry `yaml:"entries"`
}

// NewManifest creates an empty manifest stamped with the run's timestamp.
func NewManifest(createdAt time.Time) *Manifest {
	return &Manifest{CreatedAt: createdAt, Entries: make(map[string]Entry)}
}

// Present returns only the entries describing files that currently exist.
func (m *Manifest) Present() map[string]Entry {
	present := make(map[string]Entry, len(m.Entries))
	for path, e := range m.Entries {
		if e.Status == StatusPresent {
			present[path] = e
		}
	}
	return present
}

// Encode writes the manifest as YAML.
func (m *Manifest) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// DecodeManifest reads a YAML manifest.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return &m, nil
}

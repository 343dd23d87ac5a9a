package bcup

// Filesystem provides the filesystem operations the backup engine needs.
// It abstracts file access to keep the engine testable and the OS details
// in one place.
type Filesystem interface {
	// Walk scans the tree rooted at root and returns a fingerprint entry
	// per regular file, keyed by relative path, all with StatusPresent.
	// Symlinks, special files, permission-denied entries and paths rejected
	// by rules are returned in skipped; they never abort the walk. A root
	// that cannot be read at all is an error.
	Walk(root string, fp Fingerprint, rules PathRules) (entries map[string]Entry, skipped []string, err error)

	// CopyFile copies a regular file, creating parent directories and
	// preserving permissions and modification time.
	CopyFile(src, dst string) error

	MkdirAll(path string) error
	Rename(oldPath, newPath string) error
	RemoveAll(path string) error
}

// Archiver packs a directory into a tar.gz archive. dir's contents appear
// under root/ inside the archive.
type Archiver interface {
	Compress(dir, archivePath, root string) error
}

package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"bcup-go/internal/bcup"
)

// OSFilesystem is the real filesystem implementation of bcup.Filesystem.
type OSFilesystem struct{}

func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{}
}

// Walk scans the tree rooted at root and fingerprints every regular file.
// Symlinks, special files and entries that cannot be read are collected in
// skipped; a single unreadable file never aborts the walk. Only a root that
// cannot be read at all is an error.
func (f *OSFilesystem) Walk(root string, fp bcup.Fingerprint, rules bcup.PathRules) (map[string]bcup.Entry, []string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, nil, err
	}

	entries := make(map[string]bcup.Entry)
	var skipped []string

	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if path == root {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if err != nil {
			// Unreadable directory or a stat failure mid-walk.
			skipped = append(skipped, rel)
			return nil
		}
		if rules != nil && !rules.Allowed(rel) {
			skipped = append(skipped, rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks, devices, sockets, pipes.
			skipped = append(skipped, rel)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped = append(skipped, rel)
			return nil
		}

		entry := bcup.Entry{
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Status:  bcup.StatusPresent,
		}
		if fp == bcup.FingerprintSHA256 {
			sum, err := hashFile(path)
			if err != nil {
				skipped = append(skipped, rel)
				return nil
			}
			entry.SHA256 = sum
		}
		entries[rel] = entry
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return entries, skipped, nil
}

// CopyFile copies a regular file, creating parent directories and
// preserving permissions and modification time where the target filesystem
// supports them.
func (f *OSFilesystem) CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying data: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination: %w", err)
	}

	// Best effort: not every filesystem stores mtimes faithfully.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

func (f *OSFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (f *OSFilesystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (f *OSFilesystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var _ bcup.Filesystem = (*OSFilesystem)(nil)

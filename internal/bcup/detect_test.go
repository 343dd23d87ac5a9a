package bcup_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"bcup-go/internal/bcup"
	"bcup-go/internal/fs"
	"bcup-go/internal/testutil"
)

func diffJob(source, target string) bcup.Job {
	return bcup.Job{
		ID:          "job",
		Source:      source,
		Target:      target,
		Period:      time.Hour,
		Method:      bcup.MethodDiff,
		NameFormat:  "Y-m-d_H-M-S",
		Fingerprint: bcup.FingerprintMtime,
	}
}

func TestDetector_FirstRunReportsEverythingAdded(t *testing.T) {
	source := t.TempDir()
	testutil.WriteFile(t, source, "a.txt", "alpha")
	testutil.WriteFile(t, source, "docs/b.txt", "beta")

	d := bcup.NewDetector(fs.NewOSFilesystem())
	ch, err := d.Detect(diffJob(source, t.TempDir()), nil, time.Now())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	want := []string{"a.txt", "docs/b.txt"}
	if !reflect.DeepEqual(ch.Added, want) {
		t.Errorf("Added = %v, want %v", ch.Added, want)
	}
	if len(ch.Modified) != 0 || len(ch.Removed) != 0 {
		t.Errorf("first run should only add: modified=%v removed=%v", ch.Modified, ch.Removed)
	}
	if len(ch.Manifest.Entries) != 2 {
		t.Errorf("manifest has %d entries, want 2", len(ch.Manifest.Entries))
	}
}

func TestDetector_AddedModifiedRemoved(t *testing.T) {
	source := t.TempDir()
	old := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	testutil.WriteFile(t, source, "keep.txt", "same")
	testutil.WriteFile(t, source, "edit.txt", "before")
	testutil.WriteFile(t, source, "drop.txt", "doomed")
	for _, rel := range []string{"keep.txt", "edit.txt", "drop.txt"} {
		testutil.Touch(t, source, rel, old)
	}

	job := diffJob(source, t.TempDir())
	d := bcup.NewDetector(fs.NewOSFilesystem())

	first, err := d.Detect(job, nil, old)
	if err != nil {
		t.Fatalf("first Detect() error = %v", err)
	}

	testutil.WriteFile(t, source, "edit.txt", "after!")
	testutil.Touch(t, source, "edit.txt", old.Add(time.Minute))
	testutil.WriteFile(t, source, "new.txt", "fresh")
	if err := os.Remove(filepath.Join(source, "drop.txt")); err != nil {
		t.Fatal(err)
	}

	second, err := d.Detect(job, first.Manifest, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Detect() error = %v", err)
	}

	if !reflect.DeepEqual(second.Added, []string{"new.txt"}) {
		t.Errorf("Added = %v, want [new.txt]", second.Added)
	}
	if !reflect.DeepEqual(second.Modified, []string{"edit.txt"}) {
		t.Errorf("Modified = %v, want [edit.txt]", second.Modified)
	}
	if !reflect.DeepEqual(second.Removed, []string{"drop.txt"}) {
		t.Errorf("Removed = %v, want [drop.txt]", second.Removed)
	}

	// The new manifest still knows the full state, with a deletion marker.
	if got := second.Manifest.Entries["drop.txt"].Status; got != bcup.StatusDeleted {
		t.Errorf("drop.txt status = %q, want deleted", got)
	}
	if got := second.Manifest.Entries["keep.txt"].Status; got != bcup.StatusPresent {
		t.Errorf("keep.txt status = %q, want present", got)
	}
}

func TestDetector_UnchangedSourceIsEmpty(t *testing.T) {
	source := t.TempDir()
	testutil.WriteFile(t, source, "a.txt", "alpha")

	job := diffJob(source, t.TempDir())
	d := bcup.NewDetector(fs.NewOSFilesystem())

	first, err := d.Detect(job, nil, time.Now())
	if err != nil {
		t.Fatalf("first Detect() error = %v", err)
	}
	second, err := d.Detect(job, first.Manifest, time.Now())
	if err != nil {
		t.Fatalf("second Detect() error = %v", err)
	}
	if !second.Empty() {
		t.Errorf("unchanged source reported changes: +%v ~%v -%v", second.Added, second.Modified, second.Removed)
	}
}

func TestDetector_SymlinksAreSkippedNotChanges(t *testing.T) {
	source := t.TempDir()
	testutil.WriteFile(t, source, "real.txt", "data")
	if err := os.Symlink("real.txt", filepath.Join(source, "link.txt")); err != nil {
		t.Fatal(err)
	}

	d := bcup.NewDetector(fs.NewOSFilesystem())
	ch, err := d.Detect(diffJob(source, t.TempDir()), nil, time.Now())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !reflect.DeepEqual(ch.Skipped, []string{"link.txt"}) {
		t.Errorf("Skipped = %v, want [link.txt]", ch.Skipped)
	}
	if !reflect.DeepEqual(ch.Added, []string{"real.txt"}) {
		t.Errorf("Added = %v, want [real.txt]", ch.Added)
	}
}

func TestDetector_TargetFilesystemRulesSkipPaths(t *testing.T) {
	source := t.TempDir()
	testutil.WriteFile(t, source, "clean.txt", "ok")
	testutil.WriteFile(t, source, "bad*name.txt", "nope")

	rules, err := fs.RulesFor("ntfs")
	if err != nil {
		t.Fatal(err)
	}
	job := diffJob(source, t.TempDir())
	job.Rules = rules

	ch, err := bcup.NewDetector(fs.NewOSFilesystem()).Detect(job, nil, time.Now())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !reflect.DeepEqual(ch.Skipped, []string{"bad*name.txt"}) {
		t.Errorf("Skipped = %v, want [bad*name.txt]", ch.Skipped)
	}
	if !reflect.DeepEqual(ch.Added, []string{"clean.txt"}) {
		t.Errorf("Added = %v, want [clean.txt]", ch.Added)
	}
}

func TestDetector_Sha256SeesRewriteThatMtimeMisses(t *testing.T) {
	source := t.TempDir()
	mtime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	testutil.WriteFile(t, source, "a.txt", "12345")
	testutil.Touch(t, source, "a.txt", mtime)

	job := diffJob(source, t.TempDir())
	job.Fingerprint = bcup.FingerprintSHA256
	d := bcup.NewDetector(fs.NewOSFilesystem())

	first, err := d.Detect(job, nil, mtime)
	if err != nil {
		t.Fatalf("first Detect() error = %v", err)
	}

	// Same size, same mtime, different bytes.
	testutil.WriteFile(t, source, "a.txt", "54321")
	testutil.Touch(t, source, "a.txt", mtime)

	second, err := d.Detect(job, first.Manifest, mtime.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Detect() error = %v", err)
	}
	if !reflect.DeepEqual(second.Modified, []string{"a.txt"}) {
		t.Errorf("Modified = %v, want [a.txt]", second.Modified)
	}

	t.Run("mtime fingerprint misses it", func(t *testing.T) {
		mtimeJob := job
		mtimeJob.Fingerprint = bcup.FingerprintMtime
		ch, err := d.Detect(mtimeJob, first.Manifest, mtime.Add(time.Hour))
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if !ch.Empty() {
			t.Errorf("mtime mode reported changes: %v", ch.Modified)
		}
	})
}

func TestDetector_MissingSourceIsSourceUnreadable(t *testing.T) {
	job := diffJob(filepath.Join(t.TempDir(), "gone"), t.TempDir())
	_, err := bcup.NewDetector(fs.NewOSFilesystem()).Detect(job, nil, time.Now())
	if !errors.Is(err, bcup.ErrSourceUnreadable) {
		t.Errorf("Detect() error = %v, want ErrSourceUnreadable", err)
	}
}

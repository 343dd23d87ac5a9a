package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	"bcup-go/internal/bcup"
	"bcup-go/internal/testutil"
)

func TestOSFilesystem_Walk(t *testing.T) {
	f := NewOSFilesystem()

	t.Run("fingerprints regular files", func(t *testing.T) {
		root := t.TempDir()
		mtime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		testutil.WriteFile(t, root, "a.txt", "alpha")
		testutil.WriteFile(t, root, "sub/b.txt", "bb")
		testutil.Touch(t, root, "a.txt", mtime)

		entries, skipped, err := f.Walk(root, bcup.FingerprintMtime, nil)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if len(skipped) != 0 {
			t.Errorf("skipped = %v, want none", skipped)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %v, want two files", keys(entries))
		}
		a := entries["a.txt"]
		if a.Size != 5 || !a.ModTime.Equal(mtime) || a.Status != bcup.StatusPresent {
			t.Errorf("a.txt entry = %+v", a)
		}
		if a.SHA256 != "" {
			t.Error("mtime walk should not hash file contents")
		}
	})

	t.Run("sha256 mode hashes contents", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFile(t, root, "a.txt", "alpha")

		entries, _, err := f.Walk(root, bcup.FingerprintSHA256, nil)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		// sha256("alpha")
		want := "8ed3f6ad685b959ead7022518e1af76cd816f8e8ec7ccdda1ed4018e8f2223f8"
		if got := entries["a.txt"].SHA256; got != want {
			t.Errorf("SHA256 = %q, want %q", got, want)
		}
	})

	t.Run("skips symlinks and keeps walking", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFile(t, root, "real.txt", "x")
		if err := os.Symlink("real.txt", filepath.Join(root, "link")); err != nil {
			t.Fatal(err)
		}

		entries, skipped, err := f.Walk(root, bcup.FingerprintMtime, nil)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if !reflect.DeepEqual(skipped, []string{"link"}) {
			t.Errorf("skipped = %v, want [link]", skipped)
		}
		if _, ok := entries["real.txt"]; !ok {
			t.Error("real.txt missing from entries")
		}
	})

	t.Run("rules reject whole directories", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFile(t, root, "ok/a.txt", "x")
		testutil.WriteFile(t, root, "bad*dir/b.txt", "y")

		rules, err := RulesFor("ntfs")
		if err != nil {
			t.Fatal(err)
		}
		entries, skipped, err := f.Walk(root, bcup.FingerprintMtime, rules)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if !reflect.DeepEqual(skipped, []string{"bad*dir"}) {
			t.Errorf("skipped = %v, want [bad*dir]", skipped)
		}
		if !reflect.DeepEqual(keys(entries), []string{"ok/a.txt"}) {
			t.Errorf("entries = %v, want [ok/a.txt]", keys(entries))
		}
	})

	t.Run("missing root is an error", func(t *testing.T) {
		_, _, err := f.Walk(filepath.Join(t.TempDir(), "gone"), bcup.FingerprintMtime, nil)
		if err == nil {
			t.Fatal("Walk() on missing root should fail")
		}
	})
}

func TestOSFilesystem_CopyFile(t *testing.T) {
	f := NewOSFilesystem()
	root := t.TempDir()
	mtime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	testutil.WriteFile(t, root, "src.txt", "payload")
	testutil.Touch(t, root, "src.txt", mtime)

	dst := filepath.Join(root, "deep/nested/dst.txt")
	if err := f.CopyFile(filepath.Join(root, "src.txt"), dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("copied content = %q, want payload", data)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), mtime)
	}
}

func TestNameRules(t *testing.T) {
	t.Run("posix allows everything", func(t *testing.T) {
		rules, err := RulesFor("")
		if err != nil {
			t.Fatal(err)
		}
		if !rules.Allowed(`weird "*:<>?\| name`) {
			t.Error("posix rules rejected a storable name")
		}
	})

	t.Run("ntfs forbids reserved characters", func(t *testing.T) {
		rules, err := RulesFor("ntfs")
		if err != nil {
			t.Fatal(err)
		}
		if rules.Allowed("docs/a:b.txt") {
			t.Error("ntfs rules allowed a colon")
		}
		if !rules.Allowed("docs/a+b.txt") {
			t.Error("ntfs rules rejected a plus sign")
		}
	})

	t.Run("fat32 is stricter than ntfs", func(t *testing.T) {
		rules, err := RulesFor("fat32")
		if err != nil {
			t.Fatal(err)
		}
		if rules.Allowed("docs/a+b.txt") {
			t.Error("fat32 rules allowed a plus sign")
		}
	})

	t.Run("unknown kind is invalid config", func(t *testing.T) {
		if _, err := RulesFor("hfs"); err == nil {
			t.Fatal("RulesFor(\"hfs\") should fail")
		}
	})
}

func keys(entries map[string]bcup.Entry) []string {
	out := make([]string, 0, len(entries))
	for k := range entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

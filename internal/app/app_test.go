package app

import (
	"path/filepath"
	"testing"

	"bcup-go/internal/bcup"
	"bcup-go/internal/config"
	"bcup-go/internal/testutil"
)

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.History.Type = "memory"
	cfg.Sources = []config.SourceConfig{
		{Source: source, Target: filepath.Join(base, "backup"), Period: "1h", Method: "full"},
	}
	return cfg
}

func TestApp_RunOnce(t *testing.T) {
	source := t.TempDir()
	testutil.WriteFile(t, source, "a.txt", "alpha")

	app, err := NewApp(testConfig(t, source))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if err := app.RunOnce(); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	jobs := app.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("len(Jobs()) = %d, want 1", len(jobs))
	}
	snaps, err := app.Snapshots(jobs[0])
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	if got := testutil.ReadFile(t, snaps[0].DataPath(), "a.txt"); got != "alpha" {
		t.Errorf("a.txt = %q, want alpha", got)
	}

	recs, err := app.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Status != bcup.RunCompleted {
		t.Errorf("history = %+v, want one completed run", recs)
	}
}

func TestNewApp_FailsWithoutValidJobs(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Sources[0].Period = "never"

	if _, err := NewApp(cfg); err == nil {
		t.Fatal("NewApp() with no valid jobs should fail")
	}
}

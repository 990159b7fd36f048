package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LUTIMG_COLOR", "")
	t.Setenv("LUTIMG_PLOT_DIR", "")
	t.Setenv("LUTIMG_PREVIEW", "")
	t.Setenv("LUTIMG_UPDATE_REPO", "")
	testChdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Color || cfg.Preview || cfg.PlotDir != "" || cfg.UpdateRepo != "Fepozopo/lutimg" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LUTIMG_COLOR", "true")
	t.Setenv("LUTIMG_PLOT_DIR", "/tmp/plots")
	t.Setenv("LUTIMG_PREVIEW", "1")
	t.Setenv("LUTIMG_UPDATE_REPO", "someone/fork")
	testChdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Color || !cfg.Preview || cfg.PlotDir != "/tmp/plots" || cfg.UpdateRepo != "someone/fork" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadBadBool(t *testing.T) {
	t.Setenv("LUTIMG_COLOR", "sometimes")
	testChdir(t, t.TempDir())
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad LUTIMG_COLOR")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("# plots\nLUTIMG_PLOT_DIR=\"hist out\"\nexport LUTIMG_PREVIEW=true\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// registered with t.Setenv so they are restored, then cleared for godotenv
	for _, k := range []string{"LUTIMG_PLOT_DIR", "LUTIMG_PREVIEW", "LUTIMG_COLOR", "LUTIMG_UPDATE_REPO"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.PlotDir != "hist out" || !cfg.Preview {
		t.Fatalf("expected values from .env, got %+v", cfg)
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore cwd %s: %v", old, err)
		}
	})
}

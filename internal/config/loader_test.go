package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeFile(t, d, "parrotctl.toml", "work_dir = \"/tmp/w\"\ncheckpoint_id = \"org/model\"\ndataset = \"conductor\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkDir != "/tmp/w" || cfg.CheckpointID != "org/model" || cfg.Dataset != "conductor" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeFile(t, d, "c.yaml", "work_dir: /tmp/w\nstatus_addr: \":6176\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkDir != "/tmp/w" || cfg.StatusAddr != ":6176" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeFile(t, d, "c.json", `{"work_dir":"/tmp/w","log_level":"debug"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkDir != "/tmp/w" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error on empty path")
	}
	if _, err := Load("/definitely/missing.toml"); err == nil {
		t.Fatal("expected error on missing file")
	}
	d := t.TempDir()
	p := writeFile(t, d, "c.ini", "x=1")
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "unsupported config extension") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
	bad := writeFile(t, d, "bad.toml", "not toml = = =")
	if _, err := Load(bad); err == nil {
		t.Fatal("expected toml parse error")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{WorkDir: t.TempDir()}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.CheckpointID != DefaultCheckpointID {
		t.Fatalf("checkpoint default: %q", cfg.CheckpointID)
	}
	if cfg.Dataset != DefaultDataset {
		t.Fatalf("dataset default: %q", cfg.Dataset)
	}
	if cfg.ParrotDir != filepath.Join(cfg.WorkDir, "lit-parrot") {
		t.Fatalf("parrot dir: %q", cfg.ParrotDir)
	}
	if cfg.VenvDir != filepath.Join(cfg.ParrotDir, ".venv") {
		t.Fatalf("venv dir: %q", cfg.VenvDir)
	}
	if cfg.BuildDir != filepath.Join(cfg.WorkDir, "build") {
		t.Fatalf("build dir: %q", cfg.BuildDir)
	}
	// derived paths
	want := filepath.Join(cfg.ParrotDir, "checkpoints", "togethercomputer", "RedPajama-INCITE-Base-3B-v1")
	if cfg.CheckpointDir() != want {
		t.Fatalf("checkpoint dir: %q want %q", cfg.CheckpointDir(), want)
	}
	if cfg.DataDir() != filepath.Join(cfg.ParrotDir, "data", "dolly") {
		t.Fatalf("data dir: %q", cfg.DataDir())
	}
	if !strings.HasPrefix(cfg.PipPrefix(), cfg.BuildDir) {
		t.Fatalf("pip prefix %q not under build dir %q", cfg.PipPrefix(), cfg.BuildDir)
	}
}

func TestApplyDefaultsKeepsExplicit(t *testing.T) {
	cfg := Config{
		WorkDir:      t.TempDir(),
		CheckpointID: "org/model",
		Dataset:      "conductor",
		OutDir:       "/tmp/out",
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.CheckpointID != "org/model" || cfg.Dataset != "conductor" || cfg.OutDir != "/tmp/out" {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
}

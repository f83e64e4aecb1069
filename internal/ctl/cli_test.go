package ctl

import (
	"context"
	"flag"
	"strings"
	"testing"

	"parrotctl/internal/config"
)

func TestMainWithArgsHelp(t *testing.T) {
	if code := MainWithArgs([]string{"--help"}); code != 0 {
		t.Fatalf("help exit code: %d", code)
	}
	if code := MainWithArgs([]string{"help"}); code != 0 {
		t.Fatalf("help exit code: %d", code)
	}
}

func TestMainWithArgsNoCommand(t *testing.T) {
	if code := MainWithArgs([]string{"--work-dir", t.TempDir()}); code != 2 {
		t.Fatalf("no command exit code: %d", code)
	}
}

func TestMainWithArgsUnknownCommand(t *testing.T) {
	if code := MainWithArgs([]string{"--work-dir", t.TempDir(), "frobnicate"}); code != 1 {
		t.Fatalf("unknown command exit code: %d", code)
	}
}

func TestParseConfigWithFlags(t *testing.T) {
	fs := flag.NewFlagSet("parrotctl", flag.ContinueOnError)
	wd := t.TempDir()
	cfg, rest, err := ParseConfigWith(fs, []string{
		"--work-dir", wd,
		"--checkpoint", "org/model",
		"--dataset", "conductor",
		"--status-addr", ":6176",
		"setup",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkDir != wd || cfg.CheckpointID != "org/model" || cfg.Dataset != "conductor" || cfg.StatusAddr != ":6176" {
		t.Fatalf("cfg: %+v", cfg)
	}
	if len(rest) != 1 || rest[0] != "setup" {
		t.Fatalf("rest: %v", rest)
	}
}

func TestParseConfigWithFile(t *testing.T) {
	wd := t.TempDir()
	cfgFile := wd + "/parrotctl.toml"
	writeFileT(t, cfgFile, "checkpoint_id = \"org/from-file\"\ndataset = \"conductor\"\n")
	fs := flag.NewFlagSet("parrotctl", flag.ContinueOnError)
	cfg, _, err := ParseConfigWith(fs, []string{
		"--config", cfgFile,
		"--work-dir", wd,
		// flag wins over file
		"--dataset", "dolly",
		"status",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CheckpointID != "org/from-file" {
		t.Fatalf("file value lost: %+v", cfg)
	}
	if cfg.Dataset != "dolly" {
		t.Fatalf("flag should win over file: %+v", cfg)
	}
}

func TestRunEmptyArgs(t *testing.T) {
	cfg := testConfig(t)
	if err := Run(nil, cfg); err == nil || !strings.Contains(err.Error(), "no command") {
		t.Fatalf("want no-command error, got %v", err)
	}
}

func TestRunDispatchesInstall(t *testing.T) {
	cfg := testConfig(t)
	var got []string
	stubActions(t, &got)
	if err := Run([]string{"install", "parrot"}, cfg); err != nil {
		t.Fatal(err)
	}
	if err := Run([]string{"install", "torch:gpu"}, cfg); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "parrot,torch:cuda" {
		t.Fatalf("dispatch: %v", got)
	}
	if err := Run([]string{"install"}, cfg); err == nil {
		t.Fatal("install without subcommand should error")
	}
	if err := Run([]string{"install", "bogus"}, cfg); err == nil {
		t.Fatal("unknown install subcommand should error")
	}
}

func TestRunDispatchesWeightsAndDataset(t *testing.T) {
	cfg := testConfig(t)
	var got []string
	stubActions(t, &got)
	if err := Run([]string{"weights", "download"}, cfg); err != nil {
		t.Fatal(err)
	}
	if err := Run([]string{"weights", "convert"}, cfg); err != nil {
		t.Fatal(err)
	}
	if err := Run([]string{"dataset", "prepare"}, cfg); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "download,convert,prepare" {
		t.Fatalf("dispatch: %v", got)
	}
	if err := Run([]string{"dataset", "convert", "only-one-arg"}, cfg); err == nil {
		t.Fatal("dataset convert without both paths should error")
	}
}

func TestRunDispatchesGenerate(t *testing.T) {
	cfg := testConfig(t)
	var gotPrompt string
	old := fnGenerate
	fnGenerate = func(ctx context.Context, c *config.Config, adapter, prompt string) error {
		gotPrompt = prompt
		return nil
	}
	t.Cleanup(func() { fnGenerate = old })
	if err := Run([]string{"generate", "hello there"}, cfg); err != nil {
		t.Fatal(err)
	}
	if gotPrompt != "hello there" {
		t.Fatalf("prompt: %q", gotPrompt)
	}
}

func TestRunStatusOnEmptyTree(t *testing.T) {
	cfg := testConfig(t)
	if err := Run([]string{"status"}, cfg); err != nil {
		t.Fatal(err)
	}
}

func TestBuildRootCmdTree(t *testing.T) {
	cfg := testConfig(t)
	root := BuildRootCmd(cfg)
	for _, name := range []string{"setup", "setup:gpu", "install", "weights", "dataset", "finetune", "generate", "status", "completion"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing command %q", name)
		}
	}
}

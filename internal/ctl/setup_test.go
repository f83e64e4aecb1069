package ctl

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"parrotctl/internal/config"
	"parrotctl/internal/pipeline"
)

// stubActions replaces every provisioning action with a recorder.
func stubActions(t *testing.T, got *[]string) {
	t.Helper()
	mark := func(name string) func(context.Context, *config.Config) error {
		return func(context.Context, *config.Config) error {
			*got = append(*got, name)
			return nil
		}
	}
	oldParrot, oldVenv, oldReq := fnInstallParrot, fnMakeVenv, fnInstallRequirements
	oldTorch, oldDown, oldConv, oldPrep := fnInstallTorch, fnDownloadWeights, fnConvertWeights, fnPrepareDataset
	oldFT := fnFinetune
	fnInstallParrot = mark("parrot")
	fnMakeVenv = mark("venv")
	fnInstallRequirements = mark("requirements")
	fnInstallTorch = func(ctx context.Context, cfg *config.Config, backend string) error {
		*got = append(*got, "torch:"+backend)
		return nil
	}
	fnDownloadWeights = mark("download")
	fnConvertWeights = mark("convert")
	fnPrepareDataset = mark("prepare")
	fnFinetune = mark("finetune")
	t.Cleanup(func() {
		fnInstallParrot, fnMakeVenv, fnInstallRequirements = oldParrot, oldVenv, oldReq
		fnInstallTorch, fnDownloadWeights, fnConvertWeights, fnPrepareDataset = oldTorch, oldDown, oldConv, oldPrep
		fnFinetune = oldFT
	})
}

func TestSetupRunsEveryStepInOrder(t *testing.T) {
	cfg := testConfig(t)
	var got []string
	stubActions(t, &got)
	if err := runSetup(cfg, "cpu"); err != nil {
		t.Fatal(err)
	}
	want := "parrot,venv,requirements,torch:cpu,download,convert,prepare"
	if strings.Join(got, ",") != want {
		t.Fatalf("sequence: %v", got)
	}
}

func TestSetupGPUDiffersOnlyInTorchStep(t *testing.T) {
	cfg := testConfig(t)
	cpu := pipeline.New("cpu", setupSteps(cfg, "cpu")).StepNames()
	gpu := pipeline.New("gpu", setupSteps(cfg, "cuda")).StepNames()
	if len(cpu) != len(gpu) {
		t.Fatalf("step counts differ: %v vs %v", cpu, gpu)
	}
	var diff []int
	for i := range cpu {
		if cpu[i] != gpu[i] {
			diff = append(diff, i)
		}
	}
	if len(diff) != 1 {
		t.Fatalf("want exactly one differing step, got %v vs %v", cpu, gpu)
	}
	i := diff[0]
	if cpu[i] != "torch:cpu" || gpu[i] != "torch:cuda" {
		t.Fatalf("differing step is %q vs %q", cpu[i], gpu[i])
	}
}

func TestSetupSkipsSatisfiedSteps(t *testing.T) {
	cfg := testConfig(t)
	// satisfy clone, venv, download, convert and dataset postconditions
	mkdirAll(t, filepath.Join(cfg.ParrotDir, ".git"))
	writeFileT(t, filepath.Join(cfg.VenvDir, "pyvenv.cfg"), "home = /usr")
	writeFileT(t, filepath.Join(cfg.CheckpointDir(), "lit_model.pth"), "w")
	writeFileT(t, filepath.Join(cfg.CheckpointDir(), "lit_config.json"), "{}")
	writeFileT(t, filepath.Join(cfg.DataDir(), "train.pt"), "d")

	var got []string
	stubActions(t, &got)
	if err := runSetup(cfg, "cpu"); err != nil {
		t.Fatal(err)
	}
	// requirements and torch carry no cheap postcondition and always run
	if strings.Join(got, ",") != "requirements,torch:cpu" {
		t.Fatalf("re-run should skip satisfied steps, ran %v", got)
	}
}

func TestSetupHaltsOnFirstFailure(t *testing.T) {
	cfg := testConfig(t)
	var got []string
	stubActions(t, &got)
	old := fnDownloadWeights
	fnDownloadWeights = func(context.Context, *config.Config) error {
		got = append(got, "download")
		return context.DeadlineExceeded
	}
	t.Cleanup(func() { fnDownloadWeights = old })

	err := runSetup(cfg, "cpu")
	if err == nil || !strings.Contains(err.Error(), "weights:download") {
		t.Fatalf("want download step failure, got %v", err)
	}
	if strings.Join(got, ",") != "parrot,venv,requirements,torch:cpu,download" {
		t.Fatalf("steps after failure must not run: %v", got)
	}
}

func TestFinetunePipeline(t *testing.T) {
	cfg := testConfig(t)
	var got []string
	stubActions(t, &got)
	if err := runFinetunePipeline(cfg); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "finetune" {
		t.Fatalf("finetune pipeline ran %v", got)
	}
}

func TestSetupServesStatusAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.StatusAddr = "127.0.0.1:0"
	var got []string
	stubActions(t, &got)
	if err := runSetup(cfg, "cpu"); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("pipeline did not run with status API enabled")
	}
}

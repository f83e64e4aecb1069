package ctl

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"parrotctl/internal/config"
	"parrotctl/internal/pipeline"
	"parrotctl/internal/statusapi"
)

// setupSteps builds the fixed provisioning order:
// clone → venv → requirements → torch → download → convert → dataset.
// The cpu and cuda variants differ only in the torch step.
func setupSteps(cfg *config.Config, backend string) []pipeline.Step {
	sat := func(probe func(*config.Config) bool) func(context.Context) (bool, error) {
		return func(context.Context) (bool, error) { return probe(cfg), nil }
	}
	return []pipeline.Step{
		{
			Name:      "parrot:clone",
			Desc:      "clone the lit-parrot framework",
			Satisfied: sat(hasParrotCheckout),
			Run:       func(ctx context.Context) error { return fnInstallParrot(ctx, cfg) },
		},
		{
			Name:      "venv:create",
			Desc:      "create the isolated Python environment",
			Satisfied: sat(hasVenv),
			Run:       func(ctx context.Context) error { return fnMakeVenv(ctx, cfg) },
		},
		{
			// pip resolves already-satisfied pins itself; no cheap
			// postcondition probe exists for a requirements manifest
			Name: "venv:requirements",
			Desc: "install pinned dependencies from requirements.txt",
			Run:  func(ctx context.Context) error { return fnInstallRequirements(ctx, cfg) },
		},
		{
			Name: "torch:" + backend,
			Desc: "install the nightly tensor library (" + backend + ")",
			Run:  func(ctx context.Context) error { return fnInstallTorch(ctx, cfg, backend) },
		},
		{
			Name:      "weights:download",
			Desc:      "download pretrained weights " + cfg.CheckpointID,
			Satisfied: sat(hasDownloadedWeights),
			Run:       func(ctx context.Context) error { return fnDownloadWeights(ctx, cfg) },
		},
		{
			Name:      "weights:convert",
			Desc:      "convert weights to the framework checkpoint layout",
			Satisfied: sat(hasConvertedCheckpoint),
			Run:       func(ctx context.Context) error { return fnConvertWeights(ctx, cfg) },
		},
		{
			Name:      "dataset:prepare",
			Desc:      "prepare the " + cfg.Dataset + " instruction dataset",
			Satisfied: sat(hasPreparedDataset),
			Run:       func(ctx context.Context) error { return fnPrepareDataset(ctx, cfg) },
		},
	}
}

// finetuneSteps covers the manual tail of the flow. Generation stays a
// separate command; fine-tuning is a single-step pipeline so it shares the
// runner's state tracking and status surface.
func finetuneSteps(cfg *config.Config) []pipeline.Step {
	return []pipeline.Step{
		{
			Name: "finetune:adapter",
			Desc: "adapter fine-tuning via finetune/adapter.py",
			Run:  func(ctx context.Context) error { return fnFinetune(ctx, cfg) },
		},
	}
}

func runSetup(cfg *config.Config, backend string) error {
	return runPipeline(cfg, "setup:"+backend, setupSteps(cfg, backend))
}

func runFinetunePipeline(cfg *config.Config) error {
	return runPipeline(cfg, "finetune", finetuneSteps(cfg))
}

// runPipeline executes steps under a signal-cancellable context and, when
// configured, serves the status API for the duration of the run.
func runPipeline(cfg *config.Config, name string, steps []pipeline.Step) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = KillTracked() }()

	pub := pipeline.NewMemoryPublisher()
	runner := pipeline.New(name, steps, pipeline.WithLogger(Logger()), pipeline.WithPublisher(pub))

	if cfg.StatusAddr != "" {
		srv, err := statusapi.Start(cfg.StatusAddr, runner, pub)
		if err != nil {
			return err
		}
		info("status API listening on %s", cfg.StatusAddr)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	return runner.Run(ctx)
}

// signalContext is used by single-step commands that bypass the runner.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

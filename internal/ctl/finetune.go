package ctl

import (
	"context"
	"fmt"
	"path/filepath"

	"parrotctl/internal/checkpoints"
	"parrotctl/internal/common/fsutil"
	"parrotctl/internal/config"
)

// finetuneAdapter runs the framework's adapter fine-tuning against the
// prepared checkpoint and dataset. The optimization loop itself is the
// framework's; we own preconditions and the output contract (iteration-
// numbered adapter weight files under cfg.OutDir).
func finetuneAdapter(ctx context.Context, cfg *config.Config) error {
	if err := verifyCheckpoint(cfg.CheckpointDir()); err != nil {
		return err
	}
	if !hasPreparedDataset(cfg) {
		return fmt.Errorf("dataset %q not prepared in %s; run 'parrotctl dataset prepare' first", cfg.Dataset, cfg.DataDir())
	}
	if err := fsutil.EnsureDir(cfg.OutDir); err != nil {
		return err
	}
	info("Fine-tuning %s on %q (out: %s)", cfg.CheckpointID, cfg.Dataset, cfg.OutDir)
	if err := runIn(ctx, cfg.ParrotDir, venvEnv(cfg), pythonBin(cfg),
		filepath.Join("finetune", "adapter.py"),
		"--data_dir", cfg.DataDir(),
		"--checkpoint_dir", cfg.CheckpointDir(),
		"--out_dir", cfg.OutDir); err != nil {
		return err
	}
	ad, err := checkpoints.LatestAdapter(cfg.OutDir)
	if err != nil {
		return fmt.Errorf("fine-tuning finished but produced no adapter weights: %w", err)
	}
	info("Adapter weights at %s (iteration %d)", ad.Path, ad.Iteration)
	return nil
}

// generateAdapter loads the newest adapter (or adapterPath when given) plus
// the base checkpoint and generates a completion for prompt, for manual
// validation of the fine-tune.
func generateAdapter(ctx context.Context, cfg *config.Config, adapterPath, prompt string) error {
	if err := verifyCheckpoint(cfg.CheckpointDir()); err != nil {
		return err
	}
	if adapterPath == "" {
		ad, err := checkpoints.LatestAdapter(cfg.OutDir)
		if err != nil {
			return err
		}
		adapterPath = ad.Path
	}
	if prompt == "" {
		prompt = cfg.Prompt
	}
	info("Generating with adapter %s", adapterPath)
	return runIn(ctx, cfg.ParrotDir, venvEnv(cfg), pythonBin(cfg),
		filepath.Join("generate", "adapter.py"),
		"--adapter_path", adapterPath,
		"--checkpoint_dir", cfg.CheckpointDir(),
		"--prompt", prompt)
}

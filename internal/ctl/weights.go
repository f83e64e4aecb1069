package ctl

import (
	"context"
	"fmt"
	"path/filepath"

	"parrotctl/internal/config"
)

// downloadWeights fetches the pretrained weights named by the checkpoint
// identifier via the framework's own download script. The script writes into
// checkpoints/<org>/<model> under the framework checkout.
func downloadWeights(ctx context.Context, cfg *config.Config) error {
	info("Downloading weights for %s", cfg.CheckpointID)
	return runIn(ctx, cfg.ParrotDir, venvEnv(cfg), pythonBin(cfg),
		filepath.Join("scripts", "download.py"),
		"--repo_id", cfg.CheckpointID)
}

// convertWeights transforms the downloaded checkpoint into the framework's
// on-disk layout (lit_model.pth + lit_config.json), in place.
func convertWeights(ctx context.Context, cfg *config.Config) error {
	if !hasDownloadedWeights(cfg) {
		return fmt.Errorf("no downloaded weights in %s; run 'parrotctl weights download' first", cfg.CheckpointDir())
	}
	info("Converting %s to the lit-parrot checkpoint layout", cfg.CheckpointID)
	if err := runIn(ctx, cfg.ParrotDir, venvEnv(cfg), pythonBin(cfg),
		filepath.Join("scripts", "convert_hf_checkpoint.py"),
		"--checkpoint_dir", cfg.CheckpointDir()); err != nil {
		return err
	}
	if !hasConvertedCheckpoint(cfg) {
		return fmt.Errorf("conversion finished but %s lacks lit_model.pth/lit_config.json", cfg.CheckpointDir())
	}
	return nil
}

package ctl

import (
	"context"
	"fmt"
	"path/filepath"

	"parrotctl/internal/config"
	"parrotctl/internal/dataset"
)

// prepareDataset materializes the training dataset via the framework's
// prepare_<name>.py script, tokenizing with the configured checkpoint.
// The coupling to the checkpoint is exactly "same identifier passed to both
// steps": we only require the converted checkpoint (tokenizer) to exist.
func prepareDataset(ctx context.Context, cfg *config.Config) error {
	if err := verifyCheckpoint(cfg.CheckpointDir()); err != nil {
		return err
	}
	script := filepath.Join("scripts", fmt.Sprintf("prepare_%s.py", cfg.Dataset))
	info("Preparing dataset %q into %s", cfg.Dataset, cfg.DataDir())
	return runIn(ctx, cfg.ParrotDir, venvEnv(cfg), pythonBin(cfg),
		script,
		"--checkpoint_dir", cfg.CheckpointDir(),
		"--destination_path", cfg.DataDir())
}

// convertCorpus converts a raw prompt/completion JSONL corpus into the
// instruction JSON layout the prepare scripts accept. Runs natively, no
// external process.
func convertCorpus(inPath, outPath string) error {
	n, err := dataset.ConvertFile(inPath, outPath)
	if err != nil {
		return fmt.Errorf("convert corpus %s: %w", inPath, err)
	}
	info("Wrote %d records to %s", n, outPath)
	return nil
}

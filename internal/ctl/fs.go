package ctl

import (
	"fmt"
	"path/filepath"

	"parrotctl/internal/checkpoints"
	"parrotctl/internal/common/fsutil"
	"parrotctl/internal/config"
)

// Postcondition probes for the provisioning steps. Each one answers "does
// this step's output already exist", enabling check-then-act re-runs.

func hasParrotCheckout(cfg *config.Config) bool {
	return fsutil.DirExists(filepath.Join(cfg.ParrotDir, ".git"))
}

func hasVenv(cfg *config.Config) bool {
	return fsutil.PathExists(filepath.Join(cfg.VenvDir, "pyvenv.cfg"))
}

func hasDownloadedWeights(cfg *config.Config) bool {
	return fsutil.NonEmptyDir(cfg.CheckpointDir())
}

func hasConvertedCheckpoint(cfg *config.Config) bool {
	return checkpoints.Converted(cfg.CheckpointDir())
}

func hasPreparedDataset(cfg *config.Config) bool {
	// prepare scripts write train.pt/test.pt into the destination dir
	return fsutil.PathExists(filepath.Join(cfg.DataDir(), "train.pt"))
}

func hasAdapter(cfg *config.Config) bool {
	_, err := checkpoints.LatestAdapter(cfg.OutDir)
	return err == nil
}

// verifyCheckpoint ensures dir is a usable converted checkpoint: converted
// weights plus the tokenizer the dataset step depends on.
func verifyCheckpoint(dir string) error {
	if !checkpoints.Converted(dir) {
		return fmt.Errorf("checkpoint %s is not converted (missing lit_model.pth/lit_config.json); run 'parrotctl weights convert'", dir)
	}
	if !fsutil.PathExists(filepath.Join(dir, "tokenizer.json")) &&
		!fsutil.PathExists(filepath.Join(dir, "tokenizer.model")) {
		return fmt.Errorf("checkpoint %s has no tokenizer files", dir)
	}
	return nil
}

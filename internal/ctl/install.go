package ctl

import (
	"context"
	"fmt"
	"path/filepath"

	"parrotctl/internal/common/fsutil"
	"parrotctl/internal/config"
)

// installParrot clones the lit-parrot framework into cfg.ParrotDir.
// Re-running with an existing checkout skips; a non-git directory at the
// path is an error rather than silently accepted stale content.
func installParrot(ctx context.Context, cfg *config.Config) error {
	if hasParrotCheckout(cfg) {
		info("lit-parrot checkout already present at %s", cfg.ParrotDir)
		return nil
	}
	if fsutil.PathExists(cfg.ParrotDir) {
		return fmt.Errorf("%s exists but is not a git checkout; remove it and re-run", cfg.ParrotDir)
	}
	if err := fsutil.EnsureDir(filepath.Dir(cfg.ParrotDir)); err != nil {
		return err
	}
	info("Cloning %s into %s", cfg.ParrotRepo, cfg.ParrotDir)
	return runVerbose(ctx, "git", "clone", cfg.ParrotRepo, cfg.ParrotDir)
}

// makeVenv creates the isolated Python environment.
func makeVenv(ctx context.Context, cfg *config.Config) error {
	if hasVenv(cfg) {
		info("venv already present at %s", cfg.VenvDir)
		return nil
	}
	info("Creating venv at %s", cfg.VenvDir)
	return runVerbose(ctx, "python3", "-m", "venv", cfg.VenvDir)
}

// installRequirements installs the framework's pinned dependency manifest
// into the venv, under the build-prefix environment.
func installRequirements(ctx context.Context, cfg *config.Config) error {
	if err := fsutil.EnsureDir(cfg.PipPrefix()); err != nil {
		return err
	}
	req := filepath.Join(cfg.ParrotDir, "requirements.txt")
	if !fsutil.PathExists(req) {
		return fmt.Errorf("requirements manifest not found at %s (is the framework cloned?)", req)
	}
	info("Installing pinned dependencies from %s", req)
	return runIn(ctx, cfg.ParrotDir, installEnv(cfg), pipBin(cfg), "install", "-r", req)
}

// installTorchDev installs the nightly tensor-library build for the chosen
// backend. The choice is the operator's; hasCUDA only informs a warning.
// pip overwrites whatever torch version the requirements step brought in.
func installTorchDev(ctx context.Context, cfg *config.Config, backend string) error {
	var index string
	switch backend {
	case "cpu":
		index = cfg.TorchIndexCPU
	case "cuda":
		index = cfg.TorchIndexCUDA
		if !hasCUDA() {
			warn("no NVIDIA GPU visible on this host; installing the CUDA torch build anyway")
		}
	default:
		return fmt.Errorf("unknown torch backend %q (want cpu or cuda)", backend)
	}
	info("Installing nightly torch (%s) from %s", backend, index)
	return runIn(ctx, cfg.ParrotDir, installEnv(cfg), pipBin(cfg),
		"install", "--pre", "--upgrade", "torch", "--index-url", index)
}

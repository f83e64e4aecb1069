package ctl

import (
	"os"
	"path/filepath"

	"parrotctl/internal/config"
)

// buildEnv computes the install-prefix environment every package-installation
// step runs under. All three path variables resolve beneath cfg.BuildDir so
// installs land in the project tree, not the system environment. The MPS
// fallback flag lets the nightly tensor library fall back to CPU for ops the
// Metal backend lacks.
func buildEnv(cfg *config.Config) map[string]string {
	prefix := cfg.PipPrefix()
	env := map[string]string{
		"PIP_PREFIX":                  prefix,
		"PYTHONPATH":                  filepath.Join(prefix, "lib", "python3.10", "site-packages"),
		"PATH":                        prependPath(filepath.Join(prefix, "bin")),
		"PYTORCH_ENABLE_MPS_FALLBACK": "1",
	}
	return env
}

// venvEnv yields the environment that replaces "source .venv/bin/activate":
// the venv bin dir leads PATH and VIRTUAL_ENV is set, so python/pip and the
// framework's scripts resolve inside the isolated environment.
func venvEnv(cfg *config.Config) map[string]string {
	return map[string]string{
		"VIRTUAL_ENV":                 cfg.VenvDir,
		"PATH":                        prependPath(filepath.Join(cfg.VenvDir, "bin")),
		"PYTORCH_ENABLE_MPS_FALLBACK": "1",
	}
}

// installEnv layers the build prefix over the activated venv for package
// installation: PATH resolves <prefix>/bin first, then the venv bin, then the
// inherited tail.
func installEnv(cfg *config.Config) map[string]string {
	env := mergeEnv(venvEnv(cfg), buildEnv(cfg))
	env["PATH"] = filepath.Join(cfg.PipPrefix(), "bin") +
		string(os.PathListSeparator) + venvEnv(cfg)["PATH"]
	return env
}

func prependPath(dir string) string {
	if cur := os.Getenv("PATH"); cur != "" {
		return dir + string(os.PathListSeparator) + cur
	}
	return dir
}

// pythonBin and pipBin return the interpreter and installer inside the venv.
func pythonBin(cfg *config.Config) string { return filepath.Join(cfg.VenvDir, "bin", "python") }
func pipBin(cfg *config.Config) string    { return filepath.Join(cfg.VenvDir, "bin", "pip") }

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"parrotctl/internal/common/fsutil"
)

// Config holds every parameter the provisioning pipeline needs. It replaces
// the ambient shell state (exported variables, cd) of a manual setup: values
// are resolved once and threaded explicitly through each step.
// Zero values mean "unspecified" and are filled in by ApplyDefaults.
type Config struct {
	// WorkDir is the root of the working tree. Everything else defaults to
	// paths beneath it.
	WorkDir string `json:"work_dir" yaml:"work_dir" toml:"work_dir"`
	// ParrotRepo is the git URL of the lit-parrot framework.
	ParrotRepo string `json:"parrot_repo" yaml:"parrot_repo" toml:"parrot_repo"`
	// ParrotDir is where the framework is checked out.
	ParrotDir string `json:"parrot_dir" yaml:"parrot_dir" toml:"parrot_dir"`
	// VenvDir is the isolated Python environment directory.
	VenvDir string `json:"venv_dir" yaml:"venv_dir" toml:"venv_dir"`
	// BuildDir roots the pip install prefix (PIP_PREFIX/PYTHONPATH/PATH).
	BuildDir string `json:"build_dir" yaml:"build_dir" toml:"build_dir"`
	// CheckpointID names the pretrained model repository to download.
	CheckpointID string `json:"checkpoint_id" yaml:"checkpoint_id" toml:"checkpoint_id"`
	// Dataset is the source corpus name, e.g. "dolly".
	Dataset string `json:"dataset" yaml:"dataset" toml:"dataset"`
	// TorchIndexCPU / TorchIndexCUDA are the nightly wheel index URLs for the
	// two tensor-library variants. Selection is always operator-driven.
	TorchIndexCPU  string `json:"torch_index_cpu" yaml:"torch_index_cpu" toml:"torch_index_cpu"`
	TorchIndexCUDA string `json:"torch_index_cuda" yaml:"torch_index_cuda" toml:"torch_index_cuda"`
	// OutDir is where fine-tuning writes iteration-numbered adapter weights.
	OutDir string `json:"out_dir" yaml:"out_dir" toml:"out_dir"`
	// Prompt is the default validation prompt for generate.
	Prompt string `json:"prompt" yaml:"prompt" toml:"prompt"`
	// StatusAddr, when set, serves /status, /events and /metrics while a
	// pipeline runs, e.g. ":6176".
	StatusAddr string `json:"status_addr" yaml:"status_addr" toml:"status_addr"`
	// LogLevel: debug|info|warn|error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

const (
	DefaultCheckpointID = "togethercomputer/RedPajama-INCITE-Base-3B-v1"
	DefaultDataset      = "dolly"
	DefaultParrotRepo   = "https://github.com/Lightning-AI/lit-parrot"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unspecified fields. WorkDir defaults to the current
// directory; derived paths hang off WorkDir/ParrotDir.
func (c *Config) ApplyDefaults() error {
	if c.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getwd: %w", err)
		}
		c.WorkDir = wd
	}
	expanded, err := fsutil.ExpandHome(c.WorkDir)
	if err != nil {
		return fmt.Errorf("work dir: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("abs work dir: %w", err)
	}
	c.WorkDir = abs
	if c.ParrotRepo == "" {
		c.ParrotRepo = DefaultParrotRepo
	}
	if c.ParrotDir == "" {
		c.ParrotDir = filepath.Join(c.WorkDir, "lit-parrot")
	}
	if c.VenvDir == "" {
		c.VenvDir = filepath.Join(c.ParrotDir, ".venv")
	}
	if c.BuildDir == "" {
		c.BuildDir = filepath.Join(c.WorkDir, "build")
	}
	if c.CheckpointID == "" {
		c.CheckpointID = DefaultCheckpointID
	}
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.TorchIndexCPU == "" {
		c.TorchIndexCPU = "https://download.pytorch.org/whl/nightly/cpu"
	}
	if c.TorchIndexCUDA == "" {
		c.TorchIndexCUDA = "https://download.pytorch.org/whl/nightly/cu121"
	}
	if c.OutDir == "" {
		c.OutDir = filepath.Join(c.ParrotDir, "out", "adapter", filepath.Base(c.CheckpointID))
	}
	if c.Prompt == "" {
		c.Prompt = "Recommend a movie to watch on the weekend."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// CheckpointDir returns the directory the download step populates for the
// configured repository identifier.
func (c Config) CheckpointDir() string {
	return filepath.Join(c.ParrotDir, "checkpoints", filepath.FromSlash(c.CheckpointID))
}

// DataDir returns the prepared dataset directory.
func (c Config) DataDir() string {
	return filepath.Join(c.ParrotDir, "data", c.Dataset)
}

// PipPrefix returns the pip installation prefix under BuildDir.
func (c Config) PipPrefix() string {
	return filepath.Join(c.BuildDir, "pip_packages")
}

package ctl

import (
	"flag"
	"fmt"
	"os"

	"parrotctl/internal/config"
)

func usage() {
	fmt.Println("Usage: parrotctl [--config file] [--work-dir dir] [--checkpoint id] [--dataset name] [--status-addr :6176] [--log-level info] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  setup                     full provisioning pipeline (CPU tensor library)")
	fmt.Println("  setup:gpu                 same pipeline, CUDA tensor library")
	fmt.Println("  install parrot|venv|torch:cpu|torch:gpu")
	fmt.Println("  weights download|convert")
	fmt.Println("  dataset prepare")
	fmt.Println("  dataset convert <in.jsonl> <out.json>")
	fmt.Println("  finetune")
	fmt.Println("  generate [prompt]")
	fmt.Println("  status")
}

// Run dispatches the CLI command. It returns an error instead of exiting,
// enabling reuse from the cobra tree and tests.
func Run(args []string, cfg *config.Config) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given; see 'parrotctl help'")
	}
	switch args[0] {
	case "setup":
		return runSetup(cfg, "cpu")
	case "setup:gpu", "setup-gpu":
		return runSetup(cfg, "cuda")
	case "install":
		if len(args) < 2 {
			return fmt.Errorf("install requires a subcommand: parrot|venv|torch:cpu|torch:gpu")
		}
		ctx, stop := signalContext()
		defer stop()
		switch args[1] {
		case "parrot":
			return fnInstallParrot(ctx, cfg)
		case "venv":
			if err := fnMakeVenv(ctx, cfg); err != nil {
				return err
			}
			return fnInstallRequirements(ctx, cfg)
		case "torch:cpu":
			return fnInstallTorch(ctx, cfg, "cpu")
		case "torch:gpu", "torch:cuda":
			return fnInstallTorch(ctx, cfg, "cuda")
		default:
			return fmt.Errorf("unknown install subcommand: %s", args[1])
		}
	case "weights":
		if len(args) < 2 {
			return fmt.Errorf("weights requires a subcommand: download|convert")
		}
		ctx, stop := signalContext()
		defer stop()
		switch args[1] {
		case "download":
			return fnDownloadWeights(ctx, cfg)
		case "convert":
			return fnConvertWeights(ctx, cfg)
		default:
			return fmt.Errorf("unknown weights subcommand: %s", args[1])
		}
	case "dataset":
		if len(args) < 2 {
			return fmt.Errorf("dataset requires a subcommand: prepare|convert")
		}
		switch args[1] {
		case "prepare":
			ctx, stop := signalContext()
			defer stop()
			return fnPrepareDataset(ctx, cfg)
		case "convert":
			if len(args) < 4 {
				return fmt.Errorf("dataset convert requires <in.jsonl> <out.json>")
			}
			return convertCorpus(args[2], args[3])
		default:
			return fmt.Errorf("unknown dataset subcommand: %s", args[1])
		}
	case "finetune":
		return runFinetunePipeline(cfg)
	case "generate":
		ctx, stop := signalContext()
		defer stop()
		prompt := ""
		if len(args) > 1 {
			prompt = args[1]
		}
		return fnGenerate(ctx, cfg, "", prompt)
	case "status":
		return runStatus(cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// ParseConfigWith parses flags using the provided FlagSet and args slice,
// loads an optional config file, applies environment defaults and fills the
// remaining fields. Tests inject their own FlagSet to avoid global state.
func ParseConfigWith(fs *flag.FlagSet, args []string) (*config.Config, []string, error) {
	cfgPath := fs.String("config", envStr("PARROTCTL_CONFIG", ""), "Config file (.toml/.yaml/.json)")
	workDir := fs.String("work-dir", envStr("PARROTCTL_WORK_DIR", ""), "Working tree root (default: current directory)")
	checkpoint := fs.String("checkpoint", envStr("PARROTCTL_CHECKPOINT", ""), "Model repository identifier")
	dataset := fs.String("dataset", envStr("PARROTCTL_DATASET", ""), "Source corpus name")
	statusAddr := fs.String("status-addr", envStr("PARROTCTL_STATUS_ADDR", ""), "Serve /status and /metrics on this address while a pipeline runs")
	logLvl := fs.String("log-level", envStr("PARROTCTL_LOG_LEVEL", ""), "Log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := &config.Config{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = &loaded
	}
	// flags win over file values
	if *workDir != "" {
		cfg.WorkDir = *workDir
	}
	if *checkpoint != "" {
		cfg.CheckpointID = *checkpoint
	}
	if *dataset != "" {
		cfg.Dataset = *dataset
	}
	if *statusAddr != "" {
		cfg.StatusAddr = *statusAddr
	}
	if *logLvl != "" {
		cfg.LogLevel = *logLvl
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, nil, err
	}
	SetLogLevel(cfg.LogLevel)
	return cfg, fs.Args(), nil
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	for _, a := range args {
		if a == "-h" || a == "--help" || a == "help" {
			usage()
			return 0
		}
	}
	fs := flag.NewFlagSet("parrotctl", flag.ContinueOnError)
	cfg, rest, err := ParseConfigWith(fs, args)
	if err != nil {
		errl("%s", err)
		return 2
	}
	if len(rest) == 0 {
		usage()
		return 2
	}
	if err := Run(rest, cfg); err != nil {
		errl("%s", err)
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/parrotctl.
func Main() int { return MainWithArgs(os.Args[1:]) }

package ctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parrotctl/internal/config"
)

// BuildRootCmd constructs a Cobra command tree wired to the same actions as
// the flag dispatcher. cfg is mutated by the persistent flags before any
// RunE fires.
func BuildRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "parrotctl",
		Short:         "Provision and drive adapter fine-tuning with lit-parrot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("checkpoint", cfg.CheckpointID, "Model repository identifier")
	root.PersistentFlags().String("dataset", cfg.Dataset, "Source corpus name")
	root.PersistentFlags().String("status-addr", cfg.StatusAddr, "Serve /status and /metrics while a pipeline runs")
	root.PersistentFlags().String("log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetString("checkpoint"); v != "" {
			cfg.CheckpointID = v
		}
		if v, _ := cmd.Flags().GetString("dataset"); v != "" {
			cfg.Dataset = v
		}
		if v, _ := cmd.Flags().GetString("status-addr"); v != "" {
			cfg.StatusAddr = v
		}
		if v, _ := cmd.Flags().GetString("log-level"); v != "" {
			cfg.LogLevel = v
		}
		if err := cfg.ApplyDefaults(); err != nil {
			return err
		}
		SetLogLevel(cfg.LogLevel)
		return nil
	}

	setupCmd := &cobra.Command{Use: "setup", Short: "Run the full provisioning pipeline (CPU tensor library)", Example: "  parrotctl setup", RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cfg, "cpu")
	}}
	setupGPU := &cobra.Command{Use: "setup:gpu", Short: "Run the full provisioning pipeline (CUDA tensor library)", RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cfg, "cuda")
	}}
	root.AddCommand(setupCmd, setupGPU)

	// install group
	installCmd := &cobra.Command{Use: "install", Short: "Run individual provisioning steps", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("install requires a subcommand: parrot|venv|torch:cpu|torch:gpu")
	}}
	installParrotCmd := &cobra.Command{Use: "parrot", Short: "Clone the lit-parrot framework", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnInstallParrot(ctx, cfg)
	}}
	installVenv := &cobra.Command{Use: "venv", Short: "Create the venv and install the requirements manifest", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		if err := fnMakeVenv(ctx, cfg); err != nil {
			return err
		}
		return fnInstallRequirements(ctx, cfg)
	}}
	installTorchCPU := &cobra.Command{Use: "torch:cpu", Short: "Install the nightly tensor library (CPU)", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnInstallTorch(ctx, cfg, "cpu")
	}}
	installTorchGPU := &cobra.Command{Use: "torch:gpu", Short: "Install the nightly tensor library (CUDA)", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnInstallTorch(ctx, cfg, "cuda")
	}}
	installCmd.AddCommand(installParrotCmd, installVenv, installTorchCPU, installTorchGPU)
	root.AddCommand(installCmd)

	// weights group
	weightsCmd := &cobra.Command{Use: "weights", Short: "Download and convert pretrained weights", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("weights requires a subcommand: download|convert")
	}}
	weightsDownload := &cobra.Command{Use: "download", Short: "Download pretrained weights by repository identifier", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnDownloadWeights(ctx, cfg)
	}}
	weightsConvert := &cobra.Command{Use: "convert", Short: "Convert downloaded weights to the framework layout", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnConvertWeights(ctx, cfg)
	}}
	weightsCmd.AddCommand(weightsDownload, weightsConvert)
	root.AddCommand(weightsCmd)

	// dataset group
	datasetCmd := &cobra.Command{Use: "dataset", Short: "Prepare or convert training datasets", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("dataset requires a subcommand: prepare|convert")
	}}
	datasetPrepare := &cobra.Command{Use: "prepare", Short: "Materialize the training dataset with the checkpoint's tokenizer", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return fnPrepareDataset(ctx, cfg)
	}}
	datasetConvert := &cobra.Command{Use: "convert <in.jsonl> <out.json>", Short: "Convert a prompt/completion corpus to instruction JSON", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		return convertCorpus(args[0], args[1])
	}}
	datasetCmd.AddCommand(datasetPrepare, datasetConvert)
	root.AddCommand(datasetCmd)

	finetuneCmd := &cobra.Command{Use: "finetune", Short: "Run adapter fine-tuning against the prepared checkpoint and dataset", RunE: func(cmd *cobra.Command, args []string) error {
		return runFinetunePipeline(cfg)
	}}
	generateCmd := &cobra.Command{Use: "generate [prompt]", Short: "Generate a completion with the newest adapter weights", Args: cobra.MaximumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		prompt := ""
		if len(args) > 0 {
			prompt = args[0]
		}
		return fnGenerate(ctx, cfg, "", prompt)
	}}
	statusCmd := &cobra.Command{Use: "status", Short: "List checkpoints, datasets and adapter artifacts", RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cfg)
	}}
	root.AddCommand(finetuneCmd, generateCmd, statusCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

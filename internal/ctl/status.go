package ctl

import (
	"encoding/json"
	"os"

	"parrotctl/internal/checkpoints"
	"parrotctl/internal/config"
)

// runStatus prints everything discoverable in the work tree as JSON.
func runStatus(cfg *config.Config) error {
	rep, err := checkpoints.Report(cfg.ParrotDir, cfg.OutDir)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

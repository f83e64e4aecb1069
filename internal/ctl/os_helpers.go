package ctl

import (
	"os/exec"

	"parrotctl/internal/common/fsutil"
)

// hasCUDA reports whether an NVIDIA GPU is visible on this host. It is used
// only to warn when the operator picks the GPU tensor-library variant on a
// machine without one; backend selection itself stays operator-driven.
func hasCUDA() bool {
	if fsutil.PathExists("/proc/driver/nvidia/version") {
		return true
	}
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}

// Package checkpoints discovers model checkpoints, datasets and adapter
// artifacts in a lit-parrot working tree.
package checkpoints

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"parrotctl/internal/common/fsutil"
	"parrotctl/pkg/types"
)

// Converted reports whether dir holds a checkpoint converted to the
// lit-parrot layout. The conversion step writes lit_model.pth and
// lit_config.json next to the downloaded weights.
func Converted(dir string) bool {
	return fsutil.PathExists(filepath.Join(dir, "lit_model.pth")) &&
		fsutil.PathExists(filepath.Join(dir, "lit_config.json"))
}

// ScanCheckpoints walks parrotDir/checkpoints, which is laid out as
// <org>/<model>, and reports each model directory found.
func ScanCheckpoints(parrotDir string) ([]types.Checkpoint, error) {
	root := filepath.Join(parrotDir, "checkpoints")
	orgs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoints dir: %w", err)
	}
	var out []types.Checkpoint
	for _, org := range orgs {
		if !org.IsDir() {
			continue
		}
		models, err := os.ReadDir(filepath.Join(root, org.Name()))
		if err != nil {
			continue
		}
		for _, m := range models {
			if !m.IsDir() {
				continue
			}
			dir := filepath.Join(root, org.Name(), m.Name())
			out = append(out, types.Checkpoint{
				RepoID:    org.Name() + "/" + m.Name(),
				Dir:       dir,
				Converted: Converted(dir),
			})
		}
	}
	return out, nil
}

// ScanDatasets lists prepared dataset directories under parrotDir/data.
func ScanDatasets(parrotDir string) ([]types.Dataset, error) {
	root := filepath.Join(parrotDir, "data")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var out []types.Dataset
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out = append(out, types.Dataset{Name: e.Name(), Dir: filepath.Join(root, e.Name())})
	}
	return out, nil
}

// ScanAdapters lists iteration-numbered adapter weight files (iter-NNNNNN.pth)
// under outDir, sorted by iteration ascending.
func ScanAdapters(outDir string) ([]types.Adapter, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read out dir: %w", err)
	}
	var out []types.Adapter
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		iter, ok := parseIter(e.Name())
		if !ok {
			continue
		}
		out = append(out, types.Adapter{Path: filepath.Join(outDir, e.Name()), Iteration: iter})
	}
	// insertion sort; adapter counts are tiny
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Iteration > out[j].Iteration; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}

// LatestAdapter returns the adapter with the highest iteration number.
func LatestAdapter(outDir string) (types.Adapter, error) {
	all, err := ScanAdapters(outDir)
	if err != nil {
		return types.Adapter{}, err
	}
	if len(all) == 0 {
		return types.Adapter{}, fmt.Errorf("no adapter weights (iter-*.pth) found in %s", outDir)
	}
	return all[len(all)-1], nil
}

// parseIter extracts N from "iter-N.pth" (zero padding allowed).
func parseIter(name string) (int, bool) {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "iter-") || !strings.HasSuffix(lower, ".pth") {
		return 0, false
	}
	num := strings.TrimSuffix(strings.TrimPrefix(lower, "iter-"), ".pth")
	// finetune scripts name intermediates like iter-000399-ckpt.pth
	num = strings.TrimSuffix(num, "-ckpt")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Report gathers everything discoverable in the work tree.
func Report(parrotDir, outDir string) (types.StatusReport, error) {
	var rep types.StatusReport
	cps, err := ScanCheckpoints(parrotDir)
	if err != nil {
		return rep, err
	}
	dss, err := ScanDatasets(parrotDir)
	if err != nil {
		return rep, err
	}
	ads, err := ScanAdapters(outDir)
	if err != nil {
		return rep, err
	}
	rep.Checkpoints = cps
	rep.Datasets = dss
	rep.Adapters = ads
	return rep, nil
}

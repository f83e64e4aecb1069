package ctl

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestRunCmdSuccessAndFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	ctx := context.Background()
	if err := RunCmd(ctx, Cmd{Path: "sh", Args: []string{"-c", "exit 0"}}); err != nil {
		t.Fatalf("exit 0: %v", err)
	}
	if err := RunCmd(ctx, Cmd{Path: "sh", Args: []string{"-c", "exit 3"}}); err == nil {
		t.Fatal("exit 3 should fail")
	}
}

func TestRunCmdThreadsEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	err := RunCmd(context.Background(), Cmd{
		Path: "sh",
		Args: []string{"-c", `test "$PARROT_TEST_VAR" = "hello"`},
		Env:  map[string]string{"PARROT_TEST_VAR": "hello"},
	})
	if err != nil {
		t.Fatalf("env not threaded: %v", err)
	}
}

func TestRunCmdWorkingDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	d := t.TempDir()
	err := RunCmd(context.Background(), Cmd{
		Path: "sh",
		Args: []string{"-c", "touch marker"},
		Dir:  d,
	})
	if err != nil {
		t.Fatalf("run in dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(d, "marker")); err != nil {
		t.Fatalf("command did not run in %s: %v", d, err)
	}
}

func TestRunCmdStreaming(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	err := RunCmd(context.Background(), Cmd{
		Path:   "sh",
		Args:   []string{"-c", "echo line1; echo line2 1>&2"},
		Stream: true,
	})
	if err != nil {
		t.Fatalf("streaming run: %v", err)
	}
}

func TestRunCmdTracksSpawnedProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	_ = KillTracked() // drain anything registered by earlier tests
	if err := runIn(context.Background(), "", nil, "sh", "-c", "exit 0"); err != nil {
		t.Fatal(err)
	}
	defaultProcManager.mu.Lock()
	n := len(defaultProcManager.procs)
	defaultProcManager.mu.Unlock()
	if n != 1 {
		t.Fatalf("tracked processes after runIn: %d", n)
	}
	if err := KillTracked(); err != nil {
		t.Fatal(err)
	}
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv(
		map[string]string{"A": "1", "B": "1"},
		map[string]string{"B": "2", "C": "2"},
	)
	if got["A"] != "1" || got["B"] != "2" || got["C"] != "2" {
		t.Fatalf("merge: %v", got)
	}
}

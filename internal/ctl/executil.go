package ctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes one external-process invocation. Every provisioning step is
// a blocking child process; environment and working directory are threaded
// explicitly here instead of mutating the parent process.
type Cmd struct {
	Path   string
	Args   []string
	Env    map[string]string // additional env vars
	Dir    string            // working directory
	Stream bool              // if true, stream stdout/err line by line
}

// RunCmd executes c, inheriting the parent environment plus c.Env. Every
// started child is registered with the process manager so a signal-driven
// shutdown can kill it.
func RunCmd(ctx context.Context, c Cmd) error {
	debug("exec %s %s (dir=%q)", c.Path, strings.Join(c.Args, " "), c.Dir)
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	if c.Stream {
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			return err
		}
		TrackProcess(cmd)
		go streamLines(stdout)
		go streamLines(stderr)
		return cmd.Wait()
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	TrackProcess(cmd)
	return cmd.Wait()
}

// runCmd is the injection point used by provisioning actions; tests swap it
// for a recorder.
var runCmd = RunCmd

func runVerbose(ctx context.Context, name string, args ...string) error {
	return runCmd(ctx, Cmd{Path: name, Args: args})
}

func runIn(ctx context.Context, dir string, env map[string]string, name string, args ...string) error {
	return runCmd(ctx, Cmd{Path: name, Args: args, Dir: dir, Env: env})
}

func streamLines(r io.Reader) {
	if r == nil {
		return
	}
	s := bufio.NewScanner(r)
	for s.Scan() {
		fmt.Println(s.Text())
	}
}

// mergeEnv overlays maps left to right; later keys win.
func mergeEnv(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

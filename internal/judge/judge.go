// Package judge implements the supervisor side of the judging sandbox: it
// spawns the restricted child, races a wall-clock watchdog against its
// natural termination, harvests kernel accounting, and classifies the
// outcome into a JudgeResult.
package judge

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/Irumyuui/Ember/internal/config"
	"github.com/Irumyuui/Ember/internal/errdefs"
	"github.com/Irumyuui/Ember/internal/logger"
	"github.com/Irumyuui/Ember/internal/runner"
)

// setupFailureSignal is raised by the runner when any pre-exec step fails.
// The classifier maps it to SystemError before any other rule.
const setupFailureSignal = unix.SIGUSR1

// specPipeFD is where the init pipe lands in the child: ExtraFiles start
// at descriptor 3.
const specPipeFD = 3

// Run executes one judging run and returns its verdict. It returns an
// error only for infrastructure failures before the child exists (non-root
// caller, spawn failure); once the child is running every outcome,
// including a failed reap, is expressed as a verdict.
func Run(cfg *config.Config) (*JudgeResult, error) {
	if os.Geteuid() != 0 {
		return nil, fmt.Errorf("%w: judging requires root", errdefs.ErrPermissionDenied)
	}

	log := logger.WithRun(uuid.NewString())

	payload, err := json.Marshal(runnerSpec(cfg))
	if err != nil {
		return nil, errdefs.JSON(err)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, errdefs.IO(err)
	}
	specR, specW, err := os.Pipe()
	if err != nil {
		return nil, errdefs.Kernel("pipe", err)
	}
	defer specW.Close()

	cmd := exec.Command(exe, runner.InitCommand)
	// The runner inherits our standard streams so that the /dev/std*
	// defaults still resolve; it rebinds all three before exec.
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{specR}
	cmd.Env = []string{fmt.Sprintf("%s=%d", runner.SpecFDEnv, specPipeFD)}

	if err := cmd.Start(); err != nil {
		specR.Close()
		return nil, errdefs.Kernel("spawn runner", err)
	}
	specR.Close()
	pid := cmd.Process.Pid
	tStart := time.Now()
	log.Debug("runner spawned", "pid", pid, "exe", cfg.ExeFilePath)

	if cfg.RealTimeLimit > 0 {
		timer := watchdog(pid, cfg.RealTimeLimit)
		defer timer.Stop()
	}

	// A dead runner surfaces the write error here; the reap below still
	// classifies the run, so only log it.
	if _, err := specW.Write(payload); err != nil {
		log.Debug("spec write failed", "pid", pid, "error", err)
	}
	specW.Close()

	ws, ru, err := reap(pid)
	realTime := uint64(time.Since(tStart).Milliseconds())
	if err != nil {
		// The child must not outlive a supervisor that gave up on it.
		unix.Kill(pid, unix.SIGKILL)
		var scratch unix.WaitStatus
		unix.Wait4(pid, &scratch, 0, nil)
		log.Debug("reap failed", "pid", pid, "error", err)
		return &JudgeResult{RealTime: realTime, State: StateSystemError}, nil
	}

	if ws.Stopped() {
		// Stopped is a terminal failure for the judge, not a suspension;
		// the child still exists, so put it down and reap the corpse.
		unix.Kill(pid, unix.SIGKILL)
		var scratch unix.WaitStatus
		unix.Wait4(pid, &scratch, 0, nil)
	}

	res := classify(cfg, terminationFromStatus(ws), usageFromRusage(&ru), realTime)
	log.Debug("run classified",
		"pid", pid,
		"state", res.State,
		"exit_code", res.ExitCode,
		"cpu_time_ms", res.CPUTime,
		"real_time_ms", res.RealTime,
		"memory_bytes", res.Memory)
	return &res, nil
}

// watchdog kills pid after limit milliseconds. It shares nothing with the
// supervisor beyond the pid; racing the reaper is fine because killing an
// already-reaped pid is a harmless error and killing a live child is the
// point. Stop after natural termination is best effort.
func watchdog(pid int, limitMS uint64) *time.Timer {
	return time.AfterFunc(time.Duration(limitMS)*time.Millisecond, func() {
		unix.Kill(pid, unix.SIGKILL)
	})
}

// reap blocks until the child reaches a terminal or stopped state and
// collects its resource accounting.
func reap(pid int) (unix.WaitStatus, unix.Rusage, error) {
	var ws unix.WaitStatus
	var ru unix.Rusage
	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WUNTRACED, &ru)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ws, ru, errdefs.Kernel("wait4", err)
		}
		if wpid == pid {
			return ws, ru, nil
		}
	}
}

// runnerSpec projects the validated config onto the child-side spec.
func runnerSpec(cfg *config.Config) *runner.Spec {
	return &runner.Spec{
		ExePath:         cfg.ExeFilePath,
		Argv:            cfg.Lang.ExecArgv(cfg.ExeFilePath, cfg.Args),
		Env:             cfg.Env,
		InputPath:       cfg.InputFilePath,
		OutputPath:      cfg.OutputFilePath,
		ErrorPath:       cfg.ErrorFilePath,
		StackLimit:      cfg.StackLimit,
		MemoryLimit:     cfg.MemoryLimit,
		OutputSizeLimit: cfg.OutputSizeLimit,
		CPUTimeLimit:    cfg.CPUTimeLimit,
		UID:             cfg.UID,
		GID:             cfg.GID,
	}
}

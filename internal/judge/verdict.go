package judge

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Irumyuui/Ember/internal/config"
)

// termination is the decoded wait status of the reaped child.
type termination struct {
	Exited     bool
	ExitStatus int
	Signaled   bool
	Signal     syscall.Signal
	Stopped    bool
	StopSignal syscall.Signal
}

func terminationFromStatus(ws unix.WaitStatus) termination {
	return termination{
		Exited:     ws.Exited(),
		ExitStatus: ws.ExitStatus(),
		Signaled:   ws.Signaled(),
		Signal:     ws.Signal(),
		Stopped:    ws.Stopped(),
		StopSignal: ws.StopSignal(),
	}
}

// usage is the child's kernel accounting, normalized to judge units.
type usage struct {
	CPUTimeMS   uint64
	MemoryBytes uint64
}

func usageFromRusage(ru *unix.Rusage) usage {
	return usage{
		CPUTimeMS: uint64(ru.Utime.Sec)*1000 + uint64(ru.Utime.Usec)/1000,
		// ru_maxrss is reported in kilobytes on Linux.
		MemoryBytes: uint64(ru.Maxrss) * 1024,
	}
}

// classify folds the raw termination and accounting into a verdict. It is
// a pure function of its inputs.
//
// A child that died on the setup-failure signal never ran user code, so
// that check precedes everything and no limit override applies. Otherwise
// the base state is Accepted, demoted to RuntimeError for any signal,
// stop, or non-zero exit, and then the limit overrides run in memory →
// real time → cpu time order: the kernel may kill an out-of-memory child
// before the watchdog fires, so the memory reading has to beat the generic
// signal interpretation, and each later check overrides the previous one.
// A real or CPU time equal to its limit counts as exceeded: the watchdog
// and the kernel stop the child once the limit is reached.
func classify(cfg *config.Config, term termination, use usage, realTimeMS uint64) JudgeResult {
	res := JudgeResult{
		CPUTime:  use.CPUTimeMS,
		RealTime: realTimeMS,
		Memory:   use.MemoryBytes,
		State:    StateAccepted,
	}

	if term.Signaled && term.Signal == setupFailureSignal {
		res.State = StateSystemError
		return res
	}

	if term.Exited {
		res.ExitCode = int32(term.ExitStatus & 0xff)
	}

	if term.Signaled || term.Stopped || (term.Exited && term.ExitStatus != 0) {
		res.State = StateRuntimeError
	}

	if cfg.MemoryLimit > 0 && res.Memory > cfg.MemoryLimit {
		res.State = StateMemoryLimitExceeded
	}
	if cfg.RealTimeLimit > 0 && res.RealTime >= cfg.RealTimeLimit {
		res.State = StateRealTimeLimitExceeded
	}
	if cfg.CPUTimeLimit > 0 && res.CPUTime >= cfg.CPUTimeLimit*1000 {
		res.State = StateCPUTimeLimitExceeded
	}

	return res
}

//go:build linux

package runner

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Init is called early in main when the binary is re-exec'd as the sandbox
// runner. It applies kernel resource limits, rebinds the standard streams,
// drops privileges, and execs the submission — in that order, because
// redirection must happen under the limits and no privileged call works
// after setuid. Init never returns: on success the process image is
// replaced, on failure the process raises the setup-failure signal so the
// supervisor classifies the run as a system error. No step may fall
// through to the next after a failure — a half-built sandbox must never
// reach user code.
func Init() {
	spec, err := readSpec()
	if err != nil {
		fail("read spec", err)
	}
	if err := applyRlimits(spec); err != nil {
		fail("apply rlimits", err)
	}
	if err := redirectStdio(spec); err != nil {
		fail("redirect stdio", err)
	}
	if err := dropPrivileges(spec); err != nil {
		fail("drop privileges", err)
	}
	err = unix.Exec(spec.ExePath, spec.Argv, spec.Env)
	fail("exec", err)
}

// fail reports the failed stage on stderr (already pointing at the error
// file once redirection ran) and terminates via the setup-failure signal.
// The Go runtime catches SIGUSR1 and ignores it, so the default (fatal)
// disposition is restored first; an all-zero kernel sigaction is SIG_DFL.
// The exit is a backstop for the case where the signal cannot be raised.
func fail(stage string, err error) {
	fmt.Fprintf(os.Stderr, "runner init: %s: %v\n", stage, err)
	var dfl [4]uint64
	unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(unix.SIGUSR1), uintptr(unsafe.Pointer(&dfl)), 0, 8, 0, 0)
	unix.Kill(unix.Getpid(), unix.SIGUSR1)
	os.Exit(1)
}

func readSpec() (*Spec, error) {
	raw := os.Getenv(SpecFDEnv)
	if raw == "" {
		return nil, fmt.Errorf("%s not set", SpecFDEnv)
	}
	fd, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s=%q: %w", SpecFDEnv, raw, err)
	}
	pipe := os.NewFile(uintptr(fd), "init-pipe")
	if pipe == nil {
		return nil, fmt.Errorf("init pipe fd %d is not open", fd)
	}
	// Close before exec so the pipe does not leak into the submission.
	defer pipe.Close()
	return decodeSpec(pipe)
}

// rlimitPair binds one configured limit to its kernel resource.
type rlimitPair struct {
	resource int
	value    uint64
}

// rlimits translates the configured limits, in application order: stack
// and address space before file size and CPU, matching the order the
// supervisor documents them in.
func rlimits(spec *Spec) []rlimitPair {
	var pairs []rlimitPair
	if spec.StackLimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_STACK, spec.StackLimit})
	}
	if spec.MemoryLimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_AS, spec.MemoryLimit})
	}
	if spec.OutputSizeLimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_FSIZE, spec.OutputSizeLimit})
	}
	if spec.CPUTimeLimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_CPU, spec.CPUTimeLimit})
	}
	return pairs
}

func applyRlimits(spec *Spec) error {
	for _, p := range rlimits(spec) {
		lim := unix.Rlimit{Cur: p.value, Max: p.value}
		if err := unix.Setrlimit(p.resource, &lim); err != nil {
			return fmt.Errorf("setrlimit(%d, %d): %w", p.resource, p.value, err)
		}
	}
	return nil
}

// redirectStdio opens input, output, and error in that order and dups each
// onto the matching standard descriptor. Input first: it is opened
// read-only and safe to retry, while opening outputs first would truncate
// them on an input-not-found failure.
func redirectStdio(spec *Spec) error {
	if err := rebind(spec.InputPath, unix.O_RDONLY, 0); err != nil {
		return fmt.Errorf("stdin from %s: %w", spec.InputPath, err)
	}
	if err := rebind(spec.OutputPath, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 1); err != nil {
		return fmt.Errorf("stdout to %s: %w", spec.OutputPath, err)
	}
	if err := rebind(spec.ErrorPath, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 2); err != nil {
		return fmt.Errorf("stderr to %s: %w", spec.ErrorPath, err)
	}
	return nil
}

func rebind(path string, flags int, target int) error {
	fd, err := unix.Open(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if fd == target {
		return nil
	}
	if err := unix.Dup3(fd, target, 0); err != nil {
		unix.Close(fd)
		return fmt.Errorf("dup: %w", err)
	}
	return unix.Close(fd)
}

// dropPrivileges sets the primary gid, replaces the supplementary set with
// {gid}, then sets the uid. Groups go first: once setuid lands on a
// non-zero id the supplementary call is no longer permitted. A setgid
// refusal is tolerated only when the process already runs with the target
// gid; the supplementary set is enforced unconditionally.
func dropPrivileges(spec *Spec) error {
	if spec.GID != nil {
		gid := int(*spec.GID)
		if err := syscall.Setgid(gid); err != nil && syscall.Getgid() != gid {
			return fmt.Errorf("setgid %d: %w", gid, err)
		}
		if err := syscall.Setgroups([]int{gid}); err != nil {
			return fmt.Errorf("setgroups [%d]: %w", gid, err)
		}
	}
	if spec.UID != nil {
		if err := syscall.Setuid(int(*spec.UID)); err != nil {
			return fmt.Errorf("setuid %d: %w", *spec.UID, err)
		}
	}
	return nil
}

// Package runner holds the child side of the judge: the pre-exec sequence
// that turns a freshly re-exec'd copy of this binary into the sandboxed
// submission. The supervisor in internal/judge owns the parent side.
package runner

import (
	"encoding/json"
	"fmt"
	"io"
)

// InitCommand is the hidden argv[1] marker the supervisor uses when
// re-exec'ing this binary as the sandbox runner. main intercepts it before
// any CLI parsing.
const InitCommand = "_runner_init"

// SpecFDEnv names the environment variable carrying the file descriptor
// number of the inherited pipe with the JSON-encoded Spec.
const SpecFDEnv = "EMBER_INIT_FD"

// Spec is the child-side slice of the judging configuration, shipped from
// the supervisor over the init pipe. Limits use zero for "not configured".
type Spec struct {
	ExePath string   `json:"exe_path"`
	Argv    []string `json:"argv"`
	Env     []string `json:"env"`

	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	ErrorPath  string `json:"error_path"`

	StackLimit      uint64 `json:"stack_limit,omitempty"`       // bytes
	MemoryLimit     uint64 `json:"memory_limit,omitempty"`      // bytes of address space
	OutputSizeLimit uint64 `json:"output_size_limit,omitempty"` // bytes
	CPUTimeLimit    uint64 `json:"cpu_time_limit,omitempty"`    // seconds

	UID *uint32 `json:"uid,omitempty"`
	GID *uint32 `json:"gid,omitempty"`
}

// decodeSpec reads one Spec from the init pipe.
func decodeSpec(r io.Reader) (*Spec, error) {
	var spec Spec
	if err := json.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	if spec.ExePath == "" {
		return nil, fmt.Errorf("spec missing exe_path")
	}
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("spec missing argv")
	}
	return &spec, nil
}

// Package config loads and validates the judging configuration document.
// A Config that survives validation is immutable for the rest of the run.
package config

import (
	"encoding/json"
	"os"

	"github.com/Irumyuui/Ember/internal/errdefs"
)

// Stream defaults when the document omits a redirection path.
const (
	defaultInputPath  = "/dev/stdin"
	defaultOutputPath = "/dev/stdout"
	defaultErrorPath  = "/dev/stderr"
)

// document is the wire form of the configuration. Optional limits are
// pointers so that an explicit zero can be told apart from absence.
type document struct {
	Lang        string `json:"lang"`
	ExeFilePath string `json:"exe_file_path"`

	InputFilePath  *string `json:"input_file_path"`
	OutputFilePath *string `json:"output_file_path"`
	ErrorFilePath  *string `json:"error_file_path"`

	CPUTimeLimit  *uint64 `json:"cpu_time_limit"`
	RealTimeLimit *uint64 `json:"real_time_limit"`
	MemoryLimit   *uint64 `json:"memory_limit"`
	StackLimit    *uint64 `json:"stack_limit"`
	MaxOutputSize *uint64 `json:"max_output_size"`

	Args []string `json:"args"`
	Env  []string `json:"env"`

	UID *uint32 `json:"uid"`
	GID *uint32 `json:"gid"`
}

// Config is the validated input to the judge core. Limits use zero for
// "not configured"; the wire form rejects explicit zeros before they get
// here. UID and GID stay nil when the child keeps the supervisor identity.
type Config struct {
	Lang        Language
	ExeFilePath string

	InputFilePath  string
	OutputFilePath string
	ErrorFilePath  string

	CPUTimeLimit    uint64 // seconds
	RealTimeLimit   uint64 // milliseconds
	MemoryLimit     uint64 // bytes of address space
	StackLimit      uint64 // bytes
	OutputSizeLimit uint64 // bytes

	Args []string
	Env  []string

	UID *uint32
	GID *uint32
}

// Load reads a JSON configuration document from path and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.IO(err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errdefs.JSON(err)
	}
	return fromDocument(&doc)
}

func fromDocument(doc *document) (*Config, error) {
	lang, err := ParseLanguage(doc.Lang)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Lang:           lang,
		ExeFilePath:    doc.ExeFilePath,
		InputFilePath:  stringOr(doc.InputFilePath, defaultInputPath),
		OutputFilePath: stringOr(doc.OutputFilePath, defaultOutputPath),
		ErrorFilePath:  stringOr(doc.ErrorFilePath, defaultErrorPath),
		Args:           doc.Args,
		Env:            doc.Env,
		UID:            doc.UID,
		GID:            doc.GID,
	}

	for _, p := range []string{cfg.ExeFilePath, cfg.InputFilePath, cfg.OutputFilePath, cfg.ErrorFilePath} {
		if err := checkFilePath(p); err != nil {
			return nil, err
		}
	}

	limits := []struct {
		field string
		src   *uint64
		dst   *uint64
	}{
		{"cpu_time_limit", doc.CPUTimeLimit, &cfg.CPUTimeLimit},
		{"real_time_limit", doc.RealTimeLimit, &cfg.RealTimeLimit},
		{"memory_limit", doc.MemoryLimit, &cfg.MemoryLimit},
		{"stack_limit", doc.StackLimit, &cfg.StackLimit},
		{"max_output_size", doc.MaxOutputSize, &cfg.OutputSizeLimit},
	}
	for _, l := range limits {
		if l.src == nil {
			continue
		}
		if *l.src == 0 {
			return nil, errdefs.InvalidLimit(l.field)
		}
		*l.dst = *l.src
	}

	return cfg, nil
}

func checkFilePath(path string) error {
	if path == "" {
		return errdefs.InvalidFilePath("(empty)")
	}
	if _, err := os.Stat(path); err != nil {
		return errdefs.InvalidFilePath(path)
	}
	return nil
}

func stringOr(s *string, def string) string {
	if s != nil && *s != "" {
		return *s
	}
	return def
}

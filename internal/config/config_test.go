package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Irumyuui/Ember/internal/errdefs"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	dir := t.TempDir()
	exe := writeFile(t, dir, "solution", "#!/bin/sh\nexit 0\n")
	input := writeFile(t, dir, "input.txt", "1 2\n")
	output := writeFile(t, dir, "out.txt", "")

	doc := `{
		"lang": "C++",
		"exe_file_path": "` + exe + `",
		"input_file_path": "` + input + `",
		"output_file_path": "` + output + `",
		"cpu_time_limit": 2,
		"real_time_limit": 5000,
		"memory_limit": 67108864,
		"stack_limit": 8388608,
		"max_output_size": 1048576,
		"args": ["--fast"],
		"env": ["LANG=C"],
		"uid": 1000,
		"gid": 1000
	}`
	path := writeFile(t, dir, "config.json", doc)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lang != LangCPP {
		t.Errorf("Lang = %v, want C++", cfg.Lang)
	}
	if cfg.ExeFilePath != exe || cfg.InputFilePath != input || cfg.OutputFilePath != output {
		t.Errorf("paths not carried through: %+v", cfg)
	}
	if cfg.ErrorFilePath != "/dev/stderr" {
		t.Errorf("ErrorFilePath = %q, want /dev/stderr default", cfg.ErrorFilePath)
	}
	if cfg.CPUTimeLimit != 2 || cfg.RealTimeLimit != 5000 || cfg.MemoryLimit != 67108864 {
		t.Errorf("limits not carried through: %+v", cfg)
	}
	if cfg.StackLimit != 8388608 || cfg.OutputSizeLimit != 1048576 {
		t.Errorf("stack/output limits not carried through: %+v", cfg)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "--fast" {
		t.Errorf("Args = %v", cfg.Args)
	}
	if len(cfg.Env) != 1 || cfg.Env[0] != "LANG=C" {
		t.Errorf("Env = %v", cfg.Env)
	}
	if cfg.UID == nil || *cfg.UID != 1000 || cfg.GID == nil || *cfg.GID != 1000 {
		t.Errorf("uid/gid not carried through: %+v", cfg)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	exe := writeFile(t, dir, "solution", "")
	path := writeFile(t, dir, "config.json", `{"lang": "C", "exe_file_path": "`+exe+`"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputFilePath != "/dev/stdin" || cfg.OutputFilePath != "/dev/stdout" || cfg.ErrorFilePath != "/dev/stderr" {
		t.Errorf("stream defaults = %q %q %q", cfg.InputFilePath, cfg.OutputFilePath, cfg.ErrorFilePath)
	}
	if cfg.CPUTimeLimit != 0 || cfg.RealTimeLimit != 0 || cfg.MemoryLimit != 0 || cfg.StackLimit != 0 || cfg.OutputSizeLimit != 0 {
		t.Errorf("absent limits should stay zero: %+v", cfg)
	}
	if len(cfg.Args) != 0 || len(cfg.Env) != 0 {
		t.Errorf("Args/Env should default empty: %v %v", cfg.Args, cfg.Env)
	}
	if cfg.UID != nil || cfg.GID != nil {
		t.Errorf("uid/gid should default nil")
	}
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	exe := writeFile(t, dir, "solution", "")

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown language",
			doc:  `{"lang": "Rust", "exe_file_path": "` + exe + `"}`,
			want: errdefs.ErrInvalidLanguage,
		},
		{
			name: "missing executable",
			doc:  `{"lang": "C", "exe_file_path": "` + filepath.Join(dir, "nope") + `"}`,
			want: errdefs.ErrInvalidFilePath,
		},
		{
			name: "missing input file",
			doc:  `{"lang": "C", "exe_file_path": "` + exe + `", "input_file_path": "` + filepath.Join(dir, "no-input") + `"}`,
			want: errdefs.ErrInvalidFilePath,
		},
		{
			name: "zero cpu limit",
			doc:  `{"lang": "C", "exe_file_path": "` + exe + `", "cpu_time_limit": 0}`,
			want: errdefs.ErrInvalidLimit,
		},
		{
			name: "zero memory limit",
			doc:  `{"lang": "C", "exe_file_path": "` + exe + `", "memory_limit": 0}`,
			want: errdefs.ErrInvalidLimit,
		},
		{
			name: "malformed json",
			doc:  `{"lang": "C",`,
			want: errdefs.ErrJSON,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, "config.json", tc.doc)
			_, err := Load(path)
			if !errors.Is(err, tc.want) {
				t.Errorf("Load = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, errdefs.ErrIO) {
		t.Errorf("Load = %v, want ErrIO", err)
	}
}

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"C", LangC, true},
		{"C++", LangCPP, true},
		{"c", 0, false},
		{"Java", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseLanguage(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseLanguage(%q) = %v, %v", tc.in, got, err)
		}
		if !tc.ok && !errors.Is(err, errdefs.ErrInvalidLanguage) {
			t.Errorf("ParseLanguage(%q) err = %v, want ErrInvalidLanguage", tc.in, err)
		}
	}
}

func TestExecArgv(t *testing.T) {
	for _, lang := range []Language{LangC, LangCPP} {
		argv := lang.ExecArgv("/tmp/a.out", []string{"x", "y"})
		if len(argv) != 3 || argv[0] != "/tmp/a.out" || argv[1] != "x" || argv[2] != "y" {
			t.Errorf("%v.ExecArgv = %v", lang, argv)
		}
	}
	argv := LangC.ExecArgv("/tmp/a.out", nil)
	if len(argv) != 1 || argv[0] != "/tmp/a.out" {
		t.Errorf("ExecArgv with no args = %v", argv)
	}
}

package errdefs

import (
	"errors"
	"strings"
	"testing"
)

func TestHelpersMatchTheirKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"io", IO(errors.New("open: no such file")), ErrIO},
		{"json", JSON(errors.New("unexpected end of input")), ErrJSON},
		{"language", InvalidLanguage("Rust"), ErrInvalidLanguage},
		{"file path", InvalidFilePath("/tmp/nope"), ErrInvalidFilePath},
		{"limit", InvalidLimit("cpu_time_limit"), ErrInvalidLimit},
		{"kernel", Kernel("wait4", errors.New("ECHILD")), ErrKernel},
		{"message", Msg("encode verdict: %v", errors.New("boom")), ErrMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Errorf("%v does not match its kind", tc.err)
			}
			for _, other := range cases {
				if other.kind != tc.kind && errors.Is(tc.err, other.kind) {
					t.Errorf("%v also matches %v", tc.err, other.kind)
				}
			}
		})
	}
}

func TestMsgFormats(t *testing.T) {
	err := Msg("stage %s failed after %d tries", "reap", 3)
	if !strings.Contains(err.Error(), "stage reap failed after 3 tries") {
		t.Errorf("Msg formatting lost: %v", err)
	}
}

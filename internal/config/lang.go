package config

import "github.com/Irumyuui/Ember/internal/errdefs"

// Language selects the invocation convention for a submission.
type Language int

const (
	LangC Language = iota
	LangCPP
)

// ParseLanguage maps the wire name to a Language.
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "C":
		return LangC, nil
	case "C++":
		return LangCPP, nil
	}
	return 0, errdefs.InvalidLanguage(s)
}

func (l Language) String() string {
	switch l {
	case LangC:
		return "C"
	case LangCPP:
		return "C++"
	}
	return "unknown"
}

// ExecArgv returns the argv for a submission in this language. Compiled
// languages share the direct convention: the executable itself is argv[0]
// and the configured args follow.
func (l Language) ExecArgv(exePath string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, exePath)
	argv = append(argv, args...)
	return argv
}

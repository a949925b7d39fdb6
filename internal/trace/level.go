package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelError              // failures only
	LevelInfo               // driver + stage boundaries
	LevelDebug              // everything including per-file events
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|info|debug)", s)
	}
}

// ShouldEmit reports whether an event of kind and scope passes this level.
func (l Level) ShouldEmit(kind Kind, scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return kind == KindError
	case LevelInfo:
		return kind == KindError || scope <= ScopeStage
	case LevelDebug:
		return true
	}
	return false
}

package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogLevel is the platform SDK log level.
type LogLevel int

const (
	// LogLevelOff disables platform logging.
	LogLevelOff LogLevel = iota
	// LogLevelInfo logs minimal integration messages.
	LogLevelInfo
	// LogLevelDebug logs warnings and other important information.
	LogLevelDebug
	// LogLevelVerbose logs everything the platform supports.
	LogLevelVerbose
)

// levelOff sits above every level the bridge emits.
const levelOff = slog.Level(12)

// String returns the SDK name of the level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "OFF"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelVerbose:
		return "VERBOSE"
	default:
		return "OFF"
	}
}

// ParseLogLevel parses a level name, ignoring case.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return LogLevelOff, nil
	case "INFO":
		return LogLevelInfo, nil
	case "DEBUG":
		return LogLevelDebug, nil
	case "VERBOSE":
		return LogLevelVerbose, nil
	default:
		return LogLevelOff, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so env and JSON
// decoding accept level names.
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// SlogLevel maps the level onto a slog threshold.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug, LogLevelVerbose:
		return slog.LevelDebug
	default:
		return levelOff
	}
}

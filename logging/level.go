// Package logging builds the slog loggers of an X-FILES platform. Every
// component logs through a logger tagged with its name, and a Spec such as
// "warn,DANA=debug" sets the level per component.
package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log level. Trace sits below slog's debug level and reports
// every tick of the accelerator; the others share slog's values.
type Level int

// Supported levels.
const (
	LevelTrace Level = -8
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

var levelNames = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// ParseLevel parses a level name, ignoring case. An empty string is info and
// "warning" is accepted for warn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	switch name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}

	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}

	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// Slog converts the level.
func (l Level) Slog() slog.Level {
	return slog.Level(l)
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}

	return fmt.Sprintf("Level(%d)", int(l))
}

// levelLabel prints records at trace level as TRACE rather than DEBUG-4.
func levelLabel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}

	if level, ok := a.Value.Any().(slog.Level); ok && Level(level) == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}

	return a
}

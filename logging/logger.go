package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the output format of a logger.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses text or json. An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %q", s)
	}
}

// New creates the root logger of a platform from a spec string. A nil output
// writes to stderr.
func New(spec string, format Format, output io.Writer) (*slog.Logger, error) {
	parsed, err := ParseSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid log spec: %w", err)
	}

	if output == nil {
		output = os.Stderr
	}

	// The component handler filters; the inner one only formats.
	opts := &slog.HandlerOptions{
		Level:       LevelTrace.Slog(),
		ReplaceAttr: levelLabel,
	}

	var inner slog.Handler
	if format == FormatJSON {
		inner = slog.NewJSONHandler(output, opts)
	} else {
		inner = slog.NewTextHandler(output, opts)
	}

	return slog.New(newComponentHandler(inner, &parsed)), nil
}

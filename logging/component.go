package logging

import (
	"context"
	"log/slog"
	"strings"
)

// ComponentKey is the attribute that names the component of a logger.
const ComponentKey = "component"

// Components of a platform. Each one logs through a logger tagged with its
// name, and a Spec may set a level for it.
const (
	ComponentPlatform = "Platform"
	ComponentManager  = "XFiles"
	ComponentDANA     = "DANA"
	ComponentTrace    = "Trace"
	ComponentMonitor  = "Monitor"
)

var components = []string{
	ComponentPlatform,
	ComponentManager,
	ComponentDANA,
	ComponentTrace,
	ComponentMonitor,
}

// Components lists the component names a Spec accepts.
func Components() []string {
	return append([]string(nil), components...)
}

// canonicalComponent matches name against the known components, ignoring case.
func canonicalComponent(name string) (string, bool) {
	for _, c := range components {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}

	return "", false
}

// For tags logger with a component name.
func For(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(ComponentKey, component)
}

// componentHandler drops the records below the level the spec sets for the
// component of the logger. The level is resolved once, when the component
// attribute is attached.
type componentHandler struct {
	inner slog.Handler
	spec  *Spec
	level slog.Level
}

func newComponentHandler(inner slog.Handler, spec *Spec) *componentHandler {
	return &componentHandler{
		inner: inner,
		spec:  spec,
		level: spec.BaseLevel.Slog(),
	}
}

func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.level {
		return nil
	}

	return h.inner.Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.inner = h.inner.WithAttrs(attrs)

	for _, a := range attrs {
		if a.Key == ComponentKey {
			next.level = h.spec.LevelFor(a.Value.String()).Slog()
		}
	}

	return &next
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.inner = h.inner.WithGroup(name)

	return &next
}

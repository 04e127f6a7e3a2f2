package logging

import (
	"fmt"
	"sort"
	"strings"
)

// Spec holds a base level and per-component overrides. Its text form is
// "<base>[,<component>=<level>]...", for example "info,DANA=debug".
// Component names are matched against Components ignoring case.
type Spec struct {
	BaseLevel  Level
	Components map[string]Level
}

// ParseSpec parses the text form of a Spec. An empty string means info.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{
		BaseLevel:  LevelInfo,
		Components: make(map[string]Level),
	}

	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		component, levelStr, isOverride := strings.Cut(part, "=")
		if !isOverride {
			if i != 0 {
				return spec, fmt.Errorf("base level %q must come first", part)
			}

			level, err := ParseLevel(part)
			if err != nil {
				return spec, err
			}

			spec.BaseLevel = level

			continue
		}

		name := strings.TrimSpace(component)
		if name == "" {
			return spec, fmt.Errorf("empty component name in %q", part)
		}

		component, known := canonicalComponent(name)
		if !known {
			return spec, fmt.Errorf("unknown component %q, expecting one of %s",
				name, strings.Join(components, ", "))
		}

		level, err := ParseLevel(levelStr)
		if err != nil {
			return spec, fmt.Errorf("component %q: %w", component, err)
		}

		spec.Components[component] = level
	}

	return spec, nil
}

// LevelFor returns the level that applies to a component.
func (s *Spec) LevelFor(component string) Level {
	if level, ok := s.Components[component]; ok {
		return level
	}

	return s.BaseLevel
}

// String returns the text form, with components sorted.
func (s *Spec) String() string {
	parts := []string{s.BaseLevel.String()}

	components := make([]string, 0, len(s.Components))
	for c := range s.Components {
		components = append(components, c)
	}

	sort.Strings(components)

	for _, c := range components {
		parts = append(parts, c+"="+s.Components[c].String())
	}

	return strings.Join(parts, ",")
}

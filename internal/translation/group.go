package translation

import (
	"fmt"
	"sync/atomic"
)

// Group owns every Translator configured for one provider plus the rotation
// cursor over those keys. Groups are built once at startup and shared across
// concurrent requests; the cursor is the only mutable state.
type Group struct {
	name        string
	translators []Translator
	cursor      atomic.Uint64
}

// NewGroup wraps the given translators. Every group holds at least one
// translator; the pool builder never constructs a provider without keys.
func NewGroup(name string, translators []Translator) (*Group, error) {
	normalized := normalizeProviderName(name)
	if normalized == "" {
		return nil, fmt.Errorf("provider group name is required")
	}
	if len(translators) == 0 {
		return nil, fmt.Errorf("provider group %q has no translators", normalized)
	}
	for i, t := range translators {
		if t == nil {
			return nil, fmt.Errorf("provider group %q translator %d is nil", normalized, i)
		}
	}
	return &Group{name: normalized, translators: translators}, nil
}

func (g *Group) Name() string {
	if g == nil {
		return ""
	}
	return g.name
}

func (g *Group) Size() int {
	if g == nil {
		return 0
	}
	return len(g.translators)
}

// NextIndex advances the rotation cursor and returns the selected key index.
// The uint64 counter wraps around; the modulo keeps the index valid.
func (g *Group) NextIndex() int {
	return int((g.cursor.Add(1) - 1) % uint64(len(g.translators)))
}

// TranslatorAt returns the translator at (base+offset) mod key count. The
// router uses it to enumerate a group's keys during fallback without
// advancing the rotation cursor per attempted key.
func (g *Group) TranslatorAt(base, offset int) Translator {
	n := len(g.translators)
	idx := (base%n + offset%n + n) % n
	return g.translators[idx]
}

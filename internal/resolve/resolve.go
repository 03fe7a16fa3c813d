// Package resolve maps human-readable names to entities. Resolution order is
// the same for every entity type: exact case-insensitive match first, then
// case-insensitive substring fallback. Zero or multiple surviving candidates
// is a resolution error the caller treats as row- or task-level, never fatal
// for a whole batch.
package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous match")
)

// ByName resolves name against items, using nameOf to read each item's name.
// kind only labels errors ("project", "task", ...).
func ByName[T any](kind, name string, items []T, nameOf func(T) string) (T, error) {
	var zero T
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return zero, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}

	var exact, partial []T
	for _, item := range items {
		have := strings.ToLower(strings.TrimSpace(nameOf(item)))
		if have == want {
			exact = append(exact, item)
		} else if strings.Contains(have, want) {
			partial = append(partial, item)
		}
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = partial
	}

	switch len(candidates) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = nameOf(c)
		}
		return zero, fmt.Errorf("%s %q: %w: %s", kind, name, ErrAmbiguous, strings.Join(names, ", "))
	}
}

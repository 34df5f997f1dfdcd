// Package loader assembles named modules from an explicit registry.
//
// A module is registered under a slash-separated path whose base carries a
// kind suffix, e.g. "entities/school.entity" or "routes/student.routes".
// Load and LoadOrdered select modules with a path.Match pattern, build each
// one and key the result by the base name with the suffix removed.
package loader

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Module is one registered definition.
type Module[T any] struct {
	Path  string
	Build func() (T, error)
}

// Source is the registry a pass reads from.
type Source[T any] []Module[T]

// Entry is a built module together with its derived name.
type Entry[T any] struct {
	Name  string
	Path  string
	Value T
}

// BootstrapError aborts startup. Stage names the pass and Module the offending path.
type BootstrapError struct {
	Stage  string
	Module string
	Err    error
}

func (e *BootstrapError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("bootstrap %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("bootstrap %s: %s: %v", e.Stage, e.Module, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

var (
	// ErrDuplicateName is wrapped when two modules derive the same name in one pass.
	ErrDuplicateName = errors.New("duplicate module name")
	// ErrNoModules is wrapped when a pattern selects nothing.
	ErrNoModules = errors.New("no modules match")
)

// Name derives a module name from its path: "routes/school.routes" -> "school".
func Name(modulePath string) string {
	base := path.Base(modulePath)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// Load builds every module matching pattern into a name-keyed map.
func Load[T any](src Source[T], pattern string) (map[string]T, error) {
	entries, err := LoadOrdered(src, pattern)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Value
	}
	return out, nil
}

// LoadOrdered builds every module matching pattern, sorted by path.
func LoadOrdered[T any](src Source[T], pattern string) ([]Entry[T], error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, &BootstrapError{Stage: pattern, Err: err}
	}

	matched := make([]Module[T], 0, len(src))
	for _, m := range src {
		if ok, _ := path.Match(pattern, m.Path); ok {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return nil, &BootstrapError{Stage: pattern, Err: ErrNoModules}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })

	seen := make(map[string]string, len(matched))
	entries := make([]Entry[T], 0, len(matched))
	for _, m := range matched {
		name := Name(m.Path)
		if name == "" {
			return nil, &BootstrapError{Stage: pattern, Module: m.Path, Err: errors.New("empty module name")}
		}
		if prev, dup := seen[name]; dup {
			return nil, &BootstrapError{Stage: pattern, Module: m.Path,
				Err: fmt.Errorf("%w %q (also %s)", ErrDuplicateName, name, prev)}
		}
		seen[name] = m.Path

		if m.Build == nil {
			return nil, &BootstrapError{Stage: pattern, Module: m.Path, Err: errors.New("module has no builder")}
		}
		value, err := m.Build()
		if err != nil {
			return nil, &BootstrapError{Stage: pattern, Module: m.Path, Err: err}
		}
		entries = append(entries, Entry[T]{Name: name, Path: m.Path, Value: value})
	}
	return entries, nil
}

// Static wraps an already-built value as a module builder.
func Static[T any](v T) func() (T, error) {
	return func() (T, error) { return v, nil }
}

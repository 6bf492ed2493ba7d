// Package component implements RSD's Component layer: a (provider_type,
// qualifier)-keyed bundle of named elements with a mode (FULL/DIFF/ABSENT)
// and a dependency list, delegating diff/apply/combine element-wise to
// internal/element.
package component

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

// Mode is the state a Component occupies.
type Mode int

const (
	// FULL means "this is the entire state of this component."
	FULL Mode = iota
	// DIFF means "these are changes to apply."
	DIFF
	// ABSENT is a tombstone meaning "this component is to be removed."
	ABSENT
)

func (m Mode) String() string {
	switch m {
	case FULL:
		return "full"
	case DIFF:
		return "diff"
	case ABSENT:
		return "absent"
	default:
		return "unknown"
	}
}

// Key identifies a Component: (provider_type, qualifier).
type Key struct {
	Type      string
	Qualifier []string
}

// String renders the key as "type.seg1.seg2", the CLI-facing encoding
// SPEC_FULL.md's qualifier-encoding decision documents.
func (k Key) String() string {
	if len(k.Qualifier) == 0 {
		return k.Type
	}
	return k.Type + "." + strings.Join(k.Qualifier, ".")
}

// Compare orders two keys lexicographically by (type, qualifier segments),
// the total order spec.md's render-order tie-break names.
func Compare(a, b Key) int {
	if c := strings.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	for i := 0; i < len(a.Qualifier) || i < len(b.Qualifier); i++ {
		switch {
		case i >= len(a.Qualifier):
			return -1
		case i >= len(b.Qualifier):
			return 1
		default:
			if c := strings.Compare(a.Qualifier[i], b.Qualifier[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

// Dependency names a component this one requires.
type Dependency struct {
	Type      string
	Qualifier []string
}

func (d Dependency) Key() Key { return Key{Type: d.Type, Qualifier: d.Qualifier} }

// Component is the (provider_type, qualifier, state_mode, elements,
// dependencies) tuple spec.md section 3 defines. Elements is ordered (a slice,
// not a map) so serialization and iteration are deterministic regardless of
// the schema's declaration order.
type Component struct {
	Key          Key
	Mode         Mode
	Elements     []NamedElement
	Dependencies []Dependency
}

// NamedElement pairs a schema field name with its value. For a FULL component
// every element's Value is an element.Full; for a DIFF component it is an
// element.Diff; an ABSENT component carries no elements.
type NamedElement struct {
	Name  string
	Value any // element.Full or element.Diff, constrained by Mode
}

func (c Component) elementNames() []string {
	names := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

func (c Component) elementByName(name string) (NamedElement, bool) {
	for _, e := range c.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return NamedElement{}, false
}

func keyErr(k Key, element, format string, args ...any) error {
	return rsderrors.Wrap(rsderrors.ErrComponentMismatch, rsderrors.Key{Type: k.Type, Qualifier: k.Qualifier, Element: element}, format, args...)
}

// Diff computes the change from a FULL component to another FULL component of
// the same key, producing a DIFF component whose dependencies are the union
// of both operands'. A missing host side (a == nil) yields a synthetic FULL
// marker carrying b's elements (create in full); a missing role side (b ==
// nil) yields an ABSENT marker (destroy).
func Diff(a, b *Component) (Component, error) {
	switch {
	case a == nil && b == nil:
		return Component{}, errors.New("component: diff of two absences is undefined")
	case a == nil:
		return Component{Key: b.Key, Mode: FULL, Elements: b.Elements, Dependencies: b.Dependencies}, nil
	case b == nil:
		// Dependencies are preserved (despite ABSENT carrying no elements) so
		// the renderer can still order this removal against the removal of
		// whatever depends on it; see internal/system's RenderOrder.
		return Component{Key: a.Key, Mode: ABSENT, Dependencies: a.Dependencies}, nil
	}

	if !sameKey(a.Key, b.Key) {
		return Component{}, keyErr(a.Key, "", "diff requires matching (type, qualifier), got %s and %s", a.Key, b.Key)
	}
	if a.Mode != FULL || b.Mode != FULL {
		return Component{}, keyErr(a.Key, "", "diff requires both operands FULL, got %s and %s", a.Mode, b.Mode)
	}

	var out []NamedElement
	for _, name := range unionElementNames(*a, *b) {
		ae, aok := a.elementByName(name)
		be, bok := b.elementByName(name)
		if !aok || !bok {
			return Component{}, keyErr(a.Key, name, "schema mismatch: element %q present in only one operand", name)
		}
		d, err := element.Diff(ae.Value.(element.Full), be.Value.(element.Full))
		if err != nil {
			return Component{}, errors.Wrapf(err, "component %s element %q", a.Key, name)
		}
		out = append(out, NamedElement{Name: name, Value: d})
	}

	return Component{
		Key:          a.Key,
		Mode:         DIFF,
		Elements:     out,
		Dependencies: unionDependencies(a.Dependencies, b.Dependencies),
	}, nil
}

func sameKey(a, b Key) bool {
	return Compare(a, b) == 0
}

// Apply applies a DIFF (or FULL/ABSENT marker) component to a host component
// of the same key. A DIFF component with no matching host component fails
// with ErrMissingBase.
func Apply(host *Component, diff Component) (*Component, error) {
	switch diff.Mode {
	case FULL:
		// Synthetic "create in full" marker: replaces (or creates) outright.
		c := diff
		return &c, nil
	case ABSENT:
		return nil, nil
	case DIFF:
		if host == nil {
			return nil, rsderrors.Wrap(rsderrors.ErrMissingBase, rsderrors.Key{Type: diff.Key.Type, Qualifier: diff.Key.Qualifier}, "apply: no host component for %s", diff.Key)
		}
		if !sameKey(host.Key, diff.Key) {
			return nil, keyErr(diff.Key, "", "apply requires matching (type, qualifier), got %s and %s", host.Key, diff.Key)
		}
		var out []NamedElement
		for _, he := range host.Elements {
			de, ok := diff.elementByName(he.Name)
			if !ok {
				out = append(out, he)
				continue
			}
			applied, err := element.Apply(he.Value.(element.Full), de.Value.(element.Diff))
			if err != nil {
				return nil, errors.Wrapf(err, "component %s element %q", host.Key, he.Name)
			}
			out = append(out, NamedElement{Name: he.Name, Value: applied})
		}
		result := Component{Key: host.Key, Mode: FULL, Elements: out, Dependencies: host.Dependencies}
		return &result, nil
	default:
		return nil, errors.Errorf("component: unknown mode %s", diff.Mode)
	}
}

// Combine right-biased-merges two FULL components of the same key,
// element-wise, via each element's own Combine.
func Combine(a, b Component) (Component, error) {
	if !sameKey(a.Key, b.Key) {
		return Component{}, keyErr(a.Key, "", "combine requires matching (type, qualifier), got %s and %s", a.Key, b.Key)
	}
	if a.Mode != FULL || b.Mode != FULL {
		return Component{}, keyErr(a.Key, "", "combine requires both operands FULL, got %s and %s", a.Mode, b.Mode)
	}
	var out []NamedElement
	for _, name := range unionElementNames(a, b) {
		ae, aok := a.elementByName(name)
		be, bok := b.elementByName(name)
		if !aok || !bok {
			return Component{}, keyErr(a.Key, name, "schema mismatch: element %q present in only one operand", name)
		}
		combined, err := element.Combine(ae.Value.(element.Full), be.Value.(element.Full))
		if err != nil {
			return Component{}, errors.Wrapf(err, "component %s element %q", a.Key, name)
		}
		out = append(out, NamedElement{Name: name, Value: combined})
	}
	return Component{Key: a.Key, Mode: FULL, Elements: out, Dependencies: unionDependencies(a.Dependencies, b.Dependencies)}, nil
}

func unionElementNames(a, b Component) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, e := range a.Elements {
		if _, ok := seen[e.Name]; !ok {
			seen[e.Name] = struct{}{}
			names = append(names, e.Name)
		}
	}
	for _, e := range b.Elements {
		if _, ok := seen[e.Name]; !ok {
			seen[e.Name] = struct{}{}
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

func unionDependencies(a, b []Dependency) []Dependency {
	seen := make(map[string]struct{})
	var out []Dependency
	for _, d := range append(append([]Dependency{}, a...), b...) {
		k := d.Key().String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return Compare(out[i].Key(), out[j].Key()) < 0 })
	return out
}

// Validate checks a FULL component's elements are all in full form and an
// ABSENT component carries none, per spec.md section 3's invariants.
func Validate(c Component) error {
	switch c.Mode {
	case FULL:
		for _, e := range c.Elements {
			if _, ok := e.Value.(element.Full); !ok {
				return keyErr(c.Key, e.Name, "FULL component element %q is not in full form", e.Name)
			}
		}
	case ABSENT:
		if len(c.Elements) != 0 {
			return keyErr(c.Key, "", "ABSENT component must carry no elements")
		}
	case DIFF:
		for _, e := range c.Elements {
			if _, ok := e.Value.(element.Diff); !ok {
				return keyErr(c.Key, e.Name, "DIFF component element %q is not in diff form", e.Name)
			}
		}
	}
	return nil
}

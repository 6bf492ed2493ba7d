// Package system implements RSD's System layer: a keyed collection of
// components with partial/full semantics, aligning components by key and
// delegating to internal/component for Diff, Apply, and Combine.
package system

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

// System is a collection of components keyed by (provider_type, qualifier).
// Systems carry no other state; full vs. partial is derived, never stored
// (see spec.md design note: "do not store it as a separate flag subject to
// drift").
type System struct {
	components map[string]component.Component
}

// New builds a System from a slice of components, keyed by their own Key.
// Later entries with a duplicate key overwrite earlier ones.
func New(components ...component.Component) System {
	s := System{components: make(map[string]component.Component, len(components))}
	for _, c := range components {
		s.components[c.Key.String()] = c
	}
	return s
}

// Components returns the system's components sorted by the Component total
// order, for deterministic iteration (serialization, rendering, display).
func (s System) Components() []component.Component {
	out := make([]component.Component, 0, len(s.components))
	for _, c := range s.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return component.Compare(out[i].Key, out[j].Key) < 0 })
	return out
}

// Get looks up a component by key.
func (s System) Get(k component.Key) (component.Component, bool) {
	c, ok := s.components[k.String()]
	return c, ok
}

func (s System) Len() int { return len(s.components) }

// IsFull reports whether every component in the system is FULL and every
// declared dependency resolves within it.
func (s System) IsFull() bool {
	for _, c := range s.components {
		if c.Mode != component.FULL {
			return false
		}
		for _, d := range c.Dependencies {
			if _, ok := s.components[d.Key().String()]; !ok {
				return false
			}
		}
	}
	return true
}

// Validate checks every component's own invariants and that every declared
// dependency resolves within the system. Unlike IsFull (a query), Validate
// returns every violation found, not just the first.
func Validate(s System) error {
	var result *multierror.Error
	for _, c := range s.Components() {
		if err := component.Validate(c); err != nil {
			result = multierror.Append(result, err)
		}
		for _, d := range c.Dependencies {
			if _, ok := s.components[d.Key().String()]; !ok {
				result = multierror.Append(result, rsderrors.Wrap(rsderrors.ErrInvalidSystem, rsderrors.Key{Type: c.Key.Type, Qualifier: c.Key.Qualifier}, "dependency %s not present in system", d.Key()))
			}
		}
	}
	return result.ErrorOrNil()
}

// Diff computes the component-wise diff between a host (observed) system and
// a role (desired) system: for each key present in either side, Diff.
// Components only in role produce FULL markers; components only in host
// produce ABSENT markers. The resulting system is partial by construction —
// a DIFF system does not claim to describe every component on the host.
func Diff(host, role System) (System, error) {
	out := make(map[string]component.Component)
	for key := range unionKeys(host, role) {
		hc, hok := host.components[key]
		rc, rok := role.components[key]
		var hp, rp *component.Component
		if hok {
			hp = &hc
		}
		if rok {
			rp = &rc
		}
		d, err := component.Diff(hp, rp)
		if err != nil {
			return System{}, errors.Wrapf(err, "system diff")
		}
		out[key] = d
	}
	return System{components: out}, nil
}

// Apply applies a diff-system to a host system: FULL markers replace, ABSENT
// markers delete, DIFF components delegate element-wise. A DIFF component
// whose key is missing in host fails with ErrMissingBase.
func Apply(host System, diff System) (System, error) {
	out := make(map[string]component.Component, len(host.components))
	for k, c := range host.components {
		out[k] = c
	}
	for key, d := range diff.components {
		hc, hok := host.components[key]
		var hp *component.Component
		if hok {
			hp = &hc
		}
		if d.Mode == component.DIFF && !hok {
			return System{}, rsderrors.Wrap(rsderrors.ErrMissingBase, rsderrors.Key{Type: d.Key.Type, Qualifier: d.Key.Qualifier}, "apply: no host component for %s", d.Key)
		}
		result, err := component.Apply(hp, d)
		if err != nil {
			return System{}, errors.Wrapf(err, "system apply")
		}
		if result == nil {
			delete(out, key)
			continue
		}
		out[key] = *result
	}
	return System{components: out}, nil
}

// Combine right-biased-merges two systems: shared keys combine component-
// wise, disjoint keys pass through. Used to fold per-provider gather outputs
// into one host full-state.
func Combine(a, b System) (System, error) {
	out := make(map[string]component.Component, len(a.components)+len(b.components))
	for k, c := range a.components {
		out[k] = c
	}
	for k, bc := range b.components {
		ac, ok := out[k]
		if !ok {
			out[k] = bc
			continue
		}
		combined, err := component.Combine(ac, bc)
		if err != nil {
			return System{}, errors.Wrapf(err, "system combine")
		}
		out[k] = combined
	}
	return System{components: out}, nil
}

func unionKeys(a, b System) map[string]struct{} {
	out := make(map[string]struct{}, len(a.components)+len(b.components))
	for k := range a.components {
		out[k] = struct{}{}
	}
	for k := range b.components {
		out[k] = struct{}{}
	}
	return out
}

package system

import (
	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

// RenderOrder computes the key order a renderer must emit commands in for a
// diff system: additions and updates (FULL or DIFF components) in
// dependency-first topological order, followed by removals (ABSENT
// components) in dependents-first reverse-topological order. Ties within
// either layer are broken by component.Compare, the total order spec.md
// names.
//
// The two layers share one topological sort over the diff's own affected
// keys: dependencies-first for the first layer is exactly the reverse of
// dependents-first for the second, so computing it once and reading it
// forwards for creations, backwards for removals, satisfies both of
// spec.md's Render order requirements without risking the two layers
// disagreeing on tie-breaks.
func RenderOrder(diff System) ([]component.Key, error) {
	components := diff.Components()

	g := newGraph(components)
	if cyclic, err := g.hasCycles(); cyclic {
		return nil, rsderrors.Wrap(rsderrors.ErrInvalidSystem, rsderrors.Key{}, "render order: %s", err)
	}

	order := g.topoSort()

	mode := make(map[string]component.Mode, len(components))
	for _, c := range components {
		mode[c.Key.String()] = c.Mode
	}

	var creations, removals []component.Key
	for _, k := range order {
		switch mode[k.String()] {
		case component.ABSENT:
			removals = append(removals, k)
		default:
			creations = append(creations, k)
		}
	}

	out := make([]component.Key, 0, len(creations)+len(removals))
	out = append(out, creations...)
	for i := len(removals) - 1; i >= 0; i-- {
		out = append(out, removals[i])
	}
	return out, nil
}

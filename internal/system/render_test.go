package system

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func pkgKey(name string) component.Key { return component.Key{Type: "pkg", Qualifier: []string{name}} }

func fullComponent(name string, deps ...string) component.Component {
	c := component.Component{Key: pkgKey(name), Mode: component.FULL}
	for _, d := range deps {
		c.Dependencies = append(c.Dependencies, component.Dependency{Type: "pkg", Qualifier: []string{d}})
	}
	return c
}

func absentComponent(name string, deps ...string) component.Component {
	c := fullComponent(name, deps...)
	c.Mode = component.ABSENT
	return c
}

// TestRenderOrderCreationsDependencyFirst covers spec.md's "P depends on Q"
// scenario: both added must render Q (the dependency) before P.
func TestRenderOrderCreationsDependencyFirst(t *testing.T) {
	diff := New(fullComponent("p", "q"), fullComponent("q"))
	order, err := RenderOrder(diff)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.DeepEqual(t, order[0], pkgKey("q"))
	assert.DeepEqual(t, order[1], pkgKey("p"))
}

// TestRenderOrderRemovalsDependentFirst covers the reverse: both removed must
// render P (the dependent) before Q.
func TestRenderOrderRemovalsDependentFirst(t *testing.T) {
	diff := New(absentComponent("p", "q"), absentComponent("q"))
	order, err := RenderOrder(diff)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.DeepEqual(t, order[0], pkgKey("p"))
	assert.DeepEqual(t, order[1], pkgKey("q"))
}

func TestRenderOrderCreationsBeforeRemovals(t *testing.T) {
	diff := New(fullComponent("p"), absentComponent("q"))
	order, err := RenderOrder(diff)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.DeepEqual(t, order[0], pkgKey("p"))
	assert.DeepEqual(t, order[1], pkgKey("q"))
}

func TestRenderOrderTieBreakIsDeterministic(t *testing.T) {
	diff := New(fullComponent("b"), fullComponent("a"), fullComponent("c"))
	order, err := RenderOrder(diff)
	require.NoError(t, err)
	assert.DeepEqual(t, order, []component.Key{pkgKey("a"), pkgKey("b"), pkgKey("c")})
}

func TestRenderOrderDetectsCycle(t *testing.T) {
	diff := New(fullComponent("p", "q"), fullComponent("q", "p"))
	_, err := RenderOrder(diff)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrInvalidSystem))
}

func TestRenderOrderIgnoresDependencyOutsideDiff(t *testing.T) {
	// "p" depends on "base", which isn't part of this diff (already on the
	// host, unaffected) -- it must not block or appear in the order.
	diff := New(fullComponent("p", "base"))
	order, err := RenderOrder(diff)
	require.NoError(t, err)
	assert.DeepEqual(t, order, []component.Key{pkgKey("p")})
}

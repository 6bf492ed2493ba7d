package system

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func tapComponent(taps ...string) component.Component {
	atoms := make([]element.Atom, len(taps))
	for i, t := range taps {
		atoms[i] = element.Atom(t)
	}
	return component.Component{
		Key:  component.Key{Type: "brew", Qualifier: []string{"tap"}},
		Mode: component.FULL,
		Elements: []component.NamedElement{
			{Name: "taps", Value: element.NewSet(atoms...)},
		},
	}
}

func TestSystemIsFullRequiresAllFullAndDepsResolved(t *testing.T) {
	full := tapComponent("git")
	assert.Assert(t, New(full).IsFull())

	withDep := full
	withDep.Dependencies = []component.Dependency{{Type: "pkg", Qualifier: []string{"base"}}}
	assert.Assert(t, !New(withDep).IsFull())

	base := component.Component{Key: component.Key{Type: "pkg", Qualifier: []string{"base"}}, Mode: component.FULL}
	assert.Assert(t, New(withDep, base).IsFull())
}

func TestSystemValidateAccumulatesDependencyViolations(t *testing.T) {
	withDep := tapComponent("git")
	withDep.Dependencies = []component.Dependency{{Type: "pkg", Qualifier: []string{"missing"}}}
	err := Validate(New(withDep))
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrInvalidSystem))
}

// TestSystemDiffAbsentMarkerOrdering checks the markers a system diff emits:
// a host-only component produces an ABSENT marker that keeps its
// dependencies (which RenderOrder needs to order removals), a role-only
// component produces a FULL marker, and a component on both sides produces
// a DIFF.
func TestSystemDiffAbsentMarkerOrdering(t *testing.T) {
	host := New(fullComponent("old", "base"), fullComponent("base"))
	role := New(fullComponent("new", "base"), fullComponent("base"))

	diff, err := Diff(host, role)
	require.NoError(t, err)

	old, ok := diff.Get(pkgKey("old"))
	require.True(t, ok)
	assert.Equal(t, old.Mode, component.ABSENT)
	// Dependencies survive onto the ABSENT marker for render ordering.
	assert.Equal(t, len(old.Dependencies), 1)

	created, ok := diff.Get(pkgKey("new"))
	require.True(t, ok)
	assert.Equal(t, created.Mode, component.FULL)

	base, ok := diff.Get(pkgKey("base"))
	require.True(t, ok)
	assert.Equal(t, base.Mode, component.DIFF)
}

func TestSystemDiffApplyRoundTrip(t *testing.T) {
	host := New(tapComponent("git", "curl"))
	role := New(tapComponent("git", "htop"))

	diff, err := Diff(host, role)
	require.NoError(t, err)

	got, err := Apply(host, diff)
	require.NoError(t, err)

	want, ok := role.Get(component.Key{Type: "brew", Qualifier: []string{"tap"}})
	require.True(t, ok)
	gotC, ok := got.Get(component.Key{Type: "brew", Qualifier: []string{"tap"}})
	require.True(t, ok)
	assert.DeepEqual(t, gotC.Elements[0].Value.(element.Set).Sorted(), want.Elements[0].Value.(element.Set).Sorted())
}

func TestSystemApplyMissingBaseFails(t *testing.T) {
	role := New(tapComponent("git"))
	diff, err := Diff(role, role)
	require.NoError(t, err)

	_, err = Apply(New(), diff)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrMissingBase))
}

// TestSystemCombineOrderInsensitive is the spec's gather-all property: two
// disjoint-provider systems combine the same regardless of argument order.
func TestSystemCombineOrderInsensitive(t *testing.T) {
	a := New(fullComponent("a"))
	b := New(fullComponent("b"))

	ab, err := Combine(a, b)
	require.NoError(t, err)
	ba, err := Combine(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab.Len(), ba.Len())
	for _, c := range ab.Components() {
		other, ok := ba.Get(c.Key)
		require.True(t, ok)
		assert.DeepEqual(t, other.Key, c.Key)
	}
}

func TestSystemComponentsSortedDeterministically(t *testing.T) {
	s := New(fullComponent("b"), fullComponent("a"), fullComponent("c"))
	keys := make([]component.Key, 0, 3)
	for _, c := range s.Components() {
		keys = append(keys, c.Key)
	}
	assert.DeepEqual(t, keys, []component.Key{pkgKey("a"), pkgKey("b"), pkgKey("c")})
}

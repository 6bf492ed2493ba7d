package component

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func tapComponent(taps ...string) Component {
	atoms := make([]element.Atom, len(taps))
	for i, t := range taps {
		atoms[i] = element.Atom(t)
	}
	return Component{
		Key:  Key{Type: "brew", Qualifier: []string{"tap"}},
		Mode: FULL,
		Elements: []NamedElement{
			{Name: "taps", Value: element.NewSet(atoms...)},
		},
	}
}

func TestDiffProducesAbsentMarkerWhenRoleOmits(t *testing.T) {
	host := tapComponent("homebrew/core", "x/y")
	diff, err := Diff(&host, nil)
	require.NoError(t, err)
	assert.Equal(t, diff.Mode, ABSENT)
	assert.Equal(t, len(diff.Elements), 0)
}

func TestDiffProducesFullMarkerWhenHostOmits(t *testing.T) {
	role := tapComponent("homebrew/core")
	diff, err := Diff(nil, &role)
	require.NoError(t, err)
	assert.Equal(t, diff.Mode, FULL)
	assert.Equal(t, len(diff.Elements), len(role.Elements))
	assert.Equal(t, diff.Elements[0].Name, role.Elements[0].Name)
}

func TestDiffApplyRoundTrip(t *testing.T) {
	host := tapComponent("git", "curl")
	role := tapComponent("git", "htop")
	d, err := Diff(&host, &role)
	require.NoError(t, err)
	assert.Equal(t, d.Mode, DIFF)

	got, err := Apply(&host, d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, got.Mode, FULL)
}

func TestApplyMissingBase(t *testing.T) {
	role := tapComponent("git")
	d, err := Diff(&role, &role)
	require.NoError(t, err)
	// d is a DIFF (identical full components diff to a null diff).
	_, err = Apply(nil, d)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrMissingBase))
}

func TestDiffComponentMismatch(t *testing.T) {
	a := tapComponent("git")
	b := Component{Key: Key{Type: "apt", Qualifier: []string{"tap"}}, Mode: FULL}
	_, err := Diff(&a, &b)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrComponentMismatch))
}

func TestCombineDependenciesUnion(t *testing.T) {
	a := tapComponent("git")
	a.Dependencies = []Dependency{{Type: "pkg", Qualifier: []string{"base"}}}
	b := tapComponent("curl")
	b.Dependencies = []Dependency{{Type: "pkg", Qualifier: []string{"base"}}, {Type: "pkg", Qualifier: []string{"extra"}}}

	c, err := Combine(a, b)
	require.NoError(t, err)
	assert.Equal(t, len(c.Dependencies), 2)
}

func TestValidateRejectsWrongFormForMode(t *testing.T) {
	full := tapComponent("git")
	full.Mode = DIFF // elements are Full, but Mode claims DIFF
	err := Validate(full)
	require.Error(t, err)
}

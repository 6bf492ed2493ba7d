package rsdfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/system"
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

func TestComponentRoundTripFull(t *testing.T) {
	c := tapComponent("homebrew/core", "x/y")
	c.Dependencies = []component.Dependency{{Type: "pkg", Qualifier: []string{"base"}}}

	data, err := MarshalComponent(c)
	require.NoError(t, err)

	got, err := UnmarshalComponent(data)
	require.NoError(t, err)
	assert.DeepEqual(t, got.Key, c.Key)
	assert.Equal(t, got.Mode, c.Mode)
	assert.DeepEqual(t, got.Dependencies, c.Dependencies)
	assert.DeepEqual(t, got.Elements[0].Value.(element.Set).Sorted(), c.Elements[0].Value.(element.Set).Sorted())
}

func TestComponentRoundTripDiff(t *testing.T) {
	host := tapComponent("git", "curl")
	role := tapComponent("git", "htop")
	diff, err := component.Diff(&host, &role)
	require.NoError(t, err)

	data, err := MarshalComponent(diff)
	require.NoError(t, err)

	got, err := UnmarshalComponent(data)
	require.NoError(t, err)
	assert.Equal(t, got.Mode, component.DIFF)
	d := got.Elements[0].Value.(element.SetDiff)
	assert.DeepEqual(t, d.Add.Sorted(), []element.Atom{"htop"})
	assert.DeepEqual(t, d.Remove.Sorted(), []element.Atom{"curl"})
}

func TestComponentRoundTripAbsent(t *testing.T) {
	host := tapComponent("homebrew/core")
	diff, err := component.Diff(&host, nil)
	require.NoError(t, err)

	data, err := MarshalComponent(diff)
	require.NoError(t, err)

	got, err := UnmarshalComponent(data)
	require.NoError(t, err)
	assert.Equal(t, got.Mode, component.ABSENT)
	assert.Equal(t, len(got.Elements), 0)
}

func mapComponent(entries map[string]string) component.Component {
	m := element.Map{}
	for k, v := range entries {
		m[element.Atom(k)] = element.Atom(v)
	}
	return component.Component{
		Key:      component.Key{Type: "config", Qualifier: []string{"app"}},
		Mode:     component.FULL,
		Elements: []component.NamedElement{{Name: "settings", Value: m}},
	}
}

func TestComponentRoundTripMapOfAtoms(t *testing.T) {
	c := mapComponent(map[string]string{"a": "1", "b": "2"})

	data, err := MarshalComponent(c)
	require.NoError(t, err)

	got, err := UnmarshalComponent(data)
	require.NoError(t, err)
	m := got.Elements[0].Value.(element.Map)
	assert.Equal(t, m[element.Atom("a")], element.Full(element.Atom("1")))
	assert.Equal(t, m[element.Atom("b")], element.Full(element.Atom("2")))
}

func listComponent(lines ...string) component.Component {
	return component.Component{
		Key:      component.Key{Type: "fileset", Qualifier: []string{"etc/hosts"}},
		Mode:     component.FULL,
		Elements: []component.NamedElement{{Name: "lines", Value: element.NewList(lines...)}},
	}
}

func TestComponentRoundTripListDiff(t *testing.T) {
	host := listComponent("one", "two", "three")
	role := listComponent("one", "TWO", "three")
	diff, err := component.Diff(&host, &role)
	require.NoError(t, err)

	data, err := MarshalComponent(diff)
	require.NoError(t, err)

	got, err := UnmarshalComponent(data)
	require.NoError(t, err)

	applied, err := component.Apply(&host, got)
	require.NoError(t, err)
	lines := applied.Elements[0].Value.(element.List).Strings()
	assert.DeepEqual(t, lines, []string{"one", "TWO", "three"})
}

func TestSystemRoundTrip(t *testing.T) {
	s := system.New(tapComponent("git"), mapComponent(map[string]string{"x": "y"}))

	data, err := MarshalSystem(s)
	require.NoError(t, err)

	got, err := UnmarshalSystem(data)
	require.NoError(t, err)
	assert.Equal(t, got.Len(), s.Len())

	for _, c := range s.Components() {
		gc, ok := got.Get(c.Key)
		require.True(t, ok)
		assert.Equal(t, gc.Mode, c.Mode)
	}
}

func TestSystemRoundTripEmpty(t *testing.T) {
	s := system.New()
	data, err := MarshalSystem(s)
	require.NoError(t, err)

	got, err := UnmarshalSystem(data)
	require.NoError(t, err)
	assert.Equal(t, got.Len(), 0)
	assert.Assert(t, got.IsFull()) // vacuously full, per SPEC_FULL.md's empty-system resolution
}

func TestMarshalIsByteDeterministic(t *testing.T) {
	c := tapComponent("z/z", "a/a", "m/m")
	a, err := MarshalComponent(c)
	require.NoError(t, err)
	b, err := MarshalComponent(c)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

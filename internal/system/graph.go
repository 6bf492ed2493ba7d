package system

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ready-set-deploy/rsd/internal/component"
)

// graph is the dependency graph over a set of component keys: an edge from
// vertex to child means "vertex depends on child", mirroring the
// Children/Parents split the teacher's compose dependency graph uses for its
// up/down traversal, generalized here to a single render-order computation
// instead of two fixed traversal configs.
type graph struct {
	vertices map[string]*vertex
}

type vertex struct {
	key      component.Key
	children map[string]*vertex // dependencies: must be ordered before this vertex
	parents  map[string]*vertex // dependents: must be ordered after this vertex
}

// newGraph builds the dependency graph restricted to the given components:
// an edge is only added when both endpoints are present in the set, since a
// dependency already satisfied on the host needs no ordering against it.
func newGraph(components []component.Component) *graph {
	g := &graph{vertices: map[string]*vertex{}}
	for _, c := range components {
		g.addVertex(c.Key)
	}
	for _, c := range components {
		for _, d := range c.Dependencies {
			g.addEdge(c.Key, d.Key())
		}
	}
	return g
}

func (g *graph) addVertex(k component.Key) {
	key := k.String()
	if _, ok := g.vertices[key]; ok {
		return
	}
	g.vertices[key] = &vertex{key: k, children: map[string]*vertex{}, parents: map[string]*vertex{}}
}

// addEdge records "source depends on destination". A destination outside the
// restricted set is silently ignored: it is already satisfied and needs no
// ordering edge within this render.
func (g *graph) addEdge(source, destination component.Key) {
	sv, ok := g.vertices[source.String()]
	if !ok {
		return
	}
	dv, ok := g.vertices[destination.String()]
	if !ok {
		return
	}
	sv.children[dv.key.String()] = dv
	dv.parents[sv.key.String()] = sv
}

// hasCycles reports whether the dependency relation contains a cycle, in
// which case render order is undefined and the system is invalid.
func (g *graph) hasCycles() (bool, error) {
	discovered := map[string]bool{}
	finished := map[string]bool{}

	keys := g.sortedKeys()
	for _, k := range keys {
		if discovered[k] || finished[k] {
			continue
		}
		if err := g.visit(k, []string{k}, discovered, finished); err != nil {
			return true, err
		}
	}
	return false, nil
}

func (g *graph) visit(key string, path []string, discovered, finished map[string]bool) error {
	discovered[key] = true

	children := g.vertices[key].children
	childKeys := make([]string, 0, len(children))
	for ck := range children {
		childKeys = append(childKeys, ck)
	}
	sort.Strings(childKeys)

	for _, ck := range childKeys {
		childPath := append(append([]string{}, path...), ck)
		if discovered[ck] {
			return fmt.Errorf("dependency cycle: %s", strings.Join(childPath, " -> "))
		}
		if !finished[ck] {
			if err := g.visit(ck, childPath, discovered, finished); err != nil {
				return err
			}
		}
	}

	delete(discovered, key)
	finished[key] = true
	return nil
}

func (g *graph) sortedKeys() []string {
	keys := make([]string, 0, len(g.vertices))
	for k := range g.vertices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topoSort returns the graph's vertices in dependency-first order (a vertex
// never precedes one of its children), breaking ties with component.Compare.
// It assumes the graph is acyclic; callers must check hasCycles first.
func (g *graph) topoSort() []component.Key {
	visited := map[string]bool{}
	var out []component.Key

	keys := g.sortedKeys()
	var visit func(string)
	visit = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		v := g.vertices[key]
		childKeys := make([]string, 0, len(v.children))
		for ck := range v.children {
			childKeys = append(childKeys, ck)
		}
		sort.Slice(childKeys, func(i, j int) bool {
			return component.Compare(g.vertices[childKeys[i]].key, g.vertices[childKeys[j]].key) < 0
		})
		for _, ck := range childKeys {
			visit(ck)
		}
		out = append(out, v.key)
	}

	sort.Slice(keys, func(i, j int) bool {
		return component.Compare(g.vertices[keys[i]].key, g.vertices[keys[j]].key) < 0
	})
	for _, k := range keys {
		visit(k)
	}
	return out
}

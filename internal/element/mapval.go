package element

import "sort"

// Map is a mapping from unique Atom keys to arbitrary Element values; all
// values within one Map must share a single kind (enforced by providers'
// schemas, not by this type — see design note on keeping Map shallow).
type Map map[Atom]Full

func (Map) Kind() Kind { return KindMap }
func (Map) full()      {}

func (m Map) sortedKeys() []Atom {
	keys := make([]Atom, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SortedKeys returns the map's keys in the kind's total order, for callers
// (e.g. the serializer) that need a deterministic iteration order.
func (m Map) SortedKeys() []Atom { return m.sortedKeys() }

// MapDiff is (keys_to_remove, entries_to_set). entries_to_set carries full
// element replacements, not recursive element-diffs — see spec.md design note
// fixing this ambiguity in favor of full replacement.
type MapDiff struct {
	Remove []Atom
	Set    map[Atom]Full
}

func (MapDiff) Kind() Kind { return KindMap }
func (MapDiff) diff()      {}

func diffMap(a, b Map) (MapDiff, error) {
	set := make(map[Atom]Full)
	var remove []Atom
	for k := range a {
		if _, ok := b[k]; !ok {
			remove = append(remove, k)
		}
	}
	for k, bv := range b {
		av, ok := a[k]
		if !ok {
			set[k] = bv
			continue
		}
		equal, err := valuesEqual(av, bv)
		if err != nil {
			return MapDiff{}, err
		}
		if !equal {
			set[k] = bv
		}
	}
	sort.Slice(remove, func(i, j int) bool { return remove[i] < remove[j] })
	return MapDiff{Remove: remove, Set: set}, nil
}

func applyMap(m Map, d MapDiff) Map {
	out := make(Map, len(m)+len(d.Set))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range d.Remove {
		delete(out, k)
	}
	for k, v := range d.Set {
		out[k] = v
	}
	return out
}

// combineMap is recursive on shared keys (via each value's own Combine) and
// takes the union of disjoint keys.
func combineMap(a, b Map) (Map, error) {
	out := make(Map, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		av, ok := out[k]
		if !ok {
			out[k] = bv
			continue
		}
		combined, err := Combine(av, bv)
		if err != nil {
			return nil, err
		}
		out[k] = combined
	}
	return out, nil
}

// compareMap orders two maps by comparing their sorted (key, value) pairs;
// absence at a given position sorts before presence.
func compareMap(a, b Map) (int, error) {
	ak, bk := a.sortedKeys(), b.sortedKeys()
	for i := 0; i < len(ak) || i < len(bk); i++ {
		switch {
		case i >= len(ak):
			return -1, nil
		case i >= len(bk):
			return 1, nil
		default:
			if c := compareAtom(ak[i], bk[i]); c != 0 {
				return c, nil
			}
			c, err := Compare(a[ak[i]], b[bk[i]])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
	}
	return 0, nil
}

// valuesEqual reports whether two Full values of matching kind compare equal
// under the kind's total order.
func valuesEqual(a, b Full) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

package element

import (
	"sort"

	"github.com/ready-set-deploy/rsd/internal/setutil"
)

// Set is an unordered collection of unique Atoms. It shares its underlying
// representation with setutil.Set[Atom] so the generic Add/Remove/Has/Diff/
// Union helpers can be reused via a cheap type conversion instead of being
// reimplemented here.
type Set map[Atom]struct{}

func (Set) Kind() Kind { return KindSet }
func (Set) full()      {}

func (s Set) generic() setutil.Set[Atom] { return setutil.Set[Atom](s) }

// NewSet builds a Set from the given atoms, deduplicating.
func NewSet(atoms ...Atom) Set {
	return Set(setutil.New(atoms...))
}

// Sorted returns the set's members in the kind's total order.
func (s Set) Sorted() []Atom {
	out := s.generic().Elements()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetDiff is (to_add, to_remove): apply adds every atom in Add, then removes
// every atom in Remove, so an atom present in both ends up removed.
type SetDiff struct {
	Add    Set
	Remove Set
}

func (SetDiff) Kind() Kind { return KindSet }
func (SetDiff) diff()      {}

func diffSet(a, b Set) SetDiff {
	return SetDiff{
		Add:    Set(b.generic().Diff(a.generic())),
		Remove: Set(a.generic().Diff(b.generic())),
	}
}

func applySet(s Set, d SetDiff) Set {
	out := s.generic().Union(d.Add.generic())
	for atom := range d.Remove {
		delete(out, atom)
	}
	return Set(out)
}

func combineSet(a, b Set) Set {
	return Set(a.generic().Union(b.generic()))
}

// compareSet orders two sets by comparing their sorted contents item-wise;
// absence at a given position sorts before presence.
func compareSet(a, b Set) int {
	as, bs := a.Sorted(), b.Sorted()
	for i := 0; i < len(as) || i < len(bs); i++ {
		switch {
		case i >= len(as):
			return -1 // a ran out first: a < b
		case i >= len(bs):
			return 1
		default:
			if c := compareAtom(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

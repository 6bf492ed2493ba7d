// Package element implements RSD's element algebra: a closed, four-kind sum
// type (Atom, Set, Map, List) where each kind carries both a "full" form
// (describes a state) and a "diff" form (describes a change), together with
// the three operations every kind must support — Diff, Apply, Combine — and a
// total order used for canonicalization.
//
// The sum type is modeled the idiomatic-Go way: a closed interface with an
// unexported marker method, so a switch over concrete types can be exhaustive
// and any attempt to add a fifth kind from outside this package fails to
// compile rather than silently falling through a default case.
package element

// Kind identifies which of the four element kinds a value belongs to.
type Kind int

const (
	KindAtom Kind = iota
	KindSet
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Full is a value describing the complete state of one element.
type Full interface {
	Kind() Kind
	full()
}

// Diff is a value describing a change from one Full value to another,
// produced by Diff and consumed by Apply. A Diff's Kind always matches the
// Full value it was derived from and the Full value it is applied to.
type Diff interface {
	Kind() Kind
	diff()
}

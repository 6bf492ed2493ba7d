package element

import (
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func mismatch(a, b Kind) error {
	return rsderrors.Wrap(rsderrors.ErrKindMismatch, rsderrors.Key{}, "got %s want %s", b, a)
}

// Diff computes the change from a to b. a and b must share a Kind.
func Diff(a, b Full) (Diff, error) {
	if a.Kind() != b.Kind() {
		return nil, mismatch(a.Kind(), b.Kind())
	}
	switch av := a.(type) {
	case Atom:
		return diffAtom(av, b.(Atom)), nil
	case Set:
		return diffSet(av, b.(Set)), nil
	case Map:
		return diffMap(av, b.(Map))
	case List:
		return diffList(av, b.(List)), nil
	default:
		return nil, rsderrors.Wrap(rsderrors.ErrKindMismatch, rsderrors.Key{}, "unrecognized full element type %T", a)
	}
}

// Apply applies diff d to a, returning the resulting full value. d must be of
// the same Kind as a.
func Apply(a Full, d Diff) (Full, error) {
	if a.Kind() != d.Kind() {
		return nil, mismatch(a.Kind(), d.Kind())
	}
	switch av := a.(type) {
	case Atom:
		return applyAtom(av, d.(AtomDiff)), nil
	case Set:
		return applySet(av, d.(SetDiff)), nil
	case Map:
		return applyMap(av, d.(MapDiff)), nil
	case List:
		return applyList(av, d.(ListDiff))
	default:
		return nil, rsderrors.Wrap(rsderrors.ErrKindMismatch, rsderrors.Key{}, "unrecognized full element type %T", a)
	}
}

// Combine folds two full values of the same Kind, right-biased where the kind
// defines no richer merge. Combine is defined only for full values.
func Combine(a, b Full) (Full, error) {
	if a.Kind() != b.Kind() {
		return nil, mismatch(a.Kind(), b.Kind())
	}
	switch av := a.(type) {
	case Atom:
		return combineAtom(av, b.(Atom)), nil
	case Set:
		return combineSet(av, b.(Set)), nil
	case Map:
		return combineMap(av, b.(Map))
	case List:
		return combineList(av, b.(List)), nil
	default:
		return nil, rsderrors.Wrap(rsderrors.ErrKindMismatch, rsderrors.Key{}, "unrecognized full element type %T", a)
	}
}

// Compare orders two full values of the same Kind under the kind's total
// order. Cross-kind comparison fails loudly, per spec.md's Ordering contract.
func Compare(a, b Full) (int, error) {
	if a.Kind() != b.Kind() {
		return 0, mismatch(a.Kind(), b.Kind())
	}
	switch av := a.(type) {
	case Atom:
		return compareAtom(av, b.(Atom)), nil
	case Set:
		return compareSet(av, b.(Set)), nil
	case Map:
		return compareMap(av, b.(Map))
	case List:
		return compareList(av, b.(List)), nil
	default:
		return 0, rsderrors.Wrap(rsderrors.ErrKindMismatch, rsderrors.Key{}, "unrecognized full element type %T", a)
	}
}

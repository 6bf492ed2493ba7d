package element

import (
	"github.com/ready-set-deploy/rsd/internal/listdiff"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

// List is an ordered sequence of Atoms.
type List []Atom

func (List) Kind() Kind { return KindList }
func (List) full()      {}

func (l List) strings() []string {
	out := make([]string, len(l))
	for i, a := range l {
		out[i] = string(a)
	}
	return out
}

func fromStrings(ss []string) List {
	out := make(List, len(ss))
	for i, s := range ss {
		out[i] = Atom(s)
	}
	return out
}

// Strings returns the list's atoms as plain strings, positionally, for
// callers (e.g. the serializer) outside this package.
func (l List) Strings() []string { return l.strings() }

// NewList builds a List from plain strings, positionally.
func NewList(ss ...string) List { return fromStrings(ss) }

// ListDiff is an edit script over a List, preserving enough context
// (default width 3, see listdiff.DefaultContext) to be applied faithfully
// even if located within a slightly different base list.
type ListDiff struct {
	Script  listdiff.Script
	Context int
}

func (ListDiff) Kind() Kind { return KindList }
func (ListDiff) diff()      {}

// diffList computes the default-context edit script from a to b.
func diffList(a, b List) ListDiff {
	ctx := listdiff.DefaultContext
	return ListDiff{Script: listdiff.Diff(a.strings(), b.strings(), ctx), Context: ctx}
}

// applyList locates each hunk by its preserved context and splices in the
// replacement lines; a hunk whose context cannot be found fails with
// ErrListDrift rather than silently corrupting the list.
func applyList(l List, d ListDiff) (List, error) {
	out, err := listdiff.Apply(l.strings(), d.Script)
	if err != nil {
		if drift, ok := err.(listdiff.ErrDrift); ok {
			return nil, rsderrors.Wrap(rsderrors.ErrListDrift, rsderrors.Key{}, "hunk %d: pre=%v old=%v post=%v", drift.Hunk, drift.Where.Pre, drift.Where.Old, drift.Where.Post)
		}
		return nil, err
	}
	return fromStrings(out), nil
}

// combineList is the naive concatenation-merge design note 9 fixes this
// spec's Combine to: the right operand's content is appended to the left's,
// duplicates are not eliminated, and the result is not idempotent unless the
// right operand is empty.
func combineList(a, b List) List {
	out := make(List, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// compareList orders two lists positionally; absence at a position sorts
// before presence.
func compareList(a, b List) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		switch {
		case i >= len(a):
			return -1
		case i >= len(b):
			return 1
		default:
			if c := compareAtom(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

// Package listdiff builds intent-preserving, context-carrying edit scripts
// over ordered string lists on top of github.com/aryann/difflib's Myers
// shortest-edit-script engine, and applies them back with best-effort
// context-matching so a hunk that no longer finds its anchor fails loudly
// (list-drift) instead of silently corrupting unrelated content.
package listdiff

import (
	"fmt"

	"github.com/aryann/difflib"
)

// DefaultContext is the context width spec.md names as the kind's default.
const DefaultContext = 3

// Hunk is one located edit: Old is replaced by New, anchored by the Pre/Post
// context lines that must be found unchanged around it for the hunk to apply.
type Hunk struct {
	Pre  []string
	Old  []string
	New  []string
	Post []string
}

// Script is an ordered, non-overlapping sequence of hunks sufficient to
// rewrite the base list into the target list: apply(base, Diff(base,target)) == target.
type Script struct {
	Hunks []Hunk
}

// ErrDrift is returned by Apply when a hunk's context could not be located.
type ErrDrift struct {
	Hunk  int
	Where Hunk
}

func (e ErrDrift) Error() string {
	return fmt.Sprintf("list-drift: hunk %d (pre=%v old=%v post=%v) did not locate in target list", e.Hunk, e.Where.Pre, e.Where.Old, e.Where.Post)
}

// Diff computes a context-carrying edit script turning a into b, using
// context lines of common content on either side of each run of changes.
func Diff(a, b []string, context int) Script {
	if context <= 0 {
		context = DefaultContext
	}
	records := difflib.Diff(a, b)

	var hunks []Hunk
	// consumed tracks the records index up through which content has already
	// been claimed as some hunk's post-context, so two change-runs separated
	// by a gap smaller than 2*context never claim the same common line twice.
	consumed := 0
	i := 0
	for i < len(records) {
		if records[i].Delta == difflib.Common {
			i++
			continue
		}
		// Found the start of a run of changes (LeftOnly/RightOnly records).
		start := i
		for i < len(records) && records[i].Delta != difflib.Common {
			i++
		}
		end := i // exclusive

		var oldLines, newLines []string
		for _, r := range records[start:end] {
			switch r.Delta {
			case difflib.LeftOnly:
				oldLines = append(oldLines, r.Payload)
			case difflib.RightOnly:
				newLines = append(newLines, r.Payload)
			}
		}

		preWidth := min(context, start-consumed)
		pre := commonBefore(records, start, preWidth)
		post := commonAfter(records, end, context)
		consumed = end + len(post)

		hunks = append(hunks, Hunk{Pre: pre, Old: oldLines, New: newLines, Post: post})
	}

	return Script{Hunks: hunks}
}

func commonBefore(records []difflib.DiffRecord, idx, width int) []string {
	var out []string
	for j := idx - 1; j >= 0 && len(out) < width && records[j].Delta == difflib.Common; j-- {
		out = append([]string{records[j].Payload}, out...)
	}
	return out
}

func commonAfter(records []difflib.DiffRecord, idx, width int) []string {
	var out []string
	for j := idx; j < len(records) && len(out) < width && records[j].Delta == difflib.Common; j++ {
		out = append(out, records[j].Payload)
	}
	return out
}

// Apply locates each hunk's Pre+Old+Post anchor within target (searching
// forward from the position the previous hunk was found at) and splices in
// New in its place. A hunk whose anchor cannot be found returns ErrDrift.
func Apply(target []string, s Script) ([]string, error) {
	var out []string
	cursor := 0
	for n, h := range s.Hunks {
		anchor := append(append(append([]string{}, h.Pre...), h.Old...), h.Post...)
		pos := indexFrom(target, anchor, cursor)
		if pos < 0 {
			return nil, ErrDrift{Hunk: n, Where: h}
		}
		out = append(out, target[cursor:pos]...)
		out = append(out, h.Pre...)
		out = append(out, h.New...)
		out = append(out, h.Post...)
		cursor = pos + len(anchor)
	}
	out = append(out, target[cursor:]...)
	return out, nil
}

// indexFrom returns the index of the first occurrence of anchor as a
// contiguous subsequence of target at or after from, or -1.
func indexFrom(target, anchor []string, from int) int {
	if len(anchor) == 0 {
		return from
	}
	for i := from; i+len(anchor) <= len(target); i++ {
		if matches(target[i:i+len(anchor)], anchor) {
			return i
		}
	}
	return -1
}

func matches(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

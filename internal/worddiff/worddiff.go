// Package worddiff computes the changed spans inside a single pair of
// lines, for highlighting finer than whole-row colors.
package worddiff

import (
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Granularity selects the unit of comparison.
type Granularity uint8

const (
	Word Granularity = iota
	Char
)

func (g Granularity) String() string {
	if g == Char {
		return "char"
	}
	return "word"
}

// ParseGranularity maps a configuration value to its Granularity.
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "word":
		return Word, true
	case "char":
		return Char, true
	}
	return Word, false
}

// RangeType says which side of the comparison a range belongs to.
type RangeType uint8

const (
	Added RangeType = iota
	Removed
)

// Range is a half-open span of bytes inside one line, offsets
// relative to the start of that line.
type Range struct {
	From int
	To   int
	Type RangeType
}

// Pair carries the removed ranges of the before line and the added
// ranges of the after line. Ranges are disjoint and sorted by From.
type Pair struct {
	Before []Range
	After  []Range
}

// Empty reports whether neither side has changed spans.
func (p Pair) Empty() bool {
	return len(p.Before) == 0 && len(p.After) == 0
}

// Compute diffs two lines and returns the changed spans per side,
// with offsets in the coordinates of the original strings. The
// leading run of spaces common to both lines is excluded from the
// comparison, so two equally indented lines differing in one word
// report just that word and not the indentation.
func Compute(before, after string, g Granularity) Pair {
	if before == after {
		return Pair{}
	}
	p := commonIndent(before, after)
	if g == Char {
		return charDiff(before[p:], after[p:], p)
	}
	return wordDiff(before[p:], after[p:], p)
}

// commonIndent returns the length of the leading run of spaces shared
// by both strings.
func commonIndent(a, b string) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == ' ' && b[i] == ' ' {
		i++
	}
	return i
}

func wordDiff(before, after string, base int) Pair {
	atoks, astarts := runs(before)
	btoks, bstarts := runs(after)
	var p Pair
	for _, op := range difflib.NewMatcher(atoks, btoks).GetOpCodes() {
		switch op.Tag {
		case 'r':
			p.Before = append(p.Before, tokenRange(atoks, astarts, op.I1, op.I2, base, Removed))
			p.After = append(p.After, tokenRange(btoks, bstarts, op.J1, op.J2, base, Added))
		case 'd':
			p.Before = append(p.Before, tokenRange(atoks, astarts, op.I1, op.I2, base, Removed))
		case 'i':
			p.After = append(p.After, tokenRange(btoks, bstarts, op.J1, op.J2, base, Added))
		}
	}
	return p
}

func tokenRange(toks []string, starts []int, i, j, base int, t RangeType) Range {
	return Range{
		From: base + starts[i],
		To:   base + starts[j-1] + len(toks[j-1]),
		Type: t,
	}
}

// runs splits a line into alternating word and whitespace runs,
// remembering where each run starts. Offsets are byte offsets;
// multi-byte runes never contain space bytes, so the split is safe.
func runs(s string) (toks []string, starts []int) {
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && blank(s[j]) == blank(s[i]) {
			j++
		}
		toks = append(toks, s[i:j])
		starts = append(starts, i)
		i = j
	}
	return toks, starts
}

func blank(b byte) bool {
	return b == ' ' || b == '\t'
}

func charDiff(before, after string, base int) Pair {
	// No semantic cleanup: the spans must map back to exact offsets.
	diffs := diffmatchpatch.New().DiffMain(before, after, false)
	var p Pair
	bo, ao := base, base
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			p.Before = append(p.Before, Range{From: bo, To: bo + n, Type: Removed})
			bo += n
		case diffmatchpatch.DiffInsert:
			p.After = append(p.After, Range{From: ao, To: ao + n, Type: Added})
			ao += n
		default:
			bo += n
			ao += n
		}
	}
	return p
}

package worddiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	for _, s := range []string{
		"",
		"x",
		"  photoUrl: x",
		"日本語のテキスト",
		"   ",
	} {
		for _, g := range []Granularity{Word, Char} {
			p := Compute(s, s, g)
			assert.True(t, p.Empty(), "%q %v", s, g)
		}
	}
}

func TestCommonIndentNotFlagged(t *testing.T) {
	p := Compute("  photoUrl: x", "  imageUrl: x", Word)
	require.Len(t, p.Before, 1)
	require.Len(t, p.After, 1)
	assert.Equal(t, Range{From: 2, To: 11, Type: Removed}, p.Before[0])
	assert.Equal(t, "photoUrl:", "  photoUrl: x"[p.Before[0].From:p.Before[0].To])
	assert.Equal(t, "imageUrl:", "  imageUrl: x"[p.After[0].From:p.After[0].To])
}

func TestWordInsertDelete(t *testing.T) {
	before := "a c"
	after := "a b c"
	p := Compute(before, after, Word)
	assert.Empty(t, p.Before)
	require.Len(t, p.After, 1)
	assert.Equal(t, Added, p.After[0].Type)
	assert.Equal(t, "b ", after[p.After[0].From:p.After[0].To])

	q := Compute(after, before, Word)
	assert.Empty(t, q.After)
	require.Len(t, q.Before, 1)
	assert.Equal(t, Removed, q.Before[0].Type)
}

func TestCharGranularity(t *testing.T) {
	before := "color: red"
	after := "color: blue"
	p := Compute(before, after, Char)
	require.NotEmpty(t, p.Before)
	require.NotEmpty(t, p.After)
	for _, r := range p.Before {
		assert.Less(t, r.From, r.To)
		assert.LessOrEqual(t, r.To, len(before))
		assert.Equal(t, Removed, r.Type)
	}
	for _, r := range p.After {
		assert.LessOrEqual(t, r.To, len(after))
		assert.Equal(t, Added, r.Type)
	}
}

func TestRangesSortedAndDisjoint(t *testing.T) {
	before := "one two three four five"
	after := "one 2 three 4 five"
	for _, g := range []Granularity{Word, Char} {
		p := Compute(before, after, g)
		for _, side := range [][]Range{p.Before, p.After} {
			for i := 1; i < len(side); i++ {
				assert.GreaterOrEqual(t, side[i].From, side[i-1].To)
			}
		}
	}
}

// Removing the changed spans from each side must leave the same
// residue, and the spans must slice cleanly out of the originals.
func TestCoverage(t *testing.T) {
	cases := [][2]string{
		{"  a: old", "  a: new"},
		{"x", "y"},
		{"alpha beta gamma", "alpha gamma"},
		{"", "added"},
	}
	for _, tc := range cases {
		for _, g := range []Granularity{Word, Char} {
			p := Compute(tc[0], tc[1], g)
			assert.Equal(t, residue(tc[0], p.Before), residue(tc[1], p.After), "%q %q %v", tc[0], tc[1], g)
		}
	}
}

func residue(s string, changed []Range) string {
	out := ""
	prev := 0
	for _, r := range changed {
		out += s[prev:r.From]
		prev = r.To
	}
	return out + s[prev:]
}

package align

import (
	"strings"

	"github.com/nicolagi/lockstep/internal/change"
	"github.com/nicolagi/lockstep/internal/flatten"
	"github.com/nicolagi/lockstep/internal/worddiff"
)

// UnifiedOptions control one unified build.
type UnifiedOptions struct {
	Wrap        Wrap
	ExtraIndent int
	TabSize     int

	// InlineWordDiff folds each replace into a single row carrying
	// the after text, with the before text recorded on the side for
	// intra-row markup. When off, a replace emits a removed row
	// followed by an added row.
	InlineWordDiff bool
}

// UnifiedResult is the single-pane layout. Line numbers in LineMap
// refer to the before and after documents as in the dual-pane result;
// the physical row is the slice index plus one.
type UnifiedResult struct {
	Lines   []string
	LineMap []Mapping

	// BeforeContent maps physical rows of inlined replaces to the
	// before text they no longer display. Nil unless InlineWordDiff
	// was on.
	BeforeContent map[int]string

	Spans map[string]Span
}

// Rows returns the number of physical rows.
func (r *UnifiedResult) Rows() int {
	return len(r.LineMap)
}

// Unified builds the merged single-pane layout from the flattened
// lines.
func Unified(lines []flatten.Line, opts UnifiedOptions) UnifiedResult {
	b := unifiedBuilder{opts: opts, spans: make(map[string]Span)}
	if opts.InlineWordDiff {
		b.res.BeforeContent = make(map[int]string)
	}
	b.open()
	for _, ln := range lines {
		b.content(ln)
	}
	b.close()
	b.res.Spans = b.spans
	return b.res
}

type unifiedBuilder struct {
	opts UnifiedOptions
	res  UnifiedResult

	beforeNo int
	afterNo  int

	spans map[string]Span
}

func (b *unifiedBuilder) tab() int {
	if b.opts.TabSize <= 0 {
		return 2
	}
	return b.opts.TabSize
}

func (b *unifiedBuilder) indent(level int) string {
	extra := b.opts.ExtraIndent
	if b.opts.Wrap != WrapNone {
		extra++
	}
	return strings.Repeat(" ", (level+extra)*b.tab())
}

func (b *unifiedBuilder) open() {
	switch b.opts.Wrap {
	case WrapObject:
		b.bracket("{")
	case WrapArray:
		b.bracket("[")
	}
}

func (b *unifiedBuilder) close() {
	switch b.opts.Wrap {
	case WrapObject:
		b.bracket("}")
	case WrapArray:
		b.bracket("]")
	}
}

func (b *unifiedBuilder) bracket(text string) {
	b.beforeNo++
	b.afterNo++
	s := strings.Repeat(" ", b.opts.ExtraIndent*b.tab()) + text
	b.row(s, Mapping{BeforeLine: b.beforeNo, AfterLine: b.afterNo, Type: Unchanged})
}

func (b *unifiedBuilder) content(ln flatten.Line) {
	indent := b.indent(ln.Indent)
	before := ln.Before
	after := ln.After
	if before != "" {
		before = indent + before
	}
	if after != "" {
		after = indent + after
	}

	m := Mapping{BlockID: ln.Owner}
	if ln.Edit != nil {
		m.Class = ln.Edit.Class
		m.IsChangeRoot = ln.IsChangeRoot
	}

	switch rowType(ln.Edit) {
	case Added:
		b.afterNo++
		m.Type, m.AfterLine = Added, b.afterNo
		b.row(after, m)
	case Removed:
		b.beforeNo++
		m.Type, m.BeforeLine = Removed, b.beforeNo
		b.row(before, m)
	case Modified:
		if b.opts.InlineWordDiff {
			b.beforeNo++
			b.afterNo++
			m.Type, m.BeforeLine, m.AfterLine = Modified, b.beforeNo, b.afterNo
			b.row(after, m)
			b.res.BeforeContent[len(b.res.LineMap)] = before
			return
		}
		// The two rows are adjacent but not linked through PairID;
		// only the dual-pane split uses that.
		removed, added := m, m
		b.beforeNo++
		removed.Type, removed.BeforeLine = Removed, b.beforeNo
		b.row(before, removed)
		b.afterNo++
		added.Type, added.AfterLine = Added, b.afterNo
		b.row(after, added)
	default:
		b.beforeNo++
		b.afterNo++
		m.Type, m.BeforeLine, m.AfterLine = Unchanged, b.beforeNo, b.afterNo
		b.row(before, m)
	}
}

func (b *unifiedBuilder) row(text string, m Mapping) {
	b.res.Lines = append(b.res.Lines, text)
	b.res.LineMap = append(b.res.LineMap, m)
	physical := len(b.res.LineMap)
	for id := m.BlockID; id != ""; id = change.ParentID(id) {
		span, ok := b.spans[id]
		if !ok {
			span = Span{First: physical}
		}
		span.Last = physical
		b.spans[id] = span
	}
}

// WordDiffs computes the intra-row changed spans for every row of the
// dual-pane result where both sides carry real content, keyed by the
// 1-based physical row.
func WordDiffs(res Result, g worddiff.Granularity) map[int]worddiff.Pair {
	out := make(map[int]worddiff.Pair)
	for i, m := range res.LineMap {
		if m.Type != Modified {
			continue
		}
		p := worddiff.Compute(res.BeforeLines[i], res.AfterLines[i], g)
		if !p.Empty() {
			out[i+1] = p
		}
	}
	return out
}

// UnifiedWordDiffs does the same for inlined replace rows of the
// unified result, diffing the recorded before text against the
// displayed row.
func UnifiedWordDiffs(res UnifiedResult, g worddiff.Granularity) map[int]worddiff.Pair {
	out := make(map[int]worddiff.Pair)
	for row, before := range res.BeforeContent {
		p := worddiff.Compute(before, res.Lines[row-1], g)
		if !p.Empty() {
			out[row] = p
		}
	}
	return out
}
